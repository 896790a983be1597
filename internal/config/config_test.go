package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alias1177/SmartMoney/internal/patterns"
	"github.com/Alias1177/SmartMoney/internal/signal"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultAssets, cfg.Assets)
	assert.Equal(t, "1h", cfg.BiasInterval)
	assert.Equal(t, "5min", cfg.EntryInterval)
	assert.Equal(t, 60*time.Second, cfg.PollInterval)
	assert.Equal(t, 30*time.Second, cfg.Timeout())
	assert.Equal(t, StoreFile, cfg.AlertStore)
	assert.Equal(t, "10000", cfg.Port)
	assert.True(t, cfg.AliveNotify)

	assert.Equal(t, signal.DefaultConfig(), cfg.Signal())
	assert.Equal(t, patterns.DefaultDetectors(), cfg.Detectors())
	assert.Equal(t, 50, cfg.Periods().EMAFast)
	assert.Equal(t, 200, cfg.Periods().EMASlow)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("TELEGRAM_CHAT_ID", "-100123")
	t.Setenv("POLL_INTERVAL", "90")
	t.Setenv("PATTERN_TIE_BREAK", "nearest")
	t.Setenv("FVG_VARIANT", "body")
	t.Setenv("ALLOW_FALLBACK", "false")
	t.Setenv("EMA_FAST", "20")
	t.Setenv("EMA_SLOW", "notanumber")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, int64(-100123), cfg.TelegramChatID)
	assert.Equal(t, 90*time.Second, cfg.PollInterval)
	assert.Equal(t, signal.TieBreakNearest, cfg.Signal().TieBreak)
	assert.Equal(t, patterns.VariantBody, cfg.Detectors().Gaps.Variant)
	assert.False(t, cfg.Signal().AllowFallback)
	assert.Equal(t, 20, cfg.EMAFast)
	assert.Equal(t, 200, cfg.EMASlow)
}

func TestLoadAssetsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "assets.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
assets:
  - key: ETHUSD
    label: Ether
    provider: binance
    symbol: ETHUSDT
  - key: GBPUSD
    provider: twelvedata
    symbol: GBP/USD
`), 0o644))
	t.Setenv("ASSETS_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)
	require.Len(t, cfg.Assets, 2)
	assert.Equal(t, "ETHUSDT", cfg.Assets[0].Symbol)
	assert.Equal(t, "GBPUSD", cfg.Assets[1].DisplayName())
	assert.Equal(t, cfg.Assets, cfg.Runner().Assets)
}

func TestLoadMissingAssetsFile(t *testing.T) {
	t.Setenv("ASSETS_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		t.Helper()
		cfg, err := Load()
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
		errMsg string
	}{
		{"no assets", func(c *Config) { c.Assets = nil }, "no assets configured"},
		{"duplicate key", func(c *Config) { c.Assets = append(c.Assets, c.Assets[0]) }, "duplicate asset key"},
		{"unknown provider", func(c *Config) { c.Assets[0].Provider = "kraken" }, "unknown provider"},
		{"ema order", func(c *Config) { c.EMAFast = 200 }, "must be below EMA_SLOW"},
		{"zero period", func(c *Config) { c.RSIPeriod = 0 }, "RSI_PERIOD must be positive"},
		{"bad interval", func(c *Config) { c.EntryInterval = "3min" }, "unsupported interval"},
		{"bad store", func(c *Config) { c.AlertStore = "s3" }, "unknown ALERT_STORE"},
		{"bad tie-break", func(c *Config) { c.PatternTieBreak = "oldest" }, "unknown PATTERN_TIE_BREAK"},
		{"bad variant", func(c *Config) { c.FVGVariant = "wick" }, "unknown FVG_VARIANT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
