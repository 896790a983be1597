package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/Alias1177/SmartMoney/internal/database"
	"github.com/Alias1177/SmartMoney/internal/engine"
	"github.com/Alias1177/SmartMoney/internal/indicators"
	"github.com/Alias1177/SmartMoney/internal/model"
	"github.com/Alias1177/SmartMoney/internal/patterns"
	"github.com/Alias1177/SmartMoney/internal/signal"
	"github.com/Alias1177/SmartMoney/internal/structure"
	"github.com/Alias1177/SmartMoney/internal/trading/risk"
)

// Alert store backends.
const (
	StoreFile     = "file"
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
	StoreRedis    = "redis"
)

// Providers known to the bot.
const (
	ProviderTwelveData = "twelvedata"
	ProviderBinance    = "binance"
)

// DefaultAssets is the watch list used when no ASSETS_FILE is given.
var DefaultAssets = []engine.Asset{
	{Key: "XAUUSD", Label: "Gold (XAUUSD)", Provider: ProviderTwelveData, Symbol: "XAU/USD"},
	{Key: "BTCUSD", Label: "Bitcoin (BTCUSD)", Provider: ProviderBinance, Symbol: "BTCUSDT"},
	{Key: "EURUSD", Label: "EUR/USD", Provider: ProviderTwelveData, Symbol: "EUR/USD"},
}

// Config holds all application configuration
type Config struct {
	TelegramToken  string `env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID int64  `env:"TELEGRAM_CHAT_ID"`
	TwelveAPIKey   string `env:"TWELVE_API_KEY"`
	TwelveBaseURL  string `env:"TWELVE_BASE_URL" envDefault:"https://api.twelvedata.com"`
	BinanceBaseURL string `env:"BINANCE_BASE_URL" envDefault:"https://api.binance.com"`

	Assets        []engine.Asset
	AssetsFile    string        `env:"ASSETS_FILE"`
	BiasInterval  string        `env:"BIAS_INTERVAL" envDefault:"1h"`
	EntryInterval string        `env:"ENTRY_INTERVAL" envDefault:"5min"`
	FetchLimit    int           `env:"FETCH_LIMIT" envDefault:"500"`
	PollInterval  time.Duration `env:"POLL_INTERVAL" envDefault:"60s"`

	RequestTimeout int `env:"REQUEST_TIMEOUT" envDefault:"30"` // seconds
	RequestsPerSec int `env:"REQUESTS_PER_SEC" envDefault:"5"`

	EMAFast         int `env:"EMA_FAST" envDefault:"50"`
	EMASlow         int `env:"EMA_SLOW" envDefault:"200"`
	RSIPeriod       int `env:"RSI_PERIOD" envDefault:"14"`
	ATRPeriod       int `env:"ATR_PERIOD" envDefault:"14"`
	StructureOffset int `env:"STRUCTURE_OFFSET" envDefault:"2"`
	MinCandles      int `env:"MIN_CANDLES" envDefault:"50"`

	OBLookback      int    `env:"OB_LOOKBACK" envDefault:"80"`
	OBConfirmWindow int    `env:"OB_CONFIRM_WINDOW" envDefault:"4"`
	OBMax           int    `env:"OB_MAX" envDefault:"4"`
	SweepLookback   int    `env:"SWEEP_LOOKBACK" envDefault:"60"`
	SweepWindow     int    `env:"SWEEP_WINDOW" envDefault:"5"`
	SweepMax        int    `env:"SWEEP_MAX" envDefault:"3"`
	FVGVariant      string `env:"FVG_VARIANT" envDefault:"close_open"`

	ToleranceMult   float64 `env:"TOLERANCE_MULT" envDefault:"1.5"`
	RSIOverbought   float64 `env:"RSI_OVERBOUGHT" envDefault:"70"`
	RSIOversold     float64 `env:"RSI_OVERSOLD" envDefault:"30"`
	AllowFallback   bool    `env:"ALLOW_FALLBACK" envDefault:"true"`
	PatternTieBreak string  `env:"PATTERN_TIE_BREAK" envDefault:"recent"`
	StopATRMult     float64 `env:"STOP_ATR_MULT" envDefault:"1.5"`
	RewardRatio     float64 `env:"REWARD_RATIO" envDefault:"2"`

	AlertStore     string `env:"ALERT_STORE" envDefault:"file"`
	AlertStateFile string `env:"ALERT_STATE_FILE" envDefault:"last_signals.json"`
	Database       database.ConnectionParams
	SQLitePath     string `env:"SQLITE_PATH" envDefault:"data/alerts.db"`
	RedisAddr      string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword  string `env:"REDIS_PASSWORD"`
	RedisDB        int    `env:"REDIS_DB" envDefault:"0"`
	RedisKey       string `env:"REDIS_KEY" envDefault:"smartmoney:alerts"`

	Port           string `env:"PORT" envDefault:"10000"`
	AliveNotify    bool   `env:"ALIVE_NOTIFY" envDefault:"true"`
	TracingEnabled bool   `env:"TRACING_ENABLED" envDefault:"false"`
	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load initializes configuration from environment variables
func Load() (*Config, error) {
	// Load environment variables from .env file if present
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on actual environment variables")
	}

	var cfg Config

	cfg.TelegramToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	cfg.TelegramChatID = getEnvInt64WithDefault("TELEGRAM_CHAT_ID", 0)
	cfg.TwelveAPIKey = os.Getenv("TWELVE_API_KEY")
	cfg.TwelveBaseURL = getEnvWithDefault("TWELVE_BASE_URL", "https://api.twelvedata.com")
	cfg.BinanceBaseURL = getEnvWithDefault("BINANCE_BASE_URL", "https://api.binance.com")

	cfg.AssetsFile = os.Getenv("ASSETS_FILE")
	cfg.BiasInterval = getEnvWithDefault("BIAS_INTERVAL", "1h")
	cfg.EntryInterval = getEnvWithDefault("ENTRY_INTERVAL", "5min")
	cfg.FetchLimit = getEnvIntWithDefault("FETCH_LIMIT", 500)
	cfg.PollInterval = getEnvDurationWithDefault("POLL_INTERVAL", 60*time.Second)
	cfg.RequestTimeout = getEnvIntWithDefault("REQUEST_TIMEOUT", 30)
	cfg.RequestsPerSec = getEnvIntWithDefault("REQUESTS_PER_SEC", 5)

	cfg.EMAFast = getEnvIntWithDefault("EMA_FAST", 50)
	cfg.EMASlow = getEnvIntWithDefault("EMA_SLOW", 200)
	cfg.RSIPeriod = getEnvIntWithDefault("RSI_PERIOD", 14)
	cfg.ATRPeriod = getEnvIntWithDefault("ATR_PERIOD", 14)
	cfg.StructureOffset = getEnvIntWithDefault("STRUCTURE_OFFSET", structure.DefaultOffset)
	cfg.MinCandles = getEnvIntWithDefault("MIN_CANDLES", 50)

	cfg.OBLookback = getEnvIntWithDefault("OB_LOOKBACK", 80)
	cfg.OBConfirmWindow = getEnvIntWithDefault("OB_CONFIRM_WINDOW", 4)
	cfg.OBMax = getEnvIntWithDefault("OB_MAX", 4)
	cfg.SweepLookback = getEnvIntWithDefault("SWEEP_LOOKBACK", 60)
	cfg.SweepWindow = getEnvIntWithDefault("SWEEP_WINDOW", 5)
	cfg.SweepMax = getEnvIntWithDefault("SWEEP_MAX", 3)
	cfg.FVGVariant = getEnvWithDefault("FVG_VARIANT", string(patterns.VariantCloseOpen))

	cfg.ToleranceMult = getEnvFloatWithDefault("TOLERANCE_MULT", 1.5)
	cfg.RSIOverbought = getEnvFloatWithDefault("RSI_OVERBOUGHT", 70)
	cfg.RSIOversold = getEnvFloatWithDefault("RSI_OVERSOLD", 30)
	cfg.AllowFallback = getEnvBoolWithDefault("ALLOW_FALLBACK", true)
	cfg.PatternTieBreak = getEnvWithDefault("PATTERN_TIE_BREAK", string(signal.TieBreakRecent))
	cfg.StopATRMult = getEnvFloatWithDefault("STOP_ATR_MULT", 1.5)
	cfg.RewardRatio = getEnvFloatWithDefault("REWARD_RATIO", 2)

	cfg.AlertStore = getEnvWithDefault("ALERT_STORE", StoreFile)
	cfg.AlertStateFile = getEnvWithDefault("ALERT_STATE_FILE", "last_signals.json")
	cfg.Database = database.ConnectionParams{
		Host:     getEnvWithDefault("DB_HOST", "localhost"),
		Port:     getEnvWithDefault("DB_PORT", "5432"),
		User:     getEnvWithDefault("DB_USER", "postgres"),
		Password: os.Getenv("DB_PASSWORD"),
		DBName:   getEnvWithDefault("DB_NAME", "smartmoney"),
		SSLMode:  getEnvWithDefault("DB_SSLMODE", "disable"),
	}
	cfg.SQLitePath = getEnvWithDefault("SQLITE_PATH", "data/alerts.db")
	cfg.RedisAddr = getEnvWithDefault("REDIS_ADDR", "localhost:6379")
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	cfg.RedisDB = getEnvIntWithDefault("REDIS_DB", 0)
	cfg.RedisKey = getEnvWithDefault("REDIS_KEY", "smartmoney:alerts")

	cfg.Port = getEnvWithDefault("PORT", "10000")
	cfg.AliveNotify = getEnvBoolWithDefault("ALIVE_NOTIFY", true)
	cfg.TracingEnabled = getEnvBoolWithDefault("TRACING_ENABLED", false)
	cfg.LogLevel = getEnvWithDefault("LOG_LEVEL", "info")

	cfg.Assets = append([]engine.Asset(nil), DefaultAssets...)
	if cfg.AssetsFile != "" {
		assets, err := LoadAssets(cfg.AssetsFile)
		if err != nil {
			return nil, err
		}
		cfg.Assets = assets
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type assetsFile struct {
	Assets []engine.Asset `yaml:"assets"`
}

// LoadAssets reads the watch list from a YAML file.
func LoadAssets(path string) ([]engine.Asset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading assets file: %w", err)
	}

	var file assetsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing assets file %s: %w", path, err)
	}
	return file.Assets, nil
}

// Validate rejects settings the engine cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if len(c.Assets) == 0 {
		errs = append(errs, errors.New("no assets configured"))
	}
	seen := make(map[string]bool, len(c.Assets))
	for _, a := range c.Assets {
		switch {
		case a.Key == "":
			errs = append(errs, fmt.Errorf("asset %q has no key", a.Symbol))
		case seen[a.Key]:
			errs = append(errs, fmt.Errorf("duplicate asset key %q", a.Key))
		}
		seen[a.Key] = true

		if a.Provider != ProviderTwelveData && a.Provider != ProviderBinance {
			errs = append(errs, fmt.Errorf("asset %q: unknown provider %q", a.Key, a.Provider))
		}
		if a.Symbol == "" {
			errs = append(errs, fmt.Errorf("asset %q has no symbol", a.Key))
		}
	}

	for name, v := range map[string]int{
		"EMA_FAST":          c.EMAFast,
		"EMA_SLOW":          c.EMASlow,
		"RSI_PERIOD":        c.RSIPeriod,
		"ATR_PERIOD":        c.ATRPeriod,
		"STRUCTURE_OFFSET":  c.StructureOffset,
		"FETCH_LIMIT":       c.FetchLimit,
		"OB_LOOKBACK":       c.OBLookback,
		"OB_CONFIRM_WINDOW": c.OBConfirmWindow,
		"OB_MAX":            c.OBMax,
		"SWEEP_LOOKBACK":    c.SweepLookback,
		"SWEEP_WINDOW":      c.SweepWindow,
		"SWEEP_MAX":         c.SweepMax,
		"REQUESTS_PER_SEC":  c.RequestsPerSec,
	} {
		if v <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %d", name, v))
		}
	}
	if c.EMAFast >= c.EMASlow {
		errs = append(errs, fmt.Errorf("EMA_FAST (%d) must be below EMA_SLOW (%d)", c.EMAFast, c.EMASlow))
	}
	if c.PollInterval <= 0 {
		errs = append(errs, fmt.Errorf("POLL_INTERVAL must be positive, got %s", c.PollInterval))
	}
	if c.RSIOversold >= c.RSIOverbought {
		errs = append(errs, fmt.Errorf("RSI_OVERSOLD (%g) must be below RSI_OVERBOUGHT (%g)", c.RSIOversold, c.RSIOverbought))
	}

	for _, iv := range []string{c.BiasInterval, c.EntryInterval} {
		if _, err := model.IntervalDuration(iv); err != nil {
			errs = append(errs, err)
		}
	}

	switch c.AlertStore {
	case StoreFile, StoreMemory, StorePostgres, StoreSQLite, StoreRedis:
	default:
		errs = append(errs, fmt.Errorf("unknown ALERT_STORE %q", c.AlertStore))
	}
	switch signal.TieBreak(c.PatternTieBreak) {
	case signal.TieBreakRecent, signal.TieBreakNearest:
	default:
		errs = append(errs, fmt.Errorf("unknown PATTERN_TIE_BREAK %q", c.PatternTieBreak))
	}
	switch patterns.GapVariant(c.FVGVariant) {
	case patterns.VariantCloseOpen, patterns.VariantBody:
	default:
		errs = append(errs, fmt.Errorf("unknown FVG_VARIANT %q", c.FVGVariant))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Periods returns the indicator periods.
func (c *Config) Periods() indicators.Periods {
	return indicators.Periods{
		EMAFast: c.EMAFast,
		EMASlow: c.EMASlow,
		RSI:     c.RSIPeriod,
		ATR:     c.ATRPeriod,
	}
}

// Detectors returns the pattern detector settings.
func (c *Config) Detectors() patterns.Detectors {
	return patterns.Detectors{
		OrderBlocks: patterns.OrderBlockDetector{
			Lookback:      c.OBLookback,
			ConfirmWindow: c.OBConfirmWindow,
			MaxBlocks:     c.OBMax,
		},
		Gaps: patterns.FairValueGapDetector{Variant: patterns.GapVariant(c.FVGVariant)},
		Sweeps: patterns.LiquiditySweepDetector{
			Lookback:  c.SweepLookback,
			Window:    c.SweepWindow,
			MaxSweeps: c.SweepMax,
		},
	}
}

// Signal returns the composer thresholds.
func (c *Config) Signal() signal.Config {
	return signal.Config{
		MinCandles:          c.MinCandles,
		ToleranceMultiplier: c.ToleranceMult,
		RSIOverbought:       c.RSIOverbought,
		RSIOversold:         c.RSIOversold,
		AllowFallback:       c.AllowFallback,
		TieBreak:            signal.TieBreak(c.PatternTieBreak),
		Risk: risk.Params{
			StopATRMultiplier: c.StopATRMult,
			RewardRatio:       c.RewardRatio,
		},
	}
}

// Runner returns the poll loop settings.
func (c *Config) Runner() engine.RunnerConfig {
	return engine.RunnerConfig{
		Assets:        c.Assets,
		BiasInterval:  c.BiasInterval,
		EntryInterval: c.EntryInterval,
		FetchLimit:    c.FetchLimit,
		PollInterval:  c.PollInterval,
	}
}

// Timeout is REQUEST_TIMEOUT as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

// Helper functions for environment variable handling
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
		log.Warn().Str("key", key).Str("value", value).Msg("Invalid integer, using default")
	}
	return defaultValue
}

func getEnvInt64WithDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
		log.Warn().Str("key", key).Str("value", value).Msg("Invalid integer, using default")
	}
	return defaultValue
}

func getEnvFloatWithDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
		log.Warn().Str("key", key).Str("value", value).Msg("Invalid number, using default")
	}
	return defaultValue
}

func getEnvBoolWithDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

// getEnvDurationWithDefault accepts Go durations ("90s") or bare seconds.
func getEnvDurationWithDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	log.Warn().Str("key", key).Str("value", value).Msg("Invalid duration, using default")
	return defaultValue
}
