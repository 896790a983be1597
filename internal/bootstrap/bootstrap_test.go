package bootstrap

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alias1177/SmartMoney/internal/alert"
	"github.com/Alias1177/SmartMoney/internal/config"
	"github.com/Alias1177/SmartMoney/internal/database"
	"github.com/Alias1177/SmartMoney/internal/model"
	"github.com/Alias1177/SmartMoney/internal/notify"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load()
	require.NoError(t, err)
	return cfg
}

func TestSourcesCoverProviders(t *testing.T) {
	cfg := testConfig(t)
	sources := Sources(cfg)
	for _, a := range cfg.Assets {
		assert.Contains(t, sources, a.Provider)
	}
}

func TestEvaluatorMinimum(t *testing.T) {
	cfg := testConfig(t)
	assert.Equal(t, 50, Evaluator(cfg).MinCandles())
}

func TestAlertStoreSelection(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	cfg := testConfig(t)
	cfg.AlertStore = config.StoreMemory
	store, closer, err := AlertStore(ctx, cfg)
	require.NoError(t, err)
	assert.IsType(t, &alert.MemoryStore{}, store)
	assert.NoError(t, closer.Close())

	cfg.AlertStore = config.StoreFile
	cfg.AlertStateFile = filepath.Join(dir, "state.json")
	store, _, err = AlertStore(ctx, cfg)
	require.NoError(t, err)
	assert.IsType(t, &alert.FileStore{}, store)

	cfg.AlertStore = config.StoreSQLite
	cfg.SQLitePath = filepath.Join(dir, "db", "alerts.db")
	store, closer, err = AlertStore(ctx, cfg)
	require.NoError(t, err)
	assert.IsType(t, &database.DB{}, store)
	require.NoError(t, store.Save(ctx, alert.State{"XAUUSD": model.DecisionBuy}))
	assert.NoError(t, closer.Close())

	cfg.AlertStore = "s3"
	_, _, err = AlertStore(ctx, cfg)
	assert.Error(t, err)
}

func TestNotifierFallsBackToLog(t *testing.T) {
	cfg := testConfig(t)
	cfg.TelegramToken = ""
	n, err := Notifier(cfg)
	require.NoError(t, err)
	assert.IsType(t, &notify.LogNotifier{}, n)
}
