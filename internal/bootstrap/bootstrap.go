// Package bootstrap turns a loaded Config into the collaborators the
// binaries share: candle sources, the alert store and the notifier.
package bootstrap

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"

	"github.com/Alias1177/SmartMoney/internal/alert"
	"github.com/Alias1177/SmartMoney/internal/api/binance"
	"github.com/Alias1177/SmartMoney/internal/api/twelvedata"
	"github.com/Alias1177/SmartMoney/internal/config"
	"github.com/Alias1177/SmartMoney/internal/database"
	"github.com/Alias1177/SmartMoney/internal/engine"
	"github.com/Alias1177/SmartMoney/internal/notify"
	"github.com/Alias1177/SmartMoney/internal/platform/redis"
	"github.com/Alias1177/SmartMoney/internal/structure"
)

// Sources builds one candle source per provider, keyed by provider name.
func Sources(cfg *config.Config) map[string]engine.Source {
	td := twelvedata.NewClient(twelvedata.ClientOptions{
		APIKey:         cfg.TwelveAPIKey,
		BaseURL:        cfg.TwelveBaseURL,
		RequestTimeout: cfg.Timeout(),
		RequestsPerSec: cfg.RequestsPerSec,
	})
	bn := binance.NewClient(binance.ClientOptions{
		BaseURL:        cfg.BinanceBaseURL,
		RequestTimeout: cfg.Timeout(),
		RequestsPerSec: cfg.RequestsPerSec,
	})

	return map[string]engine.Source{
		td.Name(): td,
		bn.Name(): bn,
	}
}

// Evaluator builds the per-asset pipeline from cfg.
func Evaluator(cfg *config.Config) *engine.Evaluator {
	return engine.NewEvaluator(cfg.Periods(), structure.New(cfg.StructureOffset), cfg.Detectors(), cfg.Signal())
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// AlertStore opens the backend named by ALERT_STORE. The returned closer
// releases its connection.
func AlertStore(ctx context.Context, cfg *config.Config) (alert.Store, io.Closer, error) {
	logger := log.With().Str("component", "bootstrap").Str("store", cfg.AlertStore).Logger()

	switch cfg.AlertStore {
	case config.StoreMemory:
		logger.Warn().Msg("Alert state is kept in memory and lost on restart")
		return alert.NewMemoryStore(nil), nopCloser{}, nil
	case config.StoreFile:
		logger.Info().Str("path", cfg.AlertStateFile).Msg("Using file alert store")
		return alert.NewFileStore(cfg.AlertStateFile), nopCloser{}, nil
	case config.StorePostgres:
		db, err := database.New(ctx, cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres alert store: %w", err)
		}
		logger.Info().Str("host", cfg.Database.Host).Str("db", cfg.Database.DBName).Msg("Using PostgreSQL alert store")
		return db, db, nil
	case config.StoreSQLite:
		db, err := database.NewSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("sqlite alert store: %w", err)
		}
		logger.Info().Str("path", cfg.SQLitePath).Msg("Using SQLite alert store")
		return db, db, nil
	case config.StoreRedis:
		store, err := redis.New(ctx, redis.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Key:      cfg.RedisKey,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("redis alert store: %w", err)
		}
		logger.Info().Str("addr", cfg.RedisAddr).Msg("Using Redis alert store")
		return store, store, nil
	}
	return nil, nil, fmt.Errorf("unknown alert store %q", cfg.AlertStore)
}

// Notifier returns a Telegram notifier, or a log notifier when no bot token
// is configured.
func Notifier(cfg *config.Config) (notify.Notifier, error) {
	if cfg.TelegramToken == "" || cfg.TelegramChatID == 0 {
		log.Warn().Msg("TELEGRAM_BOT_TOKEN or TELEGRAM_CHAT_ID not set, alerts go to the log")
		return notify.NewLogNotifier(), nil
	}
	tg, err := notify.NewTelegram(cfg.TelegramToken, cfg.TelegramChatID)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	return tg, nil
}
