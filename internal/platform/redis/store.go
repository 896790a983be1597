package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/SmartMoney/internal/alert"
	"github.com/Alias1177/SmartMoney/internal/model"
)

// DefaultKey is the hash that holds asset -> decision.
const DefaultKey = "smartmoney:alerts"

// Config configures the Redis alert store.
type Config struct {
	Addr     string // Redis address, e.g. "localhost:6379"
	Password string
	DB       int
	Key      string
}

// AlertStore keeps alert state in a single Redis hash.
type AlertStore struct {
	client *goredis.Client
	key    string
}

// New connects and pings the server.
func New(ctx context.Context, cfg Config) (*AlertStore, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	log.Info().Str("component", "redis_store").Str("addr", cfg.Addr).Msg("Connected to Redis")
	return NewWithClient(client, cfg.Key), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *goredis.Client, key string) *AlertStore {
	if key == "" {
		key = DefaultKey
	}
	return &AlertStore{client: client, key: key}
}

// Load implements alert.Store.
func (s *AlertStore) Load(ctx context.Context) (alert.State, error) {
	raw, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall %s: %w", s.key, err)
	}

	state := make(alert.State, len(raw))
	for asset, decision := range raw {
		state[asset] = model.Decision(decision)
	}
	return state, nil
}

// Save implements alert.Store. All fields are written in one MULTI/EXEC.
func (s *AlertStore) Save(ctx context.Context, state alert.State) error {
	if len(state) == 0 {
		return nil
	}

	values := make(map[string]interface{}, len(state))
	for asset, decision := range state {
		values[asset] = string(decision)
	}

	_, err := s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.HSet(ctx, s.key, values)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis hset %s: %w", s.key, err)
	}
	return nil
}

// Close releases the connection pool.
func (s *AlertStore) Close() error {
	return s.client.Close()
}
