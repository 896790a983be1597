package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/Alias1177/SmartMoney/internal/alert"
	"github.com/Alias1177/SmartMoney/internal/model"
)

// Dialect selects placeholder syntax and driver.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite3"
)

// DB represents a database connection
type DB struct {
	*sql.DB
	dialect Dialect
}

// ConnectionParams holds PostgreSQL connection parameters
type ConnectionParams struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN renders the lib/pq connection string.
func (p ConnectionParams) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DBName, p.SSLMode,
	)
}

// New opens a PostgreSQL connection and creates the alert table.
func New(ctx context.Context, params ConnectionParams) (*DB, error) {
	return Open(ctx, Postgres, params.DSN())
}

// NewSQLite opens (and creates) a SQLite database file.
func NewSQLite(ctx context.Context, path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return Open(ctx, SQLite, path)
}

// Open connects with the given dialect and DSN.
func Open(ctx context.Context, dialect Dialect, dsn string) (*DB, error) {
	db, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", dialect, err)
	}
	if dialect == SQLite {
		// SQLite allows a single writer.
		db.SetMaxOpenConns(1)
	}

	// Check connection
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging %s: %w", dialect, err)
	}

	d := &DB{DB: db, dialect: dialect}
	if err := d.createTables(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return d, nil
}

// createTables creates the necessary tables if they don't exist
func (db *DB) createTables(ctx context.Context) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS alert_state (
			asset_key TEXT PRIMARY KEY,
			decision TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("creating alert_state: %w", err)
	}
	return nil
}

// rebind rewrites $N placeholders for dialects that use '?'.
func (db *DB) rebind(query string) string {
	if db.dialect != SQLite {
		return query
	}
	for i := 9; i >= 1; i-- {
		query = strings.ReplaceAll(query, fmt.Sprintf("$%d", i), "?")
	}
	return query
}

// Load implements alert.Store.
func (db *DB) Load(ctx context.Context) (alert.State, error) {
	rows, err := db.QueryContext(ctx, `SELECT asset_key, decision FROM alert_state`)
	if err != nil {
		return nil, fmt.Errorf("querying alert_state: %w", err)
	}
	defer rows.Close()

	state := alert.State{}
	for rows.Next() {
		var asset, decision string
		if err := rows.Scan(&asset, &decision); err != nil {
			return nil, fmt.Errorf("scanning alert_state: %w", err)
		}
		state[asset] = model.Decision(decision)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating alert_state: %w", err)
	}
	return state, nil
}

// Save implements alert.Store. Every entry is upserted in one transaction.
func (db *DB) Save(ctx context.Context, state alert.State) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, db.rebind(`
		INSERT INTO alert_state (asset_key, decision, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (asset_key)
		DO UPDATE SET
			decision = EXCLUDED.decision,
			updated_at = EXCLUDED.updated_at
	`))
	if err != nil {
		return fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for asset, decision := range state {
		if _, err := stmt.ExecContext(ctx, asset, string(decision), now); err != nil {
			return fmt.Errorf("upserting %s: %w", asset, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing alert state: %w", err)
	}
	return nil
}
