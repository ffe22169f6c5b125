// Package postgres provides PostgreSQL storage for tracked URLs and price
// history, for deployments that share one database between several watchers.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DefaultMaxConns bounds the pool when the DSN does not set pool_max_conns.
const DefaultMaxConns = 8

// DB represents a PostgreSQL connection pool.
type DB struct {
	pool *pgxpool.Pool
	dsn  string
}

// NewDB creates a new DB for the given connection string.
func NewDB(dsn string) *DB {
	return &DB{dsn: dsn}
}

// Open connects to the database and creates the schema if needed.
func (db *DB) Open(ctx context.Context) error {
	cfg, err := pgxpool.ParseConfig(db.dsn)
	if err != nil {
		return fmt.Errorf("failed to parse dsn: %w", err)
	}
	if cfg.MaxConns <= 0 || cfg.MaxConns > DefaultMaxConns {
		cfg.MaxConns = DefaultMaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	db.pool = pool

	if err := db.createSchema(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close closes the pool.
func (db *DB) Close() error {
	if db.pool != nil {
		db.pool.Close()
	}
	return nil
}

func (db *DB) createSchema(ctx context.Context) error {
	_, err := db.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS tracked_urls (
			id TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			url TEXT NOT NULL,
			position BIGSERIAL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (source, url)
		);

		CREATE TABLE IF NOT EXISTS history (
			id TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			url TEXT NOT NULL,
			product_name TEXT NOT NULL,
			price1 BIGINT,
			price2 BIGINT,
			price3 BIGINT,
			page_hash TEXT NOT NULL DEFAULT '',
			captured_at TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_tracked_urls_source ON tracked_urls(source, position);
		CREATE INDEX IF NOT EXISTS idx_history_url_captured_at ON history(url, captured_at DESC);
	`)
	return err
}

// isUniqueViolation reports whether err is a unique constraint violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
