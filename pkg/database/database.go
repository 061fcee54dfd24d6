// Package database owns the PostgreSQL connection pool shared by every service.
//
// The pool is a pgxpool.Pool; repositories talk to it through a *sql.DB opened
// with pgx's stdlib adapter so query packages and watermill's transactional
// publisher can share the same *sql.Tx.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/spicyjump/storefront/pkg/logger"
)

// Database wraps the pgx pool and its database/sql view.
type Database struct {
	pool *pgxpool.Pool
	db   *sql.DB
}

// NewPool parses url, opens a pgx pool with production pool settings and
// verifies connectivity with a 5s deadline.
func NewPool(ctx context.Context, url string, log logger.Logger) (*Database, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	cfg.MaxConns = 20
	cfg.MinConns = 2
	cfg.MaxConnLifetime = time.Hour
	cfg.MaxConnIdleTime = 30 * time.Minute
	cfg.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	log.Debug("database pool configured",
		"max_conns", cfg.MaxConns,
		"min_conns", cfg.MinConns,
	)

	return &Database{pool: pool, db: stdlib.OpenDBFromPool(pool)}, nil
}

// FromDB wraps an existing *sql.DB. Used by tests (sqlmock) and tools that
// manage their own connection.
func FromDB(db *sql.DB) *Database {
	return &Database{db: db}
}

// DB returns the database/sql handle backed by the pool.
func (d *Database) DB() *sql.DB {
	return d.db
}

// Ping checks the database connection health.
func (d *Database) Ping(ctx context.Context) error {
	if err := d.db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping: %w", err)
	}
	return nil
}

// WithTx runs fn inside a transaction. The transaction is committed when fn
// returns nil and rolled back otherwise.
func (d *Database) WithTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Close releases the sql handle and the pool.
func (d *Database) Close() {
	_ = d.db.Close()
	if d.pool != nil {
		d.pool.Close()
	}
}
