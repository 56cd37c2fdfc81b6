package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Database wraps the Postgres connection pool. The portal only ever reads,
// so the session defaults to a read-only transaction mode; the executor
// enforces SELECT-only on top of that.
type Database struct {
	conn *sql.DB
}

func OpenDatabase(databaseURL string) (*Database, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	if _, err := db.ExecContext(ctx, "SET default_transaction_read_only = on"); err != nil {
		if logger != nil {
			logger.Warn("Could not set read-only session default", "error", err)
		}
	}

	if logger != nil {
		logger.Info("Database connection established")
	}

	return &Database{conn: db}, nil
}

// Conn exposes the underlying pool for the catalog and the executor.
func (d *Database) Conn() *sql.DB {
	return d.conn
}

// Ping reports whether the database is reachable right now.
func (d *Database) Ping(ctx context.Context) error {
	return d.conn.PingContext(ctx)
}

func (d *Database) Close() error {
	return d.conn.Close()
}
