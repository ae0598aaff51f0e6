// Package db owns the process-wide Postgres connection pool.
package db

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

var Pool *pgxpool.Pool

var (
	newPgxPool = func(ctx context.Context, url string) (*pgxpool.Pool, error) {
		return pgxpool.New(ctx, url)
	}
	pingPostgres = func(ctx context.Context, pool *pgxpool.Pool) error {
		return pool.Ping(ctx)
	}
)

// InitPostgres connects the global pool. A missing URL leaves Pool nil so
// the service can still run in cache-only mode.
func InitPostgres(ctx context.Context, url string) {
	if url == "" {
		log.Println("Warning: no database URL, Postgres disabled")
		return
	}

	pool, err := newPgxPool(ctx, url)
	if err != nil {
		log.Fatalf("failed to create Postgres pool: %v", err)
	}
	if err := pingPostgres(ctx, pool); err != nil {
		log.Fatalf("failed to connect to Postgres: %v", err)
	}

	Pool = pool
	log.Println("Connected to Postgres")
}

// Close releases the global pool. Safe to call when InitPostgres never ran.
func Close() {
	if Pool != nil {
		Pool.Close()
		Pool = nil
	}
}
