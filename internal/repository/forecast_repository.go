package repository

import (
	"context"

	"downcast/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/trace"
)

const createForecastsTable = `
CREATE TABLE IF NOT EXISTS drop_forecasts (
    id          BIGSERIAL   PRIMARY KEY,
    ticker      TEXT        NOT NULL,
    next        TEXT        NOT NULL,
    week        TEXT        NOT NULL,
    month       TEXT        NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_drop_forecasts_ticker_created
    ON drop_forecasts (ticker, created_at DESC);
`

type forecastPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ForecastRepository keeps a history of prediction runs so past calls can be
// audited against what the market actually did.
type ForecastRepository struct {
	pool   forecastPool
	tracer trace.Tracer
}

func NewForecastRepository(pool forecastPool, tracer trace.Tracer) *ForecastRepository {
	return &ForecastRepository{pool: pool, tracer: tracer}
}

func (r *ForecastRepository) RunMigrations(ctx context.Context) error {
	_, span := r.tracer.Start(ctx, "forecast-repo.run-migrations")
	defer span.End()

	_, err := r.pool.Exec(ctx, createForecastsTable)
	return err
}

func (r *ForecastRepository) InsertForecast(ctx context.Context, forecast domain.DropForecast) (*domain.DropForecast, error) {
	_, span := r.tracer.Start(ctx, "forecast-repo.insert-forecast")
	defer span.End()

	row := r.pool.QueryRow(ctx,
		`INSERT INTO drop_forecasts (ticker, next, week, month)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, ticker, next, week, month, created_at`,
		forecast.Ticker, forecast.Next, forecast.Week, forecast.Month,
	)

	var out domain.DropForecast
	if err := row.Scan(&out.ID, &out.Ticker, &out.Next, &out.Week, &out.Month, &out.CreatedAt); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListForecasts returns a ticker's most recent runs, newest first.
func (r *ForecastRepository) ListForecasts(ctx context.Context, ticker string, limit int) ([]domain.DropForecast, error) {
	_, span := r.tracer.Start(ctx, "forecast-repo.list-forecasts")
	defer span.End()

	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx,
		`SELECT id, ticker, next, week, month, created_at
		 FROM drop_forecasts
		 WHERE ticker = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		ticker, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var forecasts []domain.DropForecast
	for rows.Next() {
		var f domain.DropForecast
		if err := rows.Scan(&f.ID, &f.Ticker, &f.Next, &f.Week, &f.Month, &f.CreatedAt); err != nil {
			return nil, err
		}
		forecasts = append(forecasts, f)
	}
	return forecasts, rows.Err()
}
