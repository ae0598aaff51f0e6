package repository

import (
	"context"
	"time"

	"downcast/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/trace"
)

const createObservationsTable = `
CREATE TABLE IF NOT EXISTS daily_observations (
    ticker      TEXT        NOT NULL,
    day         DATE        NOT NULL,
    close       NUMERIC     NOT NULL,
    volume      NUMERIC     NOT NULL,
    positive    NUMERIC     NOT NULL DEFAULT 0,
    negative    NUMERIC     NOT NULL DEFAULT 0,
    sentiment   TEXT        NOT NULL DEFAULT 'NEUT',
    PRIMARY KEY (ticker, day)
);

CREATE INDEX IF NOT EXISTS idx_daily_observations_ticker_day
    ON daily_observations (ticker, day ASC);
`

type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// ObservationRepository stores the per-ticker daily series the modeling
// pipeline trains on.
type ObservationRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewObservationRepository(pool PgxPool, tracer trace.Tracer) *ObservationRepository {
	return &ObservationRepository{pool: pool, tracer: tracer}
}

func (r *ObservationRepository) RunMigrations(ctx context.Context) error {
	_, span := r.tracer.Start(ctx, "observation-repo.run-migrations")
	defer span.End()

	_, err := r.pool.Exec(ctx, createObservationsTable)
	return err
}

func (r *ObservationRepository) UpsertObservations(ctx context.Context, observations []domain.DailyObservation) error {
	if len(observations) == 0 {
		return nil
	}

	_, span := r.tracer.Start(ctx, "observation-repo.upsert-observations")
	defer span.End()

	batch := &pgx.Batch{}
	for _, o := range observations {
		batch.Queue(
			`INSERT INTO daily_observations (ticker, day, close, volume, positive, negative, sentiment)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 ON CONFLICT (ticker, day) DO UPDATE SET
			     close = EXCLUDED.close,
			     volume = EXCLUDED.volume,
			     positive = EXCLUDED.positive,
			     negative = EXCLUDED.negative,
			     sentiment = EXCLUDED.sentiment`,
			o.Ticker, o.Day, o.Close, o.Volume, o.Positive, o.Negative, o.Sentiment,
		)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range observations {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// ListObservations returns a ticker's series oldest first, the order the
// modeling pipeline requires.
func (r *ObservationRepository) ListObservations(ctx context.Context, ticker string, since time.Time) ([]domain.DailyObservation, error) {
	_, span := r.tracer.Start(ctx, "observation-repo.list-observations")
	defer span.End()

	rows, err := r.pool.Query(ctx,
		`SELECT ticker, day, close, volume, positive, negative, sentiment
		 FROM daily_observations
		 WHERE ticker = $1 AND day >= $2
		 ORDER BY day ASC`,
		ticker, since,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var observations []domain.DailyObservation
	for rows.Next() {
		var o domain.DailyObservation
		if err := rows.Scan(&o.Ticker, &o.Day, &o.Close, &o.Volume, &o.Positive, &o.Negative, &o.Sentiment); err != nil {
			return nil, err
		}
		observations = append(observations, o)
	}
	return observations, rows.Err()
}
