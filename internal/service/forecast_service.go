package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"downcast/internal/domain"
	"downcast/internal/ml/forecast"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
)

// ObservationReader loads the daily series the forecaster trains on.
type ObservationReader interface {
	ListObservations(ctx context.Context, ticker string, since time.Time) ([]domain.DailyObservation, error)
}

// ForecastHistory records completed prediction runs.
type ForecastHistory interface {
	InsertForecast(ctx context.Context, f domain.DropForecast) (*domain.DropForecast, error)
	ListForecasts(ctx context.Context, ticker string, limit int) ([]domain.DropForecast, error)
}

type RedisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

// ForecastService runs the modeling pipeline over stored observations,
// caching results in Redis and recording each run in Postgres.
type ForecastService struct {
	tracer      trace.Tracer
	repo        ObservationReader
	history     ForecastHistory
	redis       RedisClient
	historyDays int
	cacheTTL    time.Duration
}

func NewForecastService(
	tracer trace.Tracer,
	repo ObservationReader,
	history ForecastHistory,
	redisClient RedisClient,
	historyDays int,
	cacheTTL time.Duration,
) *ForecastService {
	if historyDays <= 0 {
		historyDays = 180
	}
	if cacheTTL <= 0 {
		cacheTTL = 15 * time.Minute
	}
	return &ForecastService{
		tracer:      tracer,
		repo:        repo,
		history:     history,
		redis:       redisClient,
		historyDays: historyDays,
		cacheTTL:    cacheTTL,
	}
}

// Forecast returns the three-horizon drop prediction for a ticker, serving
// a cached result when one is fresh.
func (s *ForecastService) Forecast(ctx context.Context, ticker string) (*forecast.Result, error) {
	ctx, span := s.tracer.Start(ctx, "forecast-service.forecast")
	defer span.End()

	if s.redis != nil {
		cached, err := s.getForecastCache(ctx, ticker)
		if err != nil {
			log.Printf("redis cache read error: %v", err)
		}
		if cached != nil {
			return cached, nil
		}
	}

	since := time.Now().UTC().AddDate(0, 0, -s.historyDays)
	observations, err := s.repo.ListObservations(ctx, ticker, since)
	if err != nil {
		return nil, err
	}

	result, err := forecast.Predict(buildInput(ticker, observations))
	if err != nil {
		return nil, err
	}

	if s.redis != nil {
		if err := s.setForecastCache(ctx, &result); err != nil {
			log.Printf("redis cache write error for %s: %v", ticker, err)
		}
	}
	if s.history != nil {
		if _, err := s.history.InsertForecast(ctx, domain.DropForecast{
			Ticker: result.Ticker,
			Next:   result.Next,
			Week:   result.Week,
			Month:  result.Month,
		}); err != nil {
			log.Printf("forecast history write error for %s: %v", ticker, err)
		}
	}
	return &result, nil
}

// History returns a ticker's recent prediction runs, newest first.
func (s *ForecastService) History(ctx context.Context, ticker string, limit int) ([]domain.DropForecast, error) {
	_, span := s.tracer.Start(ctx, "forecast-service.history")
	defer span.End()

	return s.history.ListForecasts(ctx, ticker, limit)
}

// Observations returns the stored daily series for a ticker, oldest first.
func (s *ForecastService) Observations(ctx context.Context, ticker string) ([]domain.DailyObservation, error) {
	ctx, span := s.tracer.Start(ctx, "forecast-service.observations")
	defer span.End()

	since := time.Now().UTC().AddDate(0, 0, -s.historyDays)
	return s.repo.ListObservations(ctx, ticker, since)
}

func buildInput(ticker string, observations []domain.DailyObservation) forecast.Input {
	in := forecast.Input{
		Ticker:     ticker,
		Closes:     make([]float64, len(observations)),
		Volumes:    make([]float64, len(observations)),
		Positives:  make([]float64, len(observations)),
		Negatives:  make([]float64, len(observations)),
		Sentiments: make([]string, len(observations)),
	}
	for i, o := range observations {
		in.Closes[i] = o.Close
		in.Volumes[i] = o.Volume
		in.Positives[i] = o.Positive
		in.Negatives[i] = o.Negative
		in.Sentiments[i] = o.Sentiment
	}
	return in
}

func (s *ForecastService) setForecastCache(ctx context.Context, result *forecast.Result) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, "forecast:"+result.Ticker, data, s.cacheTTL).Err()
}

func (s *ForecastService) getForecastCache(ctx context.Context, ticker string) (*forecast.Result, error) {
	data, err := s.redis.Get(ctx, "forecast:"+ticker).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var result forecast.Result
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
