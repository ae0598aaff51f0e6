package service

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"downcast/internal/domain"
	"downcast/internal/ml/forecast"
	"downcast/internal/ml/mlerr"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
)

var testTracer = trace.NewNoopTracerProvider().Tracer("test")

func seriesObservations(ticker string, n int) []domain.DailyObservation {
	day := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	out := make([]domain.DailyObservation, n)
	cats := []string{"POS", "NEG", "NEUT"}
	for i := 0; i < n; i++ {
		out[i] = domain.DailyObservation{
			Ticker:    ticker,
			Day:       day.AddDate(0, 0, i),
			Close:     100 + float64(i)*0.5 + 3*math.Sin(float64(i)),
			Volume:    1_000_000 + float64(i%5)*10_000,
			Positive:  float64(i % 4),
			Negative:  float64(i % 3),
			Sentiment: cats[i%len(cats)],
		}
	}
	return out
}

func TestForecastService_ForecastCacheHit(t *testing.T) {
	t.Parallel()

	cached := forecast.Result{Ticker: "AAPL", Next: "1.0", Week: "0.0", Month: "1.0"}
	data, _ := json.Marshal(cached)
	redisStub := newFakeRedis()
	_ = redisStub.Set(context.Background(), "forecast:AAPL", data, 0)

	repo := &mockObservationRepo{}
	svc := NewForecastService(testTracer, repo, &mockForecastHistory{}, redisStub, 0, 0)

	got, err := svc.Forecast(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *got != cached {
		t.Fatalf("expected cached result, got %+v", got)
	}
	if repo.listCalls != 0 {
		t.Fatal("cache hit must not touch the repository")
	}
}

func TestForecastService_ForecastComputesAndStores(t *testing.T) {
	t.Parallel()

	repo := &mockObservationRepo{observations: seriesObservations("MSFT", 60)}
	history := &mockForecastHistory{}
	redisStub := newFakeRedis()
	svc := NewForecastService(testTracer, repo, history, redisStub, 0, 0)

	got, err := svc.Forecast(context.Background(), "MSFT")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Ticker != "MSFT" {
		t.Fatalf("expected ticker echoed, got %q", got.Ticker)
	}
	if _, ok := redisStub.data["forecast:MSFT"]; !ok {
		t.Fatal("forecast not cached")
	}
	if history.insertCalls != 1 {
		t.Fatalf("expected 1 history insert, got %d", history.insertCalls)
	}
	if history.lastInsert.Next != got.Next || history.lastInsert.Month != got.Month {
		t.Fatalf("history row does not match result: %+v vs %+v", history.lastInsert, got)
	}
}

func TestForecastService_ForecastShortSeries(t *testing.T) {
	t.Parallel()

	repo := &mockObservationRepo{observations: seriesObservations("TSLA", 10)}
	svc := NewForecastService(testTracer, repo, &mockForecastHistory{}, nil, 0, 0)

	_, err := svc.Forecast(context.Background(), "TSLA")
	var ierr *mlerr.InsufficientDataError
	if !errors.As(err, &ierr) {
		t.Fatalf("expected InsufficientDataError, got %v", err)
	}
}

func TestForecastService_ForecastRepoError(t *testing.T) {
	t.Parallel()

	repo := &mockObservationRepo{listErr: errors.New("db down")}
	svc := NewForecastService(testTracer, repo, &mockForecastHistory{}, nil, 0, 0)

	if _, err := svc.Forecast(context.Background(), "AAPL"); err == nil {
		t.Fatal("expected repository error to propagate")
	}
}

func TestForecastService_History(t *testing.T) {
	t.Parallel()

	history := &mockForecastHistory{
		listResp: []domain.DropForecast{{Ticker: "AAPL", Next: "1.0"}},
	}
	svc := NewForecastService(testTracer, &mockObservationRepo{}, history, nil, 0, 0)

	rows, err := svc.History(context.Background(), "AAPL", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 || rows[0].Ticker != "AAPL" {
		t.Fatalf("unexpected history rows: %+v", rows)
	}
	if history.lastListLimit != 10 {
		t.Fatalf("expected limit passed through, got %d", history.lastListLimit)
	}
}

type mockObservationRepo struct {
	observations []domain.DailyObservation
	listErr      error
	listCalls    int
	lastTicker   string
}

func (m *mockObservationRepo) ListObservations(ctx context.Context, ticker string, since time.Time) ([]domain.DailyObservation, error) {
	m.listCalls++
	m.lastTicker = ticker
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.observations, nil
}

type mockForecastHistory struct {
	listResp      []domain.DropForecast
	listErr       error
	insertErr     error
	insertCalls   int
	lastInsert    domain.DropForecast
	lastListLimit int
}

func (m *mockForecastHistory) InsertForecast(ctx context.Context, f domain.DropForecast) (*domain.DropForecast, error) {
	m.insertCalls++
	m.lastInsert = f
	if m.insertErr != nil {
		return nil, m.insertErr
	}
	out := f
	out.ID = int64(m.insertCalls)
	return &out, nil
}

func (m *mockForecastHistory) ListForecasts(ctx context.Context, ticker string, limit int) ([]domain.DropForecast, error) {
	m.lastListLimit = limit
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.listResp, nil
}

type fakeRedis struct {
	data   map[string][]byte
	setErr error
	getErr error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: make(map[string][]byte)}
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	if f.setErr != nil {
		return redis.NewStatusResult("", f.setErr)
	}
	switch v := value.(type) {
	case []byte:
		f.data[key] = append([]byte(nil), v...)
	case string:
		f.data[key] = []byte(v)
	default:
		bytes, _ := json.Marshal(v)
		f.data[key] = bytes
	}
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	if f.getErr != nil {
		return redis.NewStringResult("", f.getErr)
	}
	if v, ok := f.data[key]; ok {
		return redis.NewStringResult(string(v), nil)
	}
	return redis.NewStringResult("", redis.Nil)
}
