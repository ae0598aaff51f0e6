package provider

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"downcast/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

const stooqBaseURL = "https://stooq.com/q/d/l"

// QuoteProvider fetches daily OHLCV history from the Stooq free CSV endpoint.
type QuoteProvider struct {
	client  *http.Client
	baseURL string
	tracer  trace.Tracer
	limiter *RateLimiter
}

// NewQuoteProvider creates a provider with built-in rate limiting.
// Rate limited to 10 requests per minute (one token every 6 seconds).
func NewQuoteProvider(tracer trace.Tracer) *QuoteProvider {
	return &QuoteProvider{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: stooqBaseURL,
		tracer:  tracer,
		limiter: NewRateLimiter(10, 6*time.Second),
	}
}

// FetchDaily fetches the daily close/volume series for one ticker, oldest
// first. Stooq expects US tickers suffixed with ".us".
func (p *QuoteProvider) FetchDaily(ctx context.Context, ticker string, since time.Time) ([]domain.DailyObservation, error) {
	_, span := p.tracer.Start(ctx, "quotes.fetch-daily")
	defer span.End()

	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, fmt.Errorf("ticker is required")
	}

	url := fmt.Sprintf("%s/?s=%s.us&i=d&d1=%s&d2=%s",
		p.baseURL,
		strings.ToLower(ticker),
		since.Format("20060102"),
		time.Now().UTC().Format("20060102"))

	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/csv")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("quote fetch error %d: %s", resp.StatusCode, string(body))
	}

	return parseDailyCSV(ticker, resp.Body)
}

// parseDailyCSV decodes Stooq's Date,Open,High,Low,Close,Volume rows.
// Rows with unparseable dates or prices are skipped rather than failing the
// whole series.
func parseDailyCSV(ticker string, r io.Reader) ([]domain.DailyObservation, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("decode quote csv: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("no quote rows for %s", ticker)
	}

	header := records[0]
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	dateIdx, okD := col["date"]
	closeIdx, okC := col["close"]
	volumeIdx, okV := col["volume"]
	if !okD || !okC || !okV {
		return nil, fmt.Errorf("unexpected quote csv header for %s: %v", ticker, header)
	}

	out := make([]domain.DailyObservation, 0, len(records)-1)
	for _, row := range records[1:] {
		if len(row) <= volumeIdx || len(row) <= closeIdx || len(row) <= dateIdx {
			continue
		}
		day, err := time.Parse("2006-01-02", strings.TrimSpace(row[dateIdx]))
		if err != nil {
			continue
		}
		closePrice, err := strconv.ParseFloat(strings.TrimSpace(row[closeIdx]), 64)
		if err != nil {
			continue
		}
		volume, err := strconv.ParseFloat(strings.TrimSpace(row[volumeIdx]), 64)
		if err != nil {
			volume = 0
		}
		out = append(out, domain.DailyObservation{
			Ticker:    ticker,
			Day:       day.UTC(),
			Close:     closePrice,
			Volume:    volume,
			Sentiment: domain.SentimentNeutral,
		})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no parseable quote rows for %s", ticker)
	}
	return out, nil
}
