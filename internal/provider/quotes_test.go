package provider

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"go.opentelemetry.io/otel/trace"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func TestQuoteProviderFetchDaily(t *testing.T) {
	p := NewQuoteProvider(trace.NewNoopTracerProvider().Tracer("test"))
	p.client = &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		if got := req.URL.Query().Get("s"); got != "aapl.us" {
			t.Fatalf("unexpected symbol param: %s", got)
		}
		csv := "Date,Open,High,Low,Close,Volume\n" +
			"2026-08-20,230.1,233.0,229.5,232.4,51230000\n" +
			"2026-08-21,232.5,234.2,231.0,231.9,48110000\n"
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(bytes.NewBufferString(csv)),
			Header:     make(http.Header),
		}, nil
	})}

	obs, err := p.FetchDaily(context.Background(), "aapl", time.Now().AddDate(0, -3, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(obs) != 2 {
		t.Fatalf("expected 2 observations, got %d", len(obs))
	}
	if obs[0].Ticker != "AAPL" {
		t.Fatalf("expected uppercased ticker, got %s", obs[0].Ticker)
	}
	if obs[0].Close != 232.4 || obs[0].Volume != 51230000 {
		t.Fatalf("unexpected first observation: %+v", obs[0])
	}
	if !obs[0].Day.Before(obs[1].Day) {
		t.Fatal("observations must be oldest first")
	}
}

func TestQuoteProviderSkipsMalformedRows(t *testing.T) {
	p := NewQuoteProvider(trace.NewNoopTracerProvider().Tracer("test"))
	p.client = &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		csv := "Date,Open,High,Low,Close,Volume\n" +
			"not-a-date,1,1,1,1,1\n" +
			"2026-08-21,232.5,234.2,231.0,231.9,48110000\n"
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(bytes.NewBufferString(csv)),
			Header:     make(http.Header),
		}, nil
	})}

	obs, err := p.FetchDaily(context.Background(), "MSFT", time.Now().AddDate(0, -1, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(obs) != 1 {
		t.Fatalf("expected malformed row skipped, got %d rows", len(obs))
	}
}

func TestQuoteProviderErrorStatus(t *testing.T) {
	p := NewQuoteProvider(trace.NewNoopTracerProvider().Tracer("test"))
	p.client = &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusTooManyRequests,
			Body:       io.NopCloser(strings.NewReader("slow down")),
			Header:     make(http.Header),
		}, nil
	})}

	if _, err := p.FetchDaily(context.Background(), "AAPL", time.Now()); err == nil {
		t.Fatal("expected error on non-200 status")
	}
}

func TestQuoteProviderRequiresTicker(t *testing.T) {
	p := NewQuoteProvider(trace.NewNoopTracerProvider().Tracer("test"))
	if _, err := p.FetchDaily(context.Background(), "  ", time.Now()); err == nil {
		t.Fatal("expected error for blank ticker")
	}
}
