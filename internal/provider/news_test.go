package provider

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"testing"

	"go.opentelemetry.io/otel/trace"
)

func TestNewsProviderFetchHeadlines(t *testing.T) {
	p := NewNewsProvider(trace.NewNoopTracerProvider().Tracer("test"))
	p.client = &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		if got := req.URL.Query().Get("s"); got != "AAPL" {
			t.Fatalf("unexpected ticker param: %s", got)
		}
		xml := `<?xml version="1.0"?><rss version="2.0"><channel><item><title>  Apple shares   surge on earnings beat </title><link>https://news.example/aapl</link><pubDate>Fri, 21 Aug 2026 10:00:00 +0000</pubDate></item><item><title></title></item></channel></rss>`
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(bytes.NewBufferString(xml)),
			Header:     make(http.Header),
		}, nil
	})}

	items, err := p.FetchHeadlines(context.Background(), "aapl", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 headline (empty title skipped), got %d", len(items))
	}
	if items[0].Title != "Apple shares surge on earnings beat" {
		t.Fatalf("expected whitespace collapsed, got %q", items[0].Title)
	}
	if items[0].Ticker != "AAPL" {
		t.Fatalf("expected uppercased ticker, got %s", items[0].Ticker)
	}
	if items[0].PublishedAt.IsZero() {
		t.Fatal("expected parsed publish date")
	}
}

func TestNewsProviderCapsItems(t *testing.T) {
	p := NewNewsProvider(trace.NewNoopTracerProvider().Tracer("test"))
	p.client = &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		xml := `<?xml version="1.0"?><rss version="2.0"><channel>` +
			`<item><title>one</title></item>` +
			`<item><title>two</title></item>` +
			`<item><title>three</title></item>` +
			`</channel></rss>`
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(bytes.NewBufferString(xml)),
			Header:     make(http.Header),
		}, nil
	})}

	items, err := p.FetchHeadlines(context.Background(), "MSFT", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 headlines, got %d", len(items))
	}
}

func TestNewsProviderErrorStatus(t *testing.T) {
	p := NewNewsProvider(trace.NewNoopTracerProvider().Tracer("test"))
	p.client = &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusBadGateway,
			Body:       io.NopCloser(bytes.NewBufferString("upstream down")),
			Header:     make(http.Header),
		}, nil
	})}

	if _, err := p.FetchHeadlines(context.Background(), "AAPL", 5); err == nil {
		t.Fatal("expected error on non-200 status")
	}
}
