package job

import (
	"context"
	"log"
	"time"

	"downcast/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

// TickerIngester refreshes one ticker's quotes and sentiment.
type TickerIngester interface {
	Ingest(ctx context.Context, ticker string) error
}

// IngestPoller periodically re-ingests every tracked ticker so stored series
// stay close to the market.
type IngestPoller struct {
	tracer       trace.Tracer
	ingester     TickerIngester
	tickers      []string
	pollInterval time.Duration
}

func NewIngestPoller(tracer trace.Tracer, ingester TickerIngester, tickers []string, pollIntervalSecs int) *IngestPoller {
	if len(tickers) == 0 {
		tickers = domain.DefaultTickers
	}
	if pollIntervalSecs <= 0 {
		pollIntervalSecs = 3600
	}
	return &IngestPoller{
		tracer:       tracer,
		ingester:     ingester,
		tickers:      tickers,
		pollInterval: time.Duration(pollIntervalSecs) * time.Second,
	}
}

// Start runs the polling loop. Blocks until ctx is cancelled.
func (p *IngestPoller) Start(ctx context.Context) {
	log.Println("Ingest poller starting...")

	// Run immediately on start
	p.ingestAll(ctx)

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Ingest poller stopped")
			return
		case <-ticker.C:
			p.ingestAll(ctx)
		}
	}
}

func (p *IngestPoller) ingestAll(ctx context.Context) {
	ctx, span := p.tracer.Start(ctx, "ingest-poller.ingest-all")
	defer span.End()

	for _, ticker := range p.tickers {
		if ctx.Err() != nil {
			return
		}
		if err := p.ingester.Ingest(ctx, ticker); err != nil {
			log.Printf("ingest error for %s: %v", ticker, err)
		}
	}
}
