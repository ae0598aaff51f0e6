package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"downcast/internal/domain"
	"downcast/internal/sentiment"

	"go.opentelemetry.io/otel/trace"
)

// QuoteProvider fetches a ticker's daily close/volume history.
type QuoteProvider interface {
	FetchDaily(ctx context.Context, ticker string, since time.Time) ([]domain.DailyObservation, error)
}

// NewsProvider fetches recent headlines for sentiment scoring.
type NewsProvider interface {
	FetchHeadlines(ctx context.Context, ticker string, maxItems int) ([]domain.NewsHeadline, error)
}

// SentimentRefiner optionally re-labels a day's headlines with an LLM.
type SentimentRefiner interface {
	Refine(ctx context.Context, ticker string, headlines []string) (string, error)
}

// ObservationWriter persists the assembled daily series.
type ObservationWriter interface {
	UpsertObservations(ctx context.Context, observations []domain.DailyObservation) error
}

// IngestService pulls quotes and headlines for a ticker, scores sentiment,
// and stores the combined daily observations.
type IngestService struct {
	tracer       trace.Tracer
	quotes       QuoteProvider
	news         NewsProvider
	analyzer     *sentiment.Analyzer
	refiner      SentimentRefiner
	repo         ObservationWriter
	historyDays  int
	newsMaxItems int
}

func NewIngestService(
	tracer trace.Tracer,
	quotes QuoteProvider,
	news NewsProvider,
	analyzer *sentiment.Analyzer,
	refiner SentimentRefiner,
	repo ObservationWriter,
	historyDays int,
	newsMaxItems int,
) *IngestService {
	if historyDays <= 0 {
		historyDays = 180
	}
	if newsMaxItems <= 0 {
		newsMaxItems = 40
	}
	return &IngestService{
		tracer:       tracer,
		quotes:       quotes,
		news:         news,
		analyzer:     analyzer,
		refiner:      refiner,
		repo:         repo,
		historyDays:  historyDays,
		newsMaxItems: newsMaxItems,
	}
}

// Ingest refreshes one ticker: daily quotes for the history window plus the
// latest headlines scored into sentiment counts. Today's observation carries
// the headline counts; earlier days keep whatever sentiment was stored.
func (s *IngestService) Ingest(ctx context.Context, ticker string) error {
	ctx, span := s.tracer.Start(ctx, "ingest-service.ingest")
	defer span.End()

	since := time.Now().UTC().AddDate(0, 0, -s.historyDays)
	observations, err := s.quotes.FetchDaily(ctx, ticker, since)
	if err != nil {
		return fmt.Errorf("fetch quotes for %s: %w", ticker, err)
	}
	if len(observations) == 0 {
		return fmt.Errorf("no quote history for %s", ticker)
	}

	summary := s.scoreNews(ctx, ticker)
	latest := &observations[len(observations)-1]
	latest.Positive = summary.Positive
	latest.Negative = summary.Negative
	latest.Sentiment = summary.Category

	if err := s.repo.UpsertObservations(ctx, observations); err != nil {
		return fmt.Errorf("store observations for %s: %w", ticker, err)
	}

	log.Printf("Ingested %d observations for %s (sentiment %s)", len(observations), ticker, summary.Category)
	return nil
}

// scoreNews is best-effort: a failed feed or refiner leaves the day neutral.
func (s *IngestService) scoreNews(ctx context.Context, ticker string) sentiment.Summary {
	if s.news == nil || s.analyzer == nil {
		return sentiment.Summary{Category: domain.SentimentNeutral}
	}

	headlines, err := s.news.FetchHeadlines(ctx, ticker, s.newsMaxItems)
	if err != nil {
		log.Printf("news fetch error for %s: %v", ticker, err)
		return sentiment.Summary{Category: domain.SentimentNeutral}
	}

	titles := make([]string, len(headlines))
	for i, h := range headlines {
		titles[i] = h.Title
	}
	summary := s.analyzer.Summarize(titles)

	if s.refiner != nil && len(titles) > 0 {
		if category, err := s.refiner.Refine(ctx, ticker, titles); err == nil {
			summary.Category = category
		}
	}
	return summary
}
