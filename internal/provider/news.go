package provider

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"downcast/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

const yahooFinanceRSSURL = "https://feeds.finance.yahoo.com/rss/2.0/headline"

// NewsProvider fetches recent headlines for a ticker from an RSS feed.
type NewsProvider struct {
	client  *http.Client
	baseURL string
	tracer  trace.Tracer
}

func NewNewsProvider(tracer trace.Tracer) *NewsProvider {
	return &NewsProvider{
		client:  &http.Client{Timeout: 20 * time.Second},
		baseURL: yahooFinanceRSSURL,
		tracer:  tracer,
	}
}

// FetchHeadlines fetches up to maxItems headlines for one ticker, newest
// first as the feed serves them.
func (p *NewsProvider) FetchHeadlines(ctx context.Context, ticker string, maxItems int) ([]domain.NewsHeadline, error) {
	_, span := p.tracer.Start(ctx, "news.fetch-headlines")
	defer span.End()

	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, fmt.Errorf("ticker is required")
	}
	if maxItems <= 0 {
		maxItems = 40
	}

	feedURL := fmt.Sprintf("%s?s=%s&region=US&lang=en-US", p.baseURL, url.QueryEscape(ticker))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/rss+xml, application/xml, text/xml")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("news fetch error %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var rss struct {
		Channel struct {
			Items []struct {
				Title   string `xml:"title"`
				Link    string `xml:"link"`
				PubDate string `xml:"pubDate"`
			} `xml:"item"`
		} `xml:"channel"`
	}
	if err := xml.Unmarshal(body, &rss); err != nil {
		return nil, fmt.Errorf("decode news payload: %w", err)
	}

	items := make([]domain.NewsHeadline, 0, min(maxItems, len(rss.Channel.Items)))
	for i, row := range rss.Channel.Items {
		if i >= maxItems {
			break
		}
		title := sanitizeText(row.Title, 300)
		if title == "" {
			continue
		}
		publishedAt := parseRSSDate(row.PubDate)
		if publishedAt.IsZero() {
			publishedAt = time.Now().UTC()
		}
		items = append(items, domain.NewsHeadline{
			Ticker:      ticker,
			Title:       title,
			Link:        sanitizeText(row.Link, 500),
			PublishedAt: publishedAt,
		})
	}
	return items, nil
}

func parseRSSDate(v string) time.Time {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}
	}
	layouts := []string{time.RFC1123Z, time.RFC1123, time.RFC822Z, time.RFC822, time.RFC3339}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func sanitizeText(v string, maxLen int) string {
	v = strings.Join(strings.Fields(v), " ")
	if len(v) > maxLen {
		v = v[:maxLen]
	}
	return strings.TrimSpace(v)
}
