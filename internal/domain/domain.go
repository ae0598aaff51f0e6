package domain

import "time"

// Sentiment categories attached to a day's headlines. Anything else is
// treated as unknown downstream.
const (
	SentimentPositive = "POS"
	SentimentNegative = "NEG"
	SentimentNeutral  = "NEUT"
)

// DailyObservation is one trading day for a ticker: the close, the volume,
// and the sentiment summary derived from that day's headlines.
type DailyObservation struct {
	Ticker    string    `json:"ticker"`
	Day       time.Time `json:"day"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
	Positive  float64   `json:"positive"`
	Negative  float64   `json:"negative"`
	Sentiment string    `json:"sentiment"`
}

// DropForecast is the stored record of one prediction run. Next, Week and
// Month hold one-decimal class strings ("0.0" or "1.0").
type DropForecast struct {
	ID        int64     `json:"id"`
	Ticker    string    `json:"ticker"`
	Next      string    `json:"next"`
	Week      string    `json:"week"`
	Month     string    `json:"month"`
	CreatedAt time.Time `json:"created_at"`
}

// NewsHeadline is a single headline pulled from a ticker's news feed before
// sentiment scoring.
type NewsHeadline struct {
	Ticker      string    `json:"ticker"`
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	PublishedAt time.Time `json:"published_at"`
}

// SentimentSummary aggregates the scored headlines for one ticker-day.
type SentimentSummary struct {
	Positive float64 `json:"positive"`
	Negative float64 `json:"negative"`
	Category string  `json:"category"`
}

// DefaultTickers lists the symbols the ingest poller keeps warm.
var DefaultTickers = []string{
	"AAPL", "MSFT", "GOOGL", "AMZN", "NVDA",
	"META", "TSLA", "JPM", "V", "UNH",
}
