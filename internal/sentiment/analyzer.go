// Package sentiment scores news headlines into the positive/negative word
// counts and category label the modeling pipeline consumes.
package sentiment

import "strings"

// Analyzer is an explicitly constructed, caller-owned scorer. It holds only
// its keyword lists, so instances are cheap and safe to share.
type Analyzer struct {
	positive []string
	negative []string
}

func NewAnalyzer() *Analyzer {
	return &Analyzer{
		positive: []string{
			"beat", "beats", "surge", "rally", "growth", "record", "upgrade",
			"profit", "gain", "gains", "strong", "soar", "buy", "outperform",
			"breakout", "recover", "bullish",
		},
		negative: []string{
			"miss", "misses", "drop", "plunge", "decline", "downgrade", "loss",
			"losses", "weak", "fall", "falls", "sell", "lawsuit", "probe",
			"recall", "crash", "bearish", "cut", "layoff", "layoffs",
		},
	}
}

// Score counts positive and negative keyword hits in one headline. Matching
// is case-insensitive on whole words.
func (a *Analyzer) Score(headline string) (positive, negative float64) {
	for _, word := range tokenize(headline) {
		if contains(a.positive, word) {
			positive++
		}
		if contains(a.negative, word) {
			negative++
		}
	}
	return positive, negative
}

// Summarize scores a batch of headlines and aggregates the counts into one
// daily summary. The category is POS when positive counts dominate, NEG when
// negative counts dominate, and NEUT otherwise (including no headlines).
func (a *Analyzer) Summarize(headlines []string) Summary {
	var pos, neg float64
	for _, h := range headlines {
		p, n := a.Score(h)
		pos += p
		neg += n
	}

	category := "NEUT"
	if pos > neg {
		category = "POS"
	} else if neg > pos {
		category = "NEG"
	}
	return Summary{Positive: pos, Negative: neg, Category: category}
}

// Summary is one day's aggregated sentiment for a ticker.
type Summary struct {
	Positive float64
	Negative float64
	Category string
}

func tokenize(headline string) []string {
	headline = strings.ToLower(strings.TrimSpace(headline))
	return strings.FieldsFunc(headline, func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	})
}

func contains(words []string, w string) bool {
	for _, candidate := range words {
		if candidate == w {
			return true
		}
	}
	return false
}
