// Package features builds the fixed 8-column numeric matrix consumed by the
// downside classifier from raw daily observation arrays.
package features

import (
	"strings"

	"downcast/internal/ml/mlerr"
)

// Column order of every feature vector. The four trailing columns are a
// one-hot encoding of the day's sentiment category.
const (
	ColClose = iota
	ColVolume
	ColPositive
	ColNegative
	ColSentimentPos
	ColSentimentNeg
	ColSentimentNeut
	ColSentimentUnknown

	NumFeatures = 8
)

// Build assembles an n x 8 feature matrix from five parallel arrays, one row
// per trading day in input order. All arrays must share the same length.
func Build(closes, volumes, positives, negatives []float64, sentiments []string) ([][]float64, error) {
	n := len(closes)
	if len(volumes) != n || len(positives) != n || len(negatives) != n || len(sentiments) != n {
		return nil, mlerr.Validationf(
			"input arrays must have equal lengths: close=%d volume=%d positive=%d negative=%d sentiment=%d",
			n, len(volumes), len(positives), len(negatives), len(sentiments),
		)
	}

	matrix := make([][]float64, n)
	for i := 0; i < n; i++ {
		row := make([]float64, NumFeatures)
		row[ColClose] = closes[i]
		row[ColVolume] = volumes[i]
		row[ColPositive] = positives[i]
		row[ColNegative] = negatives[i]
		pos, neg, neut, unknown := encodeSentiment(sentiments[i])
		row[ColSentimentPos] = pos
		row[ColSentimentNeg] = neg
		row[ColSentimentNeut] = neut
		row[ColSentimentUnknown] = unknown
		matrix[i] = row
	}
	return matrix, nil
}

// Truncate returns the first n rows of the matrix without copying row data.
// Rows are never reordered; trailing rows are dropped when a horizon has no
// known future close for them.
func Truncate(matrix [][]float64, n int) [][]float64 {
	if n >= len(matrix) {
		return matrix
	}
	if n < 0 {
		n = 0
	}
	return matrix[:n]
}

// encodeSentiment maps a sentiment category label to its one-hot columns.
// Labels are trimmed and compared case-insensitively; anything unrecognized
// (including the empty string) counts as unknown.
func encodeSentiment(label string) (pos, neg, neut, unknown float64) {
	switch strings.ToUpper(strings.TrimSpace(label)) {
	case "POS":
		return 1, 0, 0, 0
	case "NEG":
		return 0, 1, 0, 0
	case "NEUT", "NEUTRAL":
		return 0, 0, 1, 0
	default:
		return 0, 0, 0, 1
	}
}
