// Package labels derives binary drop labels from a closing-price series.
package labels

import "downcast/internal/ml/mlerr"

// Generate returns one label per index i in [0, n-h): 1 when the close at i
// is strictly greater than the close h days later (the price dropped), else 0.
// The result has length max(0, n-h); an empty result means the series is too
// short for the horizon and is the caller's signal, not an error.
func Generate(closes []float64, horizon int) ([]float64, error) {
	if horizon < 1 {
		return nil, mlerr.Validationf("horizon must be >= 1")
	}
	n := len(closes)
	if n <= horizon {
		return []float64{}, nil
	}
	out := make([]float64, n-horizon)
	for i := 0; i < n-horizon; i++ {
		if closes[i] > closes[i+horizon] {
			out[i] = 1
		}
	}
	return out, nil
}
