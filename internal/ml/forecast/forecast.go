// Package forecast orchestrates the downside-prediction pipeline: one shared
// feature matrix, then three independent horizon runs (next day, two weeks,
// one month) each with its own labels, scaler, and cross-validated model.
package forecast

import (
	"errors"
	"fmt"

	"downcast/internal/ml/crossval"
	"downcast/internal/ml/features"
	"downcast/internal/ml/labels"
	"downcast/internal/ml/mlerr"
	"downcast/internal/ml/scaler"
)

// Trading-day horizons for each forward-looking prediction.
const (
	HorizonNext  = 1
	HorizonWeek  = 10
	HorizonMonth = 21
)

// MinObservations is the smallest series the pipeline accepts: the 8-fold
// split needs at least 8 labeled rows after dropping the 21-day month
// horizon, plus the most recent row being predicted.
const MinObservations = 29

// Input holds the parallel daily series for one ticker, oldest first.
// All five slices must share one length.
type Input struct {
	Ticker     string
	Closes     []float64
	Volumes    []float64
	Positives  []float64
	Negatives  []float64
	Sentiments []string
}

// Result reports, per horizon, whether the close is predicted to drop.
// Each field is a one-decimal string: "1.0" means a predicted drop,
// "0.0" means no drop.
type Result struct {
	Ticker string `json:"ticker"`
	Next   string `json:"next"`
	Week   string `json:"week"`
	Month  string `json:"month"`
}

// Predict runs the full pipeline for one ticker. Each horizon generates its
// own labels, truncates the shared feature matrix to the labeled range, fits
// a fresh scaler and a fresh cross-validated model, and classifies the most
// recent observation scaled with that horizon's own parameters. Horizons
// never share scalers or models.
func Predict(in Input) (Result, error) {
	if in.Ticker == "" {
		return Result{}, mlerr.Validationf("Ticker symbol is required")
	}
	n := len(in.Closes)
	if n < MinObservations {
		return Result{}, mlerr.InsufficientDataf("need at least %d observations for %s, got %d", MinObservations, in.Ticker, n)
	}

	matrix, err := features.Build(in.Closes, in.Volumes, in.Positives, in.Negatives, in.Sentiments)
	if err != nil {
		return Result{}, err
	}
	latest := matrix[len(matrix)-1]

	horizons := []struct {
		name string
		days int
	}{
		{"next", HorizonNext},
		{"week", HorizonWeek},
		{"month", HorizonMonth},
	}

	out := Result{Ticker: in.Ticker}
	for _, h := range horizons {
		pred, err := predictHorizon(matrix, latest, in.Closes, h.days)
		if err != nil {
			var insufficient *mlerr.InsufficientDataError
			if errors.As(err, &insufficient) {
				return Result{}, mlerr.InsufficientDataf("not enough history for the %s horizon (%d days)", h.name, h.days)
			}
			return Result{}, err
		}
		formatted := fmt.Sprintf("%.1f", pred)
		switch h.name {
		case "next":
			out.Next = formatted
		case "week":
			out.Week = formatted
		case "month":
			out.Month = formatted
		}
	}
	return out, nil
}

// predictHorizon runs one horizon's pipeline and returns the predicted class
// (0 or 1) for the latest row.
func predictHorizon(matrix [][]float64, latest []float64, closes []float64, horizon int) (float64, error) {
	y, err := labels.Generate(closes, horizon)
	if err != nil {
		return 0, err
	}
	if len(y) == 0 {
		return 0, mlerr.InsufficientDataf("horizon %d produced no labels", horizon)
	}

	// Trailing rows have no known future close, so they carry no label.
	truncated := features.Truncate(matrix, len(y))

	sc := scaler.New()
	scaled, err := sc.FitTransform(truncated)
	if err != nil {
		return 0, err
	}

	model := crossval.NewLogisticRegressionCV(crossval.DefaultFolds)
	if err := model.FitCV(scaled, y); err != nil {
		return 0, err
	}

	scaledLatest, err := sc.Transform([][]float64{latest})
	if err != nil {
		return 0, err
	}
	preds, err := model.Predict(scaledLatest)
	if err != nil {
		return 0, err
	}
	return preds[0], nil
}
