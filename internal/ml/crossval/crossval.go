// Package crossval provides deterministic k-fold cross-validation for the
// downside classifier. Folds are sequential and never shuffled so identical
// inputs always produce identical diagnostics.
package crossval

import (
	"gonum.org/v1/gonum/stat"

	"downcast/internal/ml/mlerr"
	"downcast/internal/ml/models/logreg"
)

// DefaultFolds is the fold count used by the forecasting pipeline.
const DefaultFolds = 8

// Fold pairs disjoint train and test index sets. Across all folds every row
// index in [0, n) appears in exactly one test set.
type Fold struct {
	Train []int
	Test  []int
}

// Split partitions [0, n) into k sequential folds. Fold i tests rows
// [i*size, (i+1)*size) with size = floor(n/k); the last fold's test range
// extends to n to absorb the remainder.
func Split(n, k int) ([]Fold, error) {
	if k < 2 {
		return nil, mlerr.Validationf("fold count must be >= 2, got %d", k)
	}
	if k > n {
		return nil, mlerr.Validationf("fold count %d exceeds sample count %d", k, n)
	}

	size := n / k
	folds := make([]Fold, k)
	for i := 0; i < k; i++ {
		start := i * size
		end := start + size
		if i == k-1 {
			end = n
		}
		test := make([]int, 0, end-start)
		train := make([]int, 0, n-(end-start))
		for idx := 0; idx < n; idx++ {
			if idx >= start && idx < end {
				test = append(test, idx)
			} else {
				train = append(train, idx)
			}
		}
		folds[i] = Fold{Train: train, Test: test}
	}
	return folds, nil
}

// Result carries the per-fold accuracies and their summary statistics.
// Std is the population standard deviation of the scores.
type Result struct {
	Scores []float64
	Mean   float64
	Std    float64
}

// CrossValidate trains a fresh logistic model per fold with the pipeline's
// fixed hyperparameters and scores it on that fold's test rows.
func CrossValidate(x [][]float64, y []float64, k int) (Result, error) {
	if len(x) != len(y) {
		return Result{}, mlerr.Validationf("feature rows (%d) and labels (%d) must have equal lengths", len(x), len(y))
	}
	folds, err := Split(len(x), k)
	if err != nil {
		return Result{}, err
	}

	scores := make([]float64, 0, len(folds))
	for _, fold := range folds {
		trainX := gather(x, fold.Train)
		trainY := gatherLabels(y, fold.Train)
		testX := gather(x, fold.Test)
		testY := gatherLabels(y, fold.Test)

		model := logreg.New()
		if err := model.Fit(trainX, trainY, logreg.DefaultOptions()); err != nil {
			return Result{}, err
		}
		score, err := model.Score(testX, testY)
		if err != nil {
			return Result{}, err
		}
		scores = append(scores, score)
	}

	return Result{
		Scores: scores,
		Mean:   stat.Mean(scores, nil),
		Std:    stat.PopStdDev(scores, nil),
	}, nil
}

// LogisticRegressionCV runs cross-validation for diagnostics and then trains
// one final model on the entire dataset. The CV scores never influence the
// final model's parameters.
type LogisticRegressionCV struct {
	folds int
	cv    Result
	model *logreg.Model
}

func NewLogisticRegressionCV(folds int) *LogisticRegressionCV {
	if folds <= 0 {
		folds = DefaultFolds
	}
	return &LogisticRegressionCV{folds: folds}
}

func (c *LogisticRegressionCV) FitCV(x [][]float64, y []float64) error {
	cv, err := CrossValidate(x, y, c.folds)
	if err != nil {
		return err
	}
	c.cv = cv

	model := logreg.New()
	if err := model.Fit(x, y, logreg.DefaultOptions()); err != nil {
		return err
	}
	c.model = model
	return nil
}

func (c *LogisticRegressionCV) CVResults() Result { return c.cv }

func (c *LogisticRegressionCV) MeanCVScore() float64 { return c.cv.Mean }

func (c *LogisticRegressionCV) PredictProba(x [][]float64) ([][]float64, error) {
	if c.model == nil {
		return nil, mlerr.Statef("cv model must be fitted before predicting")
	}
	return c.model.PredictProba(x)
}

func (c *LogisticRegressionCV) Predict(x [][]float64) ([]float64, error) {
	if c.model == nil {
		return nil, mlerr.Statef("cv model must be fitted before predicting")
	}
	return c.model.Predict(x)
}

func gather(x [][]float64, idx []int) [][]float64 {
	out := make([][]float64, len(idx))
	for i, v := range idx {
		out[i] = x[v]
	}
	return out
}

func gatherLabels(y []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for i, v := range idx {
		out[i] = y[v]
	}
	return out
}
