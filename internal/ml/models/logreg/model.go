// Package logreg implements binary logistic regression trained by batch
// gradient descent with L2 regularization. The update rule, loss clamping,
// and convergence check mirror the reference toolkit so results stay
// reproducible and auditable.
package logreg

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"downcast/internal/ml/mlerr"
)

const probEpsilon = 1e-15

// Options controls a single Fit call. Zero values fall back to the defaults
// used throughout the forecasting pipeline.
type Options struct {
	MaxIterations   int
	LearningRate    float64
	RegularizationC float64
	Tolerance       float64
}

func DefaultOptions() Options {
	return Options{
		MaxIterations:   1000,
		LearningRate:    0.01,
		RegularizationC: 1.0,
		Tolerance:       1e-4,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MaxIterations <= 0 {
		o.MaxIterations = d.MaxIterations
	}
	if o.LearningRate <= 0 {
		o.LearningRate = d.LearningRate
	}
	if o.RegularizationC <= 0 {
		o.RegularizationC = d.RegularizationC
	}
	if o.Tolerance <= 0 {
		o.Tolerance = d.Tolerance
	}
	return o
}

// Model is a plain owned value; every Fit starts from all-zero weights and
// bias, so an instance never carries state between datasets.
type Model struct {
	weights    []float64
	bias       float64
	converged  bool
	iterations int
	fitted     bool
}

func New() *Model {
	return &Model{}
}

// Fit trains on X and binary labels y with batch gradient descent.
// Per iteration: predictions for all rows, mean gradients with the L2 term
// 1/C applied to weights only (never the bias), then one simultaneous
// parameter update. Training stops early once the regularized cross-entropy
// loss changes by less than the tolerance between iterations.
func (m *Model) Fit(x [][]float64, y []float64, opts Options) error {
	if len(x) == 0 {
		return mlerr.Validationf("training data must not be empty")
	}
	if len(x) != len(y) {
		return mlerr.Validationf("feature rows (%d) and labels (%d) must have equal lengths", len(x), len(y))
	}
	opts = opts.withDefaults()

	cols := len(x[0])
	n := float64(len(x))

	m.weights = make([]float64, cols)
	m.bias = 0
	m.converged = false
	m.iterations = 0
	m.fitted = true

	// Flat buffers reused across iterations.
	preds := make([]float64, len(x))
	grads := make([]float64, cols)

	prevLoss := math.Inf(1)
	for iter := 0; iter < opts.MaxIterations; iter++ {
		loss := 0.0
		for i := range x {
			p := Sigmoid(m.bias + floats.Dot(m.weights, x[i]))
			preds[i] = p

			clamped := math.Min(math.Max(p, probEpsilon), 1-probEpsilon)
			if y[i] == 1 {
				loss -= math.Log(clamped)
			} else {
				loss -= math.Log(1 - clamped)
			}
		}
		loss /= n
		penalty := 0.0
		for _, w := range m.weights {
			penalty += w * w
		}
		loss += penalty / (2 * opts.RegularizationC)

		biasGrad := 0.0
		for j := range grads {
			grads[j] = 0
		}
		for i := range x {
			err := preds[i] - y[i]
			biasGrad += err
			for j := range grads {
				grads[j] += err * x[i][j]
			}
		}
		biasGrad /= n
		for j := range grads {
			grads[j] = grads[j]/n + m.weights[j]/opts.RegularizationC
		}

		m.bias -= opts.LearningRate * biasGrad
		for j := range m.weights {
			m.weights[j] -= opts.LearningRate * grads[j]
		}
		m.iterations = iter + 1

		if math.Abs(prevLoss-loss) < opts.Tolerance {
			m.converged = true
			break
		}
		prevLoss = loss
	}
	return nil
}

// PredictProba returns [P(y=0), P(y=1)] for every row.
func (m *Model) PredictProba(x [][]float64) ([][]float64, error) {
	if !m.fitted {
		return nil, mlerr.Statef("model must be fitted before predicting")
	}
	out := make([][]float64, len(x))
	for i, row := range x {
		if len(row) != len(m.weights) {
			return nil, mlerr.Validationf("row %d has %d features, model was fitted with %d", i, len(row), len(m.weights))
		}
		p := Sigmoid(m.bias + floats.Dot(m.weights, row))
		out[i] = []float64{1 - p, p}
	}
	return out, nil
}

// Predict returns class 1 for every row with P(y=1) >= 0.5, else class 0.
func (m *Model) Predict(x [][]float64) ([]float64, error) {
	probs, err := m.PredictProba(x)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(probs))
	for i := range probs {
		if probs[i][1] >= 0.5 {
			out[i] = 1
		}
	}
	return out, nil
}

// Score returns the fraction of rows whose predicted class equals the label.
func (m *Model) Score(x [][]float64, y []float64) (float64, error) {
	if len(x) != len(y) {
		return 0, mlerr.Validationf("feature rows (%d) and labels (%d) must have equal lengths", len(x), len(y))
	}
	if len(x) == 0 {
		return 0, mlerr.Validationf("scoring data must not be empty")
	}
	preds, err := m.Predict(x)
	if err != nil {
		return 0, err
	}
	correct := 0
	for i := range preds {
		if preds[i] == y[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(preds)), nil
}

func (m *Model) Weights() []float64 {
	return append([]float64(nil), m.weights...)
}

func (m *Model) Bias() float64 { return m.bias }

// Converged reports whether the last Fit stopped early on the tolerance.
func (m *Model) Converged() bool { return m.converged }

// Iterations reports how many gradient steps the last Fit actually ran.
func (m *Model) Iterations() int { return m.iterations }

// Sigmoid is the logistic function with an overflow guard: inputs beyond
// +/-500 saturate to exactly 1 or 0 so math.Exp never overflows.
func Sigmoid(z float64) float64 {
	if z > 500 {
		return 1.0
	}
	if z < -500 {
		return 0.0
	}
	return 1.0 / (1.0 + math.Exp(-z))
}
