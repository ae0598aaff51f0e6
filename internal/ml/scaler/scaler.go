// Package scaler standardizes feature matrices to zero mean and unit
// variance using population statistics (variance divided by n, not n-1),
// matching the reference pipeline exactly.
package scaler

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"downcast/internal/ml/mlerr"
)

// StandardScaler holds per-column mean and population standard deviation.
// A scaler is a plain owned value: each caller fits its own instance and
// instances are never shared across horizons.
type StandardScaler struct {
	mean   []float64
	std    []float64
	fitted bool
}

func New() *StandardScaler {
	return &StandardScaler{}
}

// Fit computes per-column mean and population std over X.
func (s *StandardScaler) Fit(x [][]float64) error {
	cols, err := checkMatrix(x, 0)
	if err != nil {
		return err
	}

	s.mean = make([]float64, cols)
	s.std = make([]float64, cols)
	column := make([]float64, len(x))
	for j := 0; j < cols; j++ {
		for i := range x {
			column[i] = x[i][j]
		}
		s.mean[j] = stat.Mean(column, nil)
		s.std[j] = stat.PopStdDev(column, nil)
	}
	s.fitted = true
	return nil
}

// Transform standardizes every cell: z = (x - mean) / std. Constant columns
// (std == 0) map to exactly 0.0 rather than dividing by zero.
func (s *StandardScaler) Transform(x [][]float64) ([][]float64, error) {
	if !s.fitted {
		return nil, mlerr.Statef("scaler must be fitted before transform")
	}
	if _, err := checkMatrix(x, len(s.mean)); err != nil {
		return nil, err
	}

	out := make([][]float64, len(x))
	for i := range x {
		row := make([]float64, len(s.mean))
		for j := range row {
			if s.std[j] == 0 {
				row[j] = 0.0
				continue
			}
			row[j] = (x[i][j] - s.mean[j]) / s.std[j]
		}
		out[i] = row
	}
	return out, nil
}

// FitTransform fits the scaler on X and transforms the same matrix.
func (s *StandardScaler) FitTransform(x [][]float64) ([][]float64, error) {
	if err := s.Fit(x); err != nil {
		return nil, err
	}
	return s.Transform(x)
}

// InverseTransform maps standardized values back: x = z*std + mean.
func (s *StandardScaler) InverseTransform(z [][]float64) ([][]float64, error) {
	if !s.fitted {
		return nil, mlerr.Statef("scaler must be fitted before inverse transform")
	}
	if _, err := checkMatrix(z, len(s.mean)); err != nil {
		return nil, err
	}

	out := make([][]float64, len(z))
	for i := range z {
		row := make([]float64, len(s.mean))
		for j := range row {
			row[j] = z[i][j]*s.std[j] + s.mean[j]
		}
		out[i] = row
	}
	return out, nil
}

// Mean returns a copy of the fitted per-column means.
func (s *StandardScaler) Mean() []float64 {
	return append([]float64(nil), s.mean...)
}

// Std returns a copy of the fitted per-column population stds.
func (s *StandardScaler) Std() []float64 {
	return append([]float64(nil), s.std...)
}

// checkMatrix validates shape and finiteness. When wantCols > 0 the matrix
// must have exactly that many columns.
func checkMatrix(x [][]float64, wantCols int) (int, error) {
	if len(x) == 0 {
		return 0, mlerr.Validationf("matrix must not be empty")
	}
	cols := len(x[0])
	if cols == 0 {
		return 0, mlerr.Validationf("matrix rows must not be empty")
	}
	if wantCols > 0 && cols != wantCols {
		return 0, mlerr.Validationf("expected %d columns, got %d", wantCols, cols)
	}
	for i, row := range x {
		if len(row) != cols {
			return 0, mlerr.Validationf("ragged matrix: row %d has %d columns, expected %d", i, len(row), cols)
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return 0, mlerr.Validationf("non-finite value at row %d column %d", i, j)
			}
		}
	}
	return cols, nil
}
