package scaler

import (
	"errors"
	"math"
	"testing"

	"downcast/internal/ml/mlerr"
)

func TestFitUsesPopulationStd(t *testing.T) {
	s := New()
	if err := s.Fit([][]float64{{1}, {2}, {3}}); err != nil {
		t.Fatalf("fit failed: %v", err)
	}
	want := math.Sqrt(2.0 / 3.0)
	if got := s.Std()[0]; math.Abs(got-want) > 1e-12 {
		t.Fatalf("expected population std %.10f, got %.10f", want, got)
	}
	if got := s.Mean()[0]; got != 2 {
		t.Fatalf("expected mean 2, got %v", got)
	}
}

func TestTransformedColumnsAreStandardized(t *testing.T) {
	s := New()
	x := [][]float64{{1, 5}, {2, 9}, {3, 1}, {4, 7}}
	z, err := s.FitTransform(x)
	if err != nil {
		t.Fatalf("fit-transform failed: %v", err)
	}
	for j := 0; j < 2; j++ {
		var sum, sumSq float64
		for i := range z {
			sum += z[i][j]
			sumSq += z[i][j] * z[i][j]
		}
		mean := sum / float64(len(z))
		std := math.Sqrt(sumSq/float64(len(z)) - mean*mean)
		if math.Abs(mean) > 1e-10 {
			t.Fatalf("column %d: expected mean ~0, got %v", j, mean)
		}
		if math.Abs(std-1) > 1e-10 {
			t.Fatalf("column %d: expected std ~1, got %v", j, std)
		}
	}
}

func TestConstantColumnTransformsToZero(t *testing.T) {
	s := New()
	z, err := s.FitTransform([][]float64{{7, 1}, {7, 2}, {7, 3}})
	if err != nil {
		t.Fatalf("fit-transform failed: %v", err)
	}
	for i := range z {
		if z[i][0] != 0.0 {
			t.Fatalf("constant column must transform to exactly 0.0, got %v", z[i][0])
		}
	}
}

func TestInverseTransformRoundTrip(t *testing.T) {
	s := New()
	x := [][]float64{{1.5, 200}, {2.25, 180}, {3.75, 240}, {0.5, 210}}
	z, err := s.FitTransform(x)
	if err != nil {
		t.Fatalf("fit-transform failed: %v", err)
	}
	back, err := s.InverseTransform(z)
	if err != nil {
		t.Fatalf("inverse transform failed: %v", err)
	}
	for i := range x {
		for j := range x[i] {
			if math.Abs(back[i][j]-x[i][j]) > 1e-9 {
				t.Fatalf("round trip mismatch at (%d,%d): %v vs %v", i, j, back[i][j], x[i][j])
			}
		}
	}
}

func TestTransformBeforeFitIsStateError(t *testing.T) {
	s := New()
	_, err := s.Transform([][]float64{{1}})
	var serr *mlerr.StateError
	if !errors.As(err, &serr) {
		t.Fatalf("expected StateError, got %v", err)
	}
	_, err = s.InverseTransform([][]float64{{1}})
	if !errors.As(err, &serr) {
		t.Fatalf("expected StateError for inverse transform, got %v", err)
	}
}

func TestValidationFailures(t *testing.T) {
	var verr *mlerr.ValidationError

	s := New()
	if err := s.Fit([][]float64{}); !errors.As(err, &verr) {
		t.Fatalf("empty matrix: expected ValidationError, got %v", err)
	}
	if err := s.Fit([][]float64{{1, 2}, {3}}); !errors.As(err, &verr) {
		t.Fatalf("ragged matrix: expected ValidationError, got %v", err)
	}
	if err := s.Fit([][]float64{{1}, {math.NaN()}}); !errors.As(err, &verr) {
		t.Fatalf("NaN value: expected ValidationError, got %v", err)
	}
	if err := s.Fit([][]float64{{math.Inf(1)}}); !errors.As(err, &verr) {
		t.Fatalf("Inf value: expected ValidationError, got %v", err)
	}

	if err := s.Fit([][]float64{{1, 2}, {3, 4}}); err != nil {
		t.Fatalf("fit failed: %v", err)
	}
	if _, err := s.Transform([][]float64{{1, 2, 3}}); !errors.As(err, &verr) {
		t.Fatalf("column mismatch: expected ValidationError, got %v", err)
	}
}
