package features

import (
	"errors"
	"testing"

	"downcast/internal/ml/mlerr"
)

func TestBuildColumnOrder(t *testing.T) {
	matrix, err := Build(
		[]float64{150.5},
		[]float64{1_000_000},
		[]float64{3},
		[]float64{1},
		[]string{"POS"},
	)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if len(matrix) != 1 || len(matrix[0]) != NumFeatures {
		t.Fatalf("expected 1x%d matrix, got %dx%d", NumFeatures, len(matrix), len(matrix[0]))
	}
	want := []float64{150.5, 1_000_000, 3, 1, 1, 0, 0, 0}
	for j, v := range want {
		if matrix[0][j] != v {
			t.Fatalf("column %d: expected %v, got %v", j, v, matrix[0][j])
		}
	}
}

func TestBuildSentimentOneHot(t *testing.T) {
	cases := []struct {
		label string
		col   int
	}{
		{"POS", ColSentimentPos},
		{"pos", ColSentimentPos},
		{"  NEG ", ColSentimentNeg},
		{"NEUT", ColSentimentNeut},
		{"neutral", ColSentimentNeut},
		{"", ColSentimentUnknown},
		{"garbage", ColSentimentUnknown},
		{"POSITIVE", ColSentimentUnknown},
	}
	for _, tc := range cases {
		matrix, err := Build([]float64{1}, []float64{1}, []float64{0}, []float64{0}, []string{tc.label})
		if err != nil {
			t.Fatalf("build failed for %q: %v", tc.label, err)
		}
		hot := 0
		for j := ColSentimentPos; j <= ColSentimentUnknown; j++ {
			switch matrix[0][j] {
			case 1:
				hot++
				if j != tc.col {
					t.Fatalf("label %q: expected column %d hot, got %d", tc.label, tc.col, j)
				}
			case 0:
			default:
				t.Fatalf("label %q: one-hot column %d has value %v", tc.label, j, matrix[0][j])
			}
		}
		if hot != 1 {
			t.Fatalf("label %q: expected exactly one hot column, got %d", tc.label, hot)
		}
	}
}

func TestBuildLengthMismatch(t *testing.T) {
	_, err := Build([]float64{1, 2}, []float64{1}, []float64{0, 0}, []float64{0, 0}, []string{"POS", "NEG"})
	var verr *mlerr.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestTruncate(t *testing.T) {
	matrix, err := Build(
		[]float64{1, 2, 3},
		[]float64{1, 2, 3},
		[]float64{0, 0, 0},
		[]float64{0, 0, 0},
		[]string{"POS", "NEG", "NEUT"},
	)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if got := Truncate(matrix, 2); len(got) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got))
	}
	if got := Truncate(matrix, 10); len(got) != 3 {
		t.Fatalf("truncate beyond length should keep all rows, got %d", len(got))
	}
	if got := Truncate(matrix, -1); len(got) != 0 {
		t.Fatalf("negative truncate should yield no rows, got %d", len(got))
	}
}
