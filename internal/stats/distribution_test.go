package stats

import (
	"errors"
	"math"
	"testing"

	"github.com/ajmeyer/rotation/internal/shared"
)

func TestSummarize(t *testing.T) {
	t.Run("rejects empty input", func(t *testing.T) {
		_, err := Summarize(nil)
		if !errors.Is(err, shared.ErrEmptyInput) {
			t.Errorf("expected ErrEmptyInput, got %v", err)
		}
	})

	t.Run("odd count median", func(t *testing.T) {
		s, err := Summarize([]float64{2, 4, 9})
		if err != nil {
			t.Fatalf("Summarize failed: %v", err)
		}
		if s.Median != 4 {
			t.Errorf("median = %v, want 4", s.Median)
		}
	})

	t.Run("even count median", func(t *testing.T) {
		s, err := Summarize([]float64{2, 4, 9, 11})
		if err != nil {
			t.Fatalf("Summarize failed: %v", err)
		}
		if s.Median != 6.5 {
			t.Errorf("median = %v, want 6.5", s.Median)
		}
	})

	t.Run("mean times count equals total", func(t *testing.T) {
		values := []float64{1.5, 2.25, 3.75, 10, -4, 0.125}
		s, err := Summarize(values)
		if err != nil {
			t.Fatalf("Summarize failed: %v", err)
		}
		if diff := math.Abs(s.Mean*float64(s.Count) - s.Total); diff > 1e-9 {
			t.Errorf("mean*count differs from total by %v", diff)
		}
	})

	t.Run("population standard deviation", func(t *testing.T) {
		s, err := Summarize([]float64{2, 4, 4, 4, 5, 5, 7, 9})
		if err != nil {
			t.Fatalf("Summarize failed: %v", err)
		}
		if s.StdDev != 2 {
			t.Errorf("std dev = %v, want 2 (population form)", s.StdDev)
		}
	})

	t.Run("summary fields", func(t *testing.T) {
		s, err := Summarize([]float64{3, 1, 4, 1, 5})
		if err != nil {
			t.Fatalf("Summarize failed: %v", err)
		}
		if s.Count != 5 || s.Total != 14 || s.Max != 5 || s.Min != 1 {
			t.Errorf("unexpected summary: %+v", s)
		}
		if s.Median != 3 || s.MedianTotal != 15 {
			t.Errorf("median = %v, median total = %v, want 3 / 15", s.Median, s.MedianTotal)
		}
		if s.Mode != 1 {
			t.Errorf("mode = %v, want 1", s.Mode)
		}
	})

	t.Run("mode ties break by first occurrence", func(t *testing.T) {
		tests := []struct {
			name   string
			values []float64
			want   float64
		}{
			{"clear winner", []float64{5, 2, 2, 7}, 2},
			{"tie keeps earlier value", []float64{7, 7, 2, 2}, 7},
			{"tie order flipped", []float64{2, 7, 7, 2}, 2},
			{"all unique keeps first", []float64{9, 1, 3}, 9},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				s, err := Summarize(tt.values)
				if err != nil {
					t.Fatalf("Summarize failed: %v", err)
				}
				if s.Mode != tt.want {
					t.Errorf("mode = %v, want %v", s.Mode, tt.want)
				}
			})
		}
	})
}
