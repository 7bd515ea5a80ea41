package stats

import (
	"fmt"
	"math"
	"sort"

	"github.com/ajmeyer/rotation/internal/shared"
)

// Summary holds the distributional rollup of one numeric field over a group
// of items. Immutable once built.
type Summary struct {
	Count       int     `json:"-"`
	Total       float64 `json:"total"`
	Mean        float64 `json:"avg"`
	Median      float64 `json:"median"`
	MedianTotal float64 `json:"median_total"`
	Max         float64 `json:"max"`
	Min         float64 `json:"min"`
	StdDev      float64 `json:"std_dev"`
	Mode        float64 `json:"mode"`
}

// Summarize builds a Summary from a non-empty ordered collection of values.
// The standard deviation is the population form (denominator = count); the
// mode breaks frequency ties by first occurrence in the supplied order.
func Summarize(values []float64) (Summary, error) {
	count := len(values)
	if count == 0 {
		return Summary{}, fmt.Errorf("%w: no values to summarize", shared.ErrEmptyInput)
	}

	s := Summary{Count: count, Max: values[0], Min: values[0]}
	for _, v := range values {
		s.Total += v
		s.Max = math.Max(s.Max, v)
		s.Min = math.Min(s.Min, v)
	}
	s.Mean = s.Total / float64(count)
	s.Median = median(values)
	s.MedianTotal = s.Median * float64(count)

	variance := 0.0
	for _, v := range values {
		variance += (v - s.Mean) * (v - s.Mean)
	}
	s.StdDev = math.Sqrt(variance / float64(count))
	s.Mode = mode(values)

	return s, nil
}

// median of an odd-count input is the middle sorted value; even-count is the
// mean of the two central values.
func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	half := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[half]
	}
	return (sorted[half-1] + sorted[half]) / 2
}

// mode returns the most frequent value, resolving ties in favor of the value
// seen first in the input order.
func mode(values []float64) float64 {
	counts := make(map[float64]int, len(values))
	for _, v := range values {
		counts[v]++
	}
	best := values[0]
	bestCount := counts[best]
	for _, v := range values {
		if counts[v] > bestCount {
			best = v
			bestCount = counts[v]
		}
	}
	return best
}
