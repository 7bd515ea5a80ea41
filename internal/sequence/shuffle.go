package sequence

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/ajmeyer/rotation/internal/library"
	"github.com/ajmeyer/rotation/internal/shared"
)

// weightFloor keeps every weight strictly positive even for the
// minimum-scored item.
const weightFloor = 0.01

// DaySeed derives the resample seed from the calendar date, so repeated
// runs within the same day reproduce the same order.
func DaySeed(now time.Time) int64 {
	year, month, day := now.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Unix() / 86400
}

// weight computes an item's selection weight: distance above the minimum
// score raised to a floor, scaled up with overdue pressure, then halved for
// downranked items or doubled for favorites (downranking wins when both
// apply).
func weight(it *library.Item, minScore float64, cfg library.ScoringConfig) (float64, error) {
	w := it.Score - minScore + weightFloor
	w *= 1 + it.Overdue
	if cfg.IsDownranked(it) {
		w /= 2
	} else if it.Favorite {
		w *= 2
	}
	if w <= 0 {
		return 0, fmt.Errorf("%w: non-positive weight %f for %q", shared.ErrInvalidData, w, it.Display())
	}
	return w, nil
}

// Resample returns a permutation of items biased so higher-weight items tend
// to appear earlier, using roulette selection without replacement. The total
// weight is recomputed from the remaining pool on every draw so the scan
// cannot drift; a failed scan still aborts with ErrSelectionFailed rather
// than emitting a short permutation.
func Resample(items []*library.Item, cfg library.ScoringConfig, seed int64) ([]*library.Item, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: nothing to resample", shared.ErrEmptyInput)
	}

	minScore := items[0].Score
	for _, it := range items[1:] {
		if it.Score < minScore {
			minScore = it.Score
		}
	}

	remaining := make([]*library.Item, len(items))
	copy(remaining, items)
	weights := make([]float64, len(items))
	for i, it := range remaining {
		w, err := weight(it, minScore, cfg)
		if err != nil {
			return nil, err
		}
		weights[i] = w
	}

	rng := rand.New(rand.NewSource(seed))
	ordered := make([]*library.Item, 0, len(items))
	for len(remaining) > 0 {
		total := 0.0
		for _, w := range weights {
			total += w
		}
		picked := pick(weights, rng.Float64()*total)
		if picked < 0 {
			return nil, fmt.Errorf("%w: roulette scan exhausted %d candidates", shared.ErrSelectionFailed, len(remaining))
		}
		ordered = append(ordered, remaining[picked])
		remaining = append(remaining[:picked], remaining[picked+1:]...)
		weights = append(weights[:picked], weights[picked+1:]...)
	}

	return ordered, nil
}

// pick scans weights in order, subtracting each from r until it drops to
// zero or below, and returns that index. Returns -1 when the scan exhausts
// every weight without landing.
func pick(weights []float64, r float64) int {
	for i, w := range weights {
		r -= w
		if r <= 0 {
			return i
		}
	}
	return -1
}
