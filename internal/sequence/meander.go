package sequence

import (
	"fmt"
	"math/rand"

	"github.com/ajmeyer/rotation/internal/library"
	"github.com/ajmeyer/rotation/internal/shared"
)

// Meander walks a similarity-guided chain through items: a random start,
// then up to steps−1 greedy hops, each picking the remaining item most
// similar to the last accepted one. Items sharing an album, album artist,
// or artist with any of the last window accepted items are skipped, so the
// chain drifts instead of circling one artist. The walk ends early when no
// candidate survives the locality filter.
func Meander(items []*library.Item, cfg library.ScoringConfig, seed int64, steps, window int) ([]*library.Item, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: nothing to meander through", shared.ErrEmptyInput)
	}
	if steps < 1 {
		return nil, fmt.Errorf("%w: step budget %d", shared.ErrInvalidInput, steps)
	}

	pool := make([]*library.Item, len(items))
	copy(pool, items)

	rng := rand.New(rand.NewSource(seed))
	start := rng.Intn(len(pool))
	chain := []*library.Item{pool[start]}
	pool = append(pool[:start], pool[start+1:]...)

	for len(chain) < steps {
		recent := chain
		if len(recent) > window {
			recent = recent[len(recent)-window:]
		}
		last := chain[len(chain)-1]

		best := -1
		bestSim := -1.0
		for i, candidate := range pool {
			if tooClose(candidate, recent) {
				continue
			}
			if sim := library.Similarity(last, candidate, cfg); sim > bestSim {
				best = i
				bestSim = sim
			}
		}
		if best < 0 {
			break
		}
		chain = append(chain, pool[best])
		pool = append(pool[:best], pool[best+1:]...)
	}

	return chain, nil
}

func tooClose(candidate *library.Item, recent []*library.Item) bool {
	for _, it := range recent {
		if candidate.Album == it.Album ||
			candidate.AlbumArtist == it.AlbumArtist ||
			candidate.Artist == it.Artist {
			return true
		}
	}
	return false
}
