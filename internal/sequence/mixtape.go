package sequence

import (
	"sort"
	"time"

	"github.com/ajmeyer/rotation/internal/library"
)

// MixtapeOpts bounds the mixtape cut. Zero windows disable the
// corresponding exclusion.
type MixtapeOpts struct {
	Now        time.Time
	Budget     time.Duration
	SkipWindow time.Duration
	PlayWindow time.Duration
}

// Mixtape cuts a short album-shaped playlist from an already-resampled
// order: drop recently skipped or played items, keep one item per track
// number while a duration budget lasts, sort the keepers by track number,
// and close with a single track-zero bonus item when one survived the
// window filters. Track zero never joins the main sequence.
func Mixtape(ordered []*library.Item, opts MixtapeOpts) []*library.Item {
	var master []*library.Item
	for _, it := range ordered {
		if withinWindow(opts.Now, it.LastSkipped, opts.SkipWindow) {
			continue
		}
		if withinWindow(opts.Now, it.LastPlayed, opts.PlayWindow) {
			continue
		}
		master = append(master, it)
	}

	seen := make(map[int]bool)
	var mixtape []*library.Item
	var length time.Duration
	for _, it := range master {
		if it.TrackNumber == 0 || seen[it.TrackNumber] {
			continue
		}
		seen[it.TrackNumber] = true
		if length+it.Duration > opts.Budget {
			continue
		}
		mixtape = append(mixtape, it)
		length += it.Duration
	}
	if len(mixtape) == 0 {
		return nil
	}

	sort.SliceStable(mixtape, func(i, j int) bool {
		return mixtape[i].TrackNumber < mixtape[j].TrackNumber
	})
	for _, it := range master {
		if it.TrackNumber == 0 {
			mixtape = append(mixtape, it)
			break
		}
	}
	return mixtape
}

// withinWindow reports whether ts falls inside the trailing window before
// now. A nil timestamp never does.
func withinWindow(now time.Time, ts *time.Time, window time.Duration) bool {
	if ts == nil || window <= 0 {
		return false
	}
	return now.Sub(*ts) <= window
}
