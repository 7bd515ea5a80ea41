package library

import (
	"math"
	"strings"
	"time"
)

// Similarity cutoffs for the proximity features. Differences at or beyond a
// cutoff contribute zero.
const (
	yearCutoff  = 5
	addedCutoff = 6 * OneMonth
)

// Similarity returns a score in [0, 1] describing how alike two enriched
// items are. It is symmetric and reflexive: Similarity(a, a, cfg) == 1.
//
// Each feature is individually normalized to [0, 1]; the features are then
// combined with a softmax-weighted mean so near-complete matches count
// disproportionately more than a handful of partial ones.
func Similarity(a, b *Item, cfg ScoringConfig) float64 {
	vec := []float64{
		boolFeature(a.Album == b.Album),
		boolFeature(a.AlbumArtist == b.AlbumArtist),
		boolFeature(a.Genre == b.Genre),
		proximity(math.Abs(float64(a.Year-b.Year)), yearCutoff),
		proximity(math.Abs(float64(a.Added.Sub(b.Added))), float64(addedCutoff)),
		boolFeature(sameDay(a.LastPlayed, b.LastPlayed)),
		playlistOverlap(a.Playlists, b.Playlists),
		boolFeature(a.Compilation == b.Compilation),
		proximity(math.Abs(float64(a.Duration-b.Duration)), float64(cfg.MedianDuration)),
		proximity(math.Abs(a.Score-b.Score), cfg.TargetMedianScore),
		proximity(math.Abs(a.Overdue-b.Overdue), 1.0),
		boolFeature(sameCasing(a.Title, b.Title)),
		boolFeature(a.TrackNumber == b.TrackNumber),
	}

	alpha := cfg.SimilaritySharpness
	n := float64(len(vec))
	expSum := 0.0
	for _, v := range vec {
		expSum += math.Exp(alpha * v)
	}
	maxExpSum := n * math.Exp(alpha)
	minExpSum := n // n * exp(0)
	return (expSum - minExpSum) / (maxExpSum - minExpSum)
}

func boolFeature(match bool) float64 {
	if match {
		return 1
	}
	return 0
}

// proximity decays linearly from 1 at zero difference to 0 at the cutoff.
func proximity(diff, cutoff float64) float64 {
	if diff >= cutoff {
		return 0
	}
	return 1 - diff/cutoff
}

// sameDay reports whether two optional timestamps fall on the same calendar
// day. Two never-played items count as matching.
func sameDay(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// playlistOverlap is the Jaccard similarity of the two membership sets,
// zero when both are empty.
func playlistOverlap(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	set := make(map[string]bool, len(a))
	for _, p := range a {
		set[p] = true
	}
	union := len(set)
	common := 0
	seen := make(map[string]bool, len(b))
	for _, p := range b {
		if seen[p] {
			continue
		}
		seen[p] = true
		if set[p] {
			common++
		} else {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return float64(common) / float64(union)
}

// sameCasing reports whether two titles share the same all-lower/all-upper
// styling.
func sameCasing(a, b string) bool {
	return isLower(a) == isLower(b) && isUpper(a) == isUpper(b)
}

func isLower(s string) bool {
	return s == strings.ToLower(s) && s != strings.ToUpper(s)
}

func isUpper(s string) bool {
	return s == strings.ToUpper(s) && s != strings.ToLower(s)
}
