package library

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/ajmeyer/rotation/internal/shared"
)

// Built-in calibration defaults, used when no prior totals snapshot exists.
const (
	DefaultMedianDuration = 3*time.Minute + 48*time.Second + 100*time.Millisecond
	DefaultScoreBase      = 1.591
	// DefaultTargetMedianScore is the midpoint of the 0.05..5.0 star scale.
	DefaultTargetMedianScore = (5.0 + 0.05) / 2
)

// Calibration holds the aggregate values from a prior run's totals snapshot
// that recalibrate scoring for the current run.
type Calibration struct {
	MedianDurationMinutes float64
	MedianNetRate         float64
}

// ScoringOpts contains construction options for a ScoringConfig.
// Zero values fall back to the built-in defaults.
type ScoringOpts struct {
	TargetMedianScore   float64
	ScoreBase           float64
	SimilaritySharpness float64
	DownrankedArtists   []string
	DownrankedGenres    []string
}

// ScoringConfig is the run-scoped, immutable calibration state for scoring,
// similarity, and resampling. Construct one per run with [NewScoringConfig]
// and pass it explicitly; never share one instance across runs.
type ScoringConfig struct {
	Now                 time.Time
	MedianDuration      time.Duration
	ScoreBase           float64
	SimilaritySharpness float64
	TargetMedianScore   float64

	downrankedArtists map[string]struct{}
	downrankedGenres  map[string]struct{}
}

// NewScoringConfig builds a ScoringConfig for one run. cal may be nil, in
// which case the built-in defaults are used; when present, the median
// duration comes straight from the snapshot and the score base is solved so
// that the prior median net rate maps onto the target median score:
// base = (1 + m)^(1/target), or 1 + m when the target is 1.
func NewScoringConfig(now time.Time, cal *Calibration, opts ScoringOpts) ScoringConfig {
	cfg := ScoringConfig{
		Now:                 now,
		MedianDuration:      DefaultMedianDuration,
		ScoreBase:           DefaultScoreBase,
		SimilaritySharpness: DefaultScoreBase,
		TargetMedianScore:   DefaultTargetMedianScore,
		downrankedArtists:   foldSet(opts.DownrankedArtists),
		downrankedGenres:    foldSet(opts.DownrankedGenres),
	}
	if opts.TargetMedianScore != 0 {
		cfg.TargetMedianScore = opts.TargetMedianScore
	}
	if opts.ScoreBase != 0 {
		cfg.ScoreBase = opts.ScoreBase
	}
	if cal != nil {
		if cal.MedianDurationMinutes > 0 {
			cfg.MedianDuration = time.Duration(cal.MedianDurationMinutes * float64(time.Minute))
		}
		if closeTo(cfg.TargetMedianScore, 1.0) {
			cfg.ScoreBase = 1 + cal.MedianNetRate
		} else {
			cfg.ScoreBase = math.Pow(1+cal.MedianNetRate, 1/cfg.TargetMedianScore)
		}
	}
	if opts.SimilaritySharpness != 0 {
		cfg.SimilaritySharpness = opts.SimilaritySharpness
	} else {
		cfg.SimilaritySharpness = cfg.ScoreBase
	}
	return cfg
}

// IsDownranked reports whether the item's genre or album artist is in the
// down-ranked sets, or any down-ranked artist name appears within the item's
// primary artist. Matching is case-folded.
func (cfg ScoringConfig) IsDownranked(it *Item) bool {
	if _, ok := cfg.downrankedGenres[strings.ToLower(it.Genre)]; ok {
		return true
	}
	if _, ok := cfg.downrankedArtists[strings.ToLower(it.AlbumArtist)]; ok {
		return true
	}
	artist := strings.ToLower(it.Artist)
	for name := range cfg.downrankedArtists {
		if strings.Contains(artist, name) {
			return true
		}
	}
	return false
}

// Enrich computes all of an item's derived fields from its raw counters and
// timestamps. It is deterministic given the item and config, and rejects
// items whose data cannot produce a meaningful score.
func Enrich(it *Item, cfg ScoringConfig) error {
	it.SinceAdded = cfg.Now.Sub(it.Added)
	if it.SinceAdded <= 0 {
		return fmt.Errorf("%w: %q added at or after now (%s)", shared.ErrInvalidData, it.Display(), it.Added)
	}
	ageYears := Years(it.SinceAdded)

	it.SinceLastPlayed = sinceOrNever(cfg.Now, it.LastPlayed)
	it.SinceLastSkipped = sinceOrNever(cfg.Now, it.LastSkipped)
	it.SinceLastInteraction = min(it.SinceLastPlayed, it.SinceLastSkipped)

	it.PlayRate = float64(it.PlayCount) / ageYears
	it.SkipRate = float64(it.SkipCount) / ageYears
	it.ListenRate = time.Duration(float64(it.Duration) * float64(it.PlayCount) / ageYears)
	normListenRate := float64(it.ListenRate) / float64(cfg.MedianDuration)
	it.NetRate = (it.PlayRate + normListenRate - it.SkipRate) / 2

	if 1+it.NetRate <= 0 {
		return fmt.Errorf("%w: %q net rate %.3f leaves nothing to score", shared.ErrInvalidData, it.Display(), it.NetRate)
	}
	it.Score = math.Log(1+it.NetRate) / math.Log(cfg.ScoreBase)

	if it.NetRate > 0 {
		between := float64(OneYear) / it.NetRate
		if between > float64(NeverHorizon) {
			between = float64(NeverHorizon)
		}
		it.TimeBetweenPlays = time.Duration(between)
	} else {
		it.TimeBetweenPlays = NeverHorizon
	}
	it.OverdueDuration = it.SinceLastInteraction - it.TimeBetweenPlays
	it.Overdue = float64(it.OverdueDuration) / float64(it.TimeBetweenPlays)

	return nil
}

// EnrichAll runs Enrich over a whole collection, stopping at the first
// invalid item.
func EnrichAll(items []*Item, cfg ScoringConfig) error {
	for _, it := range items {
		if err := Enrich(it, cfg); err != nil {
			return err
		}
	}
	return nil
}

// sinceOrNever returns the elapsed time since ts, or NeverHorizon when the
// interaction never happened.
func sinceOrNever(now time.Time, ts *time.Time) time.Duration {
	if ts == nil {
		return NeverHorizon
	}
	return now.Sub(*ts)
}

func foldSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[strings.ToLower(n)] = struct{}{}
	}
	return set
}

func closeTo(a, b float64) bool {
	return math.Abs(a-b) <= 1e-9*math.Max(math.Abs(a), math.Abs(b))
}
