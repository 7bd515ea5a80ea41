package library

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/ajmeyer/rotation/internal/shared"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func testItem() *Item {
	added := testNow.Add(-2 * OneYear)
	played := testNow.Add(-10 * OneDay)
	skipped := testNow.Add(-40 * OneDay)
	return &Item{
		ID:          1,
		Title:       "Golden Hour",
		Artist:      "Test Artist",
		Album:       "Test Album",
		AlbumArtist: "Test Artist",
		Genre:       "Indie",
		Year:        2019,
		TrackNumber: 3,
		Duration:    4 * time.Minute,
		Size:        9 << 20,
		PlayCount:   40,
		SkipCount:   4,
		Rating:      80,
		Added:       added,
		LastPlayed:  &played,
		LastSkipped: &skipped,
		Playlists:   []string{"Favorites", "Road Trip"},
	}
}

func TestEnrich(t *testing.T) {
	cfg := NewScoringConfig(testNow, nil, ScoringOpts{})

	t.Run("derives rates and score", func(t *testing.T) {
		it := testItem()
		if err := Enrich(it, cfg); err != nil {
			t.Fatalf("Enrich failed: %v", err)
		}

		if got, want := it.PlayRate, 20.0; math.Abs(got-want) > 1e-9 {
			t.Errorf("play rate = %v, want %v", got, want)
		}
		if got, want := it.SkipRate, 2.0; math.Abs(got-want) > 1e-9 {
			t.Errorf("skip rate = %v, want %v", got, want)
		}
		// 40 plays x 4 min over 2 years = 80 min/year
		if got, want := Minutes(it.ListenRate), 80.0; math.Abs(got-want) > 1e-6 {
			t.Errorf("listen rate = %v min/year, want %v", got, want)
		}
		wantNet := (20.0 + 80.0/Minutes(DefaultMedianDuration) - 2.0) / 2
		if math.Abs(it.NetRate-wantNet) > 1e-9 {
			t.Errorf("net rate = %v, want %v", it.NetRate, wantNet)
		}
		wantScore := math.Log(1+wantNet) / math.Log(DefaultScoreBase)
		if math.Abs(it.Score-wantScore) > 1e-9 {
			t.Errorf("score = %v, want %v", it.Score, wantScore)
		}
		if it.TimeBetweenPlays <= 0 || it.TimeBetweenPlays >= NeverHorizon {
			t.Errorf("time between plays = %v, want a practical interval", it.TimeBetweenPlays)
		}
		if it.SinceLastInteraction != it.SinceLastPlayed {
			t.Errorf("since last interaction = %v, want most recent (played) %v",
				it.SinceLastInteraction, it.SinceLastPlayed)
		}
	})

	t.Run("rejects non-positive age", func(t *testing.T) {
		it := testItem()
		it.Added = testNow.Add(time.Hour)
		err := Enrich(it, cfg)
		if !errors.Is(err, shared.ErrInvalidData) {
			t.Errorf("expected ErrInvalidData, got %v", err)
		}
	})

	t.Run("never interacted uses the horizon", func(t *testing.T) {
		it := testItem()
		it.PlayCount = 0
		it.SkipCount = 0
		it.LastPlayed = nil
		it.LastSkipped = nil
		if err := Enrich(it, cfg); err != nil {
			t.Fatalf("Enrich failed: %v", err)
		}
		if it.SinceLastInteraction != NeverHorizon {
			t.Errorf("since last interaction = %v, want %v", it.SinceLastInteraction, NeverHorizon)
		}
		if it.NetRate != 0 {
			t.Errorf("net rate = %v, want 0", it.NetRate)
		}
		if it.TimeBetweenPlays != NeverHorizon {
			t.Errorf("time between plays = %v, want %v", it.TimeBetweenPlays, NeverHorizon)
		}
		if it.Score != 0 {
			t.Errorf("score = %v, want 0", it.Score)
		}
	})

	t.Run("heavy skipping goes negative but stays scoreable", func(t *testing.T) {
		it := testItem()
		it.PlayCount = 0
		it.SkipCount = 3
		if err := Enrich(it, cfg); err != nil {
			t.Fatalf("Enrich failed: %v", err)
		}
		if it.NetRate >= 0 {
			t.Errorf("net rate = %v, want negative", it.NetRate)
		}
		if it.Score >= 0 {
			t.Errorf("score = %v, want negative", it.Score)
		}
		if it.TimeBetweenPlays != NeverHorizon {
			t.Errorf("time between plays = %v, want horizon", it.TimeBetweenPlays)
		}
		if it.Overdue >= 0 {
			t.Errorf("overdue = %v, want negative against the horizon", it.Overdue)
		}
	})

	t.Run("rejects unscoreable net rate", func(t *testing.T) {
		it := testItem()
		it.PlayCount = 0
		it.SkipCount = 10
		it.Added = testNow.Add(-OneYear)
		err := Enrich(it, cfg)
		if !errors.Is(err, shared.ErrInvalidData) {
			t.Errorf("expected ErrInvalidData for net rate <= -1, got %v", err)
		}
	})
}

func TestScoreMonotonicity(t *testing.T) {
	cfg := NewScoringConfig(testNow, nil, ScoringOpts{})

	base := testItem()
	if err := Enrich(base, cfg); err != nil {
		t.Fatalf("Enrich failed: %v", err)
	}

	t.Run("more plays never lowers the score", func(t *testing.T) {
		prev := base.Score
		prevNet := base.NetRate
		for plays := base.PlayCount + 1; plays < base.PlayCount+20; plays++ {
			it := testItem()
			it.PlayCount = plays
			if err := Enrich(it, cfg); err != nil {
				t.Fatalf("Enrich failed: %v", err)
			}
			if it.NetRate < prevNet || it.Score < prev {
				t.Fatalf("plays=%d: net %v score %v dropped below %v / %v",
					plays, it.NetRate, it.Score, prevNet, prev)
			}
			prev, prevNet = it.Score, it.NetRate
		}
	})

	t.Run("more skips never raises the score", func(t *testing.T) {
		prev := base.Score
		prevNet := base.NetRate
		for skips := base.SkipCount + 1; skips < base.SkipCount+20; skips++ {
			it := testItem()
			it.SkipCount = skips
			if err := Enrich(it, cfg); err != nil {
				t.Fatalf("Enrich failed: %v", err)
			}
			if it.NetRate > prevNet || it.Score > prev {
				t.Fatalf("skips=%d: net %v score %v rose above %v / %v",
					skips, it.NetRate, it.Score, prevNet, prev)
			}
			prev, prevNet = it.Score, it.NetRate
		}
	})
}

func TestNewScoringConfig(t *testing.T) {
	t.Run("defaults without calibration", func(t *testing.T) {
		cfg := NewScoringConfig(testNow, nil, ScoringOpts{})
		if cfg.ScoreBase != DefaultScoreBase {
			t.Errorf("score base = %v, want %v", cfg.ScoreBase, DefaultScoreBase)
		}
		if cfg.MedianDuration != DefaultMedianDuration {
			t.Errorf("median duration = %v, want %v", cfg.MedianDuration, DefaultMedianDuration)
		}
		if cfg.SimilaritySharpness != cfg.ScoreBase {
			t.Errorf("sharpness = %v, want to default to score base %v", cfg.SimilaritySharpness, cfg.ScoreBase)
		}
	})

	t.Run("recalibrates base so the median lands on target", func(t *testing.T) {
		cal := &Calibration{MedianDurationMinutes: 4.2, MedianNetRate: 2.5}
		cfg := NewScoringConfig(testNow, cal, ScoringOpts{})
		// log_base(1 + medianNetRate) should equal the target median score.
		got := math.Log(1+cal.MedianNetRate) / math.Log(cfg.ScoreBase)
		if math.Abs(got-cfg.TargetMedianScore) > 1e-9 {
			t.Errorf("median score after recalibration = %v, want %v", got, cfg.TargetMedianScore)
		}
		if got := Minutes(cfg.MedianDuration); math.Abs(got-4.2) > 1e-9 {
			t.Errorf("median duration = %v min, want 4.2", got)
		}
	})

	t.Run("target of one uses the linear form", func(t *testing.T) {
		cal := &Calibration{MedianNetRate: 1.5}
		cfg := NewScoringConfig(testNow, cal, ScoringOpts{TargetMedianScore: 1.0})
		if math.Abs(cfg.ScoreBase-2.5) > 1e-9 {
			t.Errorf("score base = %v, want 2.5", cfg.ScoreBase)
		}
	})

	t.Run("sharpness can differ from base", func(t *testing.T) {
		cfg := NewScoringConfig(testNow, nil, ScoringOpts{SimilaritySharpness: 3.0})
		if cfg.SimilaritySharpness != 3.0 {
			t.Errorf("sharpness = %v, want 3.0", cfg.SimilaritySharpness)
		}
		if cfg.ScoreBase != DefaultScoreBase {
			t.Errorf("score base = %v, want unchanged default", cfg.ScoreBase)
		}
	})
}

func TestIsDownranked(t *testing.T) {
	cfg := NewScoringConfig(testNow, nil, ScoringOpts{
		DownrankedArtists: []string{"Matt Pond PA", "shakey graves"},
		DownrankedGenres:  []string{"Video Game Music"},
	})

	tests := []struct {
		name string
		mod  func(*Item)
		want bool
	}{
		{"clean item", func(it *Item) {}, false},
		{"genre match is case folded", func(it *Item) { it.Genre = "video game music" }, true},
		{"album artist match", func(it *Item) { it.AlbumArtist = "Shakey Graves" }, true},
		{"artist substring match", func(it *Item) { it.Artist = "Shakey Graves feat. Someone" }, true},
		{"unrelated artist", func(it *Item) { it.Artist = "Another Band" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it := testItem()
			tt.mod(it)
			if got := cfg.IsDownranked(it); got != tt.want {
				t.Errorf("IsDownranked = %v, want %v", got, tt.want)
			}
		})
	}
}
