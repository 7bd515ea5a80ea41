package tasks

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ajmeyer/rotation/internal/library"
	"github.com/ajmeyer/rotation/internal/sequence"
	"github.com/ajmeyer/rotation/internal/stats"
)

// Insight is one named report over the current library state.
type Insight struct {
	Name  string // file name stem under the insights directory
	Title string // console heading
	Lines []string
}

// Insights computes all insight reports over the configured source
// playlist. Empty reports are omitted.
func (e *Engine) Insights(ctx context.Context, now time.Time) ([]Insight, error) {
	if now.IsZero() {
		now = time.Now()
	}

	items, cfg, err := e.Collection(ctx, now)
	if err != nil {
		return nil, err
	}

	totals, err := stats.NewGroupSummary(e.config.Library.SourcePlaylist, items)
	if err != nil {
		return nil, err
	}

	shuffled, err := sequence.Resample(items, cfg, sequence.DaySeed(now))
	if err != nil {
		return nil, err
	}

	var insights []Insight
	add := func(name, title string, lines []string) {
		if len(lines) > 0 {
			insights = append(insights, Insight{Name: name, Title: title, Lines: lines})
		}
	}

	add("non_album_artists", "buy their albums", e.nonAlbumArtists(items, totals.Score.Mean))
	add("negative_score_tracks", "why... i can't even", negativeScores(items))
	add("on_schedule_tracks", "right on schedule", onSchedule(items))
	add("adjusted_scores", "best bang for the buck", adjustedScores(items))
	add("negative_overdue_tracks", "you're early", earlyHighScores(items, totals.Score.Mean))
	add("similar_tracks", "similar to something", similarToFirst(shuffled, cfg))
	add("bit_rate_tracks", "high bit rates", highestBitRates(items))
	add("size_tracks", "largest sizes", largestSizes(items))
	add("long_time_tracks", "long time no see", longestUnheard(items))
	add("mixtape", "i made you a mixtape", e.mixtape(now, shuffled))
	add("meander", "wander off for a bit", e.meander(items, cfg, now))

	return insights, nil
}

// WriteInsights saves the full, untruncated reports under the output
// directory's insights/ subdirectory, one text file each.
func (e *Engine) WriteInsights(insights []Insight) error {
	dir := filepath.Join(e.store.Dir(), "insights")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create insights directory: %w", err)
	}
	for _, insight := range insights {
		path := filepath.Join(dir, insight.Name+".txt")
		if err := os.WriteFile(path, []byte(strings.Join(insight.Lines, "\n")), 0o644); err != nil {
			return fmt.Errorf("failed to write insight %q: %w", insight.Name, err)
		}
		e.logger.Debug("saved insight", "path", path)
	}
	return nil
}

// strippedArtist drops featuring suffixes so "A feat. B" matches the album
// artist "A".
func strippedArtist(artist string) string {
	for _, marker := range []string{"feat.", "Feat.", "w/"} {
		if idx := strings.Index(artist, marker); idx >= 0 {
			artist = artist[:idx]
		}
	}
	return strings.TrimSpace(artist)
}

// nonAlbumArtists finds artists scoring above the collection mean who have
// no album-artist presence yet.
func (e *Engine) nonAlbumArtists(items []*library.Item, meanScore float64) []string {
	byTrackArtist, err := stats.GroupBy("track_artists", items, func(it *library.Item) []string {
		return []string{it.Artist}
	})
	if err != nil {
		return nil
	}
	albumArtists := make(map[string]bool)
	for _, it := range items {
		albumArtists[it.AlbumArtist] = true
	}

	var lines []string
	for _, g := range byTrackArtist.Groups {
		if albumArtists[strippedArtist(g.Name)] || g.Score.Mean <= meanScore {
			continue
		}
		lines = append(lines, fmt.Sprintf("- %s (%.2f)", g.Name, g.Score.Mean))
	}
	return lines
}

func negativeScores(items []*library.Item) []string {
	var negative []*library.Item
	for _, it := range items {
		if it.Score < 0 {
			negative = append(negative, it)
		}
	}
	sort.SliceStable(negative, func(i, j int) bool { return negative[i].Score < negative[j].Score })

	lines := make([]string, len(negative))
	for i, it := range negative {
		lines[i] = fmt.Sprintf("- %s (%.2f)", it.Display(), it.Score)
	}
	return lines
}

func onSchedule(items []*library.Item) []string {
	sorted := make([]*library.Item, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return math.Abs(sorted[i].Overdue) < math.Abs(sorted[j].Overdue)
	})

	lines := make([]string, 0, len(sorted))
	for _, it := range topPercent(sorted, 1) {
		lines = append(lines, fmt.Sprintf("- %s (%.2f%+.2f days)",
			it.Display(), library.Days(it.TimeBetweenPlays), library.Days(it.OverdueDuration)))
	}
	return lines
}

func adjustedScores(items []*library.Item) []string {
	adjusted := func(it *library.Item) float64 { return it.Score * (1 + it.Overdue) }
	sorted := make([]*library.Item, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool { return adjusted(sorted[i]) > adjusted(sorted[j]) })

	lines := make([]string, 0, len(sorted))
	for _, it := range topPercent(sorted, 1) {
		lines = append(lines, fmt.Sprintf("- %s (%.2f * %.2f = %.2f)",
			it.Display(), it.Score, 1+it.Overdue, adjusted(it)))
	}
	return lines
}

// earlyHighScores lists well-scored items being played ahead of schedule.
func earlyHighScores(items []*library.Item, meanScore float64) []string {
	momentum := func(it *library.Item) float64 { return it.Score * it.Overdue }
	var early []*library.Item
	for _, it := range items {
		if it.Overdue < 0 && it.Score > meanScore {
			early = append(early, it)
		}
	}
	sort.SliceStable(early, func(i, j int) bool { return momentum(early[i]) < momentum(early[j]) })

	lines := make([]string, len(early))
	for i, it := range early {
		lines[i] = fmt.Sprintf("- %s (%.2f * %.2f = %.2f)",
			it.Display(), it.Score, it.Overdue, momentum(it))
	}
	return lines
}

// similarToFirst ranks everything by similarity to the day's top resampled
// pick.
func similarToFirst(shuffled []*library.Item, cfg library.ScoringConfig) []string {
	if len(shuffled) == 0 {
		return nil
	}
	picked := shuffled[0]
	sorted := make([]*library.Item, len(shuffled))
	copy(sorted, shuffled)
	sort.SliceStable(sorted, func(i, j int) bool {
		return library.Similarity(sorted[i], picked, cfg) > library.Similarity(sorted[j], picked, cfg)
	})

	lines := make([]string, len(sorted))
	for i, it := range sorted {
		lines[i] = fmt.Sprintf("- %s (%.2f)", it.Display(), library.Similarity(it, picked, cfg))
	}
	return lines
}

func highestBitRates(items []*library.Item) []string {
	kbps := func(it *library.Item) float64 {
		return (float64(it.Size) * 8 / 1024) / it.Duration.Seconds()
	}
	sorted := make([]*library.Item, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool { return kbps(sorted[i]) > kbps(sorted[j]) })

	lines := make([]string, 0, len(sorted))
	for _, it := range topPercent(sorted, 1) {
		lines = append(lines, fmt.Sprintf("- %s (%.2f kbps)", it.Display(), kbps(it)))
	}
	return lines
}

func largestSizes(items []*library.Item) []string {
	sorted := make([]*library.Item, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Size > sorted[j].Size })

	lines := make([]string, 0, len(sorted))
	for _, it := range topPercent(sorted, 1) {
		lines = append(lines, fmt.Sprintf("- %s (%.2f MB)", it.Display(), float64(it.Size)/1024/1024))
	}
	return lines
}

func longestUnheard(items []*library.Item) []string {
	sorted := make([]*library.Item, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].SinceLastInteraction > sorted[j].SinceLastInteraction
	})

	lines := make([]string, 0, len(sorted))
	for _, it := range topPercent(sorted, 1) {
		lines = append(lines, fmt.Sprintf("- %s (%.2f days)", it.Display(), library.Days(it.SinceLastInteraction)))
	}
	return lines
}

func (e *Engine) mixtape(now time.Time, shuffled []*library.Item) []string {
	mix := sequence.Mixtape(shuffled, sequence.MixtapeOpts{
		Now:        now,
		Budget:     time.Duration(e.config.Mixtape.BudgetMinutes * float64(time.Minute)),
		SkipWindow: time.Duration(e.config.Mixtape.SkipWindowDays * 24 * float64(time.Hour)),
		PlayWindow: time.Duration(e.config.Mixtape.PlayWindowDays * 24 * float64(time.Hour)),
	})

	lines := make([]string, len(mix))
	for i, it := range mix {
		lines[i] = fmt.Sprintf("%d. %s", it.TrackNumber, it.Display())
	}
	return lines
}

func (e *Engine) meander(items []*library.Item, cfg library.ScoringConfig, now time.Time) []string {
	chain, err := sequence.Meander(items, cfg, sequence.DaySeed(now), e.config.Meander.Steps, e.config.Meander.Window)
	if err != nil {
		e.logger.Warn("meander walk failed", "error", err)
		return nil
	}

	lines := make([]string, len(chain))
	for i, it := range chain {
		lines[i] = fmt.Sprintf("%d. %s", i+1, it.Display())
	}
	return lines
}

// topPercent returns the leading slice covering pct percent of the input,
// mirroring the report cutoffs used across insights.
func topPercent(items []*library.Item, pct float64) []*library.Item {
	n := int(float64(len(items)) * pct / 100)
	if n > len(items) {
		n = len(items)
	}
	return items[:n]
}
