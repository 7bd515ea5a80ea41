package tasks

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ajmeyer/rotation/internal/library"
	"github.com/ajmeyer/rotation/internal/sequence"
	"github.com/ajmeyer/rotation/internal/shared"
	"github.com/ajmeyer/rotation/internal/stats"
	"github.com/ajmeyer/rotation/internal/store"
)

// Library loads raw item records for a named playlist from the host
// application's export.
type Library interface {
	LoadPlaylist(ctx context.Context, name string) ([]store.SourceRecord, error)
}

// PlaylistWriter replaces the contents of a named playlist with an ordered
// item sequence.
type PlaylistWriter interface {
	ReplacePlaylist(ctx context.Context, name string, items []*library.Item) error
}

// HistoryRecorder persists one run-history row. Optional; a nil recorder
// skips history.
type HistoryRecorder interface {
	RecordRun(run *store.Run) error
}

// Engine orchestrates one update run over the library.
type Engine struct {
	config  *shared.Config
	logger  *log.Logger
	store   *store.Store
	history HistoryRecorder
	library Library
	writer  PlaylistWriter
}

// NewEngine creates an Engine with the provided collaborators. history may
// be nil.
func NewEngine(config *shared.Config, logger *log.Logger, st *store.Store, history HistoryRecorder, lib Library, writer PlaylistWriter) *Engine {
	return &Engine{
		config:  config,
		logger:  logger,
		store:   st,
		history: history,
		library: lib,
		writer:  writer,
	}
}

// UpdateOpts contains per-invocation overrides for an update run.
type UpdateOpts struct {
	Now         time.Time
	DryRun      bool // compute and save snapshots, but do not materialize playlists
	ForceUpdate bool // materialize playlists regardless of the update cadence
}

// UpdateResult summarizes one completed run.
type UpdateResult struct {
	SourcePlaylist string
	Items          []*library.Item // sorted by descending score
	Config         library.ScoringConfig
	Totals         stats.GroupSummary
	Playlists      map[string][]*library.Item
	DiffReports    []string
	Materialized   []string
}

// Update runs the full pipeline: calibrate, load, enrich, rate, favorite,
// generate playlists, materialize, snapshot, record history.
func (e *Engine) Update(ctx context.Context, opts UpdateOpts) (*UpdateResult, error) {
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	source := e.config.Library.SourcePlaylist

	items, cfg, err := e.Collection(ctx, opts.Now)
	if err != nil {
		return nil, err
	}
	e.logger.Info("calibrated", "score_base", fmt.Sprintf("%.3f", cfg.ScoreBase),
		"median_duration", cfg.MedianDuration.Round(time.Millisecond))

	if e.config.Ratings.Update {
		e.logger.Info("assigning rating bins")
		ApplyRatingBins(items)
	}
	if e.config.Favorites.Update {
		e.logger.Info("marking favorites", "top_percent", e.config.Favorites.TopPercent)
		ApplyFavorites(items, e.config.Favorites.TopPercent)
	}

	result := &UpdateResult{
		SourcePlaylist: source,
		Items:          items,
		Config:         cfg,
		Playlists:      make(map[string][]*library.Item),
	}

	if out := e.config.Playlists.Overdue; out.Enabled {
		if out.Name == "" {
			return nil, fmt.Errorf("%w: overdue playlist has no name", shared.ErrInvalidConfig)
		}
		result.Playlists[out.Name] = overduePlaylist(items)
	}
	if out := e.config.Playlists.Shuffle; out.Enabled {
		if out.Name == "" {
			return nil, fmt.Errorf("%w: shuffle playlist has no name", shared.ErrInvalidConfig)
		}
		e.logger.Info("resampling", "items", len(items))
		shuffled, err := sequence.Resample(items, cfg, sequence.DaySeed(opts.Now))
		if err != nil {
			return nil, err
		}
		result.Playlists[out.Name] = shuffled
	}

	for name, playlist := range result.Playlists {
		written, err := e.materialize(ctx, opts, name, playlist)
		if err != nil {
			return nil, err
		}
		if written {
			result.Materialized = append(result.Materialized, name)
		}
	}
	sort.Strings(result.Materialized)

	totals, err := stats.NewGroupSummary(source, items)
	if err != nil {
		return nil, err
	}
	result.Totals = totals

	if err := e.saveSnapshots(result); err != nil {
		return nil, err
	}

	if e.history != nil {
		run := &store.Run{
			CreatedAt:             opts.Now,
			SourcePlaylist:        source,
			ItemCount:             len(items),
			MeanScore:             totals.Score.Mean,
			MedianScore:           totals.Score.Median,
			ScoreBase:             cfg.ScoreBase,
			MedianDurationMinutes: library.Minutes(cfg.MedianDuration),
		}
		if err := e.history.RecordRun(run); err != nil {
			return nil, fmt.Errorf("failed to record run: %w", err)
		}
		e.logger.Debug("recorded run", "id", run.ID)
	}

	return result, nil
}

// Collection loads, validates, and enriches the configured source playlist,
// sorted by descending score.
func (e *Engine) Collection(ctx context.Context, now time.Time) ([]*library.Item, library.ScoringConfig, error) {
	if now.IsZero() {
		now = time.Now()
	}
	source := e.config.Library.SourcePlaylist
	if source == "" {
		return nil, library.ScoringConfig{}, fmt.Errorf("%w: no source playlist configured", shared.ErrInvalidConfig)
	}

	items, cfg, err := e.loadEnriched(ctx, now, source)
	if err != nil {
		return nil, library.ScoringConfig{}, err
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].Score > items[j].Score })
	return items, cfg, nil
}

// loadEnriched builds the run's scoring config from the previous totals
// snapshot (falling back to defaults with a warning when absent), loads the
// source playlist, validates each record, and enriches all items.
func (e *Engine) loadEnriched(ctx context.Context, now time.Time, source string) ([]*library.Item, library.ScoringConfig, error) {
	cal, err := e.store.Calibration(source)
	if errors.Is(err, shared.ErrMissingSnapshot) {
		e.logger.Warn("no calibration snapshot, using defaults", "source", source)
		cal = nil
	} else if err != nil {
		return nil, library.ScoringConfig{}, err
	}

	cfg := library.NewScoringConfig(now, cal, library.ScoringOpts{
		TargetMedianScore:   e.config.Scoring.TargetMedianScore,
		ScoreBase:           e.config.Scoring.ScoreBase,
		SimilaritySharpness: e.config.Scoring.SimilaritySharpness,
		DownrankedArtists:   e.config.Scoring.DownrankedArtists,
		DownrankedGenres:    e.config.Scoring.DownrankedGenres,
	})

	records, err := e.library.LoadPlaylist(ctx, source)
	if err != nil {
		return nil, library.ScoringConfig{}, err
	}
	if len(records) == 0 {
		return nil, library.ScoringConfig{}, fmt.Errorf("%w: playlist %q has no items", shared.ErrEmptyInput, source)
	}

	items := make([]*library.Item, 0, len(records))
	for _, rec := range records {
		if err := rec.Validate(); err != nil {
			return nil, library.ScoringConfig{}, err
		}
		items = append(items, rec.Item())
	}
	if err := library.EnrichAll(items, cfg); err != nil {
		return nil, library.ScoringConfig{}, err
	}
	return items, cfg, nil
}

// materialize writes one generated playlist through the PlaylistWriter,
// honoring the update cadence sentinel. Returns whether a write happened.
func (e *Engine) materialize(ctx context.Context, opts UpdateOpts, name string, playlist []*library.Item) (bool, error) {
	overdue := opts.ForceUpdate || e.config.Playlists.ForceUpdate
	if !overdue {
		age, ok, err := e.store.SentinelAge(opts.Now, name)
		if err != nil {
			return false, err
		}
		if !ok {
			overdue = true
		} else if every := e.config.Playlists.UpdateEveryHours; every > 0 {
			e.logger.Info("time since last update", "playlist", name, "hours", fmt.Sprintf("%.2f", age.Hours()))
			overdue = age > time.Duration(every*float64(time.Hour))
		}
	}
	if !overdue {
		return false, nil
	}
	e.logger.Warn("playlist is overdue for update", "playlist", name)
	if opts.DryRun {
		return false, nil
	}

	if err := e.writer.ReplacePlaylist(ctx, name, playlist); err != nil {
		return false, fmt.Errorf("failed to materialize %q: %w", name, err)
	}
	return true, e.store.TouchSentinel(opts.Now, name)
}

// saveSnapshots persists the per-item, totals, and grouping snapshots for
// the source playlist plus per-item snapshots for generated playlists that
// want them, collecting diff reports against the previous run.
func (e *Engine) saveSnapshots(result *UpdateResult) error {
	source := result.SourcePlaylist

	report, err := e.saveItems(source, result.Items, true)
	if err != nil {
		return err
	}
	if report != "" {
		result.DiffReports = append(result.DiffReports, report)
	}

	if err := e.store.SaveTotals(source, result.Totals); err != nil {
		return err
	}

	groupings, err := stats.StandardGroupings(result.Items)
	if err != nil {
		return err
	}
	for _, grouping := range groupings {
		report, err := e.saveGrouping(source, grouping)
		if err != nil {
			return err
		}
		if report != "" {
			result.DiffReports = append(result.DiffReports, report)
		}
	}

	for _, out := range []shared.PlaylistOutput{e.config.Playlists.Shuffle, e.config.Playlists.Overdue} {
		if !out.Enabled || !out.SaveTracks {
			continue
		}
		if _, err := e.saveItems(out.Name, result.Playlists[out.Name], false); err != nil {
			return err
		}
	}

	return nil
}

// saveItems writes one per-item snapshot, optionally diffing against the
// previous snapshot first.
func (e *Engine) saveItems(subdir string, items []*library.Item, diff bool) (string, error) {
	records := store.NewItemRecords(items)

	var report string
	if diff {
		previous, err := e.store.LoadItems(subdir)
		if err != nil && !errors.Is(err, shared.ErrMissingSnapshot) {
			return "", err
		}
		if previous != nil {
			report = stats.DiffSnapshots(records, previous, itemDiffOpts()).Render(subdir)
		}
	}

	if err := e.store.SaveItems(subdir, records); err != nil {
		return "", err
	}
	return report, nil
}

// saveGrouping diffs one grouping against its previous snapshot and writes
// the new one.
func (e *Engine) saveGrouping(subdir string, grouping stats.Grouping) (string, error) {
	records := store.NewGroupRecords(grouping.Groups)

	var report string
	previous, err := e.store.LoadGroups(subdir, grouping.Name)
	if err != nil && !errors.Is(err, shared.ErrMissingSnapshot) {
		return "", err
	}
	if previous != nil {
		report = stats.DiffSnapshots(records, previous, groupDiffOpts()).Render(grouping.Name)
	}

	if err := e.store.SaveGroups(subdir, grouping.Name, grouping.Groups); err != nil {
		return "", err
	}
	return report, nil
}

// itemDiffOpts keys item snapshots by library ID, tracks star ratings, uses
// total interactions as the change sentinel, and accumulates net-rate
// movement.
func itemDiffOpts() stats.DiffOpts[store.ItemRecord] {
	return stats.DiffOpts[store.ItemRecord]{
		Key:    func(r store.ItemRecord) string { return fmt.Sprintf("%d", r.ID) },
		Label:  func(r store.ItemRecord) string { return fmt.Sprintf("%s - %s", r.Name, r.Artist) },
		Rating: func(r store.ItemRecord) float64 { return r.Rating },
		Counts: func(r store.ItemRecord) float64 { return float64(r.PlayCount + r.SkipCount) },
		Score:  func(r store.ItemRecord) float64 { return r.NetRate },
	}
}

// groupDiffOpts keys group snapshots by group name and tracks mean star
// ratings, with total interactions as the change sentinel.
func groupDiffOpts() stats.DiffOpts[store.GroupRecord] {
	return stats.DiffOpts[store.GroupRecord]{
		Key:    func(r store.GroupRecord) string { return r.Name },
		Rating: func(r store.GroupRecord) float64 { return r.Rating.Mean },
		Counts: func(r store.GroupRecord) float64 { return r.PlayCount.Total + r.SkipCount.Total },
	}
}

// ApplyRatingBins assigns ratings across at most 100 bins by list position:
// the top bin rates 100, each following bin one point lower. Never-played
// items rate 0. Assumes items are already sorted by descending score.
func ApplyRatingBins(items []*library.Item) {
	if len(items) == 0 {
		return
	}
	numBins := len(items)
	if numBins > 100 {
		numBins = 100
	}
	binSize := float64(len(items)) / float64(numBins)
	for i, it := range items {
		if it.PlayCount > 0 {
			it.Rating = 100 - int(math.Floor(float64(i)/binSize))
		} else {
			it.Rating = 0
		}
	}
}

// ApplyFavorites marks the top percentage of items favorite and clears the
// flag on the rest. Assumes items are already sorted by descending score.
func ApplyFavorites(items []*library.Item, topPercent float64) {
	limit := int(math.Round(float64(len(items)) * topPercent / 100))
	for i, it := range items {
		it.Favorite = i < limit
	}
}

// overduePlaylist selects items past their expected next play, most
// overdue first.
func overduePlaylist(items []*library.Item) []*library.Item {
	var overdue []*library.Item
	for _, it := range items {
		if it.Overdue > 0 {
			overdue = append(overdue, it)
		}
	}
	sort.SliceStable(overdue, func(i, j int) bool { return overdue[i].Overdue > overdue[j].Overdue })
	return overdue
}
