package tasks

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/ajmeyer/rotation/internal/library"
	"github.com/ajmeyer/rotation/internal/shared"
	"github.com/ajmeyer/rotation/internal/store"
)

var engineNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

// mockLibrary serves a fixed record set for any playlist name.
type mockLibrary struct {
	records []store.SourceRecord
	err     error
}

func (m *mockLibrary) LoadPlaylist(ctx context.Context, name string) ([]store.SourceRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.records, nil
}

// mockWriter records every playlist replacement.
type mockWriter struct {
	written map[string]int
	err     error
}

func (m *mockWriter) ReplacePlaylist(ctx context.Context, name string, items []*library.Item) error {
	if m.err != nil {
		return m.err
	}
	if m.written == nil {
		m.written = make(map[string]int)
	}
	m.written[name] = len(items)
	return nil
}

// mockHistory counts recorded runs.
type mockHistory struct {
	runs []*store.Run
	err  error
}

func (m *mockHistory) RecordRun(run *store.Run) error {
	if m.err != nil {
		return m.err
	}
	run.ID = "test-run"
	m.runs = append(m.runs, run)
	return nil
}

func sourceRecords() []store.SourceRecord {
	added := engineNow.AddDate(-2, 0, 0)
	played := engineNow.AddDate(0, 0, -10)
	skipped := engineNow.AddDate(0, 0, -40)

	var records []store.SourceRecord
	specs := []struct {
		name, artist string
		trackNumber  int
		plays, skips int
		size         int64
	}{
		{"Alpha", "Artist A", 1, 50, 2, 8 << 20},
		{"Beta", "Artist B", 2, 30, 1, 6 << 20},
		{"Gamma", "Artist C", 3, 10, 5, 9 << 20},
		{"Delta", "Artist D", 4, 2, 20, 4 << 20},
	}
	for i, s := range specs {
		records = append(records, store.SourceRecord{
			ID:              int64(i + 1),
			Name:            s.name,
			Artist:          s.artist,
			AlbumArtist:     s.artist,
			Album:           s.name + " LP",
			Genre:           "rock",
			Year:            2020,
			TrackNumber:     s.trackNumber,
			DurationSeconds: 240,
			Size:            s.size,
			PlayCount:       s.plays,
			SkipCount:       s.skips,
			Rating:          60,
			DateAdded:       added,
			LastPlayed:      &played,
			LastSkipped:     &skipped,
			Playlists:       []string{"Library"},
		})
	}
	return records
}

func engineConfig() *shared.Config {
	cfg := shared.DefaultConfig()
	cfg.Library.SourcePlaylist = "Library"
	cfg.Playlists.ForceUpdate = false
	cfg.Playlists.UpdateEveryHours = 12
	cfg.Playlists.Shuffle = shared.PlaylistOutput{Enabled: true, Name: "daily shuffle", SaveTracks: true}
	cfg.Playlists.Overdue = shared.PlaylistOutput{Enabled: true, Name: "overdue", SaveTracks: false}
	cfg.Ratings.Update = true
	cfg.Favorites.Update = true
	cfg.Favorites.TopPercent = 25
	return cfg
}

func newTestEngine(t *testing.T, cfg *shared.Config, lib Library, writer PlaylistWriter, history HistoryRecorder) *Engine {
	t.Helper()
	return NewEngine(cfg, shared.NewLogger(io.Discard), store.NewStore(t.TempDir()), history, lib, writer)
}

func TestEngineUpdate(t *testing.T) {
	t.Run("full pipeline", func(t *testing.T) {
		writer := &mockWriter{}
		history := &mockHistory{}
		engine := newTestEngine(t, engineConfig(), &mockLibrary{records: sourceRecords()}, writer, history)

		result, err := engine.Update(context.Background(), UpdateOpts{Now: engineNow})
		if err != nil {
			t.Fatalf("Update failed: %v", err)
		}

		if len(result.Items) != 4 {
			t.Fatalf("expected 4 items, got %d", len(result.Items))
		}
		for i := 1; i < len(result.Items); i++ {
			if result.Items[i].Score > result.Items[i-1].Score {
				t.Errorf("items not sorted by descending score at %d", i)
			}
		}
		if result.Items[0].Rating != 100 {
			t.Errorf("top item rating = %d, want 100", result.Items[0].Rating)
		}
		if !result.Items[0].Favorite {
			t.Error("top quarter should be favorited")
		}
		if result.Items[3].Favorite {
			t.Error("bottom item should not be favorited")
		}

		shuffle, ok := result.Playlists["daily shuffle"]
		if !ok || len(shuffle) != 4 {
			t.Errorf("shuffle playlist missing or short: %d items", len(shuffle))
		}
		if _, ok := result.Playlists["overdue"]; !ok {
			t.Error("overdue playlist missing")
		}
		if writer.written["daily shuffle"] != 4 {
			t.Errorf("shuffle not materialized, writes: %v", writer.written)
		}

		if len(history.runs) != 1 {
			t.Fatalf("expected 1 history row, got %d", len(history.runs))
		}
		run := history.runs[0]
		if run.SourcePlaylist != "Library" || run.ItemCount != 4 {
			t.Errorf("unexpected run row: %+v", run)
		}
	})

	t.Run("snapshots survive to the next run", func(t *testing.T) {
		cfg := engineConfig()
		lib := &mockLibrary{records: sourceRecords()}
		writer := &mockWriter{}
		engine := newTestEngine(t, cfg, lib, writer, nil)

		first, err := engine.Update(context.Background(), UpdateOpts{Now: engineNow})
		if err != nil {
			t.Fatalf("first Update failed: %v", err)
		}
		if len(first.DiffReports) != 0 {
			t.Errorf("first run should have nothing to diff, got %v", first.DiffReports)
		}
		if len(first.Materialized) != 2 {
			t.Errorf("first run should materialize both playlists, got %v", first.Materialized)
		}

		second, err := engine.Update(context.Background(), UpdateOpts{Now: engineNow.Add(time.Hour)})
		if err != nil {
			t.Fatalf("second Update failed: %v", err)
		}
		if len(second.Materialized) != 0 {
			t.Errorf("second run within the cadence window should skip materialization, got %v", second.Materialized)
		}
		if len(second.DiffReports) != 0 {
			t.Errorf("unchanged library should produce no diff lines, got %v", second.DiffReports)
		}
	})

	t.Run("force update overrides the cadence", func(t *testing.T) {
		writer := &mockWriter{}
		engine := newTestEngine(t, engineConfig(), &mockLibrary{records: sourceRecords()}, writer, nil)

		if _, err := engine.Update(context.Background(), UpdateOpts{Now: engineNow}); err != nil {
			t.Fatalf("first Update failed: %v", err)
		}
		result, err := engine.Update(context.Background(), UpdateOpts{Now: engineNow.Add(time.Hour), ForceUpdate: true})
		if err != nil {
			t.Fatalf("forced Update failed: %v", err)
		}
		if len(result.Materialized) != 2 {
			t.Errorf("forced run should materialize both playlists, got %v", result.Materialized)
		}
	})

	t.Run("dry run skips materialization", func(t *testing.T) {
		writer := &mockWriter{}
		engine := newTestEngine(t, engineConfig(), &mockLibrary{records: sourceRecords()}, writer, nil)

		result, err := engine.Update(context.Background(), UpdateOpts{Now: engineNow, DryRun: true})
		if err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		if len(result.Materialized) != 0 || len(writer.written) != 0 {
			t.Errorf("dry run should not write playlists, got %v", writer.written)
		}
	})

	t.Run("empty playlist is rejected", func(t *testing.T) {
		engine := newTestEngine(t, engineConfig(), &mockLibrary{}, &mockWriter{}, nil)

		_, err := engine.Update(context.Background(), UpdateOpts{Now: engineNow})
		if !errors.Is(err, shared.ErrEmptyInput) {
			t.Errorf("expected ErrEmptyInput, got %v", err)
		}
	})

	t.Run("invalid record aborts the run", func(t *testing.T) {
		records := sourceRecords()
		records[2].Name = ""
		engine := newTestEngine(t, engineConfig(), &mockLibrary{records: records}, &mockWriter{}, nil)

		_, err := engine.Update(context.Background(), UpdateOpts{Now: engineNow})
		if !errors.Is(err, shared.ErrInvalidData) {
			t.Errorf("expected ErrInvalidData, got %v", err)
		}
	})

	t.Run("missing source playlist config", func(t *testing.T) {
		cfg := engineConfig()
		cfg.Library.SourcePlaylist = ""
		engine := newTestEngine(t, cfg, &mockLibrary{records: sourceRecords()}, &mockWriter{}, nil)

		_, err := engine.Update(context.Background(), UpdateOpts{Now: engineNow})
		if !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}

func TestApplyRatingBins(t *testing.T) {
	t.Run("small collections rate one per bin", func(t *testing.T) {
		items := []*library.Item{
			{PlayCount: 10},
			{PlayCount: 5},
			{PlayCount: 0},
			{PlayCount: 1},
		}
		ApplyRatingBins(items)
		if items[0].Rating != 100 || items[1].Rating != 99 {
			t.Errorf("ratings = %d, %d, want 100, 99", items[0].Rating, items[1].Rating)
		}
		if items[2].Rating != 0 {
			t.Errorf("never played rating = %d, want 0", items[2].Rating)
		}
		if items[3].Rating != 97 {
			t.Errorf("last played rating = %d, want 97", items[3].Rating)
		}
	})

	t.Run("large collections share bins", func(t *testing.T) {
		items := make([]*library.Item, 200)
		for i := range items {
			items[i] = &library.Item{PlayCount: 1}
		}
		ApplyRatingBins(items)
		if items[0].Rating != 100 || items[1].Rating != 100 {
			t.Errorf("first bin ratings = %d, %d, want both 100", items[0].Rating, items[1].Rating)
		}
		if items[199].Rating != 1 {
			t.Errorf("last rating = %d, want 1", items[199].Rating)
		}
	})
}

func TestApplyFavorites(t *testing.T) {
	items := make([]*library.Item, 10)
	for i := range items {
		items[i] = &library.Item{Favorite: true}
	}
	ApplyFavorites(items, 30)

	for i, it := range items {
		want := i < 3
		if it.Favorite != want {
			t.Errorf("item %d favorite = %v, want %v", i, it.Favorite, want)
		}
	}
}
