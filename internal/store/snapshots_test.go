package store

import (
	"errors"
	"testing"
	"time"

	"github.com/ajmeyer/rotation/internal/library"
	"github.com/ajmeyer/rotation/internal/shared"
	"github.com/ajmeyer/rotation/internal/stats"
)

func storeItem(id int64) *library.Item {
	return &library.Item{
		ID:          id,
		Title:       "Track",
		Artist:      "Artist",
		AlbumArtist: "Artist",
		Album:       "Album",
		Genre:       "rock",
		Year:        2020,
		TrackNumber: int(id),
		Duration:    4 * time.Minute,
		Rating:      80,
		Added:       time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC),
		Playlists:   []string{"Workout", "Starred"},
		Score:       2.5,
		NetRate:     3.0,
	}
}

func TestStoreItems(t *testing.T) {
	s := NewStore(t.TempDir())

	t.Run("missing snapshot", func(t *testing.T) {
		if _, err := s.LoadItems("Library"); !errors.Is(err, shared.ErrMissingSnapshot) {
			t.Errorf("expected ErrMissingSnapshot, got %v", err)
		}
	})

	t.Run("round trip preserves order and index", func(t *testing.T) {
		records := NewItemRecords([]*library.Item{storeItem(2), storeItem(1)})
		if err := s.SaveItems("Library", records); err != nil {
			t.Fatalf("SaveItems failed: %v", err)
		}

		loaded, err := s.LoadItems("Library")
		if err != nil {
			t.Fatalf("LoadItems failed: %v", err)
		}
		if len(loaded) != 2 {
			t.Fatalf("expected 2 records, got %d", len(loaded))
		}
		if loaded[0].ID != 2 || loaded[1].ID != 1 {
			t.Errorf("order not preserved: %d, %d", loaded[0].ID, loaded[1].ID)
		}
		if loaded[0].Index != 0 || loaded[1].Index != 1 {
			t.Errorf("indexes = %d, %d, want 0, 1", loaded[0].Index, loaded[1].Index)
		}
	})
}

func TestNewItemRecord(t *testing.T) {
	it := storeItem(1)
	it.SinceAdded = 2 * library.OneYear
	it.ListenRate = 80 * time.Minute

	rec := NewItemRecord(it)
	if rec.Rating != 4 {
		t.Errorf("rating = %v stars, want 4", rec.Rating)
	}
	if rec.DurationMinutes != 4 {
		t.Errorf("duration = %v minutes, want 4", rec.DurationMinutes)
	}
	if rec.YearsSinceAdded != 2 {
		t.Errorf("years since added = %v, want 2", rec.YearsSinceAdded)
	}
	if rec.ListenRate != 80 {
		t.Errorf("listen rate = %v minutes, want 80", rec.ListenRate)
	}
	if rec.Playlists[0] != "Starred" || rec.Playlists[1] != "Workout" {
		t.Errorf("playlists not sorted: %v", rec.Playlists)
	}
	if it.Playlists[0] != "Workout" {
		t.Error("source item's playlist order was mutated")
	}
}

func TestStoreCalibration(t *testing.T) {
	s := NewStore(t.TempDir())

	t.Run("missing totals", func(t *testing.T) {
		if _, err := s.Calibration("Library"); !errors.Is(err, shared.ErrMissingSnapshot) {
			t.Errorf("expected ErrMissingSnapshot, got %v", err)
		}
	})

	t.Run("round trip feeds calibration", func(t *testing.T) {
		items := []*library.Item{storeItem(1), storeItem(2), storeItem(3)}
		totals, err := stats.NewGroupSummary("Library", items)
		if err != nil {
			t.Fatalf("NewGroupSummary failed: %v", err)
		}
		if err := s.SaveTotals("Library", totals); err != nil {
			t.Fatalf("SaveTotals failed: %v", err)
		}

		cal, err := s.Calibration("Library")
		if err != nil {
			t.Fatalf("Calibration failed: %v", err)
		}
		if cal.MedianDurationMinutes != 4 {
			t.Errorf("median duration = %v, want 4", cal.MedianDurationMinutes)
		}
		if cal.MedianNetRate != 3 {
			t.Errorf("median net rate = %v, want 3", cal.MedianNetRate)
		}
	})
}

func TestStoreGroups(t *testing.T) {
	s := NewStore(t.TempDir())

	items := []*library.Item{storeItem(1), storeItem(2)}
	summary, err := stats.NewGroupSummary("rock", items)
	if err != nil {
		t.Fatalf("NewGroupSummary failed: %v", err)
	}
	if err := s.SaveGroups("Library", "genres", []stats.GroupSummary{summary}); err != nil {
		t.Fatalf("SaveGroups failed: %v", err)
	}

	loaded, err := s.LoadGroups("Library", "genres")
	if err != nil {
		t.Fatalf("LoadGroups failed: %v", err)
	}
	if len(loaded) != 1 || loaded[0].Name != "rock" || loaded[0].Count != 2 {
		t.Errorf("unexpected groups: %+v", loaded)
	}
	if loaded[0].Score.Mean != 2.5 {
		t.Errorf("mean score = %v, want 2.5", loaded[0].Score.Mean)
	}
}

func TestSourceRecordValidate(t *testing.T) {
	valid := SourceRecord{
		ID:              1,
		Name:            "Track",
		DurationSeconds: 240,
		Rating:          80,
		DateAdded:       time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	tests := []struct {
		name   string
		mutate func(*SourceRecord)
		wantOK bool
	}{
		{"valid record", func(r *SourceRecord) {}, true},
		{"missing name", func(r *SourceRecord) { r.Name = "" }, false},
		{"zero added date", func(r *SourceRecord) { r.DateAdded = time.Time{} }, false},
		{"non-positive duration", func(r *SourceRecord) { r.DurationSeconds = 0 }, false},
		{"rating out of range", func(r *SourceRecord) { r.Rating = 120 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := valid
			tt.mutate(&rec)
			err := rec.Validate()
			if tt.wantOK && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.wantOK && !errors.Is(err, shared.ErrInvalidData) {
				t.Errorf("expected ErrInvalidData, got %v", err)
			}
		})
	}
}

func TestSourceRecordItem(t *testing.T) {
	played := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	rec := SourceRecord{
		ID:              7,
		Name:            "Track",
		Artist:          "Artist",
		DurationSeconds: 240,
		Rating:          60,
		DateAdded:       time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC),
		LastPlayed:      &played,
	}

	it := rec.Item()
	if it.ID != 7 || it.Title != "Track" {
		t.Errorf("identity not carried: %+v", it)
	}
	if it.Duration != 4*time.Minute {
		t.Errorf("duration = %v, want 4m", it.Duration)
	}
	if it.LastPlayed == nil || !it.LastPlayed.Equal(played) {
		t.Errorf("last played = %v, want %v", it.LastPlayed, played)
	}
	if it.LastSkipped != nil {
		t.Error("never skipped should stay nil")
	}
	if it.Score != 0 {
		t.Error("derived fields should stay zero before enrichment")
	}
}

func TestSentinel(t *testing.T) {
	s := NewStore(t.TempDir())
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	if _, ok, err := s.SentinelAge(now, "shuffle"); err != nil || ok {
		t.Fatalf("expected no sentinel, got ok=%v err=%v", ok, err)
	}

	if err := s.TouchSentinel(now.Add(-2*time.Hour), "shuffle"); err != nil {
		t.Fatalf("TouchSentinel failed: %v", err)
	}
	age, ok, err := s.SentinelAge(now, "shuffle")
	if err != nil || !ok {
		t.Fatalf("expected sentinel, got ok=%v err=%v", ok, err)
	}
	if age != 2*time.Hour {
		t.Errorf("age = %v, want 2h", age)
	}
}
