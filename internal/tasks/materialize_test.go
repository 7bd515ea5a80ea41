package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ajmeyer/rotation/internal/library"
	"github.com/ajmeyer/rotation/internal/shared"
)

func TestFileLibrary(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing playlist", func(t *testing.T) {
		lib := NewFileLibrary(dir)
		_, err := lib.LoadPlaylist(context.Background(), "Nope")
		if !errors.Is(err, shared.ErrItemNotFound) {
			t.Errorf("expected ErrItemNotFound, got %v", err)
		}
	})

	t.Run("malformed export", func(t *testing.T) {
		path := filepath.Join(dir, "Broken.json")
		if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
			t.Fatal(err)
		}
		lib := NewFileLibrary(dir)
		_, err := lib.LoadPlaylist(context.Background(), "Broken")
		if !errors.Is(err, shared.ErrInvalidData) {
			t.Errorf("expected ErrInvalidData, got %v", err)
		}
	})

	t.Run("round trip", func(t *testing.T) {
		records := sourceRecords()
		data, err := json.Marshal(records)
		if err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dir, "Library.json"), data, 0o644); err != nil {
			t.Fatal(err)
		}

		lib := NewFileLibrary(dir)
		loaded, err := lib.LoadPlaylist(context.Background(), "Library")
		if err != nil {
			t.Fatalf("LoadPlaylist failed: %v", err)
		}
		if len(loaded) != len(records) {
			t.Fatalf("expected %d records, got %d", len(records), len(loaded))
		}
		if loaded[0].Name != "Alpha" || loaded[0].LastPlayed == nil {
			t.Errorf("record fields lost: %+v", loaded[0])
		}
	})
}

func TestFilePlaylistWriter(t *testing.T) {
	dir := t.TempDir()
	writer := NewFilePlaylistWriter(dir, "txt", 100)

	var items []*library.Item
	for _, rec := range sourceRecords() {
		items = append(items, rec.Item())
	}

	if err := writer.ReplacePlaylist(context.Background(), "daily shuffle", items); err != nil {
		t.Fatalf("ReplacePlaylist failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "daily shuffle.txt"))
	if err != nil {
		t.Fatalf("playlist file missing: %v", err)
	}
	output := string(data)
	if !strings.Contains(output, "Playlist: daily shuffle") || !strings.Contains(output, "Alpha - Artist A") {
		t.Errorf("unexpected playlist contents: %s", output)
	}

	t.Run("cancelled context aborts before writing", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if err := writer.ReplacePlaylist(ctx, "other", items); err == nil {
			t.Error("expected context error")
		}
		if _, err := os.Stat(filepath.Join(dir, "other.txt")); err == nil {
			t.Error("file should not exist after cancelled write")
		}
	})
}
