package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/time/rate"

	"github.com/ajmeyer/rotation/internal/formatter"
	"github.com/ajmeyer/rotation/internal/library"
	"github.com/ajmeyer/rotation/internal/shared"
	"github.com/ajmeyer/rotation/internal/store"
)

// FileLibrary reads raw item records from the host application's JSON
// export, one <playlist>.json file per playlist.
type FileLibrary struct {
	dir string
}

// NewFileLibrary creates a FileLibrary over an export directory.
func NewFileLibrary(dir string) *FileLibrary {
	return &FileLibrary{dir: dir}
}

// LoadPlaylist reads one playlist's raw records. Returns ErrItemNotFound
// when the export has no such playlist.
func (l *FileLibrary) LoadPlaylist(ctx context.Context, name string) ([]store.SourceRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := filepath.Join(l.dir, name+".json")
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: playlist %q has no export at %s", shared.ErrItemNotFound, name, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read playlist export: %w", err)
	}

	var records []store.SourceRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: malformed playlist export %s: %v", shared.ErrInvalidData, path, err)
	}
	return records, nil
}

// FilePlaylistWriter materializes generated playlists as export files for
// the host automation layer to pick up. Writes are paced with a rate
// limiter so a burst of regenerated playlists does not overwhelm the host
// application's importer.
type FilePlaylistWriter struct {
	dir     string
	format  string
	limiter *rate.Limiter
}

// NewFilePlaylistWriter creates a writer that places playlist files in dir
// using the given format (txt, csv, markdown). writesPerSecond <= 0
// defaults to 5.
func NewFilePlaylistWriter(dir, format string, writesPerSecond float64) *FilePlaylistWriter {
	if writesPerSecond <= 0 {
		writesPerSecond = 5.0
	}
	return &FilePlaylistWriter{
		dir:     dir,
		format:  format,
		limiter: rate.NewLimiter(rate.Limit(writesPerSecond), 1),
	}
}

// ReplacePlaylist writes the playlist file, overwriting any previous
// contents.
func (w *FilePlaylistWriter) ReplacePlaylist(ctx context.Context, name string, items []*library.Item) error {
	if err := w.limiter.Wait(ctx); err != nil {
		return err
	}

	if _, err := formatter.WritePlaylistExport(w.dir, name, w.format, items); err != nil {
		return fmt.Errorf("failed to write playlist %q: %w", name, err)
	}
	return nil
}
