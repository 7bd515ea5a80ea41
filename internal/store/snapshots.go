package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/ajmeyer/rotation/internal/library"
	"github.com/ajmeyer/rotation/internal/shared"
	"github.com/ajmeyer/rotation/internal/stats"
)

// Store reads and writes JSON snapshots under a single output directory,
// one subdirectory per source playlist.
type Store struct {
	dir string
}

// NewStore creates a snapshot store rooted at dir. The directory is created
// lazily on first save.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the store's root output directory.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) path(subdir, name string) string {
	return filepath.Join(s.dir, subdir, name+".json")
}

func (s *Store) load(subdir, name string, v any) error {
	path := s.path(subdir, name)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", shared.ErrMissingSnapshot, path)
	}
	if err != nil {
		return fmt.Errorf("failed to read snapshot %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: malformed snapshot %s: %v", shared.ErrInvalidData, path, err)
	}
	return nil
}

func (s *Store) save(subdir, name string, v any) error {
	path := s.path(subdir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot %s: %w", path, err)
	}
	return nil
}

// LoadItems reads the per-item snapshot for a source playlist. Returns
// ErrMissingSnapshot when no previous run has saved one.
func (s *Store) LoadItems(subdir string) ([]ItemRecord, error) {
	var records []ItemRecord
	if err := s.load(subdir, "tracks", &records); err != nil {
		return nil, err
	}
	return records, nil
}

// SaveItems writes the per-item snapshot for a source playlist.
func (s *Store) SaveItems(subdir string, records []ItemRecord) error {
	return s.save(subdir, "tracks", records)
}

// LoadTotals reads the whole-collection summary saved by a previous run.
func (s *Store) LoadTotals(subdir string) (GroupRecord, error) {
	var records []GroupRecord
	if err := s.load(subdir, "totals", &records); err != nil {
		return GroupRecord{}, err
	}
	if len(records) == 0 {
		return GroupRecord{}, fmt.Errorf("%w: empty totals snapshot for %q", shared.ErrInvalidData, subdir)
	}
	return records[0], nil
}

// SaveTotals writes the whole-collection summary as a single-element
// snapshot.
func (s *Store) SaveTotals(subdir string, totals stats.GroupSummary) error {
	return s.save(subdir, "totals", NewGroupRecords([]stats.GroupSummary{totals}))
}

// Calibration derives scoring calibration from the previous totals
// snapshot. Returns ErrMissingSnapshot when none exists; the caller falls
// back to defaults.
func (s *Store) Calibration(subdir string) (*library.Calibration, error) {
	totals, err := s.LoadTotals(subdir)
	if err != nil {
		return nil, err
	}
	return &library.Calibration{
		MedianDurationMinutes: totals.Duration.Median,
		MedianNetRate:         totals.NetRate.Median,
	}, nil
}

// LoadGroups reads one grouping snapshot (e.g. "genres") for a source
// playlist.
func (s *Store) LoadGroups(subdir, name string) ([]GroupRecord, error) {
	var records []GroupRecord
	if err := s.load(subdir, name, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// SaveGroups writes one grouping snapshot.
func (s *Store) SaveGroups(subdir, name string, groups []stats.GroupSummary) error {
	return s.save(subdir, name, NewGroupRecords(groups))
}

// SentinelAge reports how long ago the named playlist was last
// materialized, based on its sentinel file's mtime. ok is false when the
// playlist has never been materialized.
func (s *Store) SentinelAge(now time.Time, playlist string) (age time.Duration, ok bool, err error) {
	info, err := os.Stat(filepath.Join(s.dir, "."+playlist))
	if errors.Is(err, fs.ErrNotExist) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to stat sentinel: %w", err)
	}
	return now.Sub(info.ModTime()), true, nil
}

// TouchSentinel records that the named playlist was just materialized.
func (s *Store) TouchSentinel(now time.Time, playlist string) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(s.dir, "."+playlist)
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		return fmt.Errorf("failed to write sentinel: %w", err)
	}
	return os.Chtimes(path, now, now)
}
