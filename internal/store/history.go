package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/ajmeyer/rotation/internal/shared"
)

// Run is one row of update-run history.
type Run struct {
	ID                    string
	CreatedAt             time.Time
	SourcePlaylist        string
	ItemCount             int
	MeanScore             float64
	MedianScore           float64
	ScoreBase             float64
	MedianDurationMinutes float64
}

// History records per-run aggregates in the runs table, giving score trends
// a queryable home instead of living only in overwritten JSON snapshots.
type History struct {
	db *sql.DB
}

// NewHistory creates a History over an already-migrated database.
func NewHistory(db *sql.DB) *History {
	return &History{db: db}
}

// RecordRun inserts one run row, generating its ID.
func (h *History) RecordRun(run *Run) error {
	if run.SourcePlaylist == "" {
		return fmt.Errorf("%w: run has no source playlist", shared.ErrInvalidData)
	}
	run.ID = shared.GenerateID()

	query := `
		INSERT INTO runs (id, created_at, source_playlist, item_count, mean_score, median_score, score_base, median_duration_minutes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := h.db.Exec(query,
		run.ID,
		run.CreatedAt,
		run.SourcePlaylist,
		run.ItemCount,
		run.MeanScore,
		run.MedianScore,
		run.ScoreBase,
		run.MedianDurationMinutes,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first. limit <= 0 returns
// everything.
func (h *History) ListRuns(limit int) ([]Run, error) {
	query := `
		SELECT id, created_at, source_playlist, item_count, mean_score, median_score, score_base, median_duration_minutes
		FROM runs
		ORDER BY created_at DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := h.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		err := rows.Scan(
			&run.ID,
			&run.CreatedAt,
			&run.SourcePlaylist,
			&run.ItemCount,
			&run.MeanScore,
			&run.MedianScore,
			&run.ScoreBase,
			&run.MedianDurationMinutes,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// LatestRun returns the most recent run for a source playlist, or
// ErrRunNotFound when the playlist has never been processed.
func (h *History) LatestRun(sourcePlaylist string) (*Run, error) {
	query := `
		SELECT id, created_at, source_playlist, item_count, mean_score, median_score, score_base, median_duration_minutes
		FROM runs
		WHERE source_playlist = ?
		ORDER BY created_at DESC
		LIMIT 1
	`
	var run Run
	err := h.db.QueryRow(query, sourcePlaylist).Scan(
		&run.ID,
		&run.CreatedAt,
		&run.SourcePlaylist,
		&run.ItemCount,
		&run.MeanScore,
		&run.MedianScore,
		&run.ScoreBase,
		&run.MedianDurationMinutes,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: no runs for %q", shared.ErrRunNotFound, sourcePlaylist)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest run: %w", err)
	}
	return &run, nil
}
