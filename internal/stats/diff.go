package stats

import (
	"fmt"
	"math"
	"strings"
)

// diffThreshold is the smallest rating or score movement worth reporting.
const diffThreshold = 0.01

// DiffOpts configures the snapshot diff for one record shape. Key and Label
// identify a record; Counts is the change sentinel (a record is only
// inspected for movement when its sentinel changed); Rating is the tracked
// scalar reported per line; Score, when non-nil, accumulates the aggregate
// delta across adds, removals, and changes.
type DiffOpts[T any] struct {
	Key    func(T) string
	Label  func(T) string
	Rating func(T) float64
	Counts func(T) float64
	Score  func(T) float64
}

// DiffReport is the outcome of comparing a current snapshot against the
// previous one. Line order is deterministic: current-list order first, then
// previous-only deletions in previous-list order.
type DiffReport struct {
	Lines      []string
	TotalDelta float64
	MeanDelta  float64
	HasScore   bool
}

// DiffSnapshots compares two snapshots of the same record shape. It is pure:
// content differences are its normal output, never an error.
func DiffSnapshots[T any](current, previous []T, opts DiffOpts[T]) DiffReport {
	label := opts.Label
	if label == nil {
		label = opts.Key
	}

	prevByKey := make(map[string]T, len(previous))
	for _, rec := range previous {
		prevByKey[opts.Key(rec)] = rec
	}
	currentKeys := make(map[string]bool, len(current))

	report := DiffReport{HasScore: opts.Score != nil}
	for _, rec := range current {
		key := opts.Key(rec)
		currentKeys[key] = true
		prev, existed := prevByKey[key]
		if !existed {
			if opts.Score != nil {
				report.TotalDelta += opts.Score(rec)
			}
			report.Lines = append(report.Lines, fmt.Sprintf("ADD    %.2f★ %s", opts.Rating(rec), label(rec)))
			continue
		}
		if opts.Score != nil {
			report.TotalDelta += opts.Score(rec) - opts.Score(prev)
		}
		if opts.Counts(rec) == opts.Counts(prev) {
			continue
		}
		ratingDiff := opts.Rating(rec) - opts.Rating(prev)
		if math.Abs(ratingDiff) < diffThreshold {
			continue
		}
		// Positive movement is indented so the signs line up in a column.
		disp := fmt.Sprintf("%+.2f ", ratingDiff)
		if ratingDiff > 0 {
			disp = fmt.Sprintf(" %+.2f", ratingDiff)
		}
		report.Lines = append(report.Lines, fmt.Sprintf("%s %.2f★ %s", disp, opts.Rating(rec), label(rec)))
	}

	for _, rec := range previous {
		if currentKeys[opts.Key(rec)] {
			continue
		}
		if opts.Score != nil {
			report.TotalDelta -= opts.Score(rec)
		}
		report.Lines = append(report.Lines, fmt.Sprintf("DEL    %.2f★ %s", opts.Rating(rec), label(rec)))
	}

	if opts.Score != nil && len(current) > 0 {
		report.MeanDelta = report.TotalDelta / float64(len(current))
	}
	return report
}

// Render formats the report for display under the given snapshot name.
// Aggregate lines appear only when their magnitude clears the threshold.
// An empty string means nothing moved.
func (r DiffReport) Render(name string) string {
	var sections []string
	if len(r.Lines) > 0 {
		sections = append(sections, fmt.Sprintf("%s ratings:\n%s", name, strings.Join(r.Lines, "\n")))
	}
	if r.HasScore {
		if math.Abs(r.TotalDelta) > diffThreshold {
			sections = append(sections, fmt.Sprintf("%s total score: %+.2f", name, r.TotalDelta))
		}
		if math.Abs(r.MeanDelta) > diffThreshold {
			sections = append(sections, fmt.Sprintf("%s avg score: %+.2f", name, r.MeanDelta))
		}
	}
	return strings.Join(sections, "\n")
}
