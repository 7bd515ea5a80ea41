// package formatter renders playlists, collection statistics, insight
// reports, and run history to text, CSV, and Markdown.
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ajmeyer/rotation/internal/library"
	"github.com/ajmeyer/rotation/internal/stats"
	"github.com/ajmeyer/rotation/internal/store"
)

// PlaylistToText converts an ordered playlist to plain text.
func PlaylistToText(name string, items []*library.Item) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Playlist: %s\n", name))
	buf.WriteString(fmt.Sprintf("Tracks: %d\n\n", len(items)))

	for i, it := range items {
		buf.WriteString(fmt.Sprintf("%d. %s\n", i+1, it.Display()))
	}

	return buf.Bytes()
}

// PlaylistToCSV converts an ordered playlist to CSV with columns: ID, Title, Artist, Album, Duration, Score
func PlaylistToCSV(items []*library.Item) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Artist", "Album", "Duration", "Score"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, it := range items {
		record := []string{
			strconv.FormatInt(it.ID, 10),
			it.Title,
			it.Artist,
			it.Album,
			strconv.Itoa(int(it.Duration.Seconds())),
			strconv.FormatFloat(it.Score, 'f', 4, 64),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// PlaylistToMarkdown converts an ordered playlist to Markdown.
func PlaylistToMarkdown(name string, items []*library.Item) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", name))
	buf.WriteString(fmt.Sprintf("**Tracks**: %d\n\n", len(items)))

	for i, it := range items {
		buf.WriteString(fmt.Sprintf("%d. %s (%s) [%s]\n", i+1, it.Display(), it.Album, formatDuration(it.Duration)))
	}

	return buf.Bytes()
}

// WritePlaylistExport writes an ordered playlist to dir in the requested
// format (txt, csv, markdown) and returns the written path. Unknown formats
// fall back to txt.
func WritePlaylistExport(dir, name, format string, items []*library.Item) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	var data []byte
	var ext string
	var err error
	switch format {
	case "csv":
		ext = "csv"
		data, err = PlaylistToCSV(items)
		if err != nil {
			return "", err
		}
	case "markdown":
		ext = "md"
		data = PlaylistToMarkdown(name, items)
	default:
		ext = "txt"
		data = PlaylistToText(name, items)
	}

	path := filepath.Join(dir, fmt.Sprintf("%s.%s", name, ext))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write playlist export: %w", err)
	}
	return path, nil
}

// MixtapeToText renders a mixtape with its track-number sequencing.
func MixtapeToText(items []*library.Item) []byte {
	var buf bytes.Buffer
	for _, it := range items {
		buf.WriteString(fmt.Sprintf("%d. %s\n", it.TrackNumber, it.Display()))
	}
	return buf.Bytes()
}

// TotalsToText renders the whole-collection summary for the console,
// showing the sections worth eyeballing after a run.
func TotalsToText(g stats.GroupSummary) string {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("%s:\n", g.Name))
	buf.WriteString(fmt.Sprintf("  Count: %d\n", g.Count))
	writeSection(&buf, "Score", g.Score, formatScalar)
	writeSection(&buf, "Net Rate", g.NetRate, formatScalar)
	writeSection(&buf, "Days Between Plays", g.DaysBetweenPlays, formatDays)
	writeSection(&buf, "Duration", g.Duration, formatMinutes)
	writeSection(&buf, "Size", g.Size, humanSize)

	return buf.String()
}

// GroupsToText renders the top entries of one grouping, one line per group.
func GroupsToText(grouping stats.Grouping, limit int) string {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("%s (%d):\n", grouping.Name, len(grouping.Groups)))
	groups := grouping.Groups
	if limit > 0 && len(groups) > limit {
		groups = groups[:limit]
	}
	for _, g := range groups {
		buf.WriteString(fmt.Sprintf("  %.2f  %.2f★  %s (%d)\n", g.Score.Mean, g.Rating.Mean, g.Name, g.Count))
	}

	return buf.String()
}

// RenderInsight formats one insight report under its heading, truncated to
// maxLines with a "+ N more" tail. maxLines <= 0 disables truncation.
func RenderInsight(title string, lines []string, maxLines int) string {
	lines = TruncateLines(lines, maxLines)
	return title + "\n" + strings.Join(lines, "\n")
}

// TruncateLines caps a report at maxLines, appending a count of what was
// cut. maxLines <= 0 disables truncation.
func TruncateLines(lines []string, maxLines int) []string {
	if maxLines <= 0 || len(lines) <= maxLines {
		return lines
	}
	truncated := make([]string, maxLines, maxLines+1)
	copy(truncated, lines[:maxLines])
	return append(truncated, fmt.Sprintf("+ %d more", len(lines)-maxLines))
}

// RunsToText renders run history rows for the console, newest first.
func RunsToText(runs []store.Run) string {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("%-20s  %-20s  %6s  %6s  %6s  %6s\n",
		"Date", "Source", "Items", "Mean", "Median", "Base"))
	for _, run := range runs {
		buf.WriteString(fmt.Sprintf("%-20s  %-20s  %6d  %6.2f  %6.2f  %6.3f\n",
			run.CreatedAt.Format("2006-01-02 15:04:05"),
			run.SourcePlaylist,
			run.ItemCount,
			run.MeanScore,
			run.MedianScore,
			run.ScoreBase,
		))
	}

	return buf.String()
}

// writeSection renders one stat block indented under its label.
func writeSection(buf *bytes.Buffer, label string, s stats.Summary, display func(float64) string) {
	buf.WriteString(fmt.Sprintf("  %s:\n", label))
	buf.WriteString(fmt.Sprintf("    Total: %s\n", display(s.Total)))
	buf.WriteString(fmt.Sprintf("    Avg: %s\n", display(s.Mean)))
	buf.WriteString(fmt.Sprintf("    Median: %s\n", display(s.Median)))
	buf.WriteString(fmt.Sprintf("    Median Total: %s\n", display(s.MedianTotal)))
	buf.WriteString(fmt.Sprintf("    Max: %s\n", display(s.Max)))
	buf.WriteString(fmt.Sprintf("    Min: %s\n", display(s.Min)))
}

func formatScalar(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// formatDays renders a value measured in days as a duration string.
func formatDays(v float64) string {
	return formatDuration(time.Duration(v * 24 * float64(time.Hour)))
}

// formatMinutes renders a value measured in minutes as a duration string.
func formatMinutes(v float64) string {
	return formatDuration(time.Duration(v * float64(time.Minute)))
}

func formatDuration(d time.Duration) string {
	return d.Round(time.Second).String()
}

// humanSize renders a byte count with a binary unit suffix.
func humanSize(v float64) string {
	units := []string{"B", "KB", "MB", "GB", "TB"}
	i := 0
	for v >= 1024 && i < len(units)-1 {
		v /= 1024
		i++
	}
	return fmt.Sprintf("%.1f %s", v, units[i])
}
