package store

import (
	"fmt"
	"sort"
	"time"

	"github.com/ajmeyer/rotation/internal/library"
	"github.com/ajmeyer/rotation/internal/shared"
	"github.com/ajmeyer/rotation/internal/stats"
)

// SourceRecord is one raw item as exported by the host media player, before
// any derived fields exist. Validated once at load; the core never touches
// loose maps.
type SourceRecord struct {
	ID              int64      `json:"dbid"`
	Name            string     `json:"name"`
	Artist          string     `json:"track_artist"`
	Album           string     `json:"album"`
	AlbumArtist     string     `json:"album_artist"`
	Genre           string     `json:"genre"`
	Year            int        `json:"year"`
	TrackNumber     int        `json:"track_number"`
	DurationSeconds float64    `json:"duration"`
	Size            int64      `json:"size"`
	Compilation     bool       `json:"compilation"`
	PlayCount       int        `json:"play_count"`
	SkipCount       int        `json:"skip_count"`
	Rating          int        `json:"rating"`
	Favorite        bool       `json:"favorite"`
	Disliked        bool       `json:"disliked"`
	DateAdded       time.Time  `json:"date_added"`
	LastPlayed      *time.Time `json:"last_played"`
	LastSkipped     *time.Time `json:"last_skipped"`
	Playlists       []string   `json:"playlists"`
}

// Validate checks the fields the metric engine cannot work without.
func (r SourceRecord) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("%w: record %d has no name", shared.ErrInvalidData, r.ID)
	}
	if r.DateAdded.IsZero() {
		return fmt.Errorf("%w: %q has no added date", shared.ErrInvalidData, r.Name)
	}
	if r.DurationSeconds <= 0 {
		return fmt.Errorf("%w: %q has non-positive duration", shared.ErrInvalidData, r.Name)
	}
	if r.Rating < 0 || r.Rating > 100 {
		return fmt.Errorf("%w: %q rating %d out of range", shared.ErrInvalidData, r.Name, r.Rating)
	}
	return nil
}

// Item converts the raw record into the in-memory model. Derived fields stay
// zero until the metric engine enriches the item.
func (r SourceRecord) Item() *library.Item {
	return &library.Item{
		ID:          r.ID,
		Title:       r.Name,
		Artist:      r.Artist,
		Album:       r.Album,
		AlbumArtist: r.AlbumArtist,
		Genre:       r.Genre,
		Year:        r.Year,
		TrackNumber: r.TrackNumber,
		Duration:    time.Duration(r.DurationSeconds * float64(time.Second)),
		Size:        r.Size,
		Compilation: r.Compilation,
		PlayCount:   r.PlayCount,
		SkipCount:   r.SkipCount,
		Rating:      r.Rating,
		Favorite:    r.Favorite,
		Disliked:    r.Disliked,
		Added:       r.DateAdded,
		LastPlayed:  r.LastPlayed,
		LastSkipped: r.LastSkipped,
		Playlists:   r.Playlists,
	}
}

// ItemRecord is the persisted form of one enriched item. Units follow the
// snapshot format: durations in minutes, intervals in days, ages in years,
// ratings in stars. Index is the item's position in the saved order.
type ItemRecord struct {
	Index                    int      `json:"index"`
	Name                     string   `json:"name"`
	Artist                   string   `json:"track_artist"`
	Album                    string   `json:"album"`
	AlbumArtist              string   `json:"album_artist"`
	Genre                    string   `json:"genre"`
	Year                     int      `json:"year"`
	TrackNumber              int      `json:"track_number"`
	PlayCount                int      `json:"play_count"`
	SkipCount                int      `json:"skip_count"`
	DurationMinutes          float64  `json:"duration"`
	Rating                   float64  `json:"rating"`
	DateAdded                string   `json:"date_added"`
	YearsSinceAdded          float64  `json:"years_since_added"`
	DaysSinceLastPlayed      float64  `json:"days_since_last_played"`
	DaysSinceLastSkipped     float64  `json:"days_since_last_skipped"`
	DaysSinceLastInteraction float64  `json:"days_since_last_interaction"`
	PlayRate                 float64  `json:"play_rate"`
	SkipRate                 float64  `json:"skip_rate"`
	ListenRate               float64  `json:"listen_rate"`
	NetRate                  float64  `json:"net_rate"`
	DaysBetweenPlays         float64  `json:"days_between_plays"`
	Score                    float64  `json:"score"`
	DaysOverdue              float64  `json:"days_overdue"`
	Overdue                  float64  `json:"overdue"`
	Playlists                []string `json:"playlists"`
	Compilation              bool     `json:"compilation"`
	Favorite                 bool     `json:"favorite"`
	Disliked                 bool     `json:"disliked"`
	Size                     int64    `json:"size"`
	ID                       int64    `json:"dbid"`
}

// NewItemRecord snapshots one enriched item. Playlist membership is sorted
// so records compare stably across runs.
func NewItemRecord(it *library.Item) ItemRecord {
	playlists := make([]string, len(it.Playlists))
	copy(playlists, it.Playlists)
	sort.Strings(playlists)

	return ItemRecord{
		Name:                     it.Title,
		Artist:                   it.Artist,
		Album:                    it.Album,
		AlbumArtist:              it.AlbumArtist,
		Genre:                    it.Genre,
		Year:                     it.Year,
		TrackNumber:              it.TrackNumber,
		PlayCount:                it.PlayCount,
		SkipCount:                it.SkipCount,
		DurationMinutes:          library.Minutes(it.Duration),
		Rating:                   float64(it.Rating) / 20,
		DateAdded:                it.Added.Format(time.RFC3339),
		YearsSinceAdded:          library.Years(it.SinceAdded),
		DaysSinceLastPlayed:      library.Days(it.SinceLastPlayed),
		DaysSinceLastSkipped:     library.Days(it.SinceLastSkipped),
		DaysSinceLastInteraction: library.Days(it.SinceLastInteraction),
		PlayRate:                 it.PlayRate,
		SkipRate:                 it.SkipRate,
		ListenRate:               library.Minutes(it.ListenRate),
		NetRate:                  it.NetRate,
		DaysBetweenPlays:         library.Days(it.TimeBetweenPlays),
		Score:                    it.Score,
		DaysOverdue:              library.Days(it.OverdueDuration),
		Overdue:                  it.Overdue,
		Playlists:                playlists,
		Compilation:              it.Compilation,
		Favorite:                 it.Favorite,
		Disliked:                 it.Disliked,
		Size:                     it.Size,
		ID:                       it.ID,
	}
}

// NewItemRecords snapshots an ordered collection, stamping each record with
// its position.
func NewItemRecords(items []*library.Item) []ItemRecord {
	records := make([]ItemRecord, len(items))
	for i, it := range items {
		rec := NewItemRecord(it)
		rec.Index = i
		records[i] = rec
	}
	return records
}

// GroupRecord is the persisted form of one group summary.
type GroupRecord struct {
	Index int `json:"index"`
	stats.GroupSummary
}

// NewGroupRecords wraps group summaries in saved order.
func NewGroupRecords(groups []stats.GroupSummary) []GroupRecord {
	records := make([]GroupRecord, len(groups))
	for i, g := range groups {
		records[i] = GroupRecord{Index: i, GroupSummary: g}
	}
	return records
}
