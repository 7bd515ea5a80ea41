package library

import (
	"fmt"
	"time"
)

// Durations used throughout the rate math. A "year" matches the calendar
// average the reference data was recorded against (365.25 days).
const (
	OneDay   = 24 * time.Hour
	OneMonth = 30 * OneDay
	OneYear  = time.Duration(365.25 * 24 * float64(time.Hour))

	// NeverHorizon stands in for "not due on any practical horizon" and for
	// the time since an interaction that never happened.
	NeverHorizon = 100 * OneYear
)

// Item is one library entry: immutable identity and descriptive attributes,
// raw interaction history, and the derived fields computed once per run by
// [Enrich].
type Item struct {
	ID          int64
	Title       string
	Artist      string
	Album       string
	AlbumArtist string
	Genre       string
	Year        int
	TrackNumber int
	Duration    time.Duration
	Size        int64
	Compilation bool

	PlayCount int
	SkipCount int
	Rating    int // 0..100
	Favorite  bool
	Disliked  bool
	Added     time.Time
	// LastPlayed and LastSkipped are nil when the interaction never happened.
	LastPlayed  *time.Time
	LastSkipped *time.Time

	Playlists []string

	// Derived fields, owned by the item but computed by Enrich.
	SinceAdded           time.Duration
	SinceLastPlayed      time.Duration
	SinceLastSkipped     time.Duration
	SinceLastInteraction time.Duration
	PlayRate             float64       // plays per year
	SkipRate             float64       // skips per year
	ListenRate           time.Duration // listening time per year
	NetRate              float64
	Score                float64
	TimeBetweenPlays     time.Duration
	OverdueDuration      time.Duration
	Overdue              float64
}

// Display returns the item's human-readable "Title - Artist" form.
func (it *Item) Display() string {
	return fmt.Sprintf("%s - %s", it.Title, it.Artist)
}

// InPlaylist reports whether the item is a member of the named playlist.
func (it *Item) InPlaylist(name string) bool {
	for _, p := range it.Playlists {
		if p == name {
			return true
		}
	}
	return false
}

// Years converts a duration to fractional years.
func Years(d time.Duration) float64 {
	return float64(d) / float64(OneYear)
}

// Days converts a duration to fractional days.
func Days(d time.Duration) float64 {
	return float64(d) / float64(OneDay)
}

// Minutes converts a duration to fractional minutes.
func Minutes(d time.Duration) float64 {
	return float64(d) / float64(time.Minute)
}
