package stats

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/ajmeyer/rotation/internal/library"
	"github.com/ajmeyer/rotation/internal/shared"
)

// GroupSummary is the statistical rollup of one named group of items, with
// one [Summary] per tracked numeric field. Built once per grouping key per
// run; never mutated afterward.
//
// Units follow the snapshot format: durations in minutes, intervals in days,
// ages in years, ratings in stars (rating / 20).
type GroupSummary struct {
	Name  string `json:"name"`
	Count int    `json:"count"`

	Score               Summary `json:"score"`
	PlayRate            Summary `json:"play_rate"`
	ListenRate          Summary `json:"listen_rate"`
	SkipRate            Summary `json:"skip_rate"`
	NetRate             Summary `json:"net_rate"`
	DaysBetweenPlays    Summary `json:"days_between_plays"`
	Overdue             Summary `json:"overdue"`
	Duration            Summary `json:"duration"`
	PlayCount           Summary `json:"play_count"`
	SkipCount           Summary `json:"skip_count"`
	Rating              Summary `json:"rating"`
	Year                Summary `json:"year"`
	TrackNumber         Summary `json:"track_number"`
	YearsSinceAdded     Summary `json:"years_since_added"`
	DaysSinceLastPlayed Summary `json:"days_since_last_played"`
	PlaylistCount       Summary `json:"num_playlists"`
	Size                Summary `json:"size"`
}

// NewGroupSummary builds a GroupSummary over a non-empty group of enriched
// items.
func NewGroupSummary(name string, items []*library.Item) (GroupSummary, error) {
	if len(items) == 0 {
		return GroupSummary{}, fmt.Errorf("%w: group %q has no items", shared.ErrEmptyInput, name)
	}

	g := GroupSummary{Name: name, Count: len(items)}
	fields := []struct {
		target *Summary
		value  func(*library.Item) float64
	}{
		{&g.Score, func(it *library.Item) float64 { return it.Score }},
		{&g.PlayRate, func(it *library.Item) float64 { return it.PlayRate }},
		{&g.ListenRate, func(it *library.Item) float64 { return library.Minutes(it.ListenRate) }},
		{&g.SkipRate, func(it *library.Item) float64 { return it.SkipRate }},
		{&g.NetRate, func(it *library.Item) float64 { return it.NetRate }},
		{&g.DaysBetweenPlays, func(it *library.Item) float64 { return library.Days(it.TimeBetweenPlays) }},
		{&g.Overdue, func(it *library.Item) float64 { return it.Overdue }},
		{&g.Duration, func(it *library.Item) float64 { return library.Minutes(it.Duration) }},
		{&g.PlayCount, func(it *library.Item) float64 { return float64(it.PlayCount) }},
		{&g.SkipCount, func(it *library.Item) float64 { return float64(it.SkipCount) }},
		{&g.Rating, func(it *library.Item) float64 { return float64(it.Rating) / 20 }},
		{&g.Year, func(it *library.Item) float64 { return float64(it.Year) }},
		{&g.TrackNumber, func(it *library.Item) float64 { return float64(it.TrackNumber) }},
		{&g.YearsSinceAdded, func(it *library.Item) float64 { return library.Years(it.SinceAdded) }},
		{&g.DaysSinceLastPlayed, func(it *library.Item) float64 { return library.Days(it.SinceLastPlayed) }},
		{&g.PlaylistCount, func(it *library.Item) float64 { return float64(len(it.Playlists)) }},
		{&g.Size, func(it *library.Item) float64 { return float64(it.Size) }},
	}

	values := make([]float64, len(items))
	for _, f := range fields {
		for i, it := range items {
			values[i] = f.value(it)
		}
		summary, err := Summarize(values)
		if err != nil {
			return GroupSummary{}, err
		}
		*f.target = summary
	}

	return g, nil
}

// Grouping is one partition of the library (e.g. by genre) with a summary
// per distinct key, sorted by descending mean score.
type Grouping struct {
	Name   string
	Groups []GroupSummary
}

// KeyFunc yields the grouping keys an item belongs to. Most partitions give
// exactly one key; the playlist partition gives one per membership.
type KeyFunc func(*library.Item) []string

func one(key string) []string { return []string{key} }

// StandardKeys lists the standard library partitions in report order.
func StandardKeys() []struct {
	Name string
	Key  KeyFunc
} {
	return []struct {
		Name string
		Key  KeyFunc
	}{
		{"album_artists", func(it *library.Item) []string { return one(it.AlbumArtist) }},
		{"track_artists", func(it *library.Item) []string { return one(it.Artist) }},
		{"albums", func(it *library.Item) []string { return one(fmt.Sprintf("%s (%s)", it.Album, it.AlbumArtist)) }},
		{"genres", func(it *library.Item) []string { return one(it.Genre) }},
		{"years", func(it *library.Item) []string { return one(strconv.Itoa(it.Year)) }},
		{"track_numbers", func(it *library.Item) []string { return one(strconv.Itoa(it.TrackNumber)) }},
		{"playlists", func(it *library.Item) []string { return it.Playlists }},
	}
}

// GroupBy partitions items by the given key function and summarizes each
// non-empty group, sorted by descending mean score (stable for ties).
func GroupBy(name string, items []*library.Item, key KeyFunc) (Grouping, error) {
	buckets := make(map[string][]*library.Item)
	var order []string
	for _, it := range items {
		for _, k := range key(it) {
			if _, seen := buckets[k]; !seen {
				order = append(order, k)
			}
			buckets[k] = append(buckets[k], it)
		}
	}

	grouping := Grouping{Name: name, Groups: make([]GroupSummary, 0, len(order))}
	for _, k := range order {
		summary, err := NewGroupSummary(k, buckets[k])
		if err != nil {
			return Grouping{}, err
		}
		grouping.Groups = append(grouping.Groups, summary)
	}

	sort.SliceStable(grouping.Groups, func(i, j int) bool {
		return grouping.Groups[i].Score.Mean > grouping.Groups[j].Score.Mean
	})

	return grouping, nil
}

// StandardGroupings builds all standard partitions over the collection.
func StandardGroupings(items []*library.Item) ([]Grouping, error) {
	keys := StandardKeys()
	groupings := make([]Grouping, 0, len(keys))
	for _, k := range keys {
		grouping, err := GroupBy(k.Name, items, k.Key)
		if err != nil {
			return nil, err
		}
		if len(grouping.Groups) == 0 {
			continue
		}
		groupings = append(groupings, grouping)
	}
	return groupings, nil
}
