// Package ui implements an interactive terminal stats browser using
// bubbletea's Elm architecture.
//
// The TUI provides a three-level drill-down over the collection rollups:
//  1. [GroupingListView] : Pick a partition (album artists, genres, years, ...)
//  2. [GroupListView] : Browse that partition's groups, ranked by mean score
//  3. [DetailView] : Full per-field summary for one group
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View
// pattern. Groupings are computed off the Init command so the first frame
// paints immediately even for large collections.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, q) with
// contextual help displayed via charmbracelet/bubbles/help.
package ui
