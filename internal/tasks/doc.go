// package tasks orchestrates update runs over a media library export.
//
// The core abstraction is Engine, which loads raw item records through the
// Library interface, enriches them with the metric engine, assigns ratings
// and favorites, generates playlists, materializes them through the
// PlaylistWriter interface, and persists snapshots and run history.
package tasks
