// package store persists run outputs: JSON snapshots of enriched items,
// totals, and group summaries under the output directory, and a SQLite run
// history table with embedded schema migrations.
package store
