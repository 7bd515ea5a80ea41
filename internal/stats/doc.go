// package stats computes distributional summaries over groups of library
// items and reports run-over-run snapshot differences.
package stats
