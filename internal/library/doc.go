// package library defines the library item model, the metric engine that
// derives per-item rates and scores from interaction history, and the
// pairwise similarity metric.
//
// All scoring is a pure function of an item's interaction history and a
// run-scoped [ScoringConfig]; nothing in this package mutates shared state.
package library
