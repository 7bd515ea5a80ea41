// package sequence orders scored library items for playback: a weighted
// without-replacement resample of the full collection, a duration-budgeted
// mixtape cut from that order, and a similarity-guided meander walk.
package sequence
