// Package parity provides the pure bit arithmetic underneath Cascade:
// parity computation over index sets, deterministic keyed permutations, and
// block partitioning. Nothing here performs I/O.
//
// Permutations are derived from a SHAKE-256 stream keyed by (seed, pass), so
// both parties agree on block structure for every pass without exchanging a
// single message. Re-deriving a permutation with a different seed mid-run
// invalidates all history-based backtracking.
package parity
