// Package verify performs the post-reconciliation key equality check.
//
// One party samples a random salt, evaluates a polynomial hash of its key
// over GF(2^128) at that salt, and sends both over the authenticated channel;
// the peer recomputes the hash on its own key and answers MATCH or MISMATCH.
// Two equal keys always match; keys that differ collide with probability at
// most L/2^128 for a key of L bits, taken over the random salt.
//
// A mismatch means reconciliation did not converge. The candidate key must
// never be used.
package verify
