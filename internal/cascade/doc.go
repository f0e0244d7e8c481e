// Package cascade implements interactive Cascade error reconciliation over an
// authenticated channel.
//
// The two roles are fixed for a whole run: the initiator drives every parity
// query and binary search, the responder answers queries and flips the bits
// it is told to. The responder's key therefore converges to the initiator's.
// Request/response pairs alternate strictly; no pipelining is possible
// because every query depends on the previous answer.
//
// Every parity bit the responder reveals is counted as leakage; the total is
// returned by Reconcile and later subtracted from the final key length.
package cascade
