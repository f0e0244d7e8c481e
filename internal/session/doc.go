// Package session sequences one full post-processing run for either role:
// threshold check, Cascade reconciliation, key verification, final key length
// planning, seed exchange, and privacy amplification.
//
// The orchestration is asymmetric: the initiator decides the QBER abort,
// drives reconciliation and verification, and samples the Toeplitz seed; the
// responder only consumes. Every failure is fatal for the run and surfaces as
// one of the domain error kinds, so batch drivers can tabulate outcomes.
package session
