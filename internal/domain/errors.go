package domain

import "errors"

// Fatal error kinds of a run. None of these is retried: reconciliation state
// is not idempotent across a lost or tampered message, so every failure
// invalidates the raw key material for the run.
var (
	// ErrChannel reports a transport-level failure (closed peer, timeout).
	ErrChannel = errors.New("channel failure")

	// ErrIntegrity reports an authentication tag mismatch. Logged as a
	// security event by the caller; never silently retried.
	ErrIntegrity = errors.New("authentication tag mismatch")

	// ErrProtocol reports an unexpected header or malformed payload.
	ErrProtocol = errors.New("protocol violation")

	// ErrVerification reports that the reconciled keys provably differ.
	ErrVerification = errors.New("key verification failed")

	// ErrInsufficientKey reports that the computed final key length fell
	// below the configured minimum. A designed abort path, not a bug.
	ErrInsufficientKey = errors.New("insufficient final key length")

	// ErrQBERThreshold reports that the sampled error estimate exceeded the
	// abort threshold before reconciliation started.
	ErrQBERThreshold = errors.New("error rate above abort threshold")
)
