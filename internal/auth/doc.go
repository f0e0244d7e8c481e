// Package auth wraps a raw transport with per-message authentication in the
// Wegman-Carter style: every frame carries an HMAC-SHA256 tag over the
// canonical header and payload bytes, keyed by a pre-shared symmetric key.
//
// Tag verification always precedes any use of a received payload, and tags
// are compared in constant time. A mismatch is fatal for the run: it may
// indicate active tampering and is never silently retried.
package auth
