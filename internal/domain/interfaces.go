package domain

import "context"

// Transport moves opaque frames between exactly two named parties, reliably
// and in order. Implementations do not interpret frame contents.
type Transport interface {
	Send(ctx context.Context, frame []byte) error
	Receive(ctx context.Context) ([]byte, error)
	Close() error
}

// Channel is an authenticated message channel. Send serialises the payload
// canonically, tags it, and transmits one frame; Receive blocks for a frame,
// verifies the tag before any use of the payload, and rejects headers outside
// expected (when non-empty) with ErrProtocol.
type Channel interface {
	Send(ctx context.Context, header Header, payload []byte) error
	Receive(ctx context.Context, expected ...Header) (Message, error)
}

// RawKey is what the quantum-phase collaborator hands the pipeline: the raw
// measured bits, the per-index basis-match flags from sifting, and the
// sampled error-rate estimate in [0,1].
type RawKey struct {
	Bits      BitString
	Kept      BitString
	ErrorRate float64
}

// Sifted returns the bits that survived sifting. If no mask was provided the
// bits are used as-is.
func (r RawKey) Sifted() BitString {
	if r.Kept == nil {
		return r.Bits.Clone()
	}
	return r.Bits.Select(r.Kept)
}

// Result carries the outcome of a successful run plus diagnostics.
type Result struct {
	SecretKey BitString
	QBER      float64
	Leakage   int
	Length    int
}
