package session_test

import (
	"context"
	"errors"
	"testing"

	"siftkey/internal/auth"
	"siftkey/internal/domain"
	"siftkey/internal/session"
	"siftkey/internal/transport"
)

var testAuthKey = []byte("0123456789abcdef0123456789abcdef")

// runSession executes one full run for both roles over an in-process pipe
// and returns each side's outcome. Each side closes the pipe once it is
// done so a failure on one side unblocks the other.
func runSession(t *testing.T, aliceRaw, bobRaw domain.RawKey, params session.Params) (aliceRes, bobRes domain.Result, aliceErr, bobErr error) {
	t.Helper()
	ta, tb := transport.Pipe()

	ctx := context.Background()
	done := make(chan struct{})
	go func() {
		defer close(done)
		bob := session.New(auth.NewChannel(tb, testAuthKey), params, nil)
		bobRes, bobErr = bob.Run(ctx, domain.Responder, bobRaw)
		if bobErr != nil {
			tb.Close()
		}
	}()

	alice := session.New(auth.NewChannel(ta, testAuthKey), params, nil)
	aliceRes, aliceErr = alice.Run(ctx, domain.Initiator, aliceRaw)
	ta.Close()
	<-done
	return aliceRes, bobRes, aliceErr, bobErr
}

func allKept(n int) domain.BitString {
	kept := domain.NewBitString(n)
	for i := range kept {
		kept[i] = 1
	}
	return kept
}

func TestRunProducesMatchingKeys(t *testing.T) {
	const n = 1000
	bits, err := domain.RandomBitString(n)
	if err != nil {
		t.Fatalf("RandomBitString: %v", err)
	}
	bobBits := bits.Clone()
	// Fifty errors, spaced wider than the first-pass block size so each
	// block holds at most one.
	for i := 0; i < 50; i++ {
		bobBits[20*i] ^= 1
	}

	aliceRaw := domain.RawKey{Bits: bits, Kept: allKept(n), ErrorRate: 0.05}
	bobRaw := domain.RawKey{Bits: bobBits, Kept: allKept(n), ErrorRate: 0.05}

	aliceRes, bobRes, aliceErr, bobErr := runSession(t, aliceRaw, bobRaw, session.DefaultParams())
	if aliceErr != nil {
		t.Fatalf("initiator: %v", aliceErr)
	}
	if bobErr != nil {
		t.Fatalf("responder: %v", bobErr)
	}
	if !aliceRes.SecretKey.Equal(bobRes.SecretKey) {
		t.Fatal("secret keys differ")
	}
	if aliceRes.Length <= 0 || len(aliceRes.SecretKey) != aliceRes.Length {
		t.Fatalf("length %d with %d key bits", aliceRes.Length, len(aliceRes.SecretKey))
	}
	if aliceRes.Length >= n {
		t.Fatalf("amplification did not compress: %d bits from %d", aliceRes.Length, n)
	}
	if aliceRes.QBER != 0.05 {
		t.Fatalf("QBER %v, want 0.05", aliceRes.QBER)
	}
	if aliceRes.Leakage != bobRes.Leakage {
		t.Fatalf("leakage disagrees: %d vs %d", aliceRes.Leakage, bobRes.Leakage)
	}
}

func TestRunAbortsAboveThreshold(t *testing.T) {
	const n = 200
	bits, err := domain.RandomBitString(n)
	if err != nil {
		t.Fatalf("RandomBitString: %v", err)
	}
	raw := domain.RawKey{Bits: bits, Kept: allKept(n), ErrorRate: 0.5}

	_, _, aliceErr, bobErr := runSession(t, raw, raw, session.DefaultParams())
	if !errors.Is(aliceErr, domain.ErrQBERThreshold) {
		t.Fatalf("initiator error = %v, want ErrQBERThreshold", aliceErr)
	}
	if !errors.Is(bobErr, domain.ErrQBERThreshold) {
		t.Fatalf("responder error = %v, want ErrQBERThreshold", bobErr)
	}
}

func TestRunRejectsShortKeys(t *testing.T) {
	// 200 sifted bits cannot cover the verification tag plus the security
	// margin, so planning must refuse on both sides.
	const n = 200
	bits, err := domain.RandomBitString(n)
	if err != nil {
		t.Fatalf("RandomBitString: %v", err)
	}
	raw := domain.RawKey{Bits: bits, Kept: allKept(n), ErrorRate: 0.05}

	_, _, aliceErr, bobErr := runSession(t, raw, raw, session.DefaultParams())
	if !errors.Is(aliceErr, domain.ErrInsufficientKey) {
		t.Fatalf("initiator error = %v, want ErrInsufficientKey", aliceErr)
	}
	if !errors.Is(bobErr, domain.ErrInsufficientKey) {
		t.Fatalf("responder error = %v, want ErrInsufficientKey", bobErr)
	}
}

func TestRunDetectsLengthDesync(t *testing.T) {
	aliceBits, err := domain.RandomBitString(100)
	if err != nil {
		t.Fatalf("RandomBitString: %v", err)
	}
	bobBits, err := domain.RandomBitString(90)
	if err != nil {
		t.Fatalf("RandomBitString: %v", err)
	}
	aliceRaw := domain.RawKey{Bits: aliceBits, Kept: allKept(100), ErrorRate: 0.01}
	bobRaw := domain.RawKey{Bits: bobBits, Kept: allKept(90), ErrorRate: 0.01}

	_, _, _, bobErr := runSession(t, aliceRaw, bobRaw, session.DefaultParams())
	if !errors.Is(bobErr, domain.ErrProtocol) {
		t.Fatalf("responder error = %v, want ErrProtocol", bobErr)
	}
}

func TestRunRejectsForgedTraffic(t *testing.T) {
	const n = 300
	bits, err := domain.RandomBitString(n)
	if err != nil {
		t.Fatalf("RandomBitString: %v", err)
	}
	raw := domain.RawKey{Bits: bits, Kept: allKept(n), ErrorRate: 0.02}

	ta, tb := transport.Pipe()
	ctx := context.Background()

	var bobErr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		// The responder holds a different MAC key, so the very first frame
		// fails authentication.
		wrongKey := []byte("ffffffffffffffffffffffffffffffff")
		bob := session.New(auth.NewChannel(tb, wrongKey), session.DefaultParams(), nil)
		_, bobErr = bob.Run(ctx, domain.Responder, raw)
		tb.Close()
	}()

	alice := session.New(auth.NewChannel(ta, testAuthKey), session.DefaultParams(), nil)
	_, aliceErr := alice.Run(ctx, domain.Initiator, raw)
	ta.Close()
	<-done

	if !errors.Is(bobErr, domain.ErrIntegrity) {
		t.Fatalf("responder error = %v, want ErrIntegrity", bobErr)
	}
	if aliceErr == nil {
		t.Fatal("initiator completed against a peer that rejected every frame")
	}
}

func TestRunSiftsBeforeReconciling(t *testing.T) {
	// Discarded positions must not reach the pipeline: both parties sift
	// to the same 160 bits and the run succeeds only on those.
	const n = 200
	bits, err := domain.RandomBitString(n)
	if err != nil {
		t.Fatalf("RandomBitString: %v", err)
	}
	kept := allKept(n)
	for i := 0; i < 40; i++ {
		kept[5*i] = 0
	}
	aliceRaw := domain.RawKey{Bits: bits, Kept: kept, ErrorRate: 0.5}
	bobRaw := domain.RawKey{Bits: bits.Clone(), Kept: kept.Clone(), ErrorRate: 0.5}

	// The 0.5 estimate aborts at the threshold, proving both sides got to
	// the announcement with an equal sifted length of 160.
	_, _, aliceErr, bobErr := runSession(t, aliceRaw, bobRaw, session.DefaultParams())
	if !errors.Is(aliceErr, domain.ErrQBERThreshold) || !errors.Is(bobErr, domain.ErrQBERThreshold) {
		t.Fatalf("errors = %v / %v, want ErrQBERThreshold on both sides", aliceErr, bobErr)
	}
}
