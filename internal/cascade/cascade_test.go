package cascade_test

import (
	"context"
	"sync"
	"testing"

	"siftkey/internal/auth"
	"siftkey/internal/cascade"
	"siftkey/internal/domain"
	"siftkey/internal/transport"
)

var testAuthKey = []byte("0123456789abcdef0123456789abcdef")

// runPair reconciles two keys concurrently, one goroutine per role, and
// fails the test on any protocol error.
func runPair(t *testing.T, aliceKey, bobKey domain.BitString, qber float64, passes int) (alice, bob *cascade.Reconciler) {
	t.Helper()
	ta, tb := transport.Pipe()
	defer ta.Close()

	alice = cascade.New(auth.NewChannel(ta, testAuthKey), domain.Initiator, aliceKey, 42, passes, qber)
	bob = cascade.New(auth.NewChannel(tb, testAuthKey), domain.Responder, bobKey, 42, passes, qber)

	ctx := context.Background()
	var wg sync.WaitGroup
	var aliceLeak, bobLeak int
	var aliceErr, bobErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		bobLeak, bobErr = bob.Reconcile(ctx)
	}()
	aliceLeak, aliceErr = alice.Reconcile(ctx)
	wg.Wait()

	if aliceErr != nil {
		t.Fatalf("initiator: %v", aliceErr)
	}
	if bobErr != nil {
		t.Fatalf("responder: %v", bobErr)
	}
	if aliceLeak != bobLeak {
		t.Fatalf("leakage disagrees: initiator %d, responder %d", aliceLeak, bobLeak)
	}
	return alice, bob
}

func TestReconcileCorrectsScatteredErrors(t *testing.T) {
	aliceKey, err := domain.RandomBitString(256)
	if err != nil {
		t.Fatalf("RandomBitString: %v", err)
	}
	bobKey := aliceKey.Clone()
	// Three errors in three different first-pass blocks (block size 15 for
	// a 5% estimate), so the first pass must already locate all of them.
	for _, idx := range []int{3, 100, 200} {
		bobKey[idx] ^= 1
	}

	alice, bob := runPair(t, aliceKey, bobKey, 0.05, 4)

	if !alice.Key().Equal(bob.Key()) {
		d, _ := alice.Key().HammingDistance(bob.Key())
		t.Fatalf("keys still differ in %d positions", d)
	}
	if !bob.Key().Equal(aliceKey) {
		t.Fatal("responder did not converge to the initiator's key")
	}
	if got := bob.Corrections(); got != 3 {
		t.Fatalf("responder flipped %d bits, want 3", got)
	}
	// Every block check and every binary search step reveals one parity bit.
	if alice.Leakage() < 3 {
		t.Fatalf("leakage %d, want at least one bit per correction", alice.Leakage())
	}
}

func TestReconcileBacktracksAcrossPasses(t *testing.T) {
	aliceKey, err := domain.RandomBitString(1024)
	if err != nil {
		t.Fatalf("RandomBitString: %v", err)
	}
	bobKey := aliceKey.Clone()
	// Two adjacent errors inside one first-pass block (size 4 for a 20%
	// estimate): the first pass sees even parity and misses both. A later
	// permuted pass separates them, and fixing the first must expose the
	// second through the pass-0 history record.
	bobKey[0] ^= 1
	bobKey[1] ^= 1

	_, bob := runPair(t, aliceKey, bobKey, 0.2, 4)

	if !bob.Key().Equal(aliceKey) {
		t.Fatal("responder did not converge to the initiator's key")
	}
	if got := bob.Corrections(); got != 2 {
		t.Fatalf("responder flipped %d bits, want 2", got)
	}
}

func TestReconcileIdenticalKeys(t *testing.T) {
	key, err := domain.RandomBitString(128)
	if err != nil {
		t.Fatalf("RandomBitString: %v", err)
	}
	alice, bob := runPair(t, key.Clone(), key.Clone(), 0.05, 3)

	if bob.Corrections() != 0 || alice.Corrections() != 0 {
		t.Fatalf("corrections on identical keys: %d/%d", alice.Corrections(), bob.Corrections())
	}
	// Block parity checks still leak, even with nothing to fix.
	if alice.Leakage() == 0 {
		t.Fatal("expected nonzero leakage from block parity checks")
	}
}

func TestInitialBlockSize(t *testing.T) {
	cases := []struct {
		qber float64
		want int
	}{
		{0, 64},
		{-0.1, 64},
		{0.5, 4},
		{0.9, 4},
		{0.01, 73},
		{0.05, 15},
		{0.11, 7},
		{0.3, 4}, // round(0.73/0.3) = 2, clamped to the floor of 4
	}
	for _, tc := range cases {
		if got := cascade.InitialBlockSize(tc.qber); got != tc.want {
			t.Errorf("InitialBlockSize(%v) = %d, want %d", tc.qber, got, tc.want)
		}
	}
}
