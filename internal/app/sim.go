package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat/distuv"

	"siftkey/internal/domain"
	"siftkey/internal/transport"
)

// SimOptions control the in-process simulation of the quantum phase: both
// parties run in one process over an in-memory pipe, with independent
// bit-flip noise standing in for the quantum channel.
type SimOptions struct {
	Trials         int
	RawBits        int
	NoiseRate      float64 // per-bit flip probability between the two raw keys
	SampleFraction float64 // fraction of sifted bits sacrificed for estimation
	RNGSeed        uint64  // seeds noise and sampling, 0 for nondeterministic
}

// SimStats tabulates outcomes across trials.
type SimStats struct {
	Trials     int
	Successes  int
	Aborts     map[string]int // error kind -> count
	KeyBits    int            // total secret bits across successful trials
	MeanQBER   float64
	MeanLeak   float64
	mismatches int
}

// MeanKeyLength is the average final key length over successful trials.
func (s SimStats) MeanKeyLength() float64 {
	if s.Successes == 0 {
		return 0
	}
	return float64(s.KeyBits) / float64(s.Successes)
}

// Simulate runs opts.Trials end-to-end sessions and tabulates the outcomes.
// A trial where both parties succeed but disagree on the secret key is
// reported as an error: verification is supposed to make that impossible.
func Simulate(ctx context.Context, cfg Config, opts SimOptions, logger *zap.Logger) (SimStats, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	stats := SimStats{Trials: opts.Trials, Aborts: make(map[string]int)}

	var src rand.Source
	if opts.RNGSeed != 0 {
		src = rand.NewPCG(opts.RNGSeed, opts.RNGSeed^0x9e3779b97f4a7c15)
	} else {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	for trial := 0; trial < opts.Trials; trial++ {
		aliceRaw, bobRaw, err := synthesiseRawKeys(src, opts)
		if err != nil {
			return stats, err
		}

		aliceRes, bobRes, aliceErr, bobErr := runPair(ctx, cfg, aliceRaw, bobRaw, logger)
		if aliceErr != nil || bobErr != nil {
			kind := abortKind(aliceErr)
			if kind == "" {
				kind = abortKind(bobErr)
			}
			stats.Aborts[kind]++
			logger.Debug("trial aborted", zap.Int("trial", trial), zap.String("kind", kind))
			continue
		}
		if !aliceRes.SecretKey.Equal(bobRes.SecretKey) {
			stats.mismatches++
			continue
		}
		stats.Successes++
		stats.KeyBits += aliceRes.Length
		stats.MeanQBER += aliceRes.QBER
		stats.MeanLeak += float64(aliceRes.Leakage)
	}

	if stats.Successes > 0 {
		stats.MeanQBER /= float64(stats.Successes)
		stats.MeanLeak /= float64(stats.Successes)
	}
	if stats.mismatches > 0 {
		return stats, fmt.Errorf("%d trials produced mismatched secret keys despite passing verification", stats.mismatches)
	}
	return stats, nil
}

// synthesiseRawKeys builds correlated raw keys: Alice's bits are uniform,
// Bob's differ per-bit with probability NoiseRate, and a sacrificed sample
// yields the pre-reconciliation error estimate both parties consume.
func synthesiseRawKeys(src rand.Source, opts SimOptions) (alice, bob domain.RawKey, err error) {
	n := opts.RawBits
	rng := rand.New(src)
	aliceBits, err := domain.RandomBitString(n)
	if err != nil {
		return alice, bob, err
	}
	flip := distuv.Bernoulli{P: opts.NoiseRate, Src: src}
	bobBits := aliceBits.Clone()
	for i := range bobBits {
		if flip.Rand() == 1 {
			bobBits[i] ^= 1
		}
	}

	// Sacrifice a random sample for estimation; sampled positions are
	// removed from both keys via the sift mask.
	kept := make(domain.BitString, n)
	for i := range kept {
		kept[i] = 1
	}
	sampleSize := int(opts.SampleFraction * float64(n))
	sampleErrors := 0
	for _, i := range rng.Perm(n)[:sampleSize] {
		kept[i] = 0
		if aliceBits[i] != bobBits[i] {
			sampleErrors++
		}
	}
	estimate := 0.0
	if sampleSize > 0 {
		estimate = float64(sampleErrors) / float64(sampleSize)
	}

	alice = domain.RawKey{Bits: aliceBits, Kept: kept, ErrorRate: estimate}
	bob = domain.RawKey{Bits: bobBits, Kept: kept.Clone(), ErrorRate: estimate}
	return alice, bob, nil
}

// runPair runs both roles concurrently over an in-memory pipe, one goroutine
// per party, and waits for both to finish.
func runPair(ctx context.Context, cfg Config, aliceRaw, bobRaw domain.RawKey, logger *zap.Logger) (aliceRes, bobRes domain.Result, aliceErr, bobErr error) {
	aliceEnd, bobEnd := transport.Pipe()

	done := make(chan struct{})
	go func() {
		defer close(done)
		bobRes, bobErr = Run(ctx, cfg, domain.Responder, bobEnd, bobRaw, logger)
	}()
	aliceRes, aliceErr = Run(ctx, cfg, domain.Initiator, aliceEnd, aliceRaw, logger)
	// Unblock the responder if the initiator bailed out mid-protocol.
	aliceEnd.Close()
	<-done
	return aliceRes, bobRes, aliceErr, bobErr
}

func abortKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, domain.ErrQBERThreshold):
		return "qber_threshold"
	case errors.Is(err, domain.ErrVerification):
		return "verification"
	case errors.Is(err, domain.ErrInsufficientKey):
		return "insufficient_key"
	case errors.Is(err, domain.ErrIntegrity):
		return "integrity"
	case errors.Is(err, domain.ErrProtocol):
		return "protocol"
	case errors.Is(err, domain.ErrChannel):
		return "channel"
	default:
		return "other"
	}
}
