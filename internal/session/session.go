package session

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"siftkey/internal/cascade"
	"siftkey/internal/domain"
	"siftkey/internal/privacy"
	"siftkey/internal/util/memzero"
	"siftkey/internal/verify"
)

// Params are the protocol knobs. Everything here must be identical on both
// parties; role-specific randomness (verification salt, Toeplitz seed) is
// transmitted, never independently generated.
type Params struct {
	Seed          uint64  // shared permutation seed
	Passes        int     // Cascade passes
	QBERThreshold float64 // abort when the sampled estimate reaches this
	MinKeyLength  int     // minimum viable final key length
	Epsilon       float64 // security parameter epsilon_sec
}

// DefaultParams mirror the protocol constants: the Shor-Preskill 11% bound,
// four Cascade passes, epsilon 1e-12 and a 100-bit key floor.
func DefaultParams() Params {
	return Params{
		Seed:          42,
		Passes:        4,
		QBERThreshold: 0.11,
		MinKeyLength:  100,
		Epsilon:       1e-12,
	}
}

// Orchestrator runs the pipeline for one party.
type Orchestrator struct {
	channel domain.Channel
	params  Params
	log     *zap.Logger
}

// New builds an orchestrator. logger may be nil.
func New(channel domain.Channel, params Params, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{channel: channel, params: params, log: logger}
}

// Run executes one full run for the given role over the raw key material
// from the quantum phase. On success it returns the secret key plus
// diagnostics; on failure the returned error wraps one of the domain kinds
// and no key material is produced.
func (o *Orchestrator) Run(ctx context.Context, role domain.Role, raw domain.RawKey) (domain.Result, error) {
	res, err := o.run(ctx, role, raw)
	if err != nil && errors.Is(err, domain.ErrIntegrity) {
		o.log.Error("security event: message authentication failed",
			zap.String("role", role.String()))
	}
	return res, err
}

func (o *Orchestrator) run(ctx context.Context, role domain.Role, raw domain.RawKey) (domain.Result, error) {
	key := raw.Sifted()
	log := o.log.With(zap.String("role", role.String()), zap.Int("sifted_bits", len(key)))

	start, err := o.exchangeStart(ctx, role, raw.ErrorRate, len(key))
	if err != nil {
		return domain.Result{}, err
	}
	if !start.Proceed {
		log.Warn("aborting before reconciliation",
			zap.Float64("estimate", start.ErrorRate),
			zap.Float64("threshold", o.params.QBERThreshold))
		return domain.Result{}, fmt.Errorf("%w: estimate %.4f", domain.ErrQBERThreshold, start.ErrorRate)
	}

	rec := cascade.New(o.channel, role, key, o.params.Seed, o.params.Passes, start.ErrorRate)
	leakage, err := rec.Reconcile(ctx)
	if err != nil {
		return domain.Result{}, fmt.Errorf("reconciling: %w", err)
	}
	log.Info("reconciliation complete",
		zap.Int("leakage_bits", leakage), zap.Int("corrections", rec.Corrections()))

	match, err := verify.Verify(ctx, o.channel, role, key)
	if err != nil {
		return domain.Result{}, fmt.Errorf("verifying: %w", err)
	}
	if !match {
		return domain.Result{}, domain.ErrVerification
	}

	qber := privacy.CombineQBER(start.ErrorRate, rec.Corrections(), len(key))
	length := privacy.FinalKeyLength(len(key), qber, leakage, verify.TagBits, o.params.Epsilon)
	log.Info("key length planned", zap.Float64("qber", qber), zap.Int("length", length))
	if length <= 0 || length < o.params.MinKeyLength {
		return domain.Result{}, fmt.Errorf("%w: %d bits (minimum %d)", domain.ErrInsufficientKey, length, o.params.MinKeyLength)
	}

	seed, err := o.exchangeSeed(ctx, role, len(key), length)
	if err != nil {
		return domain.Result{}, err
	}

	secret, err := privacy.Amplify(key, seed, length)
	if err != nil {
		return domain.Result{}, fmt.Errorf("amplifying: %w", err)
	}
	memzero.Zero(key)

	return domain.Result{
		SecretKey: secret,
		QBER:      qber,
		Leakage:   leakage + verify.TagBits,
		Length:    length,
	}, nil
}

// exchangeStart transmits (initiator) or consumes (responder) the opening
// announcement: the sampled error estimate, the threshold decision, and the
// sifted key length, which must agree on both sides.
func (o *Orchestrator) exchangeStart(ctx context.Context, role domain.Role, estimate float64, keyLength int) (domain.SessionStart, error) {
	if role == domain.Initiator {
		start := domain.SessionStart{
			Proceed:   estimate < o.params.QBERThreshold,
			ErrorRate: estimate,
			KeyLength: keyLength,
		}
		if err := o.channel.Send(ctx, domain.HeaderSessionStart, domain.EncodeSessionStart(start)); err != nil {
			return domain.SessionStart{}, err
		}
		return start, nil
	}

	msg, err := o.channel.Receive(ctx, domain.HeaderSessionStart)
	if err != nil {
		return domain.SessionStart{}, err
	}
	start, err := domain.DecodeSessionStart(msg.Payload)
	if err != nil {
		return domain.SessionStart{}, err
	}
	if start.KeyLength != keyLength {
		return domain.SessionStart{}, fmt.Errorf("%w: peer sifted %d bits, local %d (desynchronised)",
			domain.ErrProtocol, start.KeyLength, keyLength)
	}
	return start, nil
}

// exchangeSeed samples and sends the Toeplitz seed (initiator) or receives
// and validates it (responder). The responder never samples: the randomness
// lives entirely in the transmitted seed.
func (o *Orchestrator) exchangeSeed(ctx context.Context, role domain.Role, keyLength, outputLength int) (domain.BitString, error) {
	if role == domain.Initiator {
		seed, err := privacy.NewSeed(keyLength, outputLength)
		if err != nil {
			return nil, err
		}
		if err := o.channel.Send(ctx, domain.HeaderPASeed, domain.EncodeSeed(seed)); err != nil {
			return nil, err
		}
		return seed, nil
	}

	msg, err := o.channel.Receive(ctx, domain.HeaderPASeed)
	if err != nil {
		return nil, err
	}
	seed, err := domain.DecodeSeed(msg.Payload)
	if err != nil {
		return nil, err
	}
	if len(seed) != privacy.SeedLength(keyLength, outputLength) {
		return nil, fmt.Errorf("%w: seed of %d bits, want %d", domain.ErrProtocol,
			len(seed), privacy.SeedLength(keyLength, outputLength))
	}
	return seed, nil
}
