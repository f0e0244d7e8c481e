package cascade

import (
	"context"
	"fmt"
	"math"

	"siftkey/internal/domain"
	"siftkey/internal/parity"
)

// InitialBlockSize derives the first-pass block size from the estimated
// error rate p as max(4, round(0.73/p)). With no expected errors large
// blocks are cheapest; at very high rates the floor of 4 keeps binary
// search meaningful.
func InitialBlockSize(qber float64) int {
	if qber <= 0 {
		return 64
	}
	if qber >= 0.5 {
		return 4
	}
	size := int(math.Round(0.73 / qber))
	if size < 4 {
		return 4
	}
	return size
}

// Reconciler runs Cascade for one party. It owns the party's key for the
// duration of the run; only the responder role mutates it.
type Reconciler struct {
	channel domain.Channel
	role    domain.Role
	key     domain.BitString
	seed    uint64
	passes  int
	first   int

	hist        *history
	leakage     int
	corrections int
}

// New builds a reconciler. seed and the pass count must be identical on both
// parties; qber is the sampled error estimate driving the block size.
func New(channel domain.Channel, role domain.Role, key domain.BitString, seed uint64, passes int, qber float64) *Reconciler {
	return &Reconciler{
		channel: channel,
		role:    role,
		key:     key,
		seed:    seed,
		passes:  passes,
		first:   InitialBlockSize(qber),
		hist:    newHistory(),
	}
}

// Leakage returns the parity bits revealed so far. Monotone; never reset.
func (r *Reconciler) Leakage() int { return r.leakage }

// Corrections returns the number of bit flips performed (responder) or
// ordered (initiator) so far.
func (r *Reconciler) Corrections() int { return r.corrections }

// Key returns the party's current key bits.
func (r *Reconciler) Key() domain.BitString { return r.key }

// Reconcile runs the whole protocol for the configured role and returns the
// total leakage in bits. Both parties return the same count; the initiator's
// closing CASCADE_FINISHED message carries it so the responder can
// cross-check its own tally.
func (r *Reconciler) Reconcile(ctx context.Context) (int, error) {
	switch r.role {
	case domain.Initiator:
		return r.drive(ctx)
	default:
		return r.respond(ctx)
	}
}

// drive is the initiator side: permute, partition, check block parities,
// binary-search mismatches, and backtrack through earlier passes after every
// correction.
func (r *Reconciler) drive(ctx context.Context) (int, error) {
	blockSize := r.first
	for pass := 0; pass < r.passes; pass++ {
		perm := parity.Permute(len(r.key), r.seed, pass)
		var queue []*record
		for _, block := range parity.Partition(perm, blockSize, pass) {
			local, err := parity.Parity(r.key, block.Indices)
			if err != nil {
				return r.leakage, fmt.Errorf("%w: %v", domain.ErrProtocol, err)
			}
			remote, err := r.queryParity(ctx, pass, block.Indices)
			if err != nil {
				return r.leakage, err
			}
			rec := r.hist.add(block, local, remote)
			if rec.odd() {
				queue = append(queue, rec)
			}
		}
		if err := r.resolve(ctx, queue); err != nil {
			return r.leakage, err
		}
		if blockSize < len(r.key) {
			blockSize *= 2
		}
	}
	if err := r.channel.Send(ctx, domain.HeaderCascadeFinish, domain.EncodeLeakage(r.leakage)); err != nil {
		return r.leakage, err
	}
	return r.leakage, nil
}

// resolve drains the mismatch queue. Each binary search corrects exactly one
// true error, and toggling the affected history records can enqueue blocks
// from any earlier (or the current) pass. Termination is guaranteed because
// every correction strictly reduces the number of disagreeing bits, so the
// total number of searches is bounded by the key length.
func (r *Reconciler) resolve(ctx context.Context, queue []*record) error {
	for len(queue) > 0 {
		rec := queue[0]
		queue = queue[1:]
		if !rec.odd() {
			continue // fixed as a side effect of an earlier correction
		}
		if r.corrections >= len(r.key) {
			return fmt.Errorf("%w: reconciliation failed to converge after %d corrections", domain.ErrProtocol, r.corrections)
		}
		flipped, err := r.locate(ctx, rec)
		if err != nil {
			return err
		}
		r.corrections++
		queue = append(queue, r.hist.toggle(flipped)...)
	}
	return nil
}

// locate narrows an odd block down to a single erroneous index via the
// interactive binary search, then orders the responder to flip it.
func (r *Reconciler) locate(ctx context.Context, rec *record) (int, error) {
	indices := rec.indices
	for len(indices) > 1 {
		half := indices[:len(indices)/2]
		local, err := parity.Parity(r.key, half)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", domain.ErrProtocol, err)
		}
		remote, err := r.queryParity(ctx, rec.pass, half)
		if err != nil {
			return 0, err
		}
		if local != remote {
			indices = half
		} else {
			indices = indices[len(indices)/2:]
		}
	}
	flipped := indices[0]
	if err := r.channel.Send(ctx, domain.HeaderCascadeDone, domain.EncodeIndex(flipped)); err != nil {
		return 0, err
	}
	return flipped, nil
}

// queryParity asks the responder for its parity over the given indices and
// accounts for the revealed bit.
func (r *Reconciler) queryParity(ctx context.Context, pass int, indices []int) (uint8, error) {
	req := domain.EncodeParityRequest(domain.ParityRequest{Pass: pass, Indices: indices})
	if err := r.channel.Send(ctx, domain.HeaderParityRequest, req); err != nil {
		return 0, err
	}
	msg, err := r.channel.Receive(ctx, domain.HeaderParityResponse)
	if err != nil {
		return 0, err
	}
	bit, err := domain.DecodeBit(msg.Payload)
	if err != nil {
		return 0, err
	}
	r.leakage++
	return bit, nil
}

// respond is the responder side: answer parity queries, flip corrected bits,
// and return once the initiator closes the run.
func (r *Reconciler) respond(ctx context.Context) (int, error) {
	for {
		msg, err := r.channel.Receive(ctx,
			domain.HeaderParityRequest, domain.HeaderCascadeDone, domain.HeaderCascadeFinish)
		if err != nil {
			return r.leakage, err
		}
		switch msg.Header {
		case domain.HeaderParityRequest:
			req, err := domain.DecodeParityRequest(msg.Payload)
			if err != nil {
				return r.leakage, err
			}
			bit, err := parity.Parity(r.key, req.Indices)
			if err != nil {
				return r.leakage, fmt.Errorf("%w: %v", domain.ErrProtocol, err)
			}
			if err := r.channel.Send(ctx, domain.HeaderParityResponse, domain.EncodeBit(bit)); err != nil {
				return r.leakage, err
			}
			r.leakage++

		case domain.HeaderCascadeDone:
			idx, err := domain.DecodeIndex(msg.Payload)
			if err != nil {
				return r.leakage, err
			}
			if idx < 0 || idx >= len(r.key) {
				return r.leakage, fmt.Errorf("%w: correction index %d out of range", domain.ErrProtocol, idx)
			}
			r.key[idx] ^= 1
			r.corrections++

		case domain.HeaderCascadeFinish:
			total, err := domain.DecodeLeakage(msg.Payload)
			if err != nil {
				return r.leakage, err
			}
			if total != r.leakage {
				return r.leakage, fmt.Errorf("%w: leakage disagreement: peer %d, local %d", domain.ErrProtocol, total, r.leakage)
			}
			return r.leakage, nil
		}
	}
}
