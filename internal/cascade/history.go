package cascade

import "siftkey/internal/parity"

// record is one block's parity bookkeeping: the indices it covers, the
// initiator's own parity (fixed, the initiator never flips bits) and the
// responder's last-known parity, kept current as corrections land.
type record struct {
	pass    int
	block   int
	indices []int
	local   uint8
	remote  uint8
}

// odd reports whether the block currently holds an odd number of
// disagreements, i.e. the two parities differ.
func (r *record) odd() bool { return r.local != r.remote }

// history is the append-only store of every block checked across all passes,
// plus a reverse map from key index to the records containing it, so that a
// single correction can be propagated to every affected pass.
type history struct {
	records []*record
	byIndex map[int][]*record
}

func newHistory() *history {
	return &history{byIndex: make(map[int][]*record)}
}

// add records a freshly checked block. Records are never removed; later
// corrections only toggle their stored remote parity, which keeps the
// leakage audit trail intact.
func (h *history) add(b parity.Block, local, remote uint8) *record {
	rec := &record{pass: b.Pass, block: b.Index, indices: b.Indices, local: local, remote: remote}
	h.records = append(h.records, rec)
	for _, idx := range rec.indices {
		h.byIndex[idx] = append(h.byIndex[idx], rec)
	}
	return rec
}

// toggle flips the stored remote parity of every record containing idx and
// returns the records that became odd, i.e. now need a binary search.
func (h *history) toggle(idx int) []*record {
	var nowOdd []*record
	for _, rec := range h.byIndex[idx] {
		rec.remote ^= 1
		if rec.odd() {
			nowOdd = append(nowOdd, rec)
		}
	}
	return nowOdd
}
