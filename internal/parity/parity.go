package parity

import (
	"encoding/binary"
	"errors"
	"fmt"

	"golang.org/x/crypto/sha3"

	"siftkey/internal/domain"
)

// ErrEmptySelection is returned when a parity is requested over no indices.
var ErrEmptySelection = errors.New("parity over empty index set")

// Block is one contiguous range of a pass permutation: the global key indices
// it covers, in permuted order, plus its position within the pass.
type Block struct {
	Pass    int
	Index   int
	Indices []int
}

// Parity XOR-reduces the bits at the given global indices.
func Parity(bits domain.BitString, indices []int) (uint8, error) {
	if len(indices) == 0 {
		return 0, ErrEmptySelection
	}
	var p uint8
	for _, i := range indices {
		if i < 0 || i >= len(bits) {
			return 0, fmt.Errorf("index %d out of range for key of length %d", i, len(bits))
		}
		p ^= bits[i]
	}
	return p, nil
}

// Permute returns a deterministic pseudo-random permutation of [0, length)
// keyed by (seed, pass). The same inputs yield the same permutation on both
// parties; pass 0 is the identity so the first Cascade pass runs over the
// key in its natural order.
func Permute(length int, seed uint64, pass int) []int {
	perm := make([]int, length)
	for i := range perm {
		perm[i] = i
	}
	if pass == 0 || length < 2 {
		return perm
	}

	var key [16]byte
	binary.BigEndian.PutUint64(key[0:8], seed)
	binary.BigEndian.PutUint64(key[8:16], uint64(pass))
	shake := sha3.NewShake256()
	shake.Write(key[:])

	// Fisher-Yates with rejection sampling to keep the draw unbiased.
	var buf [8]byte
	for i := length - 1; i > 0; i-- {
		n := uint64(i + 1)
		limit := ^uint64(0) - ^uint64(0)%n
		for {
			shake.Read(buf[:])
			v := binary.BigEndian.Uint64(buf[:])
			if v < limit {
				j := int(v % n)
				perm[i], perm[j] = perm[j], perm[i]
				break
			}
		}
	}
	return perm
}

// Partition splits a permutation into blocks of blockSize consecutive
// entries, the last block truncated when the length is not a multiple.
func Partition(perm []int, blockSize int, pass int) []Block {
	if blockSize <= 0 {
		return nil
	}
	blocks := make([]Block, 0, (len(perm)+blockSize-1)/blockSize)
	for start := 0; start < len(perm); start += blockSize {
		end := start + blockSize
		if end > len(perm) {
			end = len(perm)
		}
		indices := make([]int, end-start)
		copy(indices, perm[start:end])
		blocks = append(blocks, Block{Pass: pass, Index: len(blocks), Indices: indices})
	}
	return blocks
}
