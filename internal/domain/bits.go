package domain

import (
	"crypto/rand"
	"fmt"
	"strings"
)

// BitString is an ordered sequence of bits, one per element, each 0 or 1.
// Its length is fixed once created; reconciliation flips bits in place,
// everything else treats it as read-only.
type BitString []uint8

// NewBitString returns an all-zero bit string of length n.
func NewBitString(n int) BitString { return make(BitString, n) }

// RandomBitString samples n bits from crypto/rand.
func RandomBitString(n int) (BitString, error) {
	buf := make([]byte, (n+7)/8)
	if _, err := rand.Read(buf); err != nil {
		return nil, err
	}
	return UnpackBits(buf, n), nil
}

// Clone returns an independent copy.
func (b BitString) Clone() BitString {
	out := make(BitString, len(b))
	copy(out, b)
	return out
}

// Equal reports whether two bit strings have the same length and bits.
func (b BitString) Equal(o BitString) bool {
	if len(b) != len(o) {
		return false
	}
	for i := range b {
		if b[i] != o[i] {
			return false
		}
	}
	return true
}

// HammingDistance counts positions where b and o differ. Lengths must match.
func (b BitString) HammingDistance(o BitString) (int, error) {
	if len(b) != len(o) {
		return 0, fmt.Errorf("bit string length mismatch: %d != %d", len(b), len(o))
	}
	d := 0
	for i := range b {
		if b[i] != o[i] {
			d++
		}
	}
	return d, nil
}

// Select returns the bits of b at positions where keep is 1.
// Used to apply the sifting mask from the quantum phase.
func (b BitString) Select(keep BitString) BitString {
	out := make(BitString, 0, len(b))
	for i := range b {
		if i < len(keep) && keep[i] == 1 {
			out = append(out, b[i])
		}
	}
	return out
}

// Pack serialises the bits into bytes, most significant bit first.
func (b BitString) Pack() []byte {
	out := make([]byte, (len(b)+7)/8)
	for i, bit := range b {
		if bit != 0 {
			out[i/8] |= 1 << (7 - uint(i%8))
		}
	}
	return out
}

// UnpackBits reverses Pack, reading n bits from buf.
func UnpackBits(buf []byte, n int) BitString {
	out := make(BitString, n)
	for i := 0; i < n; i++ {
		if buf[i/8]&(1<<(7-uint(i%8))) != 0 {
			out[i] = 1
		}
	}
	return out
}

// String renders the bits as a compact 0/1 string.
func (b BitString) String() string {
	var sb strings.Builder
	sb.Grow(len(b))
	for _, bit := range b {
		if bit != 0 {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}
