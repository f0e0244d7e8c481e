package verify

import "encoding/binary"

// element is a member of GF(2^128) with the reduction polynomial
// x^128 + x^7 + x^2 + x + 1. Bit i of (hi,lo) is the coefficient of x^i.
type element struct {
	hi, lo uint64
}

func elementFromBytes(b [16]byte) element {
	return element{
		hi: binary.BigEndian.Uint64(b[0:8]),
		lo: binary.BigEndian.Uint64(b[8:16]),
	}
}

func (e element) bytes() [16]byte {
	var out [16]byte
	binary.BigEndian.PutUint64(out[0:8], e.hi)
	binary.BigEndian.PutUint64(out[8:16], e.lo)
	return out
}

func add(a, b element) element {
	return element{hi: a.hi ^ b.hi, lo: a.lo ^ b.lo}
}

// mul is carry-less multiplication with on-the-fly reduction: shift the
// multiplicand through the field while conditionally accumulating it for
// each set bit of b.
func mul(a, b element) element {
	var res element
	for i := 0; i < 64; i++ {
		if b.lo&(1<<uint(i)) != 0 {
			res = add(res, a)
		}
		a = xtime(a)
	}
	for i := 0; i < 64; i++ {
		if b.hi&(1<<uint(i)) != 0 {
			res = add(res, a)
		}
		a = xtime(a)
	}
	return res
}

// xtime multiplies by x, folding the x^128 overflow back via the reduction
// polynomial (x^7 + x^2 + x + 1 = 0x87).
func xtime(a element) element {
	carry := a.hi >> 63
	a.hi = a.hi<<1 | a.lo>>63
	a.lo <<= 1
	if carry != 0 {
		a.lo ^= 0x87
	}
	return a
}
