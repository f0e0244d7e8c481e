package verify

import "testing"

func TestMulIdentity(t *testing.T) {
	one := element{lo: 1}
	a := element{hi: 0xdeadbeefcafef00d, lo: 0x0123456789abcdef}
	if got := mul(a, one); got != a {
		t.Fatalf("a*1 = %+v, want %+v", got, a)
	}
	if got := mul(one, a); got != a {
		t.Fatalf("1*a = %+v, want %+v", got, a)
	}
}

func TestMulReduction(t *testing.T) {
	// x^127 * x overflows the field and must fold back to the reduction
	// polynomial x^7 + x^2 + x + 1.
	x127 := element{hi: 1 << 63}
	x := element{lo: 2}
	want := element{lo: 0x87}
	if got := mul(x127, x); got != want {
		t.Fatalf("x^127 * x = %+v, want %+v", got, want)
	}
}

func TestMulCommutative(t *testing.T) {
	a := element{hi: 0x1122334455667788, lo: 0x99aabbccddeeff00}
	b := element{hi: 0x0f0e0d0c0b0a0908, lo: 0x0706050403020100}
	if mul(a, b) != mul(b, a) {
		t.Fatal("multiplication is not commutative")
	}
}

func TestMulDistributesOverAdd(t *testing.T) {
	a := element{hi: 3, lo: 0xfedcba9876543210}
	b := element{hi: 0x8000000000000001, lo: 7}
	c := element{hi: 0x55555555aaaaaaaa, lo: 0xaaaaaaaa55555555}
	left := mul(add(a, b), c)
	right := add(mul(a, c), mul(b, c))
	if left != right {
		t.Fatalf("(a+b)*c = %+v, a*c + b*c = %+v", left, right)
	}
}

func TestElementBytesRoundTrip(t *testing.T) {
	var b [16]byte
	for i := range b {
		b[i] = byte(i*17 + 1)
	}
	if got := elementFromBytes(b).bytes(); got != b {
		t.Fatalf("round trip changed bytes: %x != %x", got, b)
	}
}
