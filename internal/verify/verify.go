package verify

import (
	"context"
	"crypto/rand"
	"crypto/subtle"

	"siftkey/internal/domain"
)

// TagBits is the width of the verification tag and its leakage contribution.
const TagBits = 128

// Verify runs the key equality check for one role and returns the same
// boolean on both parties. The initiator samples the salt; the responder
// only ever recomputes and answers.
func Verify(ctx context.Context, channel domain.Channel, role domain.Role, key domain.BitString) (bool, error) {
	if role == domain.Initiator {
		return initiate(ctx, channel, key)
	}
	return respond(ctx, channel, key)
}

func initiate(ctx context.Context, channel domain.Channel, key domain.BitString) (bool, error) {
	var salt [16]byte
	if _, err := rand.Read(salt[:]); err != nil {
		return false, err
	}
	tag := Hash(key, salt)
	payload := domain.EncodeVerifyHash(domain.VerifyHash{Salt: salt, Tag: tag})
	if err := channel.Send(ctx, domain.HeaderVerifyHash, payload); err != nil {
		return false, err
	}
	msg, err := channel.Receive(ctx, domain.HeaderVerifyResult)
	if err != nil {
		return false, err
	}
	bit, err := domain.DecodeBit(msg.Payload)
	if err != nil {
		return false, err
	}
	return bit == 1, nil
}

func respond(ctx context.Context, channel domain.Channel, key domain.BitString) (bool, error) {
	msg, err := channel.Receive(ctx, domain.HeaderVerifyHash)
	if err != nil {
		return false, err
	}
	vh, err := domain.DecodeVerifyHash(msg.Payload)
	if err != nil {
		return false, err
	}
	own := Hash(key, vh.Salt)
	match := subtle.ConstantTimeCompare(own[:], vh.Tag[:]) == 1
	var bit uint8
	if match {
		bit = 1
	}
	if err := channel.Send(ctx, domain.HeaderVerifyResult, domain.EncodeBit(bit)); err != nil {
		return false, err
	}
	return match, nil
}

// Hash evaluates the polynomial hash of the key at the salt: the key bits are
// packed into 128-bit coefficients (the last one zero-padded) and folded in
// Horner form, tag = sum c_i * s^(L-i+1) over GF(2^128).
func Hash(key domain.BitString, salt [16]byte) [16]byte {
	s := elementFromBytes(salt)
	packed := key.Pack()

	var acc element
	for off := 0; off < len(packed); off += 16 {
		var chunk [16]byte
		copy(chunk[:], packed[off:])
		acc = mul(add(acc, elementFromBytes(chunk)), s)
	}
	return acc.bytes()
}
