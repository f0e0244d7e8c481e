package domain

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Payload codecs for every message kind. Encoding is canonical by
// construction: fixed field order, big-endian integers, no map types. Two
// logically equal payloads always serialise to the same bytes, which the
// authentication tag depends on.

// SessionStart is the initiator's opening announcement.
type SessionStart struct {
	Proceed   bool
	ErrorRate float64
	KeyLength int
}

// EncodeSessionStart serialises a SessionStart payload.
func EncodeSessionStart(s SessionStart) []byte {
	out := make([]byte, 13)
	if s.Proceed {
		out[0] = 1
	}
	binary.BigEndian.PutUint64(out[1:9], math.Float64bits(s.ErrorRate))
	binary.BigEndian.PutUint32(out[9:13], uint32(s.KeyLength))
	return out
}

// DecodeSessionStart parses a SessionStart payload.
func DecodeSessionStart(b []byte) (SessionStart, error) {
	if len(b) != 13 {
		return SessionStart{}, fmt.Errorf("%w: session start payload of %d bytes", ErrProtocol, len(b))
	}
	return SessionStart{
		Proceed:   b[0] == 1,
		ErrorRate: math.Float64frombits(binary.BigEndian.Uint64(b[1:9])),
		KeyLength: int(binary.BigEndian.Uint32(b[9:13])),
	}, nil
}

// ParityRequest asks the peer for the parity of its bits at Indices.
type ParityRequest struct {
	Pass    int
	Indices []int
}

// EncodeParityRequest serialises a ParityRequest payload.
func EncodeParityRequest(r ParityRequest) []byte {
	out := make([]byte, 8+4*len(r.Indices))
	binary.BigEndian.PutUint32(out[0:4], uint32(r.Pass))
	binary.BigEndian.PutUint32(out[4:8], uint32(len(r.Indices)))
	for i, idx := range r.Indices {
		binary.BigEndian.PutUint32(out[8+4*i:], uint32(idx))
	}
	return out
}

// DecodeParityRequest parses a ParityRequest payload.
func DecodeParityRequest(b []byte) (ParityRequest, error) {
	if len(b) < 8 {
		return ParityRequest{}, fmt.Errorf("%w: short parity request", ErrProtocol)
	}
	n := int(binary.BigEndian.Uint32(b[4:8]))
	if len(b) != 8+4*n {
		return ParityRequest{}, fmt.Errorf("%w: parity request length %d for %d indices", ErrProtocol, len(b), n)
	}
	r := ParityRequest{Pass: int(binary.BigEndian.Uint32(b[0:4])), Indices: make([]int, n)}
	for i := 0; i < n; i++ {
		r.Indices[i] = int(binary.BigEndian.Uint32(b[8+4*i:]))
	}
	return r, nil
}

// EncodeBit serialises a single parity or boolean bit.
func EncodeBit(bit uint8) []byte { return []byte{bit & 1} }

// DecodeBit parses a single-bit payload.
func DecodeBit(b []byte) (uint8, error) {
	if len(b) != 1 || b[0] > 1 {
		return 0, fmt.Errorf("%w: malformed bit payload", ErrProtocol)
	}
	return b[0], nil
}

// EncodeIndex serialises a corrected-bit index for CASCADE_DONE.
func EncodeIndex(idx int) []byte {
	out := make([]byte, 4)
	binary.BigEndian.PutUint32(out, uint32(idx))
	return out
}

// DecodeIndex parses a CASCADE_DONE payload.
func DecodeIndex(b []byte) (int, error) {
	if len(b) != 4 {
		return 0, fmt.Errorf("%w: malformed index payload", ErrProtocol)
	}
	return int(binary.BigEndian.Uint32(b)), nil
}

// EncodeLeakage serialises the total leakage carried by CASCADE_FINISHED.
func EncodeLeakage(bits int) []byte {
	out := make([]byte, 8)
	binary.BigEndian.PutUint64(out, uint64(bits))
	return out
}

// DecodeLeakage parses a CASCADE_FINISHED payload.
func DecodeLeakage(b []byte) (int, error) {
	if len(b) != 8 {
		return 0, fmt.Errorf("%w: malformed leakage payload", ErrProtocol)
	}
	return int(binary.BigEndian.Uint64(b)), nil
}

// VerifyHash carries the verification salt and polynomial hash tag.
type VerifyHash struct {
	Salt [16]byte
	Tag  [16]byte
}

// EncodeVerifyHash serialises a VerifyHash payload.
func EncodeVerifyHash(v VerifyHash) []byte {
	out := make([]byte, 32)
	copy(out[0:16], v.Salt[:])
	copy(out[16:32], v.Tag[:])
	return out
}

// DecodeVerifyHash parses a VerifyHash payload.
func DecodeVerifyHash(b []byte) (VerifyHash, error) {
	if len(b) != 32 {
		return VerifyHash{}, fmt.Errorf("%w: verify hash payload of %d bytes", ErrProtocol, len(b))
	}
	var v VerifyHash
	copy(v.Salt[:], b[0:16])
	copy(v.Tag[:], b[16:32])
	return v, nil
}

// EncodeSeed serialises the Toeplitz seed bits for PA_SEED.
func EncodeSeed(seed BitString) []byte {
	packed := seed.Pack()
	out := make([]byte, 4+len(packed))
	binary.BigEndian.PutUint32(out[0:4], uint32(len(seed)))
	copy(out[4:], packed)
	return out
}

// DecodeSeed parses a PA_SEED payload.
func DecodeSeed(b []byte) (BitString, error) {
	if len(b) < 4 {
		return nil, fmt.Errorf("%w: short seed payload", ErrProtocol)
	}
	n := int(binary.BigEndian.Uint32(b[0:4]))
	if len(b) != 4+(n+7)/8 {
		return nil, fmt.Errorf("%w: seed payload length %d for %d bits", ErrProtocol, len(b), n)
	}
	return UnpackBits(b[4:], n), nil
}
