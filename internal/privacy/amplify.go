package privacy

import (
	"fmt"

	"siftkey/internal/domain"
)

// SeedLength returns the Toeplitz seed length for compressing keyLength bits
// down to outputLength: one bit per diagonal of the implicit matrix.
func SeedLength(keyLength, outputLength int) int {
	return keyLength + outputLength - 1
}

// NewSeed samples a Toeplitz seed for the given dimensions. Initiator only;
// the responder reconstructs the seed from the PA_SEED message and must
// never sample its own.
func NewSeed(keyLength, outputLength int) (domain.BitString, error) {
	return domain.RandomBitString(SeedLength(keyLength, outputLength))
}

// Amplify compresses key to outputLength bits with the Toeplitz matrix
// implied by seed: T[i][j] = seed[i-j] for i >= j, seed[m-1+j-i] otherwise,
// output = T*key over GF(2). Deterministic in its inputs.
func Amplify(key, seed domain.BitString, outputLength int) (domain.BitString, error) {
	if outputLength < 0 {
		return nil, fmt.Errorf("negative output length %d", outputLength)
	}
	if len(seed) != SeedLength(len(key), outputLength) {
		return nil, fmt.Errorf("seed of %d bits, want %d for %d -> %d compression",
			len(seed), SeedLength(len(key), outputLength), len(key), outputLength)
	}

	out := domain.NewBitString(outputLength)
	for i := 0; i < outputLength; i++ {
		var acc uint8
		for j, bit := range key {
			if bit == 0 {
				continue
			}
			if i >= j {
				acc ^= seed[i-j]
			} else {
				acc ^= seed[outputLength-1+j-i]
			}
		}
		out[i] = acc
	}
	return out, nil
}
