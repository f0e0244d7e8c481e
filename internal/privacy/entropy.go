package privacy

import "math"

// BinaryEntropy is h(p) = -p*log2(p) - (1-p)*log2(1-p), with h(0) = h(1) = 0.
func BinaryEntropy(p float64) float64 {
	if p <= 0 || p >= 1 {
		return 0
	}
	return -p*math.Log2(p) - (1-p)*math.Log2(1-p)
}

// FinalKeyLength applies the Devetak-Winter bound:
//
//	floor(n*(1 - h(qber)) - leakEC - leakVer - 2*log2(1/eps))
//
// clamped at zero. Requesting more output key than this bound makes the
// security claim unprovable, so callers must treat it as a hard ceiling.
func FinalKeyLength(n int, qber float64, leakReconciliation, leakVerification int, epsilon float64) int {
	available := float64(n) * (1 - BinaryEntropy(qber))
	margin := 2 * math.Log2(1/epsilon)
	length := math.Floor(available - float64(leakReconciliation) - float64(leakVerification) - margin)
	if length < 0 {
		return 0
	}
	return int(length)
}
