package privacy

// CombineQBER merges the pre-reconciliation sampled estimate with the rate
// of bits Cascade actually corrected. Both measure the same physical error
// rate over disjoint bit populations. The result is the larger of the two.
func CombineQBER(sampled float64, corrections, keyLength int) float64 {
	if keyLength <= 0 {
		return sampled
	}
	measured := float64(corrections) / float64(keyLength)
	if measured > sampled {
		return measured
	}
	return sampled
}
