// Package privacy holds the local, side-effect-free tail of the pipeline:
// Toeplitz-hash privacy amplification, the Devetak-Winter final key length
// bound, and QBER estimation. Nothing here touches the network; the only
// randomness is the Toeplitz seed, which the initiator samples and transmits
// and the responder only ever receives.
package privacy
