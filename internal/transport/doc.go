// Package transport provides concrete domain.Transport implementations: an
// in-memory duplex pipe for tests and in-process simulation, and
// length-prefixed framing over a net.Conn for runs between real peers.
//
// Both guarantee reliable, ordered delivery of opaque frames between exactly
// two parties; neither interprets frame contents.
package transport
