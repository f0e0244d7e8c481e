// Package store reads and writes raw key material files used by the listen
// and dial commands: the measured bits, the sifting mask and the sampled
// error estimate, serialised as JSON with 0600 permissions.
package store
