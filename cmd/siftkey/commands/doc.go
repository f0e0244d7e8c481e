// Package commands defines the siftkey CLI.
//
// # Commands
//
//   - simulate  Run end-to-end trials in one process over an in-memory pipe
//   - listen    Wait for a peer and run the responder role over TCP
//   - dial      Connect to a peer and run the initiator role over TCP
//   - keygen    Generate a pre-shared authentication key
//
// # Implementation
//
// The root command parses the shared protocol parameters (permutation seed,
// pass count, QBER threshold, minimum key length, epsilon) and the pre-shared
// authentication key before any subcommand runs. Both parties must be started
// with identical parameters; everything role-specific travels in-band.
package commands
