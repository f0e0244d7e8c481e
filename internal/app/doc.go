// Package app wires configuration into runnable sessions for the CLI: it
// builds the authenticated channel over a transport, constructs the session
// orchestrator, and hosts the in-process simulation driver used by the
// simulate command.
package app
