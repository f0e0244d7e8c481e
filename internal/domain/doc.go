// Package domain defines core data models and interfaces shared across siftkey.
// It contains plain types (bit strings, wire headers, roles, results) and
// contracts (Transport, Channel) only.
package domain
