// Package common defines shared constants and sentinel errors used across
// the application layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// ErrorTransport marks connectivity problems (no network, timeout).
	// Always retryable; no local state was modified.
	ErrorTransport = errors.New("transport failure")

	// ErrorUnauthorized marks an authentication rejection from the server
	// or a missing credential. Recoverable by logging in again.
	ErrorUnauthorized = errors.New("unauthorized")

	// ErrorRejected marks a validation/business rejection by the server.
	// The wrapped message is the server's own and is shown verbatim.
	ErrorRejected = errors.New("rejected by server")

	// ErrorStorage marks a local storage failure after the remote side
	// already succeeded. Local and remote may disagree until the next
	// reconciliation.
	ErrorStorage = errors.New("local storage failure")
)
