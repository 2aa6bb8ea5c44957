// Package common defines shared constants and sentinel errors used across
// the record-keeper core. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")

	// ErrAuthenticationFailed is the single generic failure returned for both
	// an unknown identity and a wrong password. The two cases must stay
	// indistinguishable to the caller.
	ErrAuthenticationFailed = errors.New("invalid identity or password")

	// ErrReauthenticationRequired is returned when a session is absent,
	// expired, or the remote API rejected the bearer token (HTTP 401).
	ErrReauthenticationRequired = errors.New("reauthentication required")

	// ErrPermissionDenied maps HTTP 403: terminal for the action, no retry.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNoInput marks an empty submission, distinct from an invalid one.
	ErrNoInput = errors.New("nothing submitted")
)
