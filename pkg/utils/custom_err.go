package utils

import "errors"

var (
	ErrAccountNotFound      = errors.New("account not found")
	ErrRegistrationNotFound = errors.New("app registration not found")
	ErrSessionInvalid       = errors.New("invalid session")

	// Upstream failures: Swarm or Mastodon API errors. Logged and the
	// affected event treated as handled, never retried.
	ErrUpstream = errors.New("upstream api error")

	ErrDatabaseError = errors.New("database error")
)
