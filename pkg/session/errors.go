package session

import "errors"

var (
	// ErrSessionNotFound indicates no session was found for the identifier.
	ErrSessionNotFound = errors.New("session.not_found")

	// ErrSessionExpired indicates the session has expired.
	ErrSessionExpired = errors.New("session.expired")

	// ErrInvalidSession indicates a malformed session record.
	ErrInvalidSession = errors.New("session.invalid")

	// ErrIDGeneration indicates session identifier generation failed.
	ErrIDGeneration = errors.New("session.id_generation_failed")

	// ErrStoreUnavailable indicates the backing store could not be reached.
	ErrStoreUnavailable = errors.New("session.store_unavailable")
)
