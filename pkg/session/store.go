package session

import "context"

// Store defines the interface for session persistence.
type Store interface {
	// Create stores a new session.
	Create(ctx context.Context, session *Session) error

	// Get retrieves a session by its identifier.
	Get(ctx context.Context, id string) (*Session, error)

	// Delete removes a session by its identifier.
	Delete(ctx context.Context, id string) error

	// DeleteExpired removes all expired sessions.
	DeleteExpired(ctx context.Context) error
}
