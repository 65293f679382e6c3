// Package session provides server-side sessions keyed by an opaque cookie
// identifier. A session record carries the same identity claim-set as a
// bearer token, so handlers resolve an identical view of the caller from
// either transport.
//
// The store backing the manager is chosen once at startup (Redis when
// available, memory otherwise) and never swapped while requests are flowing.
// If the chosen store becomes unreachable at issuance time the manager
// degrades to an in-process fallback store instead of failing the login.
package session

import (
	"time"

	"github.com/google/uuid"
)

// Session is a server-side session record. Only ID travels to the client.
type Session struct {
	ID            string    `json:"id"`
	UserID        uuid.UUID `json:"user_id"`
	Email         string    `json:"email,omitempty"`
	Username      string    `json:"username"`
	EmailVerified bool      `json:"email_verified"`
	AuthStrategy  string    `json:"auth_strategy"`
	CreatedAt     time.Time `json:"created_at"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// IsExpired reports whether the session is past its expiry.
func (s *Session) IsExpired() bool {
	return s != nil && time.Now().After(s.ExpiresAt)
}
