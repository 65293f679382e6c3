package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UserStorage defines the credential-store operations required by the
// authentication services. Implementations must map unique-constraint
// violations on email and profile URL to ErrEmailAlreadyExists and
// ErrProfileAlreadyExists respectively.
type UserStorage interface {
	CreateUser(ctx context.Context, user *User) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByProfileURL(ctx context.Context, profileURL string) (*User, error)
	UpdateUserEmail(ctx context.Context, userID uuid.UUID, email string) error
	SetEmailVerified(ctx context.Context, userID uuid.UUID, verifiedAt time.Time) error
	IsUsernameTaken(ctx context.Context, username string) (bool, error)
	CreateUserStats(ctx context.Context, userID uuid.UUID) error
}

// TokenStorage defines the operations for verification-token persistence.
// The Verification Token Service is the only writer.
type TokenStorage interface {
	CreateToken(ctx context.Context, token *VerificationToken) error
	GetToken(ctx context.Context, token, tokenType string) (*VerificationToken, error)
	MarkTokenUsed(ctx context.Context, tokenID uuid.UUID, usedAt time.Time) error
	DeleteExpiredTokens(ctx context.Context) (int64, error)
}

// StateStore persists OAuth state values for CSRF protection.
// Consume must be atomic so concurrent callbacks with the same state cannot
// both succeed.
type StateStore interface {
	Store(ctx context.Context, state string, expiresAt time.Time) error
	Consume(ctx context.Context, state string) error
}
