package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campushare/campushare/pkg/auth"
	"github.com/campushare/campushare/pkg/pg"
)

// Unique constraints on the users table. Insert failures are mapped to
// domain errors by constraint so callers can tell an email collision from a
// profile URL collision.
const (
	constraintUsersEmail      = "users_email_key"
	constraintUsersProfileURL = "users_profile_url_key"
)

var userColumns = []string{
	"id", "username", "display_name", "email", "password_hash",
	"auth_strategy", "profile_url", "photo_url", "bio", "location",
	"joined_on", "email_verified", "email_verified_at",
}

// UserRepository is the PostgreSQL implementation of auth.UserStorage.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a user repository backed by the pool.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// CreateUser inserts a new account row. Email, password hash and profile URL
// are stored as NULL when absent so the partial unique indexes only apply to
// rows that actually carry a value.
func (r *UserRepository) CreateUser(ctx context.Context, user *auth.User) error {
	query, args, err := qb.Insert("users").
		Columns(userColumns...).
		Values(
			user.ID, user.Username, user.DisplayName,
			nullString(user.Email), nullBytes(user.PasswordHash),
			user.AuthStrategy, nullString(user.ProfileURL),
			nullString(user.PhotoURL), user.Bio, user.Location,
			user.JoinedOn, user.EmailVerified, user.EmailVerifiedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert user: %w", err)
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return insertUserError(err)
	}

	return nil
}

// insertUserError maps a failed user insert to its domain error. Unknown
// unique constraints (the username index, indexes added by later migrations)
// stay generic instead of masquerading as an email clash.
func insertUserError(err error) error {
	if pg.IsUniqueViolation(err) {
		switch constraintName(err) {
		case constraintUsersProfileURL:
			return auth.ErrProfileAlreadyExists
		case constraintUsersEmail:
			return auth.ErrEmailAlreadyExists
		}
		return fmt.Errorf("insert user: unique violation on %q: %w", constraintName(err), err)
	}
	return fmt.Errorf("insert user: %w", err)
}

// GetUserByID fetches an account by primary key.
func (r *UserRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*auth.User, error) {
	return r.getUserBy(ctx, "id", id)
}

// GetUserByEmail fetches an account by email.
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*auth.User, error) {
	return r.getUserBy(ctx, "email", email)
}

// GetUserByProfileURL fetches an account by its provider profile URL.
func (r *UserRepository) GetUserByProfileURL(ctx context.Context, profileURL string) (*auth.User, error) {
	return r.getUserBy(ctx, "profile_url", profileURL)
}

// UpdateUserEmail stores the first-time email association for a code-host
// account. The WHERE clause keeps it one-time at the database level.
func (r *UserRepository) UpdateUserEmail(ctx context.Context, userID uuid.UUID, email string) error {
	query, args, err := qb.Update("users").
		Set("email", email).
		Where("id = ? AND email IS NULL", userID).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update email: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		if pg.IsUniqueViolation(err) {
			return auth.ErrEmailAlreadyExists
		}
		return fmt.Errorf("update email: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return auth.ErrEmailAlreadyAttached
	}

	return nil
}

// SetEmailVerified flips the verified flag and records when it happened.
func (r *UserRepository) SetEmailVerified(ctx context.Context, userID uuid.UUID, verifiedAt time.Time) error {
	query, args, err := qb.Update("users").
		Set("email_verified", true).
		Set("email_verified_at", verifiedAt).
		Where("id = ?", userID).
		ToSql()
	if err != nil {
		return fmt.Errorf("build set verified: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("set verified: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return auth.ErrUserNotFound
	}

	return nil
}

// IsUsernameTaken reports whether a username is in use.
func (r *UserRepository) IsUsernameTaken(ctx context.Context, username string) (bool, error) {
	query, args, err := qb.Select("1").
		From("users").
		Where("username = ?", username).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build username check: %w", err)
	}

	var one int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&one); err != nil {
		if pg.IsNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("check username: %w", err)
	}

	return true, nil
}

// CreateUserStats inserts the zeroed statistics row for a new account.
func (r *UserRepository) CreateUserStats(ctx context.Context, userID uuid.UUID) error {
	query, args, err := qb.Insert("user_stats").
		Columns("user_id", "items_posted", "items_donated", "reviews_received").
		Values(userID, 0, 0, 0).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert stats: %w", err)
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		if pg.IsUniqueViolation(err) {
			// Stats row already exists; creation is idempotent.
			return nil
		}
		return fmt.Errorf("insert stats: %w", err)
	}

	return nil
}

func (r *UserRepository) getUserBy(ctx context.Context, column string, value any) (*auth.User, error) {
	query, args, err := qb.Select(userColumns...).
		From("users").
		Where(fmt.Sprintf("%s = ?", column), value).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select user: %w", err)
	}

	var (
		user         auth.User
		email        *string
		passwordHash []byte
		profileURL   *string
		photoURL     *string
	)

	err = r.pool.QueryRow(ctx, query, args...).Scan(
		&user.ID, &user.Username, &user.DisplayName, &email, &passwordHash,
		&user.AuthStrategy, &profileURL, &photoURL, &user.Bio, &user.Location,
		&user.JoinedOn, &user.EmailVerified, &user.EmailVerifiedAt,
	)
	if err != nil {
		if pg.IsNotFound(err) {
			return nil, auth.ErrUserNotFound
		}
		return nil, fmt.Errorf("select user by %s: %w", column, err)
	}

	if email != nil {
		user.Email = *email
	}
	user.PasswordHash = passwordHash
	if profileURL != nil {
		user.ProfileURL = *profileURL
	}
	if photoURL != nil {
		user.PhotoURL = *photoURL
	}

	return &user, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullBytes(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}
