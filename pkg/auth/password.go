package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/campushare/campushare/pkg/logger"
	"github.com/campushare/campushare/pkg/username"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// RegisterParams carries the registration form fields.
type RegisterParams struct {
	Email           string
	Password        string
	ConfirmPassword string
	DisplayName     string
}

// PasswordService provides credentials-based registration and authentication.
type PasswordService struct {
	storage    UserStorage
	bcryptCost int
	logger     *slog.Logger
}

// PasswordOption configures a PasswordService.
type PasswordOption func(*PasswordService)

// WithBcryptCost sets the bcrypt cost for password hashing.
func WithBcryptCost(cost int) PasswordOption {
	return func(s *PasswordService) {
		s.bcryptCost = cost
	}
}

// WithPasswordLogger sets a custom logger for the service.
func WithPasswordLogger(l *slog.Logger) PasswordOption {
	return func(s *PasswordService) {
		s.logger = l
	}
}

// NewPasswordService creates a credentials authentication service.
func NewPasswordService(storage UserStorage, opts ...PasswordOption) *PasswordService {
	s := &PasswordService{
		storage:    storage,
		bcryptCost: bcrypt.DefaultCost,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Register creates an unverified credentials account. The caller is expected
// to issue a verification token and send the verification email afterwards;
// if that send fails the account persists in a resumable unverified state.
func (s *PasswordService) Register(ctx context.Context, params RegisterParams) (*User, error) {
	email := normalizeEmail(params.Email)

	if !emailRegex.MatchString(email) {
		return nil, ErrInvalidEmail
	}
	// Password strength is left to the client; only emptiness and the
	// confirm mismatch are rejected here.
	if params.Password == "" {
		return nil, ErrPasswordRequired
	}
	if params.Password != params.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}

	displayName := strings.TrimSpace(params.DisplayName)
	if displayName == "" {
		displayName = email[:strings.IndexByte(email, '@')]
	}

	if _, err := s.storage.GetUserByEmail(ctx, email); err == nil {
		return nil, ErrEmailAlreadyExists
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("check existing user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	handle, err := username.Generate(ctx, displayName, s.storage.IsUsernameTaken)
	if err != nil {
		if errors.Is(err, username.ErrExhausted) {
			return nil, ErrUsernameGenExhausted
		}
		return nil, fmt.Errorf("generate username: %w", err)
	}

	user := &User{
		ID:           uuid.New(),
		Username:     handle,
		DisplayName:  displayName,
		Email:        email,
		PasswordHash: hash,
		AuthStrategy: StrategyCredentials,
		Bio:          defaultBio,
		Location:     defaultLocation,
		JoinedOn:     time.Now(),
	}

	if err := s.storage.CreateUser(ctx, user); err != nil {
		// The unique index on email is the safety net against a concurrent
		// registration winning the race between our lookup and this insert.
		if errors.Is(err, ErrEmailAlreadyExists) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	if err := s.storage.CreateUserStats(ctx, user.ID); err != nil {
		s.logger.ErrorContext(ctx, "failed to create user stats row",
			logger.UserID(user.ID.String()),
			logger.Error(err),
			logger.Component("auth.password"),
		)
	}

	return user, nil
}

// Authenticate resolves an email/password pair to a login resolution.
// The rejection reason is specific on purpose: the client redirects to
// registration on "no user found" but shows a field error on a bad password.
func (s *PasswordService) Authenticate(ctx context.Context, email, password string) Resolution {
	email = normalizeEmail(email)

	user, err := s.storage.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return resolutionRejected(ErrNoUserFound)
		}
		return resolutionRejected(fmt.Errorf("lookup user: %w", err))
	}

	if user.AuthStrategy != StrategyCredentials {
		return resolutionRejected(ErrWrongAuthMethod)
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return resolutionRejected(ErrIncorrectPassword)
	}

	if !user.EmailVerified {
		return resolutionNeedsVerification(user)
	}

	return resolutionOK(user)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
