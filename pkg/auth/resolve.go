package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/campushare/campushare/pkg/logger"
	"github.com/campushare/campushare/pkg/username"
)

// Linker reconciles inbound provider profiles with the credential store,
// guaranteeing one account per real-world person across entry strategies.
type Linker struct {
	storage UserStorage
	logger  *slog.Logger
}

// LinkerOption configures a Linker.
type LinkerOption func(*Linker)

// WithLinkerLogger sets a custom logger.
func WithLinkerLogger(l *slog.Logger) LinkerOption {
	return func(s *Linker) {
		s.logger = l
	}
}

// NewLinker creates an account linking resolver.
func NewLinker(storage UserStorage, opts ...LinkerOption) *Linker {
	s := &Linker{
		storage: storage,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Resolve finds or creates the account for a provider profile. The policy
// decides the linking key and whether the provider's email arrives verified.
// Accounts keyed by profile URL keep that key even after an email is attached
// later, so a provider changing how it reports email cannot fork the account.
func (s *Linker) Resolve(ctx context.Context, profile Profile, policy LinkPolicy) Resolution {
	user, err := s.lookup(ctx, profile, policy)
	switch {
	case err == nil:
		// Existing account. Provider values never overwrite user-edited
		// profile fields.
	case errors.Is(err, ErrUserNotFound):
		user, err = s.create(ctx, profile, policy)
		if err != nil {
			return resolutionRejected(err)
		}
	default:
		return resolutionRejected(fmt.Errorf("lookup identity: %w", err))
	}

	switch {
	case !user.HasEmail():
		return resolutionNeedsEmail(user)
	case !user.EmailVerified:
		return resolutionNeedsVerification(user)
	default:
		return resolutionOK(user)
	}
}

// AttachEmail associates an email with an account that has none. Allowed
// exactly once per account; the profile URL remains the primary linking key.
func (s *Linker) AttachEmail(ctx context.Context, userID uuid.UUID, email string) (*User, error) {
	email = normalizeEmail(email)
	if !emailRegex.MatchString(email) {
		return nil, ErrInvalidEmail
	}

	user, err := s.storage.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.HasEmail() {
		return nil, ErrEmailAlreadyAttached
	}

	if existing, err := s.storage.GetUserByEmail(ctx, email); err == nil && existing.ID != userID {
		return nil, ErrEmailAlreadyExists
	} else if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("check email in use: %w", err)
	}

	if err := s.storage.UpdateUserEmail(ctx, userID, email); err != nil {
		return nil, err
	}

	user.Email = email
	return user, nil
}

func (s *Linker) lookup(ctx context.Context, profile Profile, policy LinkPolicy) (*User, error) {
	if policy.LinkBy == LinkByProfileURL {
		return s.storage.GetUserByProfileURL(ctx, profile.ProfileURL)
	}
	return s.storage.GetUserByEmail(ctx, profile.Email)
}

func (s *Linker) create(ctx context.Context, profile Profile, policy LinkPolicy) (*User, error) {
	handle, err := username.Generate(ctx, profile.DisplayName, s.storage.IsUsernameTaken)
	if err != nil {
		if errors.Is(err, username.ErrExhausted) {
			return nil, ErrUsernameGenExhausted
		}
		return nil, fmt.Errorf("generate username: %w", err)
	}

	now := time.Now()
	user := &User{
		ID:           uuid.New(),
		Username:     handle,
		DisplayName:  profile.DisplayName,
		Email:        profile.Email,
		AuthStrategy: profile.Strategy,
		ProfileURL:   profile.ProfileURL,
		PhotoURL:     profile.PhotoURL,
		Bio:          defaultBio,
		Location:     defaultLocation,
		JoinedOn:     now,
	}

	if policy.EmailGuaranteedVerified && user.HasEmail() {
		user.EmailVerified = true
		user.EmailVerifiedAt = &now
	}

	if err := s.storage.CreateUser(ctx, user); err != nil {
		// A concurrent callback for the same person may have inserted the row
		// between lookup and insert; the unique constraints catch it and we
		// fall back to the winner's row.
		if errors.Is(err, ErrEmailAlreadyExists) || errors.Is(err, ErrProfileAlreadyExists) {
			return s.lookup(ctx, profile, policy)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	if err := s.storage.CreateUserStats(ctx, user.ID); err != nil {
		s.logger.ErrorContext(ctx, "failed to create user stats row",
			logger.UserID(user.ID.String()),
			logger.Error(err),
			logger.Component("auth.linker"),
		)
	}

	return user, nil
}
