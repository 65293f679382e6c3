package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/campushare/campushare/pkg/logger"
	"github.com/campushare/campushare/pkg/mailer"
)

// DefaultTokenTTL is how long a verification token stays consumable.
const DefaultTokenTTL = 24 * time.Hour

// TokenOwner is the user summary returned when a token is consumed.
type TokenOwner struct {
	TokenID     uuid.UUID
	UserID      uuid.UUID
	Email       string
	DisplayName string
}

// VerificationService issues, consumes and expires single-use
// email-verification tokens, and dispatches verification emails.
type VerificationService struct {
	tokens   TokenStorage
	users    UserStorage
	sender   mailer.EmailSender
	baseURL  string
	tokenTTL time.Duration
	logger   *slog.Logger
}

// VerificationOption configures a VerificationService.
type VerificationOption func(*VerificationService)

// WithTokenTTL overrides the default 24h token lifetime.
func WithTokenTTL(ttl time.Duration) VerificationOption {
	return func(s *VerificationService) {
		s.tokenTTL = ttl
	}
}

// WithVerificationLogger sets a custom logger.
func WithVerificationLogger(l *slog.Logger) VerificationOption {
	return func(s *VerificationService) {
		s.logger = l
	}
}

// NewVerificationService creates the verification token service. baseURL is
// the frontend origin used to build verification links.
func NewVerificationService(tokens TokenStorage, users UserStorage, sender mailer.EmailSender, baseURL string, opts ...VerificationOption) *VerificationService {
	s := &VerificationService{
		tokens:   tokens,
		users:    users,
		sender:   sender,
		baseURL:  baseURL,
		tokenTTL: DefaultTokenTTL,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Issue generates a fresh verification token for the user. The raw token is
// returned once and never retrievable again.
func (s *VerificationService) Issue(ctx context.Context, userID uuid.UUID) (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	value := base64.RawURLEncoding.EncodeToString(raw)

	token := &VerificationToken{
		ID:        uuid.New(),
		UserID:    userID,
		Token:     value,
		TokenType: TokenTypeEmailVerification,
		ExpiresAt: time.Now().Add(s.tokenTTL),
		CreatedAt: time.Now(),
	}

	if err := s.tokens.CreateToken(ctx, token); err != nil {
		return "", fmt.Errorf("store token: %w", err)
	}

	return value, nil
}

// Consume resolves a raw token to its owner without marking it used.
// Missing, expired and already-used tokens all map to ErrTokenInvalid; the
// distinction is logged but never surfaced, so tokens can't be enumerated.
// Store failures propagate as-is so callers can tell an outage from a bad
// token.
func (s *VerificationService) Consume(ctx context.Context, raw string) (*TokenOwner, error) {
	token, err := s.tokens.GetToken(ctx, raw, TokenTypeEmailVerification)
	if err != nil {
		if errors.Is(err, ErrTokenInvalid) {
			return nil, ErrTokenInvalid
		}
		return nil, fmt.Errorf("load token: %w", err)
	}

	if token.UsedAt != nil {
		s.logger.InfoContext(ctx, "verification token already used",
			logger.UserID(token.UserID.String()),
			logger.Component("auth.verification"),
		)
		return nil, ErrTokenInvalid
	}
	if time.Now().After(token.ExpiresAt) {
		s.logger.InfoContext(ctx, "verification token expired",
			logger.UserID(token.UserID.String()),
			logger.Component("auth.verification"),
		)
		return nil, ErrTokenInvalid
	}

	user, err := s.users.GetUserByID(ctx, token.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			// Owner row is gone; the token points nowhere.
			return nil, ErrTokenInvalid
		}
		return nil, fmt.Errorf("load token owner: %w", err)
	}

	return &TokenOwner{
		TokenID:     token.ID,
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
	}, nil
}

// MarkUsed stamps a token as consumed. Idempotent.
func (s *VerificationService) MarkUsed(ctx context.Context, tokenID uuid.UUID) error {
	return s.tokens.MarkTokenUsed(ctx, tokenID, time.Now())
}

// SweepExpired deletes expired token rows. Correctness does not depend on it;
// Consume already filters by expiry.
func (s *VerificationService) SweepExpired(ctx context.Context) error {
	n, err := s.tokens.DeleteExpiredTokens(ctx)
	if err != nil {
		return fmt.Errorf("sweep expired tokens: %w", err)
	}
	if n > 0 {
		s.logger.InfoContext(ctx, "swept expired verification tokens",
			slog.Int64("count", n),
			logger.Component("auth.verification"),
		)
	}
	return nil
}

// Verify consumes a raw token, marks it used and flips the owner's verified
// flag. Expired rows are swept opportunistically afterwards.
func (s *VerificationService) Verify(ctx context.Context, raw string) (*TokenOwner, error) {
	owner, err := s.Consume(ctx, raw)
	if err != nil {
		return nil, err
	}

	if err := s.MarkUsed(ctx, owner.TokenID); err != nil {
		return nil, fmt.Errorf("mark token used: %w", err)
	}

	if err := s.users.SetEmailVerified(ctx, owner.UserID, time.Now()); err != nil {
		return nil, fmt.Errorf("set email verified: %w", err)
	}

	if err := s.SweepExpired(ctx); err != nil {
		s.logger.WarnContext(ctx, "opportunistic token sweep failed",
			logger.Error(err),
			logger.Component("auth.verification"),
		)
	}

	return owner, nil
}

// SendVerification issues a new token for the user and emails the
// verification link. Safe to call repeatedly; each call issues a fresh token
// and older unconsumed tokens simply age out.
func (s *VerificationService) SendVerification(ctx context.Context, user *User) error {
	if !user.HasEmail() {
		return ErrEmailRequired
	}

	token, err := s.Issue(ctx, user.ID)
	if err != nil {
		return err
	}

	body, err := mailer.RenderVerificationEmail(s.baseURL, token, user.DisplayName)
	if err != nil {
		return fmt.Errorf("render verification email: %w", err)
	}

	if err := s.sender.SendEmail(ctx, mailer.SendEmailParams{
		SendTo:   user.Email,
		Subject:  "Verify your CampusShare email",
		BodyHTML: body,
		Tag:      "email-verification",
	}); err != nil {
		return fmt.Errorf("send verification email: %w", err)
	}

	return nil
}

// UserByEmail fetches the account holding the email, for resend flows.
func (s *VerificationService) UserByEmail(ctx context.Context, email string) (*User, error) {
	return s.users.GetUserByEmail(ctx, normalizeEmail(email))
}

// IsVerified reports the verified flag for the account holding the email.
func (s *VerificationService) IsVerified(ctx context.Context, email string) (bool, error) {
	user, err := s.users.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return false, ErrUserNotFound
		}
		return false, err
	}
	return user.EmailVerified, nil
}
