package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/campushare/campushare/pkg/logger"
)

// ProviderAdapter abstracts an OAuth identity provider. Adapters translate
// provider-specific profile payloads into the normalized Profile and declare
// their guarantees through Policy.
type ProviderAdapter interface {
	Name() string
	AuthURL(state string) string
	ResolveProfile(ctx context.Context, code string) (Profile, error)
	Policy() LinkPolicy
}

// OAuthService drives the redirect flow for one provider: state issuance on
// the way out, state validation plus identity resolution on the way back.
type OAuthService struct {
	adapter  ProviderAdapter
	linker   *Linker
	states   StateStore
	stateTTL time.Duration
	logger   *slog.Logger
}

// OAuthOption configures an OAuthService.
type OAuthOption func(*OAuthService)

// WithStateTTL overrides the default 10 minute state lifetime.
func WithStateTTL(ttl time.Duration) OAuthOption {
	return func(s *OAuthService) {
		s.stateTTL = ttl
	}
}

// WithOAuthLogger sets a custom logger.
func WithOAuthLogger(l *slog.Logger) OAuthOption {
	return func(s *OAuthService) {
		s.logger = l
	}
}

// NewOAuthService creates the OAuth flow service for one provider.
func NewOAuthService(adapter ProviderAdapter, linker *Linker, states StateStore, opts ...OAuthOption) *OAuthService {
	s := &OAuthService{
		adapter:  adapter,
		linker:   linker,
		states:   states,
		stateTTL: 10 * time.Minute,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Provider returns the adapter's provider name.
func (s *OAuthService) Provider() string {
	return s.adapter.Name()
}

// BeginAuth issues a CSRF state and returns the provider authorization URL.
func (s *OAuthService) BeginAuth(ctx context.Context) (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}
	state := base64.RawURLEncoding.EncodeToString(raw)

	if err := s.states.Store(ctx, state, time.Now().Add(s.stateTTL)); err != nil {
		return "", fmt.Errorf("store state: %w", err)
	}

	return s.adapter.AuthURL(state), nil
}

// CompleteAuth validates the callback and resolves the provider profile into
// a login resolution.
func (s *OAuthService) CompleteAuth(ctx context.Context, code, state string) Resolution {
	if state == "" {
		return resolutionRejected(ErrInvalidState)
	}
	if err := s.states.Consume(ctx, state); err != nil {
		return resolutionRejected(ErrInvalidState)
	}

	profile, err := s.adapter.ResolveProfile(ctx, code)
	if err != nil {
		s.logger.ErrorContext(ctx, "provider profile resolution failed",
			slog.String("provider", s.adapter.Name()),
			logger.Error(err),
			logger.Component("auth.oauth"),
		)
		return resolutionRejected(ErrInvalidCode)
	}

	return s.linker.Resolve(ctx, profile, s.adapter.Policy())
}
