// Package auth exposes the authentication HTTP surface: registration,
// password login, the OAuth redirect flows, email verification and the
// dual-transport request authenticator.
package auth

import (
	"io"
	"log/slog"

	"github.com/campushare/campushare/pkg/auth"
	"github.com/campushare/campushare/pkg/bearer"
	"github.com/campushare/campushare/pkg/session"
)

// Config holds the HTTP-layer settings for the auth module.
type Config struct {
	// FrontendOrigin is the single-page client origin, used for CORS and as
	// the postMessage target of the OAuth popup scripts.
	FrontendOrigin string `env:"FRONTEND_ORIGIN" envDefault:"http://localhost:3000"`
}

// Module bundles the services behind the auth HTTP surface.
type Module struct {
	config       Config
	passwords    *auth.PasswordService
	verification *auth.VerificationService
	linker       *auth.Linker
	google       *auth.OAuthService
	github       *auth.OAuthService
	sessions     *session.Manager
	tokens       *bearer.Issuer
	logger       *slog.Logger
}

// Option configures a Module.
type Option func(*Module)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Module) { m.logger = l }
}

// WithGoogle mounts the federated-email provider flow.
func WithGoogle(svc *auth.OAuthService) Option {
	return func(m *Module) { m.google = svc }
}

// WithGitHub mounts the code-host provider flow.
func WithGitHub(svc *auth.OAuthService) Option {
	return func(m *Module) { m.github = svc }
}

// New creates the auth module. OAuth providers are optional; password and
// verification flows are always mounted.
func New(
	cfg Config,
	passwords *auth.PasswordService,
	verification *auth.VerificationService,
	linker *auth.Linker,
	sessions *session.Manager,
	tokens *bearer.Issuer,
	opts ...Option,
) *Module {
	m := &Module{
		config:       cfg,
		passwords:    passwords,
		verification: verification,
		linker:       linker,
		sessions:     sessions,
		tokens:       tokens,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}
