package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Manager issues, resolves and destroys cookie-bound sessions.
type Manager struct {
	store    Store
	fallback *MemoryStore
	config   Config
	logger   *slog.Logger
}

// Option configures a Manager during construction.
type Option func(*Manager)

// WithStore sets the primary session store.
func WithStore(store Store) Option {
	return func(m *Manager) { m.store = store }
}

// WithConfig sets the session configuration.
func WithConfig(cfg Config) Option {
	return func(m *Manager) { m.config = cfg }
}

// WithManagerLogger sets a custom logger.
func WithManagerLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// New creates a session manager. Without WithStore it runs on a memory store.
// The fallback memory store is always present so logins survive a primary
// store outage.
func New(opts ...Option) *Manager {
	m := &Manager{
		config: DefaultConfig(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(m)
	}

	m.fallback = NewMemoryStore(m.config.CleanupInterval)
	if m.store == nil {
		m.store = m.fallback
	}

	return m
}

// Issue creates a session for the given identity claims and sets the session
// cookie. When the primary store is unreachable the session is written to
// the in-process fallback so the cookie transport still works; the caller's
// bearer token never depended on this call succeeding.
func (m *Manager) Issue(ctx context.Context, w http.ResponseWriter, userID uuid.UUID, email, usernameValue string, emailVerified bool, strategy string) (*Session, error) {
	id, err := generateID()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	session := &Session{
		ID:            id,
		UserID:        userID,
		Email:         email,
		Username:      usernameValue,
		EmailVerified: emailVerified,
		AuthStrategy:  strategy,
		CreatedAt:     now,
		ExpiresAt:     now.Add(m.config.TTL),
	}

	if err := m.store.Create(ctx, session); err != nil {
		m.logger.ErrorContext(ctx, "primary session store write failed, using fallback",
			slog.String("error", err.Error()),
			slog.String("component", "session"),
		)
		if err := m.fallback.Create(ctx, session); err != nil {
			return nil, err
		}
	}

	m.setCookie(w, id, m.config.TTL)
	return session, nil
}

// Resolve returns the session referenced by the request cookie, if any.
func (m *Manager) Resolve(ctx context.Context, r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(m.config.CookieName)
	if err != nil || cookie.Value == "" {
		return nil, ErrSessionNotFound
	}

	session, err := m.store.Get(ctx, cookie.Value)
	if err == nil {
		return session, nil
	}
	if errors.Is(err, ErrStoreUnavailable) {
		return m.fallback.Get(ctx, cookie.Value)
	}
	if m.store != Store(m.fallback) {
		// The session may have been issued during a primary outage.
		if session, fbErr := m.fallback.Get(ctx, cookie.Value); fbErr == nil {
			return session, nil
		}
	}
	return nil, err
}

// Destroy deletes the session referenced by the request and clears the cookie.
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if cookie, err := r.Cookie(m.config.CookieName); err == nil && cookie.Value != "" {
		_ = m.store.Delete(ctx, cookie.Value)
		_ = m.fallback.Delete(ctx, cookie.Value)
	}

	m.setCookie(w, "", -time.Second)
	return nil
}

// Close releases the fallback store's cleanup goroutine.
func (m *Manager) Close() error {
	return m.fallback.Close()
}

// setCookie writes the session cookie. The cookie carries only the opaque
// session identifier. SameSite=None requires Secure, so cross-site mode is
// only enabled together with SecureCookies.
func (m *Manager) setCookie(w http.ResponseWriter, value string, ttl time.Duration) {
	sameSite := http.SameSiteLaxMode
	if m.config.SecureCookies {
		sameSite = http.SameSiteNoneMode
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.config.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.config.SecureCookies,
		SameSite: sameSite,
	})
}

// generateID creates a cryptographically secure session identifier.
func generateID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Join(ErrIDGeneration, err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
