package session

import "time"

// Config holds session configuration.
type Config struct {
	// CookieName is the name of the session cookie.
	CookieName string `env:"SESSION_COOKIE_NAME" envDefault:"chs_sid"`

	// TTL is the session lifetime.
	TTL time.Duration `env:"SESSION_TTL" envDefault:"168h"`

	// CleanupInterval for expired sessions in the memory store (0 disables).
	CleanupInterval time.Duration `env:"SESSION_CLEANUP_INTERVAL" envDefault:"5m"`

	// SecureCookies marks cookies Secure and SameSite=None so cross-origin
	// single-page clients keep working despite third-party-cookie rules.
	// Leave off for plain-HTTP development, where SameSite falls back to Lax.
	SecureCookies bool `env:"SESSION_SECURE_COOKIES" envDefault:"false"`
}

// DefaultConfig returns default session configuration.
func DefaultConfig() Config {
	return Config{
		CookieName:      "chs_sid",
		TTL:             7 * 24 * time.Hour,
		CleanupInterval: 5 * time.Minute,
		SecureCookies:   false,
	}
}
