// Package bearer issues and verifies the self-contained bearer tokens that
// back the header transport. Tokens are HMAC-SHA256 signed JWTs carrying the
// same claim-set as a server-side session, so cross-origin clients that
// cannot store cookies can authenticate with the Authorization header alone.
//
// Tokens are not revocable before expiry; logout only clears the session
// transport.
package bearer

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrMissingSigningKey = errors.New("bearer: signing key is required")
	ErrInvalidToken      = errors.New("bearer: invalid token")
	ErrExpiredToken      = errors.New("bearer: token expired")
)

// Claims is the identity claim-set embedded in every bearer token. The same
// facts are stored server-side for cookie sessions; both transports resolve
// to an identical view of the caller.
type Claims struct {
	UserID        uuid.UUID `json:"uid"`
	Email         string    `json:"email,omitempty"`
	Username      string    `json:"username"`
	EmailVerified bool      `json:"email_verified"`
	AuthStrategy  string    `json:"strategy"`
	jwt.RegisteredClaims
}

// Config describes token signing parameters.
type Config struct {
	// SigningSecret falls back to the session secret when unset (wired in cmd).
	SigningSecret string        `env:"JWT_SECRET"`
	TokenTTL      time.Duration `env:"JWT_TTL" envDefault:"168h"`
	Issuer        string        `env:"JWT_ISSUER" envDefault:"campushare"`
	Audience      string        `env:"JWT_AUDIENCE" envDefault:"campushare-web"`
}

// Issuer signs and verifies bearer tokens with a server-held symmetric key.
type Issuer struct {
	secret   []byte
	ttl      time.Duration
	issuer   string
	audience string
}

// NewIssuer creates a token issuer from config.
func NewIssuer(cfg Config) (*Issuer, error) {
	if cfg.SigningSecret == "" {
		return nil, ErrMissingSigningKey
	}
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &Issuer{
		secret:   []byte(cfg.SigningSecret),
		ttl:      ttl,
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
	}, nil
}

// Sign mints a token for the given identity facts. Signing is pure CPU work
// and never depends on any store being reachable.
func (i *Issuer) Sign(userID uuid.UUID, email, usernameValue string, emailVerified bool, strategy string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:        userID,
		Email:         email,
		Username:      usernameValue,
		EmailVerified: emailVerified,
		AuthStrategy:  strategy,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    i.issuer,
			Audience:  jwt.ClaimStrings{i.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", errors.Join(ErrInvalidToken, err)
	}
	return signed, nil
}

// Verify checks signature, algorithm, issuer, audience and expiry, returning
// the embedded claims. A token that fails any check is rejected outright.
func (i *Issuer) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.issuer),
		jwt.WithAudience(i.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// TTL exposes the configured token lifetime.
func (i *Issuer) TTL() time.Duration {
	return i.ttl
}
