package bearer_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushare/campushare/pkg/bearer"
)

func testConfig() bearer.Config {
	return bearer.Config{
		SigningSecret: "test-secret-at-least-32-chars-long",
		TokenTTL:      time.Hour,
		Issuer:        "campushare",
		Audience:      "campushare-web",
	}
}

func TestNewIssuer(t *testing.T) {
	t.Parallel()

	t.Run("requires signing secret", func(t *testing.T) {
		t.Parallel()

		cfg := testConfig()
		cfg.SigningSecret = ""
		_, err := bearer.NewIssuer(cfg)
		assert.ErrorIs(t, err, bearer.ErrMissingSigningKey)
	})

	t.Run("defaults ttl to seven days", func(t *testing.T) {
		t.Parallel()

		cfg := testConfig()
		cfg.TokenTTL = 0
		issuer, err := bearer.NewIssuer(cfg)
		require.NoError(t, err)
		assert.Equal(t, 7*24*time.Hour, issuer.TTL())
	})
}

func TestIssuer_RoundTrip(t *testing.T) {
	t.Parallel()

	issuer, err := bearer.NewIssuer(testConfig())
	require.NoError(t, err)

	userID := uuid.New()
	token, err := issuer.Sign(userID, "jane@uni.edu", "jane-doe", true, "credentials")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "jane@uni.edu", claims.Email)
	assert.Equal(t, "jane-doe", claims.Username)
	assert.True(t, claims.EmailVerified)
	assert.Equal(t, "credentials", claims.AuthStrategy)
	assert.Equal(t, "campushare", claims.Issuer)
}

func TestIssuer_Verify(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	t.Run("rejects token signed with different secret", func(t *testing.T) {
		t.Parallel()

		other := testConfig()
		other.SigningSecret = "a-completely-different-signing-secret"
		otherIssuer, err := bearer.NewIssuer(other)
		require.NoError(t, err)

		token, err := otherIssuer.Sign(userID, "a@x.com", "a", true, "credentials")
		require.NoError(t, err)

		issuer, err := bearer.NewIssuer(testConfig())
		require.NoError(t, err)

		_, err = issuer.Verify(token)
		assert.ErrorIs(t, err, bearer.ErrInvalidToken)
	})

	t.Run("rejects expired token", func(t *testing.T) {
		t.Parallel()

		cfg := testConfig()
		cfg.TokenTTL = -time.Minute
		expiredIssuer, err := bearer.NewIssuer(cfg)
		require.NoError(t, err)

		token, err := expiredIssuer.Sign(userID, "a@x.com", "a", true, "credentials")
		require.NoError(t, err)

		_, err = expiredIssuer.Verify(token)
		assert.ErrorIs(t, err, bearer.ErrExpiredToken)
	})

	t.Run("rejects wrong audience", func(t *testing.T) {
		t.Parallel()

		cfg := testConfig()
		cfg.Audience = "some-other-app"
		otherAudience, err := bearer.NewIssuer(cfg)
		require.NoError(t, err)

		token, err := otherAudience.Sign(userID, "a@x.com", "a", true, "credentials")
		require.NoError(t, err)

		issuer, err := bearer.NewIssuer(testConfig())
		require.NoError(t, err)

		_, err = issuer.Verify(token)
		assert.ErrorIs(t, err, bearer.ErrInvalidToken)
	})

	t.Run("rejects wrong issuer", func(t *testing.T) {
		t.Parallel()

		cfg := testConfig()
		cfg.Issuer = "someone-else"
		otherIssuer, err := bearer.NewIssuer(cfg)
		require.NoError(t, err)

		token, err := otherIssuer.Sign(userID, "a@x.com", "a", true, "credentials")
		require.NoError(t, err)

		issuer, err := bearer.NewIssuer(testConfig())
		require.NoError(t, err)

		_, err = issuer.Verify(token)
		assert.ErrorIs(t, err, bearer.ErrInvalidToken)
	})

	t.Run("rejects tampered token", func(t *testing.T) {
		t.Parallel()

		issuer, err := bearer.NewIssuer(testConfig())
		require.NoError(t, err)

		token, err := issuer.Sign(userID, "a@x.com", "a", true, "credentials")
		require.NoError(t, err)

		_, err = issuer.Verify(token + "x")
		assert.ErrorIs(t, err, bearer.ErrInvalidToken)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		t.Parallel()

		issuer, err := bearer.NewIssuer(testConfig())
		require.NoError(t, err)

		_, err = issuer.Verify("not-a-jwt")
		assert.ErrorIs(t, err, bearer.ErrInvalidToken)
	})
}
