package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/campushare/campushare/pkg/auth"
)

func validRegisterParams() auth.RegisterParams {
	return auth.RegisterParams{
		Email:           "a@x.com",
		Password:        "secret-pass-1",
		ConfirmPassword: "secret-pass-1",
		DisplayName:     "Alice Smith",
	}
}

func TestPasswordService_Register(t *testing.T) {
	t.Parallel()

	t.Run("creates unverified credentials account", func(t *testing.T) {
		t.Parallel()

		storage := new(MockUserStorage)
		storage.On("GetUserByEmail", mock.Anything, "a@x.com").Return(nil, auth.ErrUserNotFound)
		storage.On("IsUsernameTaken", mock.Anything, "alice-smith").Return(false, nil)
		storage.On("CreateUser", mock.Anything, mock.MatchedBy(func(u *auth.User) bool {
			return u.Email == "a@x.com" &&
				u.AuthStrategy == auth.StrategyCredentials &&
				!u.EmailVerified &&
				len(u.PasswordHash) > 0
		})).Return(nil)
		storage.On("CreateUserStats", mock.Anything, mock.Anything).Return(nil)

		svc := auth.NewPasswordService(storage)
		user, err := svc.Register(context.Background(), validRegisterParams())
		require.NoError(t, err)

		assert.Equal(t, "alice-smith", user.Username)
		assert.Equal(t, "Alice Smith", user.DisplayName)
		assert.NoError(t, bcrypt.CompareHashAndPassword(user.PasswordHash, []byte("secret-pass-1")))
		storage.AssertExpectations(t)
	})

	t.Run("normalizes email casing", func(t *testing.T) {
		t.Parallel()

		storage := new(MockUserStorage)
		storage.On("GetUserByEmail", mock.Anything, "a@x.com").Return(nil, auth.ErrUserNotFound)
		storage.On("IsUsernameTaken", mock.Anything, mock.Anything).Return(false, nil)
		storage.On("CreateUser", mock.Anything, mock.Anything).Return(nil)
		storage.On("CreateUserStats", mock.Anything, mock.Anything).Return(nil)

		params := validRegisterParams()
		params.Email = "  A@X.com "

		svc := auth.NewPasswordService(storage)
		user, err := svc.Register(context.Background(), params)
		require.NoError(t, err)
		assert.Equal(t, "a@x.com", user.Email)
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		t.Parallel()

		storage := new(MockUserStorage)
		storage.On("GetUserByEmail", mock.Anything, "a@x.com").Return(&auth.User{Email: "a@x.com"}, nil)

		svc := auth.NewPasswordService(storage)
		_, err := svc.Register(context.Background(), validRegisterParams())
		assert.ErrorIs(t, err, auth.ErrEmailAlreadyExists)
	})

	t.Run("maps insert race to already exists", func(t *testing.T) {
		t.Parallel()

		storage := new(MockUserStorage)
		storage.On("GetUserByEmail", mock.Anything, "a@x.com").Return(nil, auth.ErrUserNotFound)
		storage.On("IsUsernameTaken", mock.Anything, mock.Anything).Return(false, nil)
		storage.On("CreateUser", mock.Anything, mock.Anything).Return(auth.ErrEmailAlreadyExists)

		svc := auth.NewPasswordService(storage)
		_, err := svc.Register(context.Background(), validRegisterParams())
		assert.ErrorIs(t, err, auth.ErrEmailAlreadyExists)
	})

	t.Run("rejects password mismatch", func(t *testing.T) {
		t.Parallel()

		params := validRegisterParams()
		params.ConfirmPassword = "something-else"

		svc := auth.NewPasswordService(new(MockUserStorage))
		_, err := svc.Register(context.Background(), params)
		assert.ErrorIs(t, err, auth.ErrPasswordMismatch)
	})

	t.Run("accepts a seven character password", func(t *testing.T) {
		t.Parallel()

		storage := new(MockUserStorage)
		storage.On("GetUserByEmail", mock.Anything, "a@x.com").Return(nil, auth.ErrUserNotFound)
		storage.On("IsUsernameTaken", mock.Anything, mock.Anything).Return(false, nil)
		storage.On("CreateUser", mock.Anything, mock.Anything).Return(nil)
		storage.On("CreateUserStats", mock.Anything, mock.Anything).Return(nil)

		params := validRegisterParams()
		params.Password = "secret1"
		params.ConfirmPassword = "secret1"

		svc := auth.NewPasswordService(storage)
		user, err := svc.Register(context.Background(), params)
		require.NoError(t, err)
		assert.NoError(t, bcrypt.CompareHashAndPassword(user.PasswordHash, []byte("secret1")))
	})

	t.Run("rejects empty password", func(t *testing.T) {
		t.Parallel()

		params := validRegisterParams()
		params.Password = ""
		params.ConfirmPassword = ""

		svc := auth.NewPasswordService(new(MockUserStorage))
		_, err := svc.Register(context.Background(), params)
		assert.ErrorIs(t, err, auth.ErrPasswordRequired)
	})

	t.Run("rejects malformed email", func(t *testing.T) {
		t.Parallel()

		params := validRegisterParams()
		params.Email = "not-an-email"

		svc := auth.NewPasswordService(new(MockUserStorage))
		_, err := svc.Register(context.Background(), params)
		assert.ErrorIs(t, err, auth.ErrInvalidEmail)
	})
}

func TestPasswordService_Authenticate(t *testing.T) {
	t.Parallel()

	hash, err := bcrypt.GenerateFromPassword([]byte("secret-pass-1"), bcrypt.MinCost)
	require.NoError(t, err)

	verifiedUser := func() *auth.User {
		return &auth.User{
			Email:         "a@x.com",
			PasswordHash:  hash,
			AuthStrategy:  auth.StrategyCredentials,
			EmailVerified: true,
		}
	}

	t.Run("verified user with correct password", func(t *testing.T) {
		t.Parallel()

		storage := new(MockUserStorage)
		storage.On("GetUserByEmail", mock.Anything, "a@x.com").Return(verifiedUser(), nil)

		svc := auth.NewPasswordService(storage)
		res := svc.Authenticate(context.Background(), "a@x.com", "secret-pass-1")
		assert.Equal(t, auth.OutcomeOK, res.Outcome)
		assert.True(t, res.Accepted())
	})

	t.Run("unknown email rejected with no user found", func(t *testing.T) {
		t.Parallel()

		storage := new(MockUserStorage)
		storage.On("GetUserByEmail", mock.Anything, "b@x.com").Return(nil, auth.ErrUserNotFound)

		svc := auth.NewPasswordService(storage)
		res := svc.Authenticate(context.Background(), "b@x.com", "whatever-pass")
		assert.Equal(t, auth.OutcomeRejected, res.Outcome)
		assert.ErrorIs(t, res.Reason, auth.ErrNoUserFound)
	})

	t.Run("social account rejected with wrong method before password check", func(t *testing.T) {
		t.Parallel()

		user := verifiedUser()
		user.AuthStrategy = auth.StrategyFederated
		user.PasswordHash = nil

		storage := new(MockUserStorage)
		storage.On("GetUserByEmail", mock.Anything, "a@x.com").Return(user, nil)

		svc := auth.NewPasswordService(storage)
		res := svc.Authenticate(context.Background(), "a@x.com", "any-password")
		assert.Equal(t, auth.OutcomeRejected, res.Outcome)
		assert.ErrorIs(t, res.Reason, auth.ErrWrongAuthMethod)
	})

	t.Run("bad password rejected", func(t *testing.T) {
		t.Parallel()

		storage := new(MockUserStorage)
		storage.On("GetUserByEmail", mock.Anything, "a@x.com").Return(verifiedUser(), nil)

		svc := auth.NewPasswordService(storage)
		res := svc.Authenticate(context.Background(), "a@x.com", "wrong-password")
		assert.Equal(t, auth.OutcomeRejected, res.Outcome)
		assert.ErrorIs(t, res.Reason, auth.ErrIncorrectPassword)
	})

	t.Run("unverified email yields needs verification", func(t *testing.T) {
		t.Parallel()

		user := verifiedUser()
		user.EmailVerified = false

		storage := new(MockUserStorage)
		storage.On("GetUserByEmail", mock.Anything, "a@x.com").Return(user, nil)

		svc := auth.NewPasswordService(storage)
		res := svc.Authenticate(context.Background(), "a@x.com", "secret-pass-1")
		assert.Equal(t, auth.OutcomeNeedsVerification, res.Outcome)
		assert.False(t, res.Accepted())
		assert.NotNil(t, res.User)
	})
}
