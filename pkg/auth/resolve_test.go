package auth_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/campushare/campushare/pkg/auth"
)

func federatedProfile() auth.Profile {
	return auth.Profile{
		DisplayName: "Alice Smith",
		Email:       "alice@gmail.com",
		PhotoURL:    "https://lh3.example.com/photo.jpg",
		Strategy:    auth.StrategyFederated,
	}
}

func codehostProfile() auth.Profile {
	return auth.Profile{
		DisplayName: "Alice Smith",
		ProfileURL:  "https://github.com/alicesmith",
		PhotoURL:    "https://avatars.example.com/alice.png",
		Strategy:    auth.StrategyCodeHost,
	}
}

var (
	federatedPolicy = auth.LinkPolicy{LinkBy: auth.LinkByEmail, EmailGuaranteedVerified: true}
	codehostPolicy  = auth.LinkPolicy{LinkBy: auth.LinkByProfileURL, EmailGuaranteedVerified: false}
)

func TestLinker_Resolve_Federated(t *testing.T) {
	t.Parallel()

	t.Run("creates pre-verified account on first login", func(t *testing.T) {
		t.Parallel()

		storage := new(MockUserStorage)
		storage.On("GetUserByEmail", mock.Anything, "alice@gmail.com").Return(nil, auth.ErrUserNotFound)
		storage.On("IsUsernameTaken", mock.Anything, "alice-smith").Return(false, nil)
		storage.On("CreateUser", mock.Anything, mock.MatchedBy(func(u *auth.User) bool {
			return u.Email == "alice@gmail.com" &&
				u.AuthStrategy == auth.StrategyFederated &&
				u.EmailVerified &&
				u.EmailVerifiedAt != nil
		})).Return(nil)
		storage.On("CreateUserStats", mock.Anything, mock.Anything).Return(nil)

		linker := auth.NewLinker(storage)
		res := linker.Resolve(context.Background(), federatedProfile(), federatedPolicy)

		assert.Equal(t, auth.OutcomeOK, res.Outcome)
		storage.AssertExpectations(t)
	})

	t.Run("existing account keeps user-edited fields", func(t *testing.T) {
		t.Parallel()

		existing := &auth.User{
			ID:            uuid.New(),
			Username:      "alice-smith",
			DisplayName:   "Alice S.",
			Email:         "alice@gmail.com",
			AuthStrategy:  auth.StrategyFederated,
			Bio:           "Custom bio the user wrote",
			EmailVerified: true,
		}

		storage := new(MockUserStorage)
		storage.On("GetUserByEmail", mock.Anything, "alice@gmail.com").Return(existing, nil)

		linker := auth.NewLinker(storage)
		res := linker.Resolve(context.Background(), federatedProfile(), federatedPolicy)

		require.Equal(t, auth.OutcomeOK, res.Outcome)
		assert.Equal(t, "Custom bio the user wrote", res.User.Bio)
		storage.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
	})

	t.Run("insert race falls back to winner row", func(t *testing.T) {
		t.Parallel()

		winner := &auth.User{
			ID:            uuid.New(),
			Email:         "alice@gmail.com",
			AuthStrategy:  auth.StrategyFederated,
			EmailVerified: true,
		}

		storage := new(MockUserStorage)
		storage.On("GetUserByEmail", mock.Anything, "alice@gmail.com").Return(nil, auth.ErrUserNotFound).Once()
		storage.On("IsUsernameTaken", mock.Anything, mock.Anything).Return(false, nil)
		storage.On("CreateUser", mock.Anything, mock.Anything).Return(auth.ErrEmailAlreadyExists)
		storage.On("GetUserByEmail", mock.Anything, "alice@gmail.com").Return(winner, nil)

		linker := auth.NewLinker(storage)
		res := linker.Resolve(context.Background(), federatedProfile(), federatedPolicy)

		require.Equal(t, auth.OutcomeOK, res.Outcome)
		assert.Equal(t, winner.ID, res.User.ID)
	})
}

func TestLinker_Resolve_CodeHost(t *testing.T) {
	t.Parallel()

	t.Run("new profile without email yields needs email", func(t *testing.T) {
		t.Parallel()

		storage := new(MockUserStorage)
		storage.On("GetUserByProfileURL", mock.Anything, "https://github.com/alicesmith").Return(nil, auth.ErrUserNotFound)
		storage.On("IsUsernameTaken", mock.Anything, mock.Anything).Return(false, nil)
		storage.On("CreateUser", mock.Anything, mock.MatchedBy(func(u *auth.User) bool {
			return u.Email == "" && !u.EmailVerified && u.AuthStrategy == auth.StrategyCodeHost
		})).Return(nil)
		storage.On("CreateUserStats", mock.Anything, mock.Anything).Return(nil)

		linker := auth.NewLinker(storage)
		res := linker.Resolve(context.Background(), codehostProfile(), codehostPolicy)

		assert.Equal(t, auth.OutcomeNeedsEmail, res.Outcome)
		assert.NotNil(t, res.User)
	})

	t.Run("email attached but unverified yields needs verification", func(t *testing.T) {
		t.Parallel()

		existing := &auth.User{
			ID:           uuid.New(),
			Email:        "alice@x.com",
			AuthStrategy: auth.StrategyCodeHost,
			ProfileURL:   "https://github.com/alicesmith",
		}

		storage := new(MockUserStorage)
		storage.On("GetUserByProfileURL", mock.Anything, "https://github.com/alicesmith").Return(existing, nil)

		linker := auth.NewLinker(storage)
		res := linker.Resolve(context.Background(), codehostProfile(), codehostPolicy)

		assert.Equal(t, auth.OutcomeNeedsVerification, res.Outcome)
	})

	t.Run("verified account resolves ok through same profile url", func(t *testing.T) {
		t.Parallel()

		existing := &auth.User{
			ID:            uuid.New(),
			Email:         "alice@x.com",
			AuthStrategy:  auth.StrategyCodeHost,
			ProfileURL:    "https://github.com/alicesmith",
			EmailVerified: true,
		}

		storage := new(MockUserStorage)
		storage.On("GetUserByProfileURL", mock.Anything, "https://github.com/alicesmith").Return(existing, nil)

		linker := auth.NewLinker(storage)
		res := linker.Resolve(context.Background(), codehostProfile(), codehostPolicy)

		require.Equal(t, auth.OutcomeOK, res.Outcome)
		assert.Equal(t, existing.ID, res.User.ID)
		storage.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
	})
}

func TestLinker_AttachEmail(t *testing.T) {
	t.Parallel()

	t.Run("attaches email once", func(t *testing.T) {
		t.Parallel()

		userID := uuid.New()
		storage := new(MockUserStorage)
		storage.On("GetUserByID", mock.Anything, userID).Return(&auth.User{ID: userID, AuthStrategy: auth.StrategyCodeHost}, nil)
		storage.On("GetUserByEmail", mock.Anything, "alice@x.com").Return(nil, auth.ErrUserNotFound)
		storage.On("UpdateUserEmail", mock.Anything, userID, "alice@x.com").Return(nil)

		linker := auth.NewLinker(storage)
		user, err := linker.AttachEmail(context.Background(), userID, "Alice@X.com")
		require.NoError(t, err)
		assert.Equal(t, "alice@x.com", user.Email)
	})

	t.Run("rejects second attachment", func(t *testing.T) {
		t.Parallel()

		userID := uuid.New()
		storage := new(MockUserStorage)
		storage.On("GetUserByID", mock.Anything, userID).Return(&auth.User{ID: userID, Email: "already@x.com"}, nil)

		linker := auth.NewLinker(storage)
		_, err := linker.AttachEmail(context.Background(), userID, "new@x.com")
		assert.ErrorIs(t, err, auth.ErrEmailAlreadyAttached)
	})

	t.Run("rejects email held by another account", func(t *testing.T) {
		t.Parallel()

		userID := uuid.New()
		storage := new(MockUserStorage)
		storage.On("GetUserByID", mock.Anything, userID).Return(&auth.User{ID: userID}, nil)
		storage.On("GetUserByEmail", mock.Anything, "taken@x.com").Return(&auth.User{ID: uuid.New(), Email: "taken@x.com"}, nil)

		linker := auth.NewLinker(storage)
		_, err := linker.AttachEmail(context.Background(), userID, "taken@x.com")
		assert.ErrorIs(t, err, auth.ErrEmailAlreadyExists)
	})

	t.Run("rejects malformed email", func(t *testing.T) {
		t.Parallel()

		linker := auth.NewLinker(new(MockUserStorage))
		_, err := linker.AttachEmail(context.Background(), uuid.New(), "nope")
		assert.ErrorIs(t, err, auth.ErrInvalidEmail)
	})
}
