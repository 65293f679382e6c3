package auth_test

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/campushare/campushare/pkg/auth"
	"github.com/campushare/campushare/pkg/mailer"
)

// MockUserStorage is a mock implementation of UserStorage.
type MockUserStorage struct {
	mock.Mock
}

func (m *MockUserStorage) CreateUser(ctx context.Context, user *auth.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserStorage) GetUserByID(ctx context.Context, id uuid.UUID) (*auth.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.User), args.Error(1)
}

func (m *MockUserStorage) GetUserByEmail(ctx context.Context, email string) (*auth.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.User), args.Error(1)
}

func (m *MockUserStorage) GetUserByProfileURL(ctx context.Context, profileURL string) (*auth.User, error) {
	args := m.Called(ctx, profileURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.User), args.Error(1)
}

func (m *MockUserStorage) UpdateUserEmail(ctx context.Context, userID uuid.UUID, email string) error {
	args := m.Called(ctx, userID, email)
	return args.Error(0)
}

func (m *MockUserStorage) SetEmailVerified(ctx context.Context, userID uuid.UUID, verifiedAt time.Time) error {
	args := m.Called(ctx, userID, verifiedAt)
	return args.Error(0)
}

func (m *MockUserStorage) IsUsernameTaken(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserStorage) CreateUserStats(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockTokenStorage is a mock implementation of TokenStorage.
type MockTokenStorage struct {
	mock.Mock
}

func (m *MockTokenStorage) CreateToken(ctx context.Context, token *auth.VerificationToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockTokenStorage) GetToken(ctx context.Context, token, tokenType string) (*auth.VerificationToken, error) {
	args := m.Called(ctx, token, tokenType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.VerificationToken), args.Error(1)
}

func (m *MockTokenStorage) MarkTokenUsed(ctx context.Context, tokenID uuid.UUID, usedAt time.Time) error {
	args := m.Called(ctx, tokenID, usedAt)
	return args.Error(0)
}

func (m *MockTokenStorage) DeleteExpiredTokens(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockEmailSender is a mock implementation of mailer.EmailSender.
type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendEmail(ctx context.Context, params mailer.SendEmailParams) error {
	args := m.Called(ctx, params)
	return args.Error(0)
}
