package auth

import "errors"

// Rejection reasons. These propagate unmodified to the HTTP layer because
// the client branches its UX on the specific reason.
var (
	ErrNoUserFound       = errors.New("no user found")
	ErrWrongAuthMethod   = errors.New("wrong authentication method")
	ErrIncorrectPassword = errors.New("incorrect password")
	ErrEmailNotVerified  = errors.New("email not verified")
	ErrEmailRequired     = errors.New("email required")
)

// Registration and account errors
var (
	ErrUserNotFound         = errors.New("user not found")
	ErrEmailAlreadyExists   = errors.New("email already exists")
	ErrProfileAlreadyExists = errors.New("profile already exists")
	ErrEmailAlreadyAttached = errors.New("account already has an email")
	ErrPasswordMismatch     = errors.New("passwords do not match")
	ErrPasswordRequired     = errors.New("password is required")
	ErrInvalidEmail         = errors.New("invalid email address")
	ErrDisplayNameRequired  = errors.New("display name is required")
	ErrUsernameGenExhausted = errors.New("could not generate a unique username")
)

// Verification token errors
var (
	// ErrTokenInvalid covers missing, expired, and already-used tokens.
	// The distinction is logged internally but never surfaced to the caller.
	ErrTokenInvalid = errors.New("invalid or expired token")
)

// OAuth flow errors
var (
	ErrInvalidState  = errors.New("invalid oauth state")
	ErrStateNotFound = errors.New("oauth state not found or expired")
	ErrInvalidCode   = errors.New("invalid oauth code")
)
