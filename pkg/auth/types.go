package auth

import (
	"time"

	"github.com/google/uuid"
)

// Authentication strategy identifiers used to track how users authenticate.
const (
	StrategyCredentials = "credentials"
	StrategyFederated   = "federated"
	StrategyCodeHost    = "codehost"
)

// Placeholder profile values for accounts created from a provider profile.
const (
	defaultBio      = "New to CampusShare."
	defaultLocation = "Not specified"
)

// User represents a canonical account in the marketplace.
// Email is empty when the account was created from a code-host profile that
// did not expose one. PasswordHash is set only for credentials accounts.
type User struct {
	ID              uuid.UUID
	Username        string
	DisplayName     string
	Email           string
	PasswordHash    []byte
	AuthStrategy    string
	ProfileURL      string
	PhotoURL        string
	Bio             string
	Location        string
	JoinedOn        time.Time
	EmailVerified   bool
	EmailVerifiedAt *time.Time
}

// HasEmail reports whether the account has an email on file.
func (u *User) HasEmail() bool {
	return u.Email != ""
}

// Profile is the normalized view of an identity-provider profile.
type Profile struct {
	DisplayName string
	Email       string
	ProfileURL  string
	PhotoURL    string
	Strategy    string
}

// LinkKey selects which profile attribute matches an inbound identity to an
// existing account.
type LinkKey int

const (
	// LinkByEmail matches accounts by email address. Used by providers that
	// assert a verified email on every login.
	LinkByEmail LinkKey = iota

	// LinkByProfileURL matches accounts by the provider's stable profile URL.
	// Used by providers whose profiles may omit an email.
	LinkByProfileURL
)

// LinkPolicy captures what an identity provider guarantees about the
// profiles it hands over. It parameterizes account linking so every strategy
// shares one resolution path.
type LinkPolicy struct {
	LinkBy                  LinkKey
	EmailGuaranteedVerified bool
}

// Outcome is the terminal state of a login attempt.
type Outcome int

const (
	// OutcomeOK means the identity resolved to a verified account and a
	// session/token may be issued.
	OutcomeOK Outcome = iota

	// OutcomeNeedsEmail means the account exists but has no email on file.
	// The caller must collect one before verification can start.
	OutcomeNeedsEmail

	// OutcomeNeedsVerification means the account has an unverified email.
	// No session or token is issued.
	OutcomeNeedsVerification

	// OutcomeRejected means authentication failed; Reason carries the cause.
	OutcomeRejected
)

// Resolution is the tagged result of resolving an inbound credential or
// provider profile against the credential store.
type Resolution struct {
	Outcome Outcome
	User    *User
	Reason  error
}

// Accepted reports whether a session and bearer token may be issued.
func (r Resolution) Accepted() bool {
	return r.Outcome == OutcomeOK
}

func resolutionOK(user *User) Resolution {
	return Resolution{Outcome: OutcomeOK, User: user}
}

func resolutionNeedsEmail(user *User) Resolution {
	return Resolution{Outcome: OutcomeNeedsEmail, User: user}
}

func resolutionNeedsVerification(user *User) Resolution {
	return Resolution{Outcome: OutcomeNeedsVerification, User: user}
}

func resolutionRejected(reason error) Resolution {
	return Resolution{Outcome: OutcomeRejected, Reason: reason}
}

// VerificationToken is a single-use proof of email ownership.
type VerificationToken struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Token     string
	TokenType string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}

// TokenTypeEmailVerification is the only token type this core issues.
const TokenTypeEmailVerification = "email_verification"
