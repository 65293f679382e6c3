package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/campushare/campushare/pkg/auth"
	"github.com/campushare/campushare/pkg/logger"
)

type registerRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	DisplayName     string `json:"displayName"`
}

// handleRegister creates a credentials account and kicks off verification.
// A failed email send leaves the account in a resumable unverified state, so
// it does not fail the registration.
func (m *Module) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"registerSuccess": false,
			"message":         "invalid request body",
		})
		return
	}

	user, err := m.passwords.Register(r.Context(), auth.RegisterParams{
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		DisplayName:     req.DisplayName,
	})
	if err != nil {
		status := http.StatusBadRequest
		message := err.Error()
		switch {
		case errors.Is(err, auth.ErrEmailAlreadyExists):
			message = "an account with this email already exists, please sign in"
		case errors.Is(err, auth.ErrInvalidEmail),
			errors.Is(err, auth.ErrPasswordRequired),
			errors.Is(err, auth.ErrPasswordMismatch):
			// Validation reasons pass through as-is.
		default:
			m.logger.ErrorContext(r.Context(), "registration failed",
				logger.Error(err),
				logger.Component("http.auth"),
			)
			status = http.StatusInternalServerError
			message = "registration failed"
		}
		writeJSON(w, status, map[string]any{
			"registerSuccess": false,
			"message":         message,
		})
		return
	}

	if err := m.verification.SendVerification(r.Context(), user); err != nil {
		m.logger.ErrorContext(r.Context(), "verification email send failed after registration",
			logger.UserID(user.ID.String()),
			logger.Error(err),
			logger.Component("http.auth"),
		)
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"registerSuccess":           true,
		"emailVerificationRequired": true,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// handleLogin authenticates a credentials account. Failures return 200 with
// a body-level signal; the client branches its UX on the message.
func (m *Module) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"authSuccess": false,
			"message":     "invalid request body",
		})
		return
	}

	res := m.passwords.Authenticate(r.Context(), req.Email, req.Password)
	switch res.Outcome {
	case auth.OutcomeOK:
		token, err := m.tokens.Sign(res.User.ID, res.User.Email, res.User.Username, res.User.EmailVerified, res.User.AuthStrategy)
		if err != nil {
			m.logger.ErrorContext(r.Context(), "token signing failed",
				logger.UserID(res.User.ID.String()),
				logger.Error(err),
				logger.Component("http.auth"),
			)
			writeJSON(w, http.StatusInternalServerError, map[string]any{
				"authSuccess": false,
				"message":     "login failed",
			})
			return
		}

		// Session issuance degrades to the in-process fallback store on
		// outage; it never blocks the token above.
		if _, err := m.sessions.Issue(r.Context(), w, res.User.ID, res.User.Email, res.User.Username, res.User.EmailVerified, res.User.AuthStrategy); err != nil {
			m.logger.ErrorContext(r.Context(), "session issuance failed",
				logger.UserID(res.User.ID.String()),
				logger.Error(err),
				logger.Component("http.auth"),
			)
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"authSuccess": true,
			"user":        toUserPayload(res.User),
			"token":       token,
		})

	case auth.OutcomeNeedsVerification:
		// Re-send the link so a signup whose first email got lost can
		// recover straight from the login screen.
		if err := m.verification.SendVerification(r.Context(), res.User); err != nil {
			m.logger.ErrorContext(r.Context(), "verification email send failed on login",
				logger.UserID(res.User.ID.String()),
				logger.Error(err),
				logger.Component("http.auth"),
			)
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"authSuccess": false,
			"message":     "email not verified",
		})

	default:
		message := "login failed"
		switch {
		case errors.Is(res.Reason, auth.ErrNoUserFound):
			message = "no user found"
		case errors.Is(res.Reason, auth.ErrWrongAuthMethod):
			message = "this email is registered with a social login, use that provider instead"
		case errors.Is(res.Reason, auth.ErrIncorrectPassword):
			message = "incorrect password"
		default:
			m.logger.ErrorContext(r.Context(), "login failed",
				logger.Error(res.Reason),
				logger.Component("http.auth"),
			)
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"authSuccess": false,
			"message":     message,
		})
	}
}

// handleLogout destroys the session transport. Previously issued bearer
// tokens stay valid until natural expiry.
func (m *Module) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := m.sessions.Destroy(r.Context(), w, r); err != nil {
		m.logger.ErrorContext(r.Context(), "session destroy failed",
			logger.Error(err),
			logger.Component("http.auth"),
		)
	}
	writeJSON(w, http.StatusOK, map[string]any{"logoutSuccess": true})
}

// handleCurrentUser resolves the caller through either transport.
func (m *Module) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"authSuccess": false})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"authSuccess": true,
		"user": map[string]any{
			"userId":        identity.UserID.String(),
			"username":      identity.Username,
			"email":         identity.Email,
			"emailVerified": identity.EmailVerified,
			"authStrategy":  identity.AuthStrategy,
		},
	})
}
