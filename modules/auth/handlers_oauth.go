package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/campushare/campushare/pkg/auth"
	"github.com/campushare/campushare/pkg/logger"
)

// handleOAuthBegin redirects the popup to the provider's authorization page.
func (m *Module) handleOAuthBegin(svc *auth.OAuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authURL, err := svc.BeginAuth(r.Context())
		if err != nil {
			m.logger.ErrorContext(r.Context(), "oauth begin failed",
				logger.Error(err),
				logger.Component("http.auth"),
			)
			http.Redirect(w, r, "/auth/failure", http.StatusTemporaryRedirect)
			return
		}
		http.Redirect(w, r, authURL, http.StatusTemporaryRedirect)
	}
}

// handleOAuthCallback completes the provider flow. A verified identity gets
// a session and is bounced to /auth/success, which hands the token to the
// opener. The limbo outcomes render popup scripts so the opener can branch.
func (m *Module) handleOAuthCallback(svc *auth.OAuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		state := r.URL.Query().Get("state")

		res := svc.CompleteAuth(r.Context(), code, state)
		switch res.Outcome {
		case auth.OutcomeOK:
			if _, err := m.sessions.Issue(r.Context(), w, res.User.ID, res.User.Email, res.User.Username, res.User.EmailVerified, res.User.AuthStrategy); err != nil {
				m.logger.ErrorContext(r.Context(), "session issuance failed after oauth",
					logger.UserID(res.User.ID.String()),
					logger.Error(err),
					logger.Component("http.auth"),
				)
				http.Redirect(w, r, "/auth/failure", http.StatusTemporaryRedirect)
				return
			}
			http.Redirect(w, r, "/auth/success", http.StatusTemporaryRedirect)

		case auth.OutcomeNeedsEmail:
			m.popupScript(w, map[string]any{
				"requireEmail": true,
				"userId":       res.User.ID.String(),
			})

		case auth.OutcomeNeedsVerification:
			if err := m.verification.SendVerification(r.Context(), res.User); err != nil {
				m.logger.ErrorContext(r.Context(), "verification email send failed after oauth",
					logger.UserID(res.User.ID.String()),
					logger.Error(err),
					logger.Component("http.auth"),
				)
			}
			m.popupScript(w, map[string]any{
				"emailNotVerified": true,
				"email":            res.User.Email,
			})

		default:
			m.logger.WarnContext(r.Context(), "oauth callback rejected",
				logger.Error(res.Reason),
				logger.Component("http.auth"),
			)
			http.Redirect(w, r, "/auth/failure", http.StatusTemporaryRedirect)
		}
	}
}

// handleAuthSuccess runs inside the popup after the callback set the session
// cookie. It mints the bearer token from the session claims and posts both
// token and user to the opener window.
func (m *Module) handleAuthSuccess(w http.ResponseWriter, r *http.Request) {
	sess, err := m.sessions.Resolve(r.Context(), r)
	if err != nil {
		http.Redirect(w, r, "/auth/failure", http.StatusTemporaryRedirect)
		return
	}

	token, err := m.tokens.Sign(sess.UserID, sess.Email, sess.Username, sess.EmailVerified, sess.AuthStrategy)
	if err != nil {
		m.logger.ErrorContext(r.Context(), "token signing failed in popup",
			logger.UserID(sess.UserID.String()),
			logger.Error(err),
			logger.Component("http.auth"),
		)
		http.Redirect(w, r, "/auth/failure", http.StatusTemporaryRedirect)
		return
	}

	m.popupScript(w, map[string]any{
		"authSuccess": true,
		"token":       token,
		"user": map[string]any{
			"userId":        sess.UserID.String(),
			"username":      sess.Username,
			"email":         sess.Email,
			"emailVerified": sess.EmailVerified,
			"authStrategy":  sess.AuthStrategy,
		},
	})
}

// handleAuthFailure is the terminal page for failed popup flows.
func (m *Module) handleAuthFailure(w http.ResponseWriter, r *http.Request) {
	m.popupScript(w, map[string]any{"authSuccess": false})
}

type attachEmailRequest struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
}

// handleAttachEmail stores the out-of-band collected email on a code-host
// account and starts verification. Allowed once per account.
func (m *Module) handleAttachEmail(w http.ResponseWriter, r *http.Request) {
	var req attachEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   "invalid request body",
		})
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   "invalid user id",
		})
		return
	}

	user, err := m.linker.AttachEmail(r.Context(), userID, req.Email)
	if err != nil {
		status := http.StatusBadRequest
		message := err.Error()
		switch {
		case errors.Is(err, auth.ErrUserNotFound):
			status = http.StatusNotFound
			message = "no user found"
		case errors.Is(err, auth.ErrEmailAlreadyExists):
			message = "an account with this email already exists"
		case errors.Is(err, auth.ErrEmailAlreadyAttached),
			errors.Is(err, auth.ErrInvalidEmail):
			// Pass through.
		default:
			m.logger.ErrorContext(r.Context(), "attach email failed",
				logger.Error(err),
				logger.Component("http.auth"),
			)
			status = http.StatusInternalServerError
			message = "could not attach email"
		}
		writeJSON(w, status, map[string]any{
			"success": false,
			"error":   message,
		})
		return
	}

	if err := m.verification.SendVerification(r.Context(), user); err != nil {
		m.logger.ErrorContext(r.Context(), "verification email send failed after attach",
			logger.UserID(user.ID.String()),
			logger.Error(err),
			logger.Component("http.auth"),
		)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":                   true,
		"emailVerificationRequired": true,
	})
}
