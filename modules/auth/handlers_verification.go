package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/campushare/campushare/pkg/auth"
	"github.com/campushare/campushare/pkg/logger"
)

type sendVerificationRequest struct {
	Email string `json:"email"`
}

// handleSendVerification (re)issues a token and emails the link. Each call
// creates a fresh token; stale ones age out on their own.
func (m *Module) handleSendVerification(w http.ResponseWriter, r *http.Request) {
	var req sendVerificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   "email is required",
		})
		return
	}

	user, err := m.verification.UserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]any{
				"success": false,
				"error":   "no user found",
			})
			return
		}
		m.logger.ErrorContext(r.Context(), "verification lookup failed",
			logger.Error(err),
			logger.Component("http.auth"),
		)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"error":   "could not send verification email",
		})
		return
	}

	if user.EmailVerified {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   "email already verified",
		})
		return
	}

	if err := m.verification.SendVerification(r.Context(), user); err != nil {
		m.logger.ErrorContext(r.Context(), "verification email send failed",
			logger.UserID(user.ID.String()),
			logger.Error(err),
			logger.Component("http.auth"),
		)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"error":   "could not send verification email",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

type verifyEmailRequest struct {
	Token string `json:"token"`
}

// handleVerifyEmail consumes a token submitted by the frontend as JSON.
func (m *Module) handleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req verifyEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   "token is required",
		})
		return
	}

	owner, err := m.verification.Verify(r.Context(), req.Token)
	if err != nil {
		m.writeVerifyError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"email":   owner.Email,
	})
}

// handleVerifyEmailRedirect consumes a token arriving as a path parameter,
// for clients following the emailed link directly, and answers with a
// redirect to the frontend.
func (m *Module) handleVerifyEmailRedirect(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	target := m.config.FrontendOrigin + "/email-verified"
	if _, err := m.verification.Verify(r.Context(), token); err != nil {
		reason := "invalid_or_expired"
		if !errors.Is(err, auth.ErrTokenInvalid) {
			m.logger.ErrorContext(r.Context(), "email verification failed",
				logger.Error(err),
				logger.Component("http.auth"),
			)
			reason = "internal_error"
		}
		http.Redirect(w, r, target+"?success=false&reason="+url.QueryEscape(reason), http.StatusTemporaryRedirect)
		return
	}

	http.Redirect(w, r, target+"?success=true", http.StatusTemporaryRedirect)
}

// handleVerificationStatus reports the verified flag for an email.
func (m *Module) handleVerificationStatus(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")

	verified, err := m.verification.IsVerified(r.Context(), email)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			writeJSON(w, http.StatusOK, map[string]any{
				"success":    false,
				"isVerified": false,
			})
			return
		}
		m.logger.ErrorContext(r.Context(), "verification status lookup failed",
			logger.Error(err),
			logger.Component("http.auth"),
		)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"isVerified": verified,
	})
}

func (m *Module) writeVerifyError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, auth.ErrTokenInvalid) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   "invalid or expired token",
		})
		return
	}

	m.logger.ErrorContext(r.Context(), "email verification failed",
		logger.Error(err),
		logger.Component("http.auth"),
	)
	writeJSON(w, http.StatusInternalServerError, map[string]any{
		"success": false,
		"error":   "verification failed",
	})
}
