package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Router mounts the authentication HTTP surface.
func (m *Module) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{m.config.FrontendOrigin},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(m.Authenticate)

	r.Post("/register", m.handleRegister)
	r.Post("/login", m.handleLogin)
	r.Post("/logout/user", m.handleLogout)

	r.Route("/auth", func(r chi.Router) {
		if m.google != nil {
			r.Get("/google", m.handleOAuthBegin(m.google))
			r.Get("/google/callback", m.handleOAuthCallback(m.google))
		}
		if m.github != nil {
			r.Get("/github", m.handleOAuthBegin(m.github))
			r.Get("/github/callback", m.handleOAuthCallback(m.github))
		}

		r.Get("/success", m.handleAuthSuccess)
		r.Get("/failure", m.handleAuthFailure)
		r.Get("/user", m.handleCurrentUser)
		r.Post("/attach-email", m.handleAttachEmail)
	})

	r.Post("/send-verification", m.handleSendVerification)
	r.Post("/verify-email", m.handleVerifyEmail)
	r.Post("/verify-email/{token}", m.handleVerifyEmailRedirect)
	r.Get("/verification-status/{email}", m.handleVerificationStatus)

	return r
}
