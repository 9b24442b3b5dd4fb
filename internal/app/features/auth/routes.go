// internal/app/features/auth/routes.go
package auth

import (
	"github.com/go-chi/chi/v5"

	sessionauth "github.com/taskhive-dev/taskhive/internal/app/system/auth"
)

// Routes mounts the auth endpoints under the base path (typically "/auth"
// from bootstrap). googleRoutes is the Google OAuth subrouter, mounted at
// /google so the whole auth surface lives under one path.
func Routes(h *Handler, sm *sessionauth.SessionManager, googleRoutes chi.Router) chi.Router {
	r := chi.NewRouter()

	r.Post("/register", h.HandleRegister)
	r.Post("/login", h.HandleLogin)

	r.Mount("/google", googleRoutes)

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Post("/logout", h.HandleLogout)
	})

	return r
}
