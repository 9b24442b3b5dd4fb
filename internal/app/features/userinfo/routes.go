// internal/app/features/userinfo/routes.go
package userinfo

import (
	"github.com/go-chi/chi/v5"

	sessionauth "github.com/taskhive-dev/taskhive/internal/app/system/auth"
)

// Routes mounts the user profile endpoints under the base path
// (typically "/user" from bootstrap).
func Routes(h *Handler, sm *sessionauth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Get("/current", h.ServeCurrent)
	r.Put("/profile", h.HandleUpdateProfile)
	r.Put("/current-workspace", h.HandleSwitchWorkspace)

	return r
}
