// internal/app/features/workspaces/routes.go
package workspaces

import (
	"github.com/go-chi/chi/v5"

	sessionauth "github.com/taskhive-dev/taskhive/internal/app/system/auth"
)

// Routes mounts all workspace routes under the base path (typically
// "/workspaces" from bootstrap). Everything requires a session; per-
// workspace permission checks happen in the handlers via the gate.
// projectRoutes and taskRoutes are the nested feature routers, mounted
// under each workspace.
func Routes(h *Handler, sm *sessionauth.SessionManager, projectRoutes, taskRoutes chi.Router) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Post("/", h.HandleCreate)
	r.Get("/", h.ServeList)
	r.Post("/join/{inviteCode}", h.HandleJoin)

	r.Route("/{workspaceID}", func(wr chi.Router) {
		wr.Get("/", h.ServeView)
		wr.Put("/", h.HandleUpdate)
		wr.Delete("/", h.HandleDelete)

		wr.Post("/invite/reset", h.HandleResetInvite)
		wr.Get("/role", h.ServeRole)
		wr.Get("/analytics", h.ServeAnalytics)

		wr.Get("/members", h.ServeMembers)
		wr.Put("/members/role", h.HandleChangeRole)

		wr.Mount("/projects", projectRoutes)
		wr.Mount("/tasks", taskRoutes)
	})

	return r
}
