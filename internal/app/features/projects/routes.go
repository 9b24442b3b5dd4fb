// internal/app/features/projects/routes.go
package projects

import "github.com/go-chi/chi/v5"

// Routes builds the project router, mounted by the workspaces feature at
// /workspaces/{workspaceID}/projects. taskRoutes is the per-project task
// router, mounted under each project.
func Routes(h *Handler, taskRoutes chi.Router) chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.HandleCreate)
	r.Get("/", h.ServeList)

	r.Route("/{projectID}", func(pr chi.Router) {
		pr.Get("/", h.ServeView)
		pr.Put("/", h.HandleUpdate)
		pr.Delete("/", h.HandleDelete)
		pr.Get("/analytics", h.ServeAnalytics)

		pr.Mount("/tasks", taskRoutes)
	})

	return r
}
