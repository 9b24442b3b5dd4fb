// internal/app/features/tasks/routes.go
package tasks

import "github.com/go-chi/chi/v5"

// ProjectRoutes builds the task CRUD router, mounted by the projects
// feature at /workspaces/{workspaceID}/projects/{projectID}/tasks.
func ProjectRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.HandleCreate)

	r.Route("/{taskID}", func(tr chi.Router) {
		tr.Get("/", h.ServeView)
		tr.Put("/", h.HandleUpdate)
		tr.Delete("/", h.HandleDelete)
	})

	return r
}

// WorkspaceRoutes builds the workspace-wide task router, mounted by the
// workspaces feature at /workspaces/{workspaceID}/tasks. commentRoutes is
// mounted under each task.
func WorkspaceRoutes(h *Handler, commentRoutes chi.Router) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList)
	r.Mount("/{taskID}/comments", commentRoutes)

	return r
}
