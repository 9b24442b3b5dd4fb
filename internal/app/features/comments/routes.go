// internal/app/features/comments/routes.go
package comments

import "github.com/go-chi/chi/v5"

// Routes builds the comment router, mounted by the tasks feature at
// /workspaces/{workspaceID}/tasks/{taskID}/comments.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList)
	r.Post("/", h.HandleCreate)
	r.Put("/{commentID}", h.HandleUpdate)
	r.Delete("/{commentID}", h.HandleDelete)

	return r
}
