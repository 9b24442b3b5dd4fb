// internal/app/features/projects/crud.go
package projects

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	projectstore "github.com/taskhive-dev/taskhive/internal/app/store/projects"
	"github.com/taskhive-dev/taskhive/internal/app/store/queries/taskanalytics"
	"github.com/taskhive-dev/taskhive/internal/app/system/authz"
	"github.com/taskhive-dev/taskhive/internal/app/system/htmlsanitize"
	"github.com/taskhive-dev/taskhive/internal/app/system/httpjson"
	"github.com/taskhive-dev/taskhive/internal/app/system/normalize"
	"github.com/taskhive-dev/taskhive/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
)

type projectRequest struct {
	Name        string `json:"name"`
	Emoji       string `json:"emoji"`
	Description string `json:"description"`
}

// projectID parses {projectID} from the route.
func projectID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "projectID"))
	if err != nil {
		httpjson.Message(w, http.StatusBadRequest, "bad project id")
		return primitive.NilObjectID, false
	}
	return id, true
}

// HandleCreate adds a project to the workspace.
//
// Route: POST /workspaces/{workspaceID}/projects
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	res := h.Gate.RequireWorkspace(w, r, authz.CreateProject)
	if !res.OK {
		return
	}

	var req projectRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Message(w, http.StatusBadRequest, err.Error())
		return
	}
	if normalize.Name(req.Name) == "" {
		httpjson.Message(w, http.StatusBadRequest, "name is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Projects.Create(ctx, res.WorkspaceID, res.UserID, req.Name, req.Emoji, htmlsanitize.SanitizeStrict(req.Description))
	if err != nil {
		httpjson.Internal(w, h.Log, "create project failed", err)
		return
	}

	h.Log.Info("project created",
		zap.String("project_id", p.ID.Hex()),
		zap.String("workspace_id", res.WorkspaceID.Hex()))
	httpjson.JSON(w, http.StatusCreated, map[string]any{
		"message": "project created successfully",
		"project": p,
	})
}

// ServeList returns the workspace's projects, paginated.
//
// Route: GET /workspaces/{workspaceID}/projects?pageNumber=&pageSize=
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	res := h.Gate.RequireWorkspace(w, r, authz.ViewOnly)
	if !res.OK {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	page, err := h.Projects.List(ctx, res.WorkspaceID,
		intParam(r, "pageNumber", 1), intParam(r, "pageSize", 10))
	if err != nil {
		httpjson.Internal(w, h.Log, "list projects failed", err)
		return
	}
	httpjson.JSON(w, http.StatusOK, page)
}

// ServeView returns one project.
//
// Route: GET /workspaces/{workspaceID}/projects/{projectID}
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	res := h.Gate.RequireWorkspace(w, r, authz.ViewOnly)
	if !res.OK {
		return
	}
	pid, ok := projectID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Projects.GetByID(ctx, res.WorkspaceID, pid)
	if err != nil {
		if errors.Is(err, projectstore.ErrNotFound) {
			httpjson.Message(w, http.StatusNotFound, err.Error())
			return
		}
		httpjson.Internal(w, h.Log, "load project failed", err)
		return
	}
	httpjson.JSON(w, http.StatusOK, map[string]any{"project": p})
}

// HandleUpdate changes a project's name, emoji, and description.
//
// Route: PUT /workspaces/{workspaceID}/projects/{projectID}
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	res := h.Gate.RequireWorkspace(w, r, authz.EditProject)
	if !res.OK {
		return
	}
	pid, ok := projectID(w, r)
	if !ok {
		return
	}

	var req projectRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Message(w, http.StatusBadRequest, err.Error())
		return
	}
	if normalize.Name(req.Name) == "" {
		httpjson.Message(w, http.StatusBadRequest, "name is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Projects.Update(ctx, res.WorkspaceID, pid, req.Name, req.Emoji, htmlsanitize.SanitizeStrict(req.Description))
	if err != nil {
		if errors.Is(err, projectstore.ErrNotFound) {
			httpjson.Message(w, http.StatusNotFound, err.Error())
			return
		}
		httpjson.Internal(w, h.Log, "update project failed", err)
		return
	}
	httpjson.JSON(w, http.StatusOK, map[string]any{
		"message": "project updated successfully",
		"project": p,
	})
}

// HandleDelete removes the project with its tasks and comments.
//
// Route: DELETE /workspaces/{workspaceID}/projects/{projectID}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	res := h.Gate.RequireWorkspace(w, r, authz.DeleteProject)
	if !res.OK {
		return
	}
	pid, ok := projectID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Projects.Delete(ctx, res.WorkspaceID, pid); err != nil {
		if errors.Is(err, projectstore.ErrNotFound) {
			httpjson.Message(w, http.StatusNotFound, err.Error())
			return
		}
		httpjson.Internal(w, h.Log, "delete project failed", err)
		return
	}

	h.Log.Info("project deleted",
		zap.String("project_id", pid.Hex()),
		zap.String("workspace_id", res.WorkspaceID.Hex()))
	httpjson.Message(w, http.StatusOK, "project deleted successfully")
}

// ServeAnalytics returns the full task analytics for one project.
//
// Route: GET /workspaces/{workspaceID}/projects/{projectID}/analytics
func (h *Handler) ServeAnalytics(w http.ResponseWriter, r *http.Request) {
	res := h.Gate.RequireWorkspace(w, r, authz.ViewOnly)
	if !res.OK {
		return
	}
	pid, ok := projectID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	// Project must exist in this workspace before we aggregate.
	if _, err := h.Projects.GetByID(ctx, res.WorkspaceID, pid); err != nil {
		if errors.Is(err, projectstore.ErrNotFound) {
			httpjson.Message(w, http.StatusNotFound, err.Error())
			return
		}
		httpjson.Internal(w, h.Log, "load project failed", err)
		return
	}

	a, err := taskanalytics.Compute(ctx, h.DB, res.WorkspaceID, &pid, time.Now())
	if err != nil {
		httpjson.Internal(w, h.Log, "project analytics failed", err)
		return
	}
	httpjson.JSON(w, http.StatusOK, map[string]any{"analytics": a})
}

// intParam reads an integer query param, falling back when absent or junk.
func intParam(r *http.Request, name string, fallback int64) int64 {
	v := query.Get(r, name)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}
