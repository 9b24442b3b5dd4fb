// internal/app/features/tasks/crud.go
package tasks

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	projectstore "github.com/taskhive-dev/taskhive/internal/app/store/projects"
	taskstore "github.com/taskhive-dev/taskhive/internal/app/store/tasks"
	"github.com/taskhive-dev/taskhive/internal/app/system/authz"
	"github.com/taskhive-dev/taskhive/internal/app/system/httpjson"
	"github.com/taskhive-dev/taskhive/internal/app/system/normalize"
	"github.com/taskhive-dev/taskhive/internal/app/system/timeouts"
)

// HandleCreate adds a task to the project.
//
// Route: POST /workspaces/{workspaceID}/projects/{projectID}/tasks
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	res := h.Gate.RequireWorkspace(w, r, authz.CreateTask)
	if !res.OK {
		return
	}
	pid, ok := pathID(w, r, "projectID")
	if !ok {
		return
	}

	var req taskRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Message(w, http.StatusBadRequest, err.Error())
		return
	}
	if normalize.Name(req.Title) == "" {
		httpjson.Message(w, http.StatusBadRequest, "title is required")
		return
	}
	in, ok := req.input(w)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	// The project has to exist in this workspace before tasks go in it.
	if _, err := h.Projects.GetByID(ctx, res.WorkspaceID, pid); err != nil {
		if errors.Is(err, projectstore.ErrNotFound) {
			httpjson.Message(w, http.StatusNotFound, err.Error())
			return
		}
		httpjson.Internal(w, h.Log, "load project failed", err)
		return
	}

	t, err := h.Tasks.Create(ctx, res.WorkspaceID, pid, res.UserID, in)
	if err != nil {
		h.writeTaskError(w, "create task failed", err)
		return
	}

	h.Log.Info("task created",
		zap.String("task_id", t.ID.Hex()),
		zap.String("task_code", t.TaskCode),
		zap.String("project_id", pid.Hex()))
	httpjson.JSON(w, http.StatusCreated, map[string]any{
		"message": "task created successfully",
		"task":    t,
	})
}

// ServeView returns one task.
//
// Route: GET /workspaces/{workspaceID}/projects/{projectID}/tasks/{taskID}
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	res := h.Gate.RequireWorkspace(w, r, authz.ViewOnly)
	if !res.OK {
		return
	}
	pid, ok := pathID(w, r, "projectID")
	if !ok {
		return
	}
	tid, ok := pathID(w, r, "taskID")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	t, err := h.Tasks.GetByID(ctx, res.WorkspaceID, pid, tid)
	if err != nil {
		if errors.Is(err, taskstore.ErrNotFound) {
			httpjson.Message(w, http.StatusNotFound, err.Error())
			return
		}
		httpjson.Internal(w, h.Log, "load task failed", err)
		return
	}
	httpjson.JSON(w, http.StatusOK, map[string]any{"task": t})
}

// HandleUpdate replaces a task's editable fields.
//
// Route: PUT /workspaces/{workspaceID}/projects/{projectID}/tasks/{taskID}
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	res := h.Gate.RequireWorkspace(w, r, authz.EditTask)
	if !res.OK {
		return
	}
	pid, ok := pathID(w, r, "projectID")
	if !ok {
		return
	}
	tid, ok := pathID(w, r, "taskID")
	if !ok {
		return
	}

	var req taskRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Message(w, http.StatusBadRequest, err.Error())
		return
	}
	if normalize.Name(req.Title) == "" {
		httpjson.Message(w, http.StatusBadRequest, "title is required")
		return
	}
	in, ok := req.input(w)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	t, err := h.Tasks.Update(ctx, res.WorkspaceID, pid, tid, in)
	if err != nil {
		h.writeTaskError(w, "update task failed", err)
		return
	}
	httpjson.JSON(w, http.StatusOK, map[string]any{
		"message": "task updated successfully",
		"task":    t,
	})
}

// HandleDelete removes a task and its comments.
//
// Route: DELETE /workspaces/{workspaceID}/projects/{projectID}/tasks/{taskID}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	res := h.Gate.RequireWorkspace(w, r, authz.DeleteTask)
	if !res.OK {
		return
	}
	tid, ok := pathID(w, r, "taskID")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Tasks.Delete(ctx, res.WorkspaceID, tid); err != nil {
		if errors.Is(err, taskstore.ErrNotFound) {
			httpjson.Message(w, http.StatusNotFound, err.Error())
			return
		}
		httpjson.Internal(w, h.Log, "delete task failed", err)
		return
	}

	h.Log.Info("task deleted",
		zap.String("task_id", tid.Hex()),
		zap.String("workspace_id", res.WorkspaceID.Hex()))
	httpjson.Message(w, http.StatusOK, "task deleted successfully")
}

// writeTaskError maps taskstore errors to statuses.
func (h *Handler) writeTaskError(w http.ResponseWriter, logMsg string, err error) {
	switch {
	case errors.Is(err, taskstore.ErrNotFound),
		errors.Is(err, taskstore.ErrAssigneeNotMember):
		httpjson.Message(w, http.StatusNotFound, err.Error())
	case errors.Is(err, taskstore.ErrBadStatus),
		errors.Is(err, taskstore.ErrBadPriority):
		httpjson.Message(w, http.StatusBadRequest, err.Error())
	default:
		httpjson.Internal(w, h.Log, logMsg, err)
	}
}
