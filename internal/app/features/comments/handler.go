// internal/app/features/comments/handler.go
package comments

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	commentstore "github.com/taskhive-dev/taskhive/internal/app/store/comments"
	taskstore "github.com/taskhive-dev/taskhive/internal/app/store/tasks"
	"github.com/taskhive-dev/taskhive/internal/app/system/authz"
	"github.com/taskhive-dev/taskhive/internal/app/system/gates"
	"github.com/taskhive-dev/taskhive/internal/app/system/htmlsanitize"
	"github.com/taskhive-dev/taskhive/internal/app/system/httpjson"
	"github.com/taskhive-dev/taskhive/internal/app/system/timeouts"
)

// Handler is the feature-level entry point for task comments.
type Handler struct {
	Comments *commentstore.Store
	Tasks    *taskstore.Store
	Gate     *gates.Gate
	Log      *zap.Logger
}

func NewHandler(comments *commentstore.Store, tasks *taskstore.Store, gate *gates.Gate, logger *zap.Logger) *Handler {
	return &Handler{Comments: comments, Tasks: tasks, Gate: gate, Log: logger}
}

type commentRequest struct {
	Message     string   `json:"message"`
	Attachments []string `json:"attachments"`
}

// gateAndTask runs the workspace gate and confirms the task exists there.
func (h *Handler) gateAndTask(w http.ResponseWriter, r *http.Request, perms ...authz.Permission) (gates.Result, primitive.ObjectID, bool) {
	res := h.Gate.RequireWorkspace(w, r, perms...)
	if !res.OK {
		return gates.Result{}, primitive.NilObjectID, false
	}
	tid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "taskID"))
	if err != nil {
		httpjson.Message(w, http.StatusBadRequest, "bad task id")
		return gates.Result{}, primitive.NilObjectID, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Tasks.ExistsInWorkspace(ctx, res.WorkspaceID, tid); err != nil {
		if errors.Is(err, taskstore.ErrNotFound) {
			httpjson.Message(w, http.StatusNotFound, "task not found in this workspace")
			return gates.Result{}, primitive.NilObjectID, false
		}
		httpjson.Internal(w, h.Log, "task lookup failed", err)
		return gates.Result{}, primitive.NilObjectID, false
	}
	return res, tid, true
}

// ServeList returns a task's comments oldest-first.
//
// Route: GET /workspaces/{workspaceID}/tasks/{taskID}/comments
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	res, tid, ok := h.gateAndTask(w, r, authz.ViewOnly)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := h.Comments.ListForTask(ctx, res.WorkspaceID, tid)
	if err != nil {
		httpjson.Internal(w, h.Log, "list comments failed", err)
		return
	}
	if list == nil {
		list = []commentstore.Info{}
	}
	httpjson.JSON(w, http.StatusOK, map[string]any{"comments": list})
}

// HandleCreate adds a comment to the task. Any member can comment; the
// message is sanitized before storage.
//
// Route: POST /workspaces/{workspaceID}/tasks/{taskID}/comments
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	res, tid, ok := h.gateAndTask(w, r, authz.ViewOnly)
	if !ok {
		return
	}

	var req commentRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Message(w, http.StatusBadRequest, err.Error())
		return
	}
	msg := strings.TrimSpace(htmlsanitize.Sanitize(req.Message))
	if msg == "" {
		httpjson.Message(w, http.StatusBadRequest, "message is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	cm, err := h.Comments.Create(ctx, res.WorkspaceID, tid, res.UserID, msg, req.Attachments)
	if err != nil {
		httpjson.Internal(w, h.Log, "create comment failed", err)
		return
	}

	httpjson.JSON(w, http.StatusCreated, map[string]any{
		"message": "comment created successfully",
		"comment": cm,
	})
}

// HandleUpdate edits a comment. Only the author can edit their comment.
//
// Route: PUT /workspaces/{workspaceID}/tasks/{taskID}/comments/{commentID}
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	res, _, ok := h.gateAndTask(w, r, authz.ViewOnly)
	if !ok {
		return
	}
	cid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "commentID"))
	if err != nil {
		httpjson.Message(w, http.StatusBadRequest, "bad comment id")
		return
	}

	var req commentRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Message(w, http.StatusBadRequest, err.Error())
		return
	}
	msg := strings.TrimSpace(htmlsanitize.Sanitize(req.Message))
	if msg == "" {
		httpjson.Message(w, http.StatusBadRequest, "message is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	cm, err := h.Comments.Update(ctx, res.WorkspaceID, cid, res.UserID, msg)
	if err != nil {
		if errors.Is(err, commentstore.ErrNotFound) {
			// Either the comment doesn't exist or it belongs to someone else.
			httpjson.Message(w, http.StatusNotFound, err.Error())
			return
		}
		httpjson.Internal(w, h.Log, "update comment failed", err)
		return
	}
	httpjson.JSON(w, http.StatusOK, map[string]any{
		"message": "comment updated successfully",
		"comment": cm,
	})
}

// HandleDelete removes a comment. The author can always delete their own;
// anyone holding DELETE_TASK can delete any comment in the workspace.
//
// Route: DELETE /workspaces/{workspaceID}/tasks/{taskID}/comments/{commentID}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	res, _, ok := h.gateAndTask(w, r, authz.ViewOnly)
	if !ok {
		return
	}
	cid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "commentID"))
	if err != nil {
		httpjson.Message(w, http.StatusBadRequest, "bad comment id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	cm, err := h.Comments.GetByID(ctx, res.WorkspaceID, cid)
	if err != nil {
		if errors.Is(err, commentstore.ErrNotFound) {
			httpjson.Message(w, http.StatusNotFound, err.Error())
			return
		}
		httpjson.Internal(w, h.Log, "load comment failed", err)
		return
	}
	if cm.UserID != res.UserID && !authz.Has(res.Role, authz.DeleteTask) {
		httpjson.Message(w, http.StatusForbidden, "you can only delete your own comments")
		return
	}

	if err := h.Comments.Delete(ctx, res.WorkspaceID, cid); err != nil {
		if errors.Is(err, commentstore.ErrNotFound) {
			httpjson.Message(w, http.StatusNotFound, err.Error())
			return
		}
		httpjson.Internal(w, h.Log, "delete comment failed", err)
		return
	}
	httpjson.Message(w, http.StatusOK, "comment deleted successfully")
}
