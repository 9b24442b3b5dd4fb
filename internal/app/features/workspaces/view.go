// internal/app/features/workspaces/view.go
package workspaces

import (
	"context"
	"errors"
	"net/http"
	"time"

	workspacestore "github.com/taskhive-dev/taskhive/internal/app/store/workspaces"
	"github.com/taskhive-dev/taskhive/internal/app/system/authz"
	"github.com/taskhive-dev/taskhive/internal/domain/models"
	"github.com/taskhive-dev/taskhive/internal/app/system/httpjson"
	"github.com/taskhive-dev/taskhive/internal/app/system/timeouts"
)

// ServeList returns every workspace the caller belongs to.
//
// Route: GET /workspaces
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUserID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := h.Workspaces.ListForUser(ctx, uid)
	if err != nil {
		httpjson.Internal(w, h.Log, "list workspaces failed", err)
		return
	}
	if list == nil {
		list = []models.Workspace{}
	}
	httpjson.JSON(w, http.StatusOK, map[string]any{"workspaces": list})
}

// ServeView returns one workspace with its member list.
//
// Route: GET /workspaces/{workspaceID}
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	res := h.Gate.RequireWorkspace(w, r, authz.ViewOnly)
	if !res.OK {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	ws, err := h.Workspaces.GetByID(ctx, res.WorkspaceID)
	if err != nil {
		if errors.Is(err, workspacestore.ErrNotFound) {
			httpjson.Message(w, http.StatusNotFound, err.Error())
			return
		}
		httpjson.Internal(w, h.Log, "load workspace failed", err)
		return
	}

	members, err := h.Members.ListForWorkspace(ctx, res.WorkspaceID)
	if err != nil {
		httpjson.Internal(w, h.Log, "list members failed", err)
		return
	}

	httpjson.JSON(w, http.StatusOK, map[string]any{
		"workspace": ws,
		"members":   members,
	})
}

// ServeRole returns the caller's role in the workspace.
//
// Route: GET /workspaces/{workspaceID}/role
func (h *Handler) ServeRole(w http.ResponseWriter, r *http.Request) {
	// No permission beyond membership; the gate's resolve does the work.
	res := h.Gate.RequireWorkspace(w, r)
	if !res.OK {
		return
	}
	httpjson.JSON(w, http.StatusOK, map[string]any{"role": res.Role})
}

// ServeAnalytics returns the workspace's task overview counts.
//
// Route: GET /workspaces/{workspaceID}/analytics
func (h *Handler) ServeAnalytics(w http.ResponseWriter, r *http.Request) {
	res := h.Gate.RequireWorkspace(w, r, authz.ViewOnly)
	if !res.OK {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	overview, err := h.Workspaces.GetOverview(ctx, res.WorkspaceID, time.Now())
	if err != nil {
		httpjson.Internal(w, h.Log, "workspace analytics failed", err)
		return
	}
	httpjson.JSON(w, http.StatusOK, map[string]any{"analytics": overview})
}
