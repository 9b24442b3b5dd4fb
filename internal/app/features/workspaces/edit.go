// internal/app/features/workspaces/edit.go
package workspaces

import (
	"context"
	"errors"
	"net/http"

	workspacestore "github.com/taskhive-dev/taskhive/internal/app/store/workspaces"
	"github.com/taskhive-dev/taskhive/internal/app/system/authz"
	"github.com/taskhive-dev/taskhive/internal/app/system/htmlsanitize"
	"github.com/taskhive-dev/taskhive/internal/app/system/httpjson"
	"github.com/taskhive-dev/taskhive/internal/app/system/normalize"
	"github.com/taskhive-dev/taskhive/internal/app/system/timeouts"
)

// HandleUpdate changes a workspace's name and description.
//
// Route: PUT /workspaces/{workspaceID}
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	res := h.Gate.RequireWorkspace(w, r, authz.EditWorkspace)
	if !res.OK {
		return
	}

	var req workspaceRequest
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

	ws, err := h.Workspaces.Update(ctx, res.WorkspaceID, req.Name, htmlsanitize.SanitizeStrict(req.Description))
	if err != nil {
		if errors.Is(err, workspacestore.ErrNotFound) {
			httpjson.Message(w, http.StatusNotFound, err.Error())
			return
		}
		httpjson.Internal(w, h.Log, "update workspace failed", err)
		return
	}

	httpjson.JSON(w, http.StatusOK, map[string]any{
		"message":   "workspace updated successfully",
		"workspace": ws,
	})
}

// HandleResetInvite rotates the invite code so previously shared codes
// stop working.
//
// Route: POST /workspaces/{workspaceID}/invite/reset
func (h *Handler) HandleResetInvite(w http.ResponseWriter, r *http.Request) {
	res := h.Gate.RequireWorkspace(w, r, authz.ManageWorkspaceSettings)
	if !res.OK {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	ws, err := h.Workspaces.ResetInviteCode(ctx, res.WorkspaceID)
	if err != nil {
		if errors.Is(err, workspacestore.ErrNotFound) {
			httpjson.Message(w, http.StatusNotFound, err.Error())
			return
		}
		httpjson.Internal(w, h.Log, "reset invite code failed", err)
		return
	}

	httpjson.JSON(w, http.StatusOK, map[string]any{
		"message":     "invite code reset successfully",
		"invite_code": ws.InviteCode,
	})
}
