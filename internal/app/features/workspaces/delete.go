// internal/app/features/workspaces/delete.go
package workspaces

import (
	"context"
	"errors"
	"net/http"

	workspacestore "github.com/taskhive-dev/taskhive/internal/app/store/workspaces"
	"github.com/taskhive-dev/taskhive/internal/app/system/authz"
	"github.com/taskhive-dev/taskhive/internal/app/system/httpjson"
	"github.com/taskhive-dev/taskhive/internal/app/system/timeouts"
)

// HandleDelete removes the workspace and everything in it. The role check
// gives DELETE_WORKSPACE only to OWNER, and the store re-verifies that
// the caller is the actual owner on record.
//
// Route: DELETE /workspaces/{workspaceID}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	res := h.Gate.RequireWorkspace(w, r, authz.DeleteWorkspace)
	if !res.OK {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	next, err := h.Workspaces.Delete(ctx, res.WorkspaceID, res.UserID)
	if err != nil {
		switch {
		case errors.Is(err, workspacestore.ErrNotFound):
			httpjson.Message(w, http.StatusNotFound, err.Error())
		case errors.Is(err, workspacestore.ErrNotOwner):
			httpjson.Message(w, http.StatusForbidden, err.Error())
		default:
			httpjson.Internal(w, h.Log, "delete workspace failed", err)
		}
		return
	}

	body := map[string]any{"message": "workspace deleted successfully"}
	if next != nil {
		body["current_workspace"] = next.Hex()
	} else {
		body["current_workspace"] = nil
	}
	httpjson.JSON(w, http.StatusOK, body)
}
