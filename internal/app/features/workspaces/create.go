// internal/app/features/workspaces/create.go
package workspaces

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/taskhive-dev/taskhive/internal/app/system/htmlsanitize"
	"github.com/taskhive-dev/taskhive/internal/app/system/httpjson"
	"github.com/taskhive-dev/taskhive/internal/app/system/normalize"
	"github.com/taskhive-dev/taskhive/internal/app/system/timeouts"
)

type workspaceRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// HandleCreate makes a new workspace owned by the caller. The caller
// becomes an OWNER member and their current workspace switches to it,
// all in one transaction.
//
// Route: POST /workspaces
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUserID(w, r)
	if !ok {
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

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	ws, err := h.Workspaces.Create(ctx, uid, req.Name, htmlsanitize.SanitizeStrict(req.Description))
	if err != nil {
		httpjson.Internal(w, h.Log, "create workspace failed", err)
		return
	}

	h.Log.Info("workspace created",
		zap.String("workspace_id", ws.ID.Hex()),
		zap.String("owner_id", uid.Hex()))
	httpjson.JSON(w, http.StatusCreated, map[string]any{
		"message":   "workspace created successfully",
		"workspace": ws,
	})
}
