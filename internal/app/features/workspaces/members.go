// internal/app/features/workspaces/members.go
package workspaces

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	memberstore "github.com/taskhive-dev/taskhive/internal/app/store/members"
	rolestore "github.com/taskhive-dev/taskhive/internal/app/store/roles"
	workspacestore "github.com/taskhive-dev/taskhive/internal/app/store/workspaces"
	"github.com/taskhive-dev/taskhive/internal/app/system/authz"
	"github.com/taskhive-dev/taskhive/internal/app/system/httpjson"
	"github.com/taskhive-dev/taskhive/internal/app/system/normalize"
	"github.com/taskhive-dev/taskhive/internal/app/system/timeouts"
	"github.com/taskhive-dev/taskhive/internal/domain/models"
)

// ServeMembers lists the workspace's members with their roles.
//
// Route: GET /workspaces/{workspaceID}/members
func (h *Handler) ServeMembers(w http.ResponseWriter, r *http.Request) {
	res := h.Gate.RequireWorkspace(w, r, authz.ViewOnly)
	if !res.OK {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	members, err := h.Members.ListForWorkspace(ctx, res.WorkspaceID)
	if err != nil {
		httpjson.Internal(w, h.Log, "list members failed", err)
		return
	}

	roles, err := h.Roles.All(ctx)
	if err != nil {
		httpjson.Internal(w, h.Log, "list roles failed", err)
		return
	}

	httpjson.JSON(w, http.StatusOK, map[string]any{
		"members": members,
		"roles":   roles,
	})
}

type changeRoleRequest struct {
	MemberID string `json:"member_id"` // the target user's ID
	Role     string `json:"role"`      // OWNER, ADMIN, or MEMBER
}

// HandleChangeRole moves a member to a different role.
//
// Route: PUT /workspaces/{workspaceID}/members/role
func (h *Handler) HandleChangeRole(w http.ResponseWriter, r *http.Request) {
	res := h.Gate.RequireWorkspace(w, r, authz.ChangeMemberRole)
	if !res.OK {
		return
	}

	var req changeRoleRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Message(w, http.StatusBadRequest, err.Error())
		return
	}
	targetID, err := primitive.ObjectIDFromHex(req.MemberID)
	if err != nil {
		httpjson.Message(w, http.StatusBadRequest, "bad member id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	role, err := h.Roles.GetByName(ctx, normalize.Role(req.Role))
	if err != nil {
		if errors.Is(err, rolestore.ErrNotFound) {
			httpjson.Message(w, http.StatusNotFound, err.Error())
			return
		}
		httpjson.Internal(w, h.Log, "load role failed", err)
		return
	}

	err = h.Members.ChangeRole(ctx, res.WorkspaceID, targetID, role.ID)
	if err != nil {
		switch {
		case errors.Is(err, memberstore.ErrWorkspaceNotFound),
			errors.Is(err, memberstore.ErrRoleNotFound),
			errors.Is(err, memberstore.ErrMemberNotFound):
			httpjson.Message(w, http.StatusNotFound, err.Error())
		default:
			httpjson.Internal(w, h.Log, "change member role failed", err)
		}
		return
	}

	h.Log.Info("member role changed",
		zap.String("workspace_id", res.WorkspaceID.Hex()),
		zap.String("member_id", targetID.Hex()),
		zap.String("role", role.Name))
	httpjson.Message(w, http.StatusOK, "member role changed successfully")
}

// HandleJoin adds the caller to the workspace behind an invite code, as a
// MEMBER.
//
// Route: POST /workspaces/join/{inviteCode}
func (h *Handler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUserID(w, r)
	if !ok {
		return
	}
	inviteCode := chi.URLParam(r, "inviteCode")
	if inviteCode == "" {
		httpjson.Message(w, http.StatusBadRequest, "invite code is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	ws, err := h.Workspaces.JoinByInvite(ctx, uid, inviteCode)
	if err != nil {
		switch {
		case errors.Is(err, workspacestore.ErrInvalidInvite):
			httpjson.Message(w, http.StatusNotFound, err.Error())
		case errors.Is(err, workspacestore.ErrAlreadyMember):
			httpjson.Message(w, http.StatusBadRequest, err.Error())
		default:
			httpjson.Internal(w, h.Log, "join workspace failed", err)
		}
		return
	}

	h.Log.Info("user joined workspace",
		zap.String("user_id", uid.Hex()),
		zap.String("workspace_id", ws.ID.Hex()))
	httpjson.JSON(w, http.StatusOK, map[string]any{
		"message":   "joined workspace successfully",
		"workspace": ws,
		"role":      models.RoleMember,
	})
}
