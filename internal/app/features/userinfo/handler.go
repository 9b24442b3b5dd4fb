// internal/app/features/userinfo/handler.go
package userinfo

import (
	"context"
	"errors"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	memberstore "github.com/taskhive-dev/taskhive/internal/app/store/members"
	userstore "github.com/taskhive-dev/taskhive/internal/app/store/users"
	sessionauth "github.com/taskhive-dev/taskhive/internal/app/system/auth"
	"github.com/taskhive-dev/taskhive/internal/app/system/httpjson"
	"github.com/taskhive-dev/taskhive/internal/app/system/timeouts"
)

// Handler serves the signed-in user's own profile.
type Handler struct {
	Users   *userstore.Store
	Members *memberstore.Store
	Log     *zap.Logger
}

func NewHandler(users *userstore.Store, members *memberstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Users: users, Members: members, Log: logger}
}

// currentUserID pulls the session user's ObjectID, writing a 401 if there
// is none.
func (h *Handler) currentUserID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	u, ok := sessionauth.CurrentUser(r)
	if !ok {
		httpjson.Message(w, http.StatusUnauthorized, "unauthorized")
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(u.ID)
	if err != nil {
		httpjson.Message(w, http.StatusUnauthorized, "unauthorized")
		return primitive.NilObjectID, false
	}
	return id, true
}

// ServeCurrent returns the signed-in user's profile.
//
// Route: GET /user/current
func (h *Handler) ServeCurrent(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.currentUserID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			httpjson.Message(w, http.StatusNotFound, err.Error())
			return
		}
		httpjson.Internal(w, h.Log, "load current user failed", err)
		return
	}

	httpjson.JSON(w, http.StatusOK, map[string]any{"user": u.OmitPassword()})
}

type profileRequest struct {
	Name           string `json:"name"`
	ProfilePicture string `json:"profile_picture"`
}

// HandleUpdateProfile updates the user's own editable fields.
//
// Route: PUT /user/profile
func (h *Handler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.currentUserID(w, r)
	if !ok {
		return
	}

	var req profileRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Message(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Name == "" {
		httpjson.Message(w, http.StatusBadRequest, "name is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	err := h.Users.UpdateProfile(ctx, uid, userstore.ProfileUpdate{
		Name:           req.Name,
		ProfilePicture: req.ProfilePicture,
	})
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			httpjson.Message(w, http.StatusNotFound, err.Error())
			return
		}
		httpjson.Internal(w, h.Log, "update profile failed", err)
		return
	}

	httpjson.Message(w, http.StatusOK, "profile updated")
}

type switchWorkspaceRequest struct {
	WorkspaceID string `json:"workspace_id"`
}

// HandleSwitchWorkspace repoints current_workspace. The user must be a
// member of the target workspace.
//
// Route: PUT /user/current-workspace
func (h *Handler) HandleSwitchWorkspace(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.currentUserID(w, r)
	if !ok {
		return
	}

	var req switchWorkspaceRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Message(w, http.StatusBadRequest, err.Error())
		return
	}
	wsID, err := primitive.ObjectIDFromHex(req.WorkspaceID)
	if err != nil {
		httpjson.Message(w, http.StatusBadRequest, "bad workspace id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if _, err := h.Members.Get(ctx, uid, wsID); err != nil {
		if errors.Is(err, memberstore.ErrNotMember) {
			httpjson.Message(w, http.StatusUnauthorized, err.Error())
			return
		}
		httpjson.Internal(w, h.Log, "membership check failed", err)
		return
	}

	if err := h.Users.SetCurrentWorkspace(ctx, uid, &wsID); err != nil {
		httpjson.Internal(w, h.Log, "switch workspace failed", err)
		return
	}

	h.Log.Info("current workspace switched",
		zap.String("user_id", uid.Hex()),
		zap.String("workspace_id", wsID.Hex()))
	httpjson.Message(w, http.StatusOK, "current workspace updated")
}
