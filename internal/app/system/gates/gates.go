// Package gates provides the workspace authorization gate HTTP handlers
// call before touching tenant data.
//
// Route middleware (auth.RequireSignedIn) only proves the caller has a
// session. Whether they may act inside a particular workspace depends on
// their membership and role there, which takes a database lookup; that is
// this package. A gate resolves the caller's role in the workspace named
// by the route, checks the required permissions, and writes the JSON
// error response itself when a check fails, so handlers only proceed on
// OK.
//
// The checks run in a fixed order and map to statuses one way:
//
//	workspace missing      -> 404
//	caller not a member    -> 401
//	role lacks permission  -> 403
package gates

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	memberstore "github.com/taskhive-dev/taskhive/internal/app/store/members"
	"github.com/taskhive-dev/taskhive/internal/app/system/auth"
	"github.com/taskhive-dev/taskhive/internal/app/system/authz"
	"github.com/taskhive-dev/taskhive/internal/app/system/httpjson"
)

// Result is the caller's resolved identity inside the workspace.
type Result struct {
	UserID      primitive.ObjectID
	WorkspaceID primitive.ObjectID
	Role        string
	OK          bool
}

// Gate checks workspace-scoped permissions.
type Gate struct {
	members *memberstore.Store
}

func New(members *memberstore.Store) *Gate {
	return &Gate{members: members}
}

// RequireWorkspace reads {workspaceID} from the route, resolves the
// session user's role in it, and verifies every listed permission. On
// failure the response has already been written; check Result.OK.
func (g *Gate) RequireWorkspace(w http.ResponseWriter, r *http.Request, perms ...authz.Permission) Result {
	u, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.Message(w, http.StatusUnauthorized, "unauthorized")
		return Result{}
	}
	userID, err := primitive.ObjectIDFromHex(u.ID)
	if err != nil {
		httpjson.Message(w, http.StatusUnauthorized, "unauthorized")
		return Result{}
	}

	wsID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "workspaceID"))
	if err != nil {
		httpjson.Message(w, http.StatusBadRequest, "bad workspace id")
		return Result{}
	}

	return g.Check(r.Context(), w, userID, wsID, perms...)
}

// Check is RequireWorkspace for callers that already know the user and
// workspace IDs.
func (g *Gate) Check(ctx context.Context, w http.ResponseWriter, userID, wsID primitive.ObjectID, perms ...authz.Permission) Result {
	role, err := g.members.ResolveRole(ctx, userID, wsID)
	if err != nil {
		switch {
		case errors.Is(err, memberstore.ErrWorkspaceNotFound):
			httpjson.Message(w, http.StatusNotFound, err.Error())
		case errors.Is(err, memberstore.ErrNotMember):
			httpjson.Message(w, http.StatusUnauthorized, err.Error())
		default:
			httpjson.Message(w, http.StatusInternalServerError, "internal server error")
		}
		return Result{}
	}

	if err := authz.Require(role, perms...); err != nil {
		httpjson.Message(w, http.StatusForbidden, err.Error())
		return Result{}
	}

	return Result{UserID: userID, WorkspaceID: wsID, Role: role, OK: true}
}
