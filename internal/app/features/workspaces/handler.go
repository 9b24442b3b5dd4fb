// internal/app/features/workspaces/handler.go
package workspaces

import (
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	memberstore "github.com/taskhive-dev/taskhive/internal/app/store/members"
	rolestore "github.com/taskhive-dev/taskhive/internal/app/store/roles"
	workspacestore "github.com/taskhive-dev/taskhive/internal/app/store/workspaces"
	sessionauth "github.com/taskhive-dev/taskhive/internal/app/system/auth"
	"github.com/taskhive-dev/taskhive/internal/app/system/gates"
	"github.com/taskhive-dev/taskhive/internal/app/system/httpjson"
)

// Handler is the feature-level entry point for workspaces.
type Handler struct {
	Workspaces *workspacestore.Store
	Members    *memberstore.Store
	Roles      *rolestore.Store
	Gate       *gates.Gate
	Log        *zap.Logger
}

func NewHandler(
	workspaces *workspacestore.Store,
	members *memberstore.Store,
	roles *rolestore.Store,
	gate *gates.Gate,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Workspaces: workspaces,
		Members:    members,
		Roles:      roles,
		Gate:       gate,
		Log:        logger,
	}
}

// currentUserID pulls the session user's ObjectID, writing a 401 if there
// is none.
func currentUserID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
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
