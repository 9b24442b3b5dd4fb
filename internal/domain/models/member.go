package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Member is the authoritative join between users and workspaces.
// Exactly one document per (user_id, workspace_id), enforced by a unique
// index; role is a reference into the roles collection.
type Member struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID `bson:"user_id" json:"user_id"`
	WorkspaceID primitive.ObjectID `bson:"workspace_id" json:"workspace_id"`
	RoleID      primitive.ObjectID `bson:"role_id" json:"role_id"`
	JoinedAt    time.Time          `bson:"joined_at" json:"joined_at"`
}
