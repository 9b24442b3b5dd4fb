package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Project groups tasks inside a workspace.
type Project struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	NameCI      string             `bson:"name_ci" json:"-"`
	Emoji       string             `bson:"emoji,omitempty" json:"emoji,omitempty"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	WorkspaceID primitive.ObjectID `bson:"workspace_id" json:"workspace_id"`
	CreatedBy   primitive.ObjectID `bson:"created_by" json:"created_by"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}
