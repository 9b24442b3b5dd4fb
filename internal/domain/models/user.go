package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is anyone who can sign in: a local (email+password) account or a
// federated (Google) account. Workspace membership is not embedded here;
// use the members collection to discover a user's workspaces.
type User struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name           string             `bson:"name" json:"name"`
	NameCI         string             `bson:"name_ci" json:"-"` // lowercase, diacritics-stripped
	Email          string             `bson:"email" json:"email"`
	Password       string             `bson:"password,omitempty" json:"-"`
	ProfilePicture string             `bson:"profile_picture,omitempty" json:"profile_picture,omitempty"`

	// CurrentWorkspace is the workspace the user last worked in. Nil until
	// bootstrap completes, and nilled again if the user's last workspace is
	// deleted with no other membership to fall back to.
	CurrentWorkspace *primitive.ObjectID `bson:"current_workspace,omitempty" json:"current_workspace,omitempty"`

	IsActive    bool      `bson:"is_active" json:"is_active"`
	LastLogin   time.Time `bson:"last_login,omitempty" json:"last_login,omitempty"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}

// OmitPassword returns a copy safe to hand to the HTTP boundary.
func (u User) OmitPassword() User {
	u.Password = ""
	return u
}
