package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Role names. The catalog is fixed; documents are seeded at startup and
// read-only at runtime.
const (
	RoleOwner  = "OWNER"
	RoleAdmin  = "ADMIN"
	RoleMember = "MEMBER"
)

// Role is a named permission bundle. The permissions array mirrors the
// static table in the authz package; the document exists so members can
// reference roles by id and so clients can enumerate the catalog.
type Role struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Permissions []string           `bson:"permissions" json:"permissions"`
}
