// Package memberstore manages workspace memberships.
//
// A membership links one user to one workspace through a role document.
// The (user_id, workspace_id) pair is unique; changing a member's role
// updates the doc rather than adding a second one.
package memberstore

import (
	"context"
	"errors"
	"time"

	"github.com/taskhive-dev/taskhive/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrWorkspaceNotFound is returned before any membership check when the
	// workspace itself does not exist.
	ErrWorkspaceNotFound = errors.New("workspace not found")
	// ErrNotMember is returned when the user has no membership in the workspace.
	ErrNotMember = errors.New("you are not a member of this workspace")
	// ErrAlreadyMember is returned when adding a membership that already exists.
	ErrAlreadyMember = errors.New("user is already a member of this workspace")
	// ErrMemberNotFound is returned when a role change targets a user with no
	// membership in the workspace.
	ErrMemberNotFound = errors.New("member not found in this workspace")
	// ErrRoleNotFound is returned when a role change names an unknown role.
	ErrRoleNotFound = errors.New("role not found")
)

type Store struct {
	members    *mongo.Collection
	workspaces *mongo.Collection
	roles      *mongo.Collection
	users      *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		members:    db.Collection("members"),
		workspaces: db.Collection("workspaces"),
		roles:      db.Collection("roles"),
		users:      db.Collection("users"),
	}
}

// ResolveRole returns the role name (OWNER, ADMIN, MEMBER) the user holds
// in the workspace. The checks run in a fixed order: a missing workspace
// reports ErrWorkspaceNotFound even when the user is also not a member.
func (s *Store) ResolveRole(ctx context.Context, userID, workspaceID primitive.ObjectID) (string, error) {
	if err := s.workspaces.FindOne(ctx, bson.M{"_id": workspaceID}).Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", ErrWorkspaceNotFound
		}
		return "", err
	}

	var m models.Member
	err := s.members.FindOne(ctx, bson.M{"user_id": userID, "workspace_id": workspaceID}).Decode(&m)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", ErrNotMember
		}
		return "", err
	}

	var r models.Role
	if err := s.roles.FindOne(ctx, bson.M{"_id": m.RoleID}).Decode(&r); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Membership points at a role that was never seeded; treat as
			// no membership rather than leaking a server error.
			return "", ErrNotMember
		}
		return "", err
	}
	return r.Name, nil
}

// Add inserts a membership. The unique (user_id, workspace_id) index turns
// a repeat join into ErrAlreadyMember.
func (s *Store) Add(ctx context.Context, userID, workspaceID, roleID primitive.ObjectID) (models.Member, error) {
	m := models.Member{
		ID:          primitive.NewObjectID(),
		UserID:      userID,
		WorkspaceID: workspaceID,
		RoleID:      roleID,
		JoinedAt:    time.Now(),
	}
	if _, err := s.members.InsertOne(ctx, m); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Member{}, ErrAlreadyMember
		}
		return models.Member{}, err
	}
	return m, nil
}

// Get returns the membership doc for (user, workspace), or ErrNotMember.
func (s *Store) Get(ctx context.Context, userID, workspaceID primitive.ObjectID) (*models.Member, error) {
	var m models.Member
	err := s.members.FindOne(ctx, bson.M{"user_id": userID, "workspace_id": workspaceID}).Decode(&m)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotMember
		}
		return nil, err
	}
	return &m, nil
}

// ChangeRole moves an existing member to a different role. The lookups run
// in a fixed order so callers can distinguish which piece was missing:
// workspace, then role, then membership.
func (s *Store) ChangeRole(ctx context.Context, workspaceID, userID, roleID primitive.ObjectID) error {
	if err := s.workspaces.FindOne(ctx, bson.M{"_id": workspaceID}).Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrWorkspaceNotFound
		}
		return err
	}
	if err := s.roles.FindOne(ctx, bson.M{"_id": roleID}).Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrRoleNotFound
		}
		return err
	}

	res, err := s.members.UpdateOne(ctx,
		bson.M{"workspace_id": workspaceID, "user_id": userID},
		bson.M{"$set": bson.M{"role_id": roleID}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrMemberNotFound
	}
	return nil
}

// MemberInfo is a membership joined with its user and role for list pages.
type MemberInfo struct {
	ID       primitive.ObjectID `bson:"_id" json:"id"`
	JoinedAt time.Time          `bson:"joined_at" json:"joined_at"`
	User     struct {
		ID             primitive.ObjectID `bson:"_id" json:"id"`
		Name           string             `bson:"name" json:"name"`
		Email          string             `bson:"email" json:"email"`
		ProfilePicture string             `bson:"profile_picture,omitempty" json:"profile_picture,omitempty"`
	} `bson:"user" json:"user"`
	Role struct {
		ID   primitive.ObjectID `bson:"_id" json:"id"`
		Name string             `bson:"name" json:"name"`
	} `bson:"role" json:"role"`
}

// ListForWorkspace returns every membership in the workspace with user and
// role details attached.
func (s *Store) ListForWorkspace(ctx context.Context, workspaceID primitive.ObjectID) ([]MemberInfo, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"workspace_id": workspaceID}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "users",
			"localField":   "user_id",
			"foreignField": "_id",
			"as":           "user",
		}}},
		{{Key: "$unwind", Value: "$user"}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "roles",
			"localField":   "role_id",
			"foreignField": "_id",
			"as":           "role",
		}}},
		{{Key: "$unwind", Value: "$role"}},
		{{Key: "$sort", Value: bson.D{{Key: "joined_at", Value: 1}, {Key: "_id", Value: 1}}}},
	}

	cur, err := s.members.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []MemberInfo
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FirstForUser returns the user's oldest surviving membership, used to
// repair current_workspace after a workspace delete. Returns nil (no
// error) when the user has no memberships left.
func (s *Store) FirstForUser(ctx context.Context, userID primitive.ObjectID) (*models.Member, error) {
	var m models.Member
	err := s.members.FindOne(ctx, bson.M{"user_id": userID},
		options.FindOne().SetSort(bson.D{{Key: "joined_at", Value: 1}, {Key: "_id", Value: 1}})).Decode(&m)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

// WorkspaceIDsForUser returns the IDs of every workspace the user belongs to.
func (s *Store) WorkspaceIDsForUser(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	cur, err := s.members.Find(ctx, bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "workspace_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []primitive.ObjectID
	for cur.Next(ctx) {
		var m models.Member
		if err := cur.Decode(&m); err != nil {
			return nil, err
		}
		out = append(out, m.WorkspaceID)
	}
	return out, cur.Err()
}

// CountForWorkspace returns the number of members in a workspace.
func (s *Store) CountForWorkspace(ctx context.Context, workspaceID primitive.ObjectID) (int64, error) {
	return s.members.CountDocuments(ctx, bson.M{"workspace_id": workspaceID})
}
