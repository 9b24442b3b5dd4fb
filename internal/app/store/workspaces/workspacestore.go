// Package workspacestore owns the workspace lifecycle: create, update,
// invite management, joining, and the delete cascade.
//
// Create and Delete touch several collections and run under txn.Run so
// partial writes never survive. Delete also repairs the current_workspace
// pointer of every user who was pointing at the deleted workspace.
package workspacestore

import (
	"context"
	"errors"
	"time"

	"github.com/taskhive-dev/taskhive/internal/app/system/codes"
	"github.com/taskhive-dev/taskhive/internal/app/system/normalize"
	"github.com/taskhive-dev/taskhive/internal/app/system/txn"
	"github.com/taskhive-dev/taskhive/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

var (
	// ErrNotFound is returned when no workspace matches the lookup.
	ErrNotFound = errors.New("workspace not found")
	// ErrNotOwner is returned when a non-owner attempts an owner-only operation.
	ErrNotOwner = errors.New("only the workspace owner can perform this action")
	// ErrInvalidInvite is returned when no workspace has the given invite code.
	ErrInvalidInvite = errors.New("invalid invite code")
	// ErrAlreadyMember is returned when the joining user already belongs to the workspace.
	ErrAlreadyMember = errors.New("you are already a member of this workspace")
)

type Store struct {
	db         *mongo.Database
	workspaces *mongo.Collection
	members    *mongo.Collection
	roles      *mongo.Collection
	users      *mongo.Collection
	projects   *mongo.Collection
	tasks      *mongo.Collection
	comments   *mongo.Collection
	log        *zap.Logger
}

func New(db *mongo.Database, log *zap.Logger) *Store {
	return &Store{
		db:         db,
		workspaces: db.Collection("workspaces"),
		members:    db.Collection("members"),
		roles:      db.Collection("roles"),
		users:      db.Collection("users"),
		projects:   db.Collection("projects"),
		tasks:      db.Collection("tasks"),
		comments:   db.Collection("comments"),
		log:        log,
	}
}

// Create makes a workspace with the given owner, adds the owner as an
// OWNER member, and points the owner's current_workspace at it. All three
// writes commit or abort together.
func (s *Store) Create(ctx context.Context, ownerID primitive.ObjectID, name, description string) (models.Workspace, error) {
	ownerRole, err := s.roleByName(ctx, models.RoleOwner)
	if err != nil {
		return models.Workspace{}, err
	}

	name = normalize.Name(name)
	now := time.Now()
	ws := models.Workspace{
		ID:          primitive.NewObjectID(),
		Name:        name,
		NameCI:      text.Fold(name),
		Description: description,
		Owner:       ownerID,
		InviteCode:  codes.InviteCode(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = txn.Run(ctx, s.db, s.log, func(ctx context.Context) error {
		if _, err := s.workspaces.InsertOne(ctx, ws); err != nil {
			return err
		}
		member := models.Member{
			ID:          primitive.NewObjectID(),
			UserID:      ownerID,
			WorkspaceID: ws.ID,
			RoleID:      ownerRole.ID,
			JoinedAt:    now,
		}
		if _, err := s.members.InsertOne(ctx, member); err != nil {
			return err
		}
		_, err := s.users.UpdateOne(ctx, bson.M{"_id": ownerID},
			bson.M{"$set": bson.M{"current_workspace": ws.ID, "updated_at": now}})
		return err
	})
	if err != nil {
		return models.Workspace{}, err
	}
	return ws, nil
}

// GetByID loads a workspace, or ErrNotFound.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Workspace, error) {
	var ws models.Workspace
	if err := s.workspaces.FindOne(ctx, bson.M{"_id": id}).Decode(&ws); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &ws, nil
}

// Update changes a workspace's name and description.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, name, description string) (*models.Workspace, error) {
	name = normalize.Name(name)
	set := bson.M{
		"name":        name,
		"name_ci":     text.Fold(name),
		"description": description,
		"updated_at":  time.Now(),
	}
	res := s.workspaces.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After))

	var ws models.Workspace
	if err := res.Decode(&ws); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &ws, nil
}

// ResetInviteCode replaces the workspace's invite code so old invites stop
// working.
func (s *Store) ResetInviteCode(ctx context.Context, id primitive.ObjectID) (*models.Workspace, error) {
	res := s.workspaces.FindOneAndUpdate(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"invite_code": codes.InviteCode(), "updated_at": time.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After))

	var ws models.Workspace
	if err := res.Decode(&ws); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &ws, nil
}

// JoinByInvite adds the user to the workspace behind the invite code with
// the MEMBER role.
func (s *Store) JoinByInvite(ctx context.Context, userID primitive.ObjectID, inviteCode string) (*models.Workspace, error) {
	var ws models.Workspace
	err := s.workspaces.FindOne(ctx, bson.M{"invite_code": normalize.QueryParam(inviteCode)}).Decode(&ws)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrInvalidInvite
		}
		return nil, err
	}

	memberRole, err := s.roleByName(ctx, models.RoleMember)
	if err != nil {
		return nil, err
	}

	m := models.Member{
		ID:          primitive.NewObjectID(),
		UserID:      userID,
		WorkspaceID: ws.ID,
		RoleID:      memberRole.ID,
		JoinedAt:    time.Now(),
	}
	if _, err := s.members.InsertOne(ctx, m); err != nil {
		if wafflemongo.IsDup(err) {
			return nil, ErrAlreadyMember
		}
		return nil, err
	}
	return &ws, nil
}

// Delete removes the workspace and everything inside it: projects, tasks,
// comments, and memberships. Only the owner may delete. Every user whose
// current_workspace pointed at the deleted workspace is repointed to their
// oldest surviving membership, or cleared when none remain.
//
// Returns the acting user's new current workspace ID (nil when they have
// no workspaces left).
func (s *Store) Delete(ctx context.Context, id, actorID primitive.ObjectID) (*primitive.ObjectID, error) {
	ws, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ws.Owner != actorID {
		return nil, ErrNotOwner
	}

	var actorNext *primitive.ObjectID
	err = txn.Run(ctx, s.db, s.log, func(ctx context.Context) error {
		// Everyone pointing at this workspace needs a repair pass after
		// the memberships go away.
		pointing, err := s.userIDsPointingAt(ctx, id)
		if err != nil {
			return err
		}

		for _, coll := range []*mongo.Collection{s.comments, s.tasks, s.projects, s.members} {
			if _, err := coll.DeleteMany(ctx, bson.M{"workspace_id": id}); err != nil {
				return err
			}
		}
		if _, err := s.workspaces.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
			return err
		}

		for _, uid := range pointing {
			next, err := s.repairCurrentWorkspace(ctx, uid)
			if err != nil {
				return err
			}
			if uid == actorID {
				actorNext = next
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("workspace deleted",
		zap.String("workspace_id", id.Hex()),
		zap.String("actor_id", actorID.Hex()))
	return actorNext, nil
}

// userIDsPointingAt lists users whose current_workspace is the given workspace.
func (s *Store) userIDsPointingAt(ctx context.Context, wsID primitive.ObjectID) ([]primitive.ObjectID, error) {
	cur, err := s.users.Find(ctx, bson.M{"current_workspace": wsID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var ids []primitive.ObjectID
	for cur.Next(ctx) {
		var u models.User
		if err := cur.Decode(&u); err != nil {
			return nil, err
		}
		ids = append(ids, u.ID)
	}
	return ids, cur.Err()
}

// repairCurrentWorkspace repoints a user at their oldest surviving
// membership, or clears the pointer when they have none.
func (s *Store) repairCurrentWorkspace(ctx context.Context, userID primitive.ObjectID) (*primitive.ObjectID, error) {
	var next *primitive.ObjectID
	var m models.Member
	err := s.members.FindOne(ctx, bson.M{"user_id": userID},
		options.FindOne().SetSort(bson.D{{Key: "joined_at", Value: 1}, {Key: "_id", Value: 1}})).Decode(&m)
	switch {
	case err == nil:
		next = &m.WorkspaceID
	case errors.Is(err, mongo.ErrNoDocuments):
		next = nil
	default:
		return nil, err
	}

	_, err = s.users.UpdateOne(ctx, bson.M{"_id": userID},
		bson.M{"$set": bson.M{"current_workspace": next, "updated_at": time.Now()}})
	if err != nil {
		return nil, err
	}
	return next, nil
}

// ListForUser returns every workspace the user belongs to, oldest
// membership first.
func (s *Store) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Workspace, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"user_id": userID}}},
		{{Key: "$sort", Value: bson.D{{Key: "joined_at", Value: 1}, {Key: "_id", Value: 1}}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "workspaces",
			"localField":   "workspace_id",
			"foreignField": "_id",
			"as":           "workspace",
		}}},
		{{Key: "$unwind", Value: "$workspace"}},
		{{Key: "$replaceRoot", Value: bson.M{"newRoot": "$workspace"}}},
	}

	cur, err := s.members.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Workspace
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Overview is the workspace-level task summary.
type Overview struct {
	TotalTasks     int64 `json:"total_tasks"`
	OverdueTasks   int64 `json:"overdue_tasks"`
	CompletedTasks int64 `json:"completed_tasks"`
}

// GetOverview counts the workspace's tasks: all of them, the overdue ones
// (due before now and not DONE), and the completed ones.
func (s *Store) GetOverview(ctx context.Context, wsID primitive.ObjectID, now time.Time) (Overview, error) {
	var o Overview
	var err error

	if o.TotalTasks, err = s.tasks.CountDocuments(ctx, bson.M{"workspace_id": wsID}); err != nil {
		return Overview{}, err
	}
	o.OverdueTasks, err = s.tasks.CountDocuments(ctx, bson.M{
		"workspace_id": wsID,
		"due_date":     bson.M{"$lt": now},
		"status":       bson.M{"$ne": models.TaskStatusDone},
	})
	if err != nil {
		return Overview{}, err
	}
	o.CompletedTasks, err = s.tasks.CountDocuments(ctx, bson.M{
		"workspace_id": wsID,
		"status":       models.TaskStatusDone,
	})
	if err != nil {
		return Overview{}, err
	}
	return o, nil
}

func (s *Store) roleByName(ctx context.Context, name string) (*models.Role, error) {
	var r models.Role
	if err := s.roles.FindOne(ctx, bson.M{"name": name}).Decode(&r); err != nil {
		return nil, err
	}
	return &r, nil
}
