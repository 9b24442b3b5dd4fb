package projectstore

import (
	"context"
	"errors"
	"time"

	"github.com/taskhive-dev/taskhive/internal/app/system/normalize"
	"github.com/taskhive-dev/taskhive/internal/app/system/txn"
	"github.com/taskhive-dev/taskhive/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// ErrNotFound is returned when no project matches the lookup inside the
// given workspace. A project that exists in a different workspace is
// still ErrNotFound; IDs never leak across workspaces.
var ErrNotFound = errors.New("project not found in this workspace")

type Store struct {
	db       *mongo.Database
	projects *mongo.Collection
	tasks    *mongo.Collection
	comments *mongo.Collection
	log      *zap.Logger
}

func New(db *mongo.Database, log *zap.Logger) *Store {
	return &Store{
		db:       db,
		projects: db.Collection("projects"),
		tasks:    db.Collection("tasks"),
		comments: db.Collection("comments"),
		log:      log,
	}
}

// Create inserts a project into the workspace.
func (s *Store) Create(ctx context.Context, wsID, createdBy primitive.ObjectID, name, emoji, description string) (models.Project, error) {
	name = normalize.Name(name)
	now := time.Now()
	p := models.Project{
		ID:          primitive.NewObjectID(),
		WorkspaceID: wsID,
		Name:        name,
		NameCI:      text.Fold(name),
		Emoji:       emoji,
		Description: description,
		CreatedBy:   createdBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := s.projects.InsertOne(ctx, p); err != nil {
		return models.Project{}, err
	}
	return p, nil
}

// GetByID loads a project, scoped to the workspace.
func (s *Store) GetByID(ctx context.Context, wsID, id primitive.ObjectID) (*models.Project, error) {
	var p models.Project
	err := s.projects.FindOne(ctx, bson.M{"_id": id, "workspace_id": wsID}).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Update changes a project's name, emoji, and description.
func (s *Store) Update(ctx context.Context, wsID, id primitive.ObjectID, name, emoji, description string) (*models.Project, error) {
	name = normalize.Name(name)
	set := bson.M{
		"name":        name,
		"name_ci":     text.Fold(name),
		"emoji":       emoji,
		"description": description,
		"updated_at":  time.Now(),
	}
	res := s.projects.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "workspace_id": wsID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After))

	var p models.Project
	if err := res.Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Delete removes the project plus every task and comment under it, as one
// transaction.
func (s *Store) Delete(ctx context.Context, wsID, id primitive.ObjectID) error {
	if _, err := s.GetByID(ctx, wsID, id); err != nil {
		return err
	}

	return txn.Run(ctx, s.db, s.log, func(ctx context.Context) error {
		// Comments hang off tasks, so collect the task IDs first.
		taskIDs, err := s.taskIDsForProject(ctx, id)
		if err != nil {
			return err
		}
		if len(taskIDs) > 0 {
			if _, err := s.comments.DeleteMany(ctx, bson.M{"task_id": bson.M{"$in": taskIDs}}); err != nil {
				return err
			}
		}
		if _, err := s.tasks.DeleteMany(ctx, bson.M{"project_id": id}); err != nil {
			return err
		}
		_, err = s.projects.DeleteOne(ctx, bson.M{"_id": id, "workspace_id": wsID})
		return err
	})
}

func (s *Store) taskIDsForProject(ctx context.Context, projectID primitive.ObjectID) ([]primitive.ObjectID, error) {
	cur, err := s.tasks.Find(ctx, bson.M{"project_id": projectID},
		options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var ids []primitive.ObjectID
	for cur.Next(ctx) {
		var doc struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		ids = append(ids, doc.ID)
	}
	return ids, cur.Err()
}

// Page is one page of a project list.
type Page struct {
	Projects   []models.Project `json:"projects"`
	TotalCount int64            `json:"total_count"`
	TotalPages int64            `json:"total_pages"`
	PageNumber int64            `json:"page_number"`
	PageSize   int64            `json:"page_size"`
}

// List returns the workspace's projects newest-first, paginated.
func (s *Store) List(ctx context.Context, wsID primitive.ObjectID, pageNumber, pageSize int64) (Page, error) {
	if pageNumber < 1 {
		pageNumber = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}

	filter := bson.M{"workspace_id": wsID}
	total, err := s.projects.CountDocuments(ctx, filter)
	if err != nil {
		return Page{}, err
	}

	cur, err := s.projects.Find(ctx, filter, options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}).
		SetSkip((pageNumber-1)*pageSize).
		SetLimit(pageSize))
	if err != nil {
		return Page{}, err
	}
	defer cur.Close(ctx)

	out := Page{
		Projects:   []models.Project{},
		TotalCount: total,
		TotalPages: (total + pageSize - 1) / pageSize,
		PageNumber: pageNumber,
		PageSize:   pageSize,
	}
	if err := cur.All(ctx, &out.Projects); err != nil {
		return Page{}, err
	}
	return out, nil
}
