package commentstore

import (
	"context"
	"errors"
	"time"

	"github.com/taskhive-dev/taskhive/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when no comment matches inside the workspace.
var ErrNotFound = errors.New("comment not found")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("comments")}
}

// Create adds a comment to a task. The message is expected to be
// sanitized by the caller before it gets here.
func (s *Store) Create(ctx context.Context, wsID, taskID, userID primitive.ObjectID, message string, attachments []string) (models.Comment, error) {
	now := time.Now()
	cm := models.Comment{
		ID:          primitive.NewObjectID(),
		TaskID:      taskID,
		WorkspaceID: wsID,
		UserID:      userID,
		Message:     message,
		Attachments: attachments,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := s.c.InsertOne(ctx, cm); err != nil {
		return models.Comment{}, err
	}
	return cm, nil
}

// GetByID loads a comment scoped to its workspace.
func (s *Store) GetByID(ctx context.Context, wsID, id primitive.ObjectID) (*models.Comment, error) {
	var cm models.Comment
	err := s.c.FindOne(ctx, bson.M{"_id": id, "workspace_id": wsID}).Decode(&cm)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &cm, nil
}

// Update replaces a comment's message. Scoped to the author so a user can
// only edit their own comments.
func (s *Store) Update(ctx context.Context, wsID, id, authorID primitive.ObjectID, message string) (*models.Comment, error) {
	res := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "workspace_id": wsID, "user_id": authorID},
		bson.M{"$set": bson.M{"message": message, "updated_at": time.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After))

	var cm models.Comment
	if err := res.Decode(&cm); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &cm, nil
}

// Delete removes a comment.
func (s *Store) Delete(ctx context.Context, wsID, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "workspace_id": wsID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Info is a comment joined with its author for list responses.
type Info struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	TaskID      primitive.ObjectID `bson:"task_id" json:"task_id"`
	Message     string             `bson:"message" json:"message"`
	Attachments []string           `bson:"attachments,omitempty" json:"attachments,omitempty"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
	Author      struct {
		ID             primitive.ObjectID `bson:"_id" json:"id"`
		Name           string             `bson:"name" json:"name"`
		ProfilePicture string             `bson:"profile_picture,omitempty" json:"profile_picture,omitempty"`
	} `bson:"author" json:"author"`
}

// ListForTask returns a task's comments oldest-first with author details.
func (s *Store) ListForTask(ctx context.Context, wsID, taskID primitive.ObjectID) ([]Info, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"task_id": taskID, "workspace_id": wsID}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "users",
			"localField":   "user_id",
			"foreignField": "_id",
			"as":           "author",
		}}},
		{{Key: "$unwind", Value: "$author"}},
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}}},
	}

	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []Info
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
