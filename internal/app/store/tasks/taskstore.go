// Package taskstore manages tasks inside a project.
//
// Every lookup is scoped by workspace (and usually project) so task IDs
// never resolve across tenant boundaries. Assignment is guarded: a task
// can only be assigned to a current member of its workspace.
package taskstore

import (
	"context"
	"errors"
	"time"

	"github.com/taskhive-dev/taskhive/internal/app/system/codes"
	"github.com/taskhive-dev/taskhive/internal/app/system/normalize"
	"github.com/taskhive-dev/taskhive/internal/app/system/txn"
	"github.com/taskhive-dev/taskhive/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

var (
	// ErrNotFound is returned when no task matches inside the given scope.
	ErrNotFound = errors.New("task not found in this project")
	// ErrAssigneeNotMember is returned when assigning a task to a user who
	// is not a member of the workspace.
	ErrAssigneeNotMember = errors.New("assignee is not a member of this workspace")
	// ErrBadStatus is returned for a status outside the fixed set.
	ErrBadStatus = errors.New("invalid task status")
	// ErrBadPriority is returned for a priority outside the fixed set.
	ErrBadPriority = errors.New("invalid task priority")
)

type Store struct {
	db       *mongo.Database
	tasks    *mongo.Collection
	members  *mongo.Collection
	comments *mongo.Collection
	log      *zap.Logger
}

func New(db *mongo.Database, log *zap.Logger) *Store {
	return &Store{
		db:       db,
		tasks:    db.Collection("tasks"),
		members:  db.Collection("members"),
		comments: db.Collection("comments"),
		log:      log,
	}
}

// Input holds the caller-settable task fields.
type Input struct {
	Title       string
	Description string
	Status      string
	Priority    string
	AssignedTo  *primitive.ObjectID
	DueDate     *time.Time
}

// Create inserts a task. Status defaults to TODO and priority to MEDIUM
// when blank; a task created directly in DONE gets completed_at stamped.
func (s *Store) Create(ctx context.Context, wsID, projectID, createdBy primitive.ObjectID, in Input) (models.Task, error) {
	if in.Status == "" {
		in.Status = models.TaskStatusTodo
	}
	if in.Priority == "" {
		in.Priority = models.TaskPriorityMedium
	}
	if !models.IsValidTaskStatus(in.Status) {
		return models.Task{}, ErrBadStatus
	}
	if !models.IsValidTaskPriority(in.Priority) {
		return models.Task{}, ErrBadPriority
	}
	if err := s.checkAssignee(ctx, wsID, in.AssignedTo); err != nil {
		return models.Task{}, err
	}

	now := time.Now()
	t := models.Task{
		ID:          primitive.NewObjectID(),
		TaskCode:    codes.TaskCode(),
		Title:       normalize.Name(in.Title),
		Description: in.Description,
		ProjectID:   projectID,
		WorkspaceID: wsID,
		Status:      in.Status,
		Priority:    in.Priority,
		AssignedTo:  in.AssignedTo,
		CreatedBy:   createdBy,
		DueDate:     in.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if t.Status == models.TaskStatusDone {
		t.CompletedAt = &now
	}

	if _, err := s.tasks.InsertOne(ctx, t); err != nil {
		return models.Task{}, err
	}
	return t, nil
}

// Update replaces a task's caller-settable fields. completed_at is
// stamped when the status moves into DONE and cleared when it moves out.
func (s *Store) Update(ctx context.Context, wsID, projectID, taskID primitive.ObjectID, in Input) (*models.Task, error) {
	if !models.IsValidTaskStatus(in.Status) {
		return nil, ErrBadStatus
	}
	if !models.IsValidTaskPriority(in.Priority) {
		return nil, ErrBadPriority
	}
	if err := s.checkAssignee(ctx, wsID, in.AssignedTo); err != nil {
		return nil, err
	}

	existing, err := s.GetByID(ctx, wsID, projectID, taskID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	set := bson.M{
		"title":       normalize.Name(in.Title),
		"description": in.Description,
		"status":      in.Status,
		"priority":    in.Priority,
		"assigned_to": in.AssignedTo,
		"due_date":    in.DueDate,
		"updated_at":  now,
	}
	switch {
	case in.Status == models.TaskStatusDone && existing.Status != models.TaskStatusDone:
		set["completed_at"] = now
	case in.Status != models.TaskStatusDone && existing.Status == models.TaskStatusDone:
		set["completed_at"] = nil
	}

	res := s.tasks.FindOneAndUpdate(ctx,
		bson.M{"_id": taskID, "workspace_id": wsID, "project_id": projectID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After))

	var t models.Task
	if err := res.Decode(&t); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// GetByID loads a task scoped to its workspace and project.
func (s *Store) GetByID(ctx context.Context, wsID, projectID, taskID primitive.ObjectID) (*models.Task, error) {
	var t models.Task
	err := s.tasks.FindOne(ctx,
		bson.M{"_id": taskID, "workspace_id": wsID, "project_id": projectID}).Decode(&t)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// Delete removes a task and its comments together.
func (s *Store) Delete(ctx context.Context, wsID, taskID primitive.ObjectID) error {
	if err := s.tasks.FindOne(ctx, bson.M{"_id": taskID, "workspace_id": wsID}).Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNotFound
		}
		return err
	}

	return txn.Run(ctx, s.db, s.log, func(ctx context.Context) error {
		if _, err := s.comments.DeleteMany(ctx, bson.M{"task_id": taskID}); err != nil {
			return err
		}
		_, err := s.tasks.DeleteOne(ctx, bson.M{"_id": taskID, "workspace_id": wsID})
		return err
	})
}

// ExistsInWorkspace reports ErrNotFound unless the task lives in the
// workspace. Comment routes use this before touching a task's thread.
func (s *Store) ExistsInWorkspace(ctx context.Context, wsID, taskID primitive.ObjectID) error {
	err := s.tasks.FindOne(ctx, bson.M{"_id": taskID, "workspace_id": wsID}).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}

// checkAssignee verifies the assignee (when set) belongs to the workspace.
func (s *Store) checkAssignee(ctx context.Context, wsID primitive.ObjectID, assignee *primitive.ObjectID) error {
	if assignee == nil {
		return nil
	}
	err := s.members.FindOne(ctx, bson.M{"user_id": *assignee, "workspace_id": wsID}).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrAssigneeNotMember
		}
		return err
	}
	return nil
}

// Filter narrows a task list. Zero values mean "no constraint".
type Filter struct {
	ProjectID  *primitive.ObjectID
	Status     []string
	Priority   []string
	AssignedTo []primitive.ObjectID
	Keyword    string
	DueDate    *time.Time
}

// Page is one page of a task list.
type Page struct {
	Tasks      []models.Task `json:"tasks"`
	TotalCount int64         `json:"total_count"`
	TotalPages int64         `json:"total_pages"`
	PageNumber int64         `json:"page_number"`
	PageSize   int64         `json:"page_size"`
}

// List returns the workspace's tasks newest-first, filtered and paginated.
func (s *Store) List(ctx context.Context, wsID primitive.ObjectID, f Filter, pageNumber, pageSize int64) (Page, error) {
	if pageNumber < 1 {
		pageNumber = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}

	filter := bson.M{"workspace_id": wsID}
	if f.ProjectID != nil {
		filter["project_id"] = *f.ProjectID
	}
	if len(f.Status) > 0 {
		filter["status"] = bson.M{"$in": f.Status}
	}
	if len(f.Priority) > 0 {
		filter["priority"] = bson.M{"$in": f.Priority}
	}
	if len(f.AssignedTo) > 0 {
		filter["assigned_to"] = bson.M{"$in": f.AssignedTo}
	}
	if kw := normalize.QueryParam(f.Keyword); kw != "" {
		filter["title"] = bson.M{"$regex": kw, "$options": "i"}
	}
	if f.DueDate != nil {
		// Anything due on that calendar day, UTC.
		day := f.DueDate.UTC().Truncate(24 * time.Hour)
		filter["due_date"] = bson.M{"$gte": day, "$lt": day.Add(24 * time.Hour)}
	}

	total, err := s.tasks.CountDocuments(ctx, filter)
	if err != nil {
		return Page{}, err
	}

	cur, err := s.tasks.Find(ctx, filter, options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}).
		SetSkip((pageNumber-1)*pageSize).
		SetLimit(pageSize))
	if err != nil {
		return Page{}, err
	}
	defer cur.Close(ctx)

	out := Page{
		Tasks:      []models.Task{},
		TotalCount: total,
		TotalPages: (total + pageSize - 1) / pageSize,
		PageNumber: pageNumber,
		PageSize:   pageSize,
	}
	if err := cur.All(ctx, &out.Tasks); err != nil {
		return Page{}, err
	}
	return out, nil
}
