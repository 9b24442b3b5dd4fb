package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	rolestore "github.com/taskhive-dev/taskhive/internal/app/store/roles"
	"github.com/taskhive-dev/taskhive/internal/app/system/codes"
	"github.com/taskhive-dev/taskhive/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
// Calls chain; each one adds to any params already on the request.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// SeedRoles seeds the role catalog and returns a name-to-ID map for
// building memberships.
func (f *Fixtures) SeedRoles(ctx context.Context) map[string]primitive.ObjectID {
	f.t.Helper()

	store := rolestore.New(f.db)
	if err := store.Seed(ctx); err != nil {
		f.t.Fatalf("failed to seed roles: %v", err)
	}

	roles, err := store.All(ctx)
	if err != nil {
		f.t.Fatalf("failed to load seeded roles: %v", err)
	}

	byName := make(map[string]primitive.ObjectID, len(roles))
	for _, r := range roles {
		byName[r.Name] = r.ID
	}
	return byName
}

// CreateUser creates a test user with the given name and email.
func (f *Fixtures) CreateUser(ctx context.Context, name, email string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		Email:     email,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := f.db.Collection("users").InsertOne(ctx, user)
	if err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}

	return user
}

// CreateWorkspace creates a test workspace owned by the given user.
// No membership records are created; use AddMember for that.
func (f *Fixtures) CreateWorkspace(ctx context.Context, name string, owner primitive.ObjectID) models.Workspace {
	f.t.Helper()

	now := time.Now().UTC()
	ws := models.Workspace{
		ID:         primitive.NewObjectID(),
		Name:       name,
		NameCI:     text.Fold(name),
		Owner:      owner,
		InviteCode: codes.InviteCode(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	_, err := f.db.Collection("workspaces").InsertOne(ctx, ws)
	if err != nil {
		f.t.Fatalf("failed to create test workspace: %v", err)
	}

	return ws
}

// AddMember creates a membership linking a user to a workspace with the
// given role.
func (f *Fixtures) AddMember(ctx context.Context, userID, workspaceID, roleID primitive.ObjectID) models.Member {
	f.t.Helper()

	m := models.Member{
		ID:          primitive.NewObjectID(),
		UserID:      userID,
		WorkspaceID: workspaceID,
		RoleID:      roleID,
		JoinedAt:    time.Now().UTC(),
	}

	_, err := f.db.Collection("members").InsertOne(ctx, m)
	if err != nil {
		f.t.Fatalf("failed to create test membership: %v", err)
	}

	return m
}

// CreateProject creates a test project in the given workspace.
func (f *Fixtures) CreateProject(ctx context.Context, name string, workspaceID, createdBy primitive.ObjectID) models.Project {
	f.t.Helper()

	now := time.Now().UTC()
	p := models.Project{
		ID:          primitive.NewObjectID(),
		Name:        name,
		NameCI:      text.Fold(name),
		WorkspaceID: workspaceID,
		CreatedBy:   createdBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := f.db.Collection("projects").InsertOne(ctx, p)
	if err != nil {
		f.t.Fatalf("failed to create test project: %v", err)
	}

	return p
}

// CreateTask creates a TODO/MEDIUM task in the given project.
func (f *Fixtures) CreateTask(ctx context.Context, title string, workspaceID, projectID, createdBy primitive.ObjectID) models.Task {
	f.t.Helper()
	return f.CreateTaskWith(ctx, models.Task{
		Title:       title,
		WorkspaceID: workspaceID,
		ProjectID:   projectID,
		CreatedBy:   createdBy,
	})
}

// CreateTaskWith inserts a task built from the given template, filling in
// defaults for anything unset. Useful for analytics tests that need
// specific statuses, due dates, or completion times.
func (f *Fixtures) CreateTaskWith(ctx context.Context, tmpl models.Task) models.Task {
	f.t.Helper()

	now := time.Now().UTC()
	if tmpl.ID.IsZero() {
		tmpl.ID = primitive.NewObjectID()
	}
	if tmpl.TaskCode == "" {
		tmpl.TaskCode = codes.TaskCode()
	}
	if tmpl.Status == "" {
		tmpl.Status = models.TaskStatusTodo
	}
	if tmpl.Priority == "" {
		tmpl.Priority = models.TaskPriorityMedium
	}
	if tmpl.CreatedAt.IsZero() {
		tmpl.CreatedAt = now
	}
	if tmpl.UpdatedAt.IsZero() {
		tmpl.UpdatedAt = now
	}

	_, err := f.db.Collection("tasks").InsertOne(ctx, tmpl)
	if err != nil {
		f.t.Fatalf("failed to create test task: %v", err)
	}

	return tmpl
}

// CreateComment creates a test comment on the given task.
func (f *Fixtures) CreateComment(ctx context.Context, taskID, workspaceID, userID primitive.ObjectID, message string) models.Comment {
	f.t.Helper()

	now := time.Now().UTC()
	c := models.Comment{
		ID:          primitive.NewObjectID(),
		TaskID:      taskID,
		WorkspaceID: workspaceID,
		UserID:      userID,
		Message:     message,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := f.db.Collection("comments").InsertOne(ctx, c)
	if err != nil {
		f.t.Fatalf("failed to create test comment: %v", err)
	}

	return c
}
