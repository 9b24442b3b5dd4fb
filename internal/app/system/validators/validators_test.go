package validators_test

import (
	"testing"
	"time"

	"github.com/taskhive-dev/taskhive/internal/app/system/validators"
	"github.com/taskhive-dev/taskhive/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestEnsureAll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// EnsureAll should succeed on a clean database
	err := validators.EnsureAll(ctx, db)
	if err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// First call
	err := validators.EnsureAll(ctx, db)
	if err != nil {
		t.Fatalf("First EnsureAll failed: %v", err)
	}

	// Second call should also succeed (idempotent)
	err = validators.EnsureAll(ctx, db)
	if err != nil {
		t.Fatalf("Second EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_CreatesCollections(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	err := validators.EnsureAll(ctx, db)
	if err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	// Verify collections exist
	expectedCollections := []string{
		"users",
		"accounts",
		"workspaces",
		"roles",
		"members",
		"projects",
		"tasks",
		"comments",
		"oauth_states",
	}

	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		t.Fatalf("ListCollectionNames failed: %v", err)
	}

	collMap := make(map[string]bool)
	for _, name := range names {
		collMap[name] = true
	}

	for _, expected := range expectedCollections {
		if !collMap[expected] {
			t.Errorf("expected collection %q to exist", expected)
		}
	}
}

func TestUsersValidator_RequiredFields(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	err := validators.EnsureAll(ctx, db)
	if err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	// Try to insert user without required fields - should fail
	_, err = db.Collection("users").InsertOne(ctx, bson.M{
		"name": "Missing Email",
	})
	if err == nil {
		t.Error("expected validation error when inserting user without required fields")
	}
}

func TestUsersValidator_ValidUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	err := validators.EnsureAll(ctx, db)
	if err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	// Insert valid user - should succeed
	_, err = db.Collection("users").InsertOne(ctx, bson.M{
		"name":       "Test User",
		"name_ci":    "test user",
		"email":      "test@example.com",
		"is_active":  true,
		"created_at": time.Now(),
		"updated_at": time.Now(),
	})
	if err != nil {
		t.Errorf("Insert valid user failed: %v", err)
	}
}

func TestAccountsValidator_InvalidProvider(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	err := validators.EnsureAll(ctx, db)
	if err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	// Try to insert account with invalid provider - should fail
	_, err = db.Collection("accounts").InsertOne(ctx, bson.M{
		"user_id":     primitive.NewObjectID(),
		"provider":    "myspace",
		"provider_id": "12345",
		"created_at":  time.Now(),
	})
	if err == nil {
		t.Error("expected validation error when inserting account with invalid provider")
	}
}

func TestAccountsValidator_ValidAccount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	err := validators.EnsureAll(ctx, db)
	if err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	_, err = db.Collection("accounts").InsertOne(ctx, bson.M{
		"user_id":     primitive.NewObjectID(),
		"provider":    "EMAIL",
		"provider_id": "test@example.com",
		"created_at":  time.Now(),
	})
	if err != nil {
		t.Errorf("Insert valid account failed: %v", err)
	}
}

func TestWorkspacesValidator_RequiredFields(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	err := validators.EnsureAll(ctx, db)
	if err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	// Missing owner and invite_code - should fail
	_, err = db.Collection("workspaces").InsertOne(ctx, bson.M{
		"name":    "Test Workspace",
		"name_ci": "test workspace",
	})
	if err == nil {
		t.Error("expected validation error when inserting workspace without required fields")
	}
}

func TestWorkspacesValidator_ValidWorkspace(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	err := validators.EnsureAll(ctx, db)
	if err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	_, err = db.Collection("workspaces").InsertOne(ctx, bson.M{
		"name":        "Test Workspace",
		"name_ci":     "test workspace",
		"owner":       primitive.NewObjectID(),
		"invite_code": "a1b2c3d4",
		"created_at":  time.Now(),
		"updated_at":  time.Now(),
	})
	if err != nil {
		t.Errorf("Insert valid workspace failed: %v", err)
	}
}

func TestRolesValidator_InvalidName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	err := validators.EnsureAll(ctx, db)
	if err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	// Role names outside the fixed catalog should be rejected
	_, err = db.Collection("roles").InsertOne(ctx, bson.M{
		"name":        "SUPERUSER",
		"permissions": bson.A{},
	})
	if err == nil {
		t.Error("expected validation error when inserting role with invalid name")
	}
}

func TestMembersValidator_RequiredFields(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	err := validators.EnsureAll(ctx, db)
	if err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	// Try to insert membership without required fields - should fail
	_, err = db.Collection("members").InsertOne(ctx, bson.M{
		"joined_at": time.Now(),
	})
	if err == nil {
		t.Error("expected validation error when inserting member without required fields")
	}
}

func TestMembersValidator_ValidMember(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	err := validators.EnsureAll(ctx, db)
	if err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	_, err = db.Collection("members").InsertOne(ctx, bson.M{
		"user_id":      primitive.NewObjectID(),
		"workspace_id": primitive.NewObjectID(),
		"role_id":      primitive.NewObjectID(),
		"joined_at":    time.Now(),
	})
	if err != nil {
		t.Errorf("Insert valid member failed: %v", err)
	}
}

func TestTasksValidator_InvalidStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	err := validators.EnsureAll(ctx, db)
	if err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	_, err = db.Collection("tasks").InsertOne(ctx, bson.M{
		"task_code":    "task-abc",
		"title":        "Bad Status",
		"workspace_id": primitive.NewObjectID(),
		"project_id":   primitive.NewObjectID(),
		"status":       "SOMEDAY",
		"priority":     "MEDIUM",
		"created_by":   primitive.NewObjectID(),
		"created_at":   time.Now(),
		"updated_at":   time.Now(),
	})
	if err == nil {
		t.Error("expected validation error when inserting task with invalid status")
	}
}

func TestTasksValidator_AllValidStatuses(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	err := validators.EnsureAll(ctx, db)
	if err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	validStatuses := []string{"BACKLOG", "TODO", "IN_PROGRESS", "IN_REVIEW", "DONE"}

	for _, status := range validStatuses {
		_, err = db.Collection("tasks").InsertOne(ctx, bson.M{
			"task_code":    "task-" + status,
			"title":        "Task " + status,
			"workspace_id": primitive.NewObjectID(),
			"project_id":   primitive.NewObjectID(),
			"status":       status,
			"priority":     "LOW",
			"created_by":   primitive.NewObjectID(),
			"created_at":   time.Now(),
			"updated_at":   time.Now(),
		})
		if err != nil {
			t.Errorf("Insert task with status %q failed: %v", status, err)
		}
	}
}

func TestTasksValidator_InvalidPriority(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	err := validators.EnsureAll(ctx, db)
	if err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	_, err = db.Collection("tasks").InsertOne(ctx, bson.M{
		"task_code":    "task-abc",
		"title":        "Bad Priority",
		"workspace_id": primitive.NewObjectID(),
		"project_id":   primitive.NewObjectID(),
		"status":       "TODO",
		"priority":     "URGENT",
		"created_by":   primitive.NewObjectID(),
		"created_at":   time.Now(),
		"updated_at":   time.Now(),
	})
	if err == nil {
		t.Error("expected validation error when inserting task with invalid priority")
	}
}

func TestCommentsValidator_RequiredFields(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	err := validators.EnsureAll(ctx, db)
	if err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	// Try to insert comment without required fields - should fail
	_, err = db.Collection("comments").InsertOne(ctx, bson.M{
		"message": "orphan comment",
	})
	if err == nil {
		t.Error("expected validation error when inserting comment without required fields")
	}
}

func TestOAuthStates_NoValidator(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	err := validators.EnsureAll(ctx, db)
	if err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	// oauth_states has no validator, so any document should be accepted
	_, err = db.Collection("oauth_states").InsertOne(ctx, bson.M{
		"any_field": "any_value",
	})
	if err != nil {
		t.Errorf("Insert to oauth_states should succeed (no validator): %v", err)
	}
}
