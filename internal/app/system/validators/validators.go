// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"github.com/taskhive-dev/taskhive/internal/domain/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates collections (if missing) and tries to attach JSON-Schema
// validators. On servers that don't support collMod/validators (e.g. some
// DocumentDB versions), we log and skip gracefully.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	// helper: ensure collection exists (with truthful logging) and then validator (if provided)
	ensure := func(coll string, schema bson.M) {
		if _, err := ensureCollection(ctx, db, coll); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if schema == nil {
			return
		}
		if err := setValidator(ctx, db, coll, schema); err != nil {
			// DocumentDB or other deployments may not support collMod/validators.
			if isNoSuchCommand(err) || isNotImplemented(err) {
				zap.L().Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
		}
	}

	// Core collections this app uses
	ensure("users", usersSchema())
	ensure("accounts", accountsSchema())
	ensure("workspaces", workspacesSchema())
	ensure("roles", rolesSchema())

	// Membership and content collections
	ensure("members", membersSchema())
	ensure("projects", projectsSchema())
	ensure("tasks", tasksSchema())
	ensure("comments", commentsSchema())

	// These don't strictly need validators; we still ensure the collections exist.
	ensure("oauth_states", nil)

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* ---------------------- collection helpers & logging ---------------------- */

// collectionExists returns true when <name> already exists.
// Uses ListCollectionNames to avoid "created collection" log when it didn't.
func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

// ensureCollection idempotently makes sure <name> exists.
// Returns created==true only if we actually created it.
func ensureCollection(ctx context.Context, db *mongo.Database, name string) (created bool, err error) {
	exists, listErr := collectionExists(ctx, db, name)
	if listErr == nil && exists {
		zap.L().Info("collection exists", zap.String("collection", name))
		return false, nil
	}
	// If listing failed, fall back to create-and-handle-race.
	if err := db.CreateCollection(ctx, name); err != nil {
		// NamespaceExists / already exists is fine (race or prior run).
		if isNamespaceExistsErr(err) {
			zap.L().Info("collection exists", zap.String("collection", name))
			return false, nil
		}
		zap.L().Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	zap.L().Info("created collection", zap.String("collection", name))
	return true, nil
}

/* ------------------------------ validators ------------------------------- */

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	var out bson.M
	if err := db.RunCommand(ctx, cmd).Decode(&out); err != nil {
		return err
	}
	zap.L().Info("validator ensured", zap.String("collection", name))
	return nil
}

/* ------------------------- error helpers ------------------------- */

func isNamespaceExistsErr(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 48 || strings.Contains(strings.ToLower(ce.Message), "already exists")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "already exists") || strings.Contains(s, "namespace exists")
}

func isNoSuchCommand(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 59 || strings.Contains(strings.ToLower(ce.Message), "no such command")) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "no such command")
}

func isNotImplemented(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 115 ||
		strings.Contains(strings.ToLower(ce.Message), "not implemented") ||
		strings.Contains(strings.ToLower(ce.Message), "not supported")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "not implemented") || strings.Contains(s, "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

func usersSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"name", "email"},
			"properties": bson.M{
				"name":              bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"},
				"name_ci":           bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"},
				"email":             bson.M{"bsonType": "string", "minLength": 3},
				"password":          bson.M{"bsonType": bson.A{"string", "null"}},
				"profile_picture":   bson.M{"bsonType": bson.A{"string", "null"}},
				"is_active":         bson.M{"bsonType": "bool"},
				"current_workspace": bson.M{"bsonType": bson.A{"objectId", "null"}},
				"last_login":        bson.M{"bsonType": bson.A{"date", "null"}},
				"created_at":        bson.M{"bsonType": "date"},
				"updated_at":        bson.M{"bsonType": "date"},
			},
		},
	}
}

func accountsSchema() bson.M {
	// Build the enum for the provider field from the canonical list in the domain models.
	providerEnum := bson.A{}
	for _, p := range models.AccountProviders {
		providerEnum = append(providerEnum, p)
	}

	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"user_id", "provider", "provider_id"},
			"properties": bson.M{
				"user_id":       bson.M{"bsonType": "objectId"},
				"provider":      bson.M{"enum": providerEnum},
				"provider_id":   bson.M{"bsonType": "string", "minLength": 1},
				"refresh_token": bson.M{"bsonType": bson.A{"string", "null"}},
				"token_expiry":  bson.M{"bsonType": bson.A{"date", "null"}},
				"created_at":    bson.M{"bsonType": "date"},
			},
		},
	}
}

func workspacesSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"name", "name_ci", "owner", "invite_code"},
			"properties": bson.M{
				"name":        bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"},
				"name_ci":     bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"},
				"description": bson.M{"bsonType": "string"},
				"owner":       bson.M{"bsonType": "objectId"},
				"invite_code": bson.M{"bsonType": "string", "minLength": 1},
				"created_at":  bson.M{"bsonType": "date"},
				"updated_at":  bson.M{"bsonType": "date"},
			},
		},
	}
}

func rolesSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"name", "permissions"},
			"properties": bson.M{
				"name":        bson.M{"enum": bson.A{models.RoleOwner, models.RoleAdmin, models.RoleMember}},
				"permissions": bson.M{"bsonType": "array", "items": bson.M{"bsonType": "string"}},
			},
		},
	}
}

func membersSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"user_id", "workspace_id", "role_id", "joined_at"},
			"properties": bson.M{
				"user_id":      bson.M{"bsonType": "objectId"},
				"workspace_id": bson.M{"bsonType": "objectId"},
				"role_id":      bson.M{"bsonType": "objectId"},
				"joined_at":    bson.M{"bsonType": "date"},
			},
		},
	}
}

func projectsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"workspace_id", "name", "created_by"},
			"properties": bson.M{
				"workspace_id": bson.M{"bsonType": "objectId"},
				"name":         bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"},
				"name_ci":      bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"},
				"emoji":        bson.M{"bsonType": "string"},
				"description":  bson.M{"bsonType": "string"},
				"created_by":   bson.M{"bsonType": "objectId"},
				"created_at":   bson.M{"bsonType": "date"},
				"updated_at":   bson.M{"bsonType": "date"},
			},
		},
	}
}

func tasksSchema() bson.M {
	statusEnum := bson.A{}
	for _, s := range models.TaskStatuses {
		statusEnum = append(statusEnum, s)
	}
	priorityEnum := bson.A{}
	for _, p := range models.TaskPriorities {
		priorityEnum = append(priorityEnum, p)
	}

	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"task_code", "title", "workspace_id", "project_id", "status", "priority", "created_by"},
			"properties": bson.M{
				"task_code":    bson.M{"bsonType": "string", "minLength": 1},
				"title":        bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"},
				"description":  bson.M{"bsonType": "string"},
				"workspace_id": bson.M{"bsonType": "objectId"},
				"project_id":   bson.M{"bsonType": "objectId"},
				"status":       bson.M{"enum": statusEnum},
				"priority":     bson.M{"enum": priorityEnum},
				"assigned_to":  bson.M{"bsonType": bson.A{"objectId", "null"}},
				"created_by":   bson.M{"bsonType": "objectId"},
				"due_date":     bson.M{"bsonType": bson.A{"date", "null"}},
				"completed_at": bson.M{"bsonType": bson.A{"date", "null"}},
				"created_at":   bson.M{"bsonType": "date"},
				"updated_at":   bson.M{"bsonType": "date"},
			},
		},
	}
}

func commentsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"task_id", "workspace_id", "user_id", "message"},
			"properties": bson.M{
				"task_id":      bson.M{"bsonType": "objectId"},
				"workspace_id": bson.M{"bsonType": "objectId"},
				"user_id":      bson.M{"bsonType": "objectId"},
				"message":      bson.M{"bsonType": "string", "minLength": 1},
				"created_at":   bson.M{"bsonType": "date"},
				"updated_at":   bson.M{"bsonType": "date"},
			},
		},
	}
}
