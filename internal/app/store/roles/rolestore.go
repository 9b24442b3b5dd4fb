package rolestore

import (
	"context"
	"errors"

	"github.com/taskhive-dev/taskhive/internal/app/system/authz"
	"github.com/taskhive-dev/taskhive/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when no role matches the lookup.
var ErrNotFound = errors.New("role not found")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("roles")}
}

// Seed upserts the three fixed roles with their permission sets. Run at
// startup; safe to run repeatedly, and it refreshes permissions when the
// canonical table changes between releases.
func (s *Store) Seed(ctx context.Context) error {
	for _, name := range []string{models.RoleOwner, models.RoleAdmin, models.RoleMember} {
		perms := authz.PermissionStrings(name)
		_, err := s.c.UpdateOne(ctx,
			bson.M{"name": name},
			bson.M{"$set": bson.M{"permissions": perms}},
			options.Update().SetUpsert(true))
		if err != nil {
			return err
		}
	}
	return nil
}

// GetByName loads a role by its fixed name (OWNER, ADMIN, MEMBER).
func (s *Store) GetByName(ctx context.Context, name string) (*models.Role, error) {
	var r models.Role
	if err := s.c.FindOne(ctx, bson.M{"name": name}).Decode(&r); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &r, nil
}

// GetByID loads a role by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Role, error) {
	var r models.Role
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&r); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &r, nil
}

// All returns every role. The set is small and fixed.
func (s *Store) All(ctx context.Context) ([]models.Role, error) {
	cur, err := s.c.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Role
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
