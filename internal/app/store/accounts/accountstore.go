// Package accountstore handles signup and sign-in.
//
// A new user never exists alone: registration writes the user, their
// provider account link, a starter "My Workspace", an OWNER membership,
// and the current_workspace pointer in one transaction. A failure at any
// step leaves no trace, so a retry starts clean.
package accountstore

import (
	"context"
	"errors"
	"time"

	userstore "github.com/taskhive-dev/taskhive/internal/app/store/users"
	"github.com/taskhive-dev/taskhive/internal/app/system/codes"
	"github.com/taskhive-dev/taskhive/internal/app/system/normalize"
	"github.com/taskhive-dev/taskhive/internal/app/system/txn"
	"github.com/taskhive-dev/taskhive/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// bcryptCost trades hash time for resistance; 12 keeps logins under ~300ms.
const bcryptCost = 12

// starterWorkspaceName is the workspace every new user gets at signup.
const starterWorkspaceName = "My Workspace"

var (
	// ErrEmailTaken is returned when registering with an email that already has a user.
	ErrEmailTaken = errors.New("an account with this email already exists")
	// ErrInvalidCredentials is returned for a wrong email or password. The
	// two cases are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

type Store struct {
	db         *mongo.Database
	users      *userstore.Store
	accounts   *mongo.Collection
	workspaces *mongo.Collection
	members    *mongo.Collection
	roles      *mongo.Collection
	log        *zap.Logger
}

func New(db *mongo.Database, log *zap.Logger) *Store {
	return &Store{
		db:         db,
		users:      userstore.New(db),
		accounts:   db.Collection("accounts"),
		workspaces: db.Collection("workspaces"),
		members:    db.Collection("members"),
		roles:      db.Collection("roles"),
		log:        log,
	}
}

// Register creates a local email+password user with its starter workspace.
func (s *Store) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	email = normalize.Email(email)

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, err
	}

	u, err := s.bootstrap(ctx, bootstrapParams{
		name:       name,
		email:      email,
		password:   string(hash),
		provider:   models.ProviderEmail,
		providerID: email,
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("user registered",
		zap.String("user_id", u.ID.Hex()),
		zap.String("provider", models.ProviderEmail))
	return u, nil
}

// LoginOrCreate is the federated sign-in path. The decision is keyed on
// email: an email that already has a user signs that user in unchanged,
// whichever provider first created it. Only an unknown email bootstraps
// a full account.
func (s *Store) LoginOrCreate(ctx context.Context, provider, providerID, name, email, picture string) (*models.User, error) {
	existing, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		s.touchLastLogin(ctx, existing.ID)
		return existing, nil
	case errors.Is(err, userstore.ErrNotFound):
		// fall through to bootstrap
	default:
		return nil, err
	}

	u, err := s.bootstrap(ctx, bootstrapParams{
		name:       name,
		email:      normalize.Email(email),
		provider:   provider,
		providerID: providerID,
		picture:    picture,
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("user created via federated login",
		zap.String("user_id", u.ID.Hex()),
		zap.String("provider", provider))
	return u, nil
}

// VerifyCredentials checks an email+password pair against the stored hash.
func (s *Store) VerifyCredentials(ctx context.Context, email, password string) (*models.User, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if u.Password == "" {
		// Federated-only user; they have no password to check.
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	s.touchLastLogin(ctx, u.ID)
	return u, nil
}

type bootstrapParams struct {
	name       string
	email      string
	password   string // already hashed; empty for federated accounts
	provider   string
	providerID string
	picture    string
}

// bootstrap writes the five documents a new user needs: the user, the
// provider account, the starter workspace, the OWNER membership, and the
// current_workspace pointer. All of it commits or none of it does.
func (s *Store) bootstrap(ctx context.Context, p bootstrapParams) (*models.User, error) {
	ownerRole, err := s.roleByName(ctx, models.RoleOwner)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	wsID := primitive.NewObjectID()

	u := models.User{
		ID:               primitive.NewObjectID(),
		Name:             p.name,
		Email:            p.email,
		Password:         p.password,
		ProfilePicture:   p.picture,
		CurrentWorkspace: &wsID,
		LastLogin:        now,
	}

	err = txn.Run(ctx, s.db, s.log, func(ctx context.Context) error {
		created, err := s.users.Create(ctx, u)
		if err != nil {
			if errors.Is(err, userstore.ErrDuplicateEmail) {
				return ErrEmailTaken
			}
			return err
		}
		u = created
		acct := models.Account{
			ID:         primitive.NewObjectID(),
			UserID:     u.ID,
			Provider:   p.provider,
			ProviderID: p.providerID,
			CreatedAt:  now,
		}
		if _, err := s.accounts.InsertOne(ctx, acct); err != nil {
			return err
		}
		ws := models.Workspace{
			ID:          wsID,
			Name:        starterWorkspaceName,
			NameCI:      text.Fold(starterWorkspaceName),
			Description: "Workspace created for " + u.Name,
			Owner:       u.ID,
			InviteCode:  codes.InviteCode(),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if _, err := s.workspaces.InsertOne(ctx, ws); err != nil {
			return err
		}
		member := models.Member{
			ID:          primitive.NewObjectID(),
			UserID:      u.ID,
			WorkspaceID: wsID,
			RoleID:      ownerRole.ID,
			JoinedAt:    now,
		}
		_, err = s.members.InsertOne(ctx, member)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// touchLastLogin is best-effort; a failed stamp should not fail the login.
func (s *Store) touchLastLogin(ctx context.Context, id primitive.ObjectID) {
	if err := s.users.TouchLastLogin(ctx, id); err != nil {
		s.log.Warn("failed to record last login", zap.String("user_id", id.Hex()), zap.Error(err))
	}
}

func (s *Store) roleByName(ctx context.Context, name string) (*models.Role, error) {
	var r models.Role
	if err := s.roles.FindOne(ctx, bson.M{"name": name}).Decode(&r); err != nil {
		return nil, err
	}
	return &r, nil
}
