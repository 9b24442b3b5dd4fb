package accountstore_test

import (
	"errors"
	"testing"
	"time"

	accountstore "github.com/taskhive-dev/taskhive/internal/app/store/accounts"
	"github.com/taskhive-dev/taskhive/internal/app/system/indexes"
	"github.com/taskhive-dev/taskhive/internal/domain/models"
	"github.com/taskhive-dev/taskhive/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func setup(t *testing.T) (*accountstore.Store, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	fx := testutil.NewFixtures(t, db)
	fx.SeedRoles(ctx)
	return accountstore.New(db, zap.NewNop()), fx
}

func TestRegister_BootstrapsEverything(t *testing.T) {
	store, fx := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u, err := store.Register(ctx, "Ada Lovelace", "Ada@Example.COM", "correct-horse")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if u.Email != "ada@example.com" {
		t.Errorf("email not normalized: got %q", u.Email)
	}
	if u.CurrentWorkspace == nil {
		t.Fatal("expected current_workspace to be set at signup")
	}
	if !u.IsActive {
		t.Error("expected new user to be active")
	}

	db := fx.DB()

	// The provider account link.
	var acct models.Account
	if err := db.Collection("accounts").FindOne(ctx, bson.M{"user_id": u.ID}).Decode(&acct); err != nil {
		t.Fatalf("account not created: %v", err)
	}
	if acct.Provider != models.ProviderEmail {
		t.Errorf("provider: got %q, want %q", acct.Provider, models.ProviderEmail)
	}
	if acct.ProviderID != "ada@example.com" {
		t.Errorf("provider_id: got %q, want the email", acct.ProviderID)
	}

	// The starter workspace, owned by the new user.
	var ws models.Workspace
	if err := db.Collection("workspaces").FindOne(ctx, bson.M{"_id": *u.CurrentWorkspace}).Decode(&ws); err != nil {
		t.Fatalf("starter workspace not created: %v", err)
	}
	if ws.Name != "My Workspace" {
		t.Errorf("workspace name: got %q, want %q", ws.Name, "My Workspace")
	}
	if ws.Owner != u.ID {
		t.Error("starter workspace not owned by the new user")
	}
	if ws.InviteCode == "" {
		t.Error("starter workspace has no invite code")
	}

	// The OWNER membership.
	var m models.Member
	if err := db.Collection("members").FindOne(ctx, bson.M{"user_id": u.ID, "workspace_id": ws.ID}).Decode(&m); err != nil {
		t.Fatalf("membership not created: %v", err)
	}
	var role models.Role
	if err := db.Collection("roles").FindOne(ctx, bson.M{"_id": m.RoleID}).Decode(&role); err != nil {
		t.Fatalf("role lookup failed: %v", err)
	}
	if role.Name != models.RoleOwner {
		t.Errorf("membership role: got %q, want %q", role.Name, models.RoleOwner)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	store, fx := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Register(ctx, "First", "taken@test.com", "password1"); err != nil {
		t.Fatalf("first Register failed: %v", err)
	}

	_, err := store.Register(ctx, "Second", "taken@test.com", "password2")
	if !errors.Is(err, accountstore.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	// The failed registration must leave no partial documents behind.
	db := fx.DB()
	for coll, want := range map[string]int64{
		"users":      1,
		"accounts":   1,
		"workspaces": 1,
		"members":    1,
	} {
		n, err := db.Collection(coll).CountDocuments(ctx, bson.M{})
		if err != nil {
			t.Fatalf("count %s: %v", coll, err)
		}
		if n != want {
			t.Errorf("%s: got %d docs, want %d after failed registration", coll, n, want)
		}
	}
}

func TestVerifyCredentials(t *testing.T) {
	store, _ := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Register(ctx, "Grace", "grace@test.com", "hopper-rules"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	u, err := store.VerifyCredentials(ctx, "GRACE@test.com", "hopper-rules")
	if err != nil {
		t.Fatalf("VerifyCredentials failed: %v", err)
	}
	if u.Email != "grace@test.com" {
		t.Errorf("got user %q", u.Email)
	}

	// Wrong password, unknown email, and a federated-only account all
	// collapse into the same error.
	if _, err := store.VerifyCredentials(ctx, "grace@test.com", "wrong"); !errors.Is(err, accountstore.ErrInvalidCredentials) {
		t.Errorf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := store.VerifyCredentials(ctx, "unknown@test.com", "whatever"); !errors.Is(err, accountstore.ErrInvalidCredentials) {
		t.Errorf("unknown email: expected ErrInvalidCredentials, got %v", err)
	}
}

func TestVerifyCredentials_FederatedOnlyUser(t *testing.T) {
	store, _ := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.LoginOrCreate(ctx, models.ProviderGoogle, "google-123", "Fed User", "fed@test.com", "")
	if err != nil {
		t.Fatalf("LoginOrCreate failed: %v", err)
	}

	_, err = store.VerifyCredentials(ctx, "fed@test.com", "")
	if !errors.Is(err, accountstore.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for federated-only user, got %v", err)
	}
}

func TestLoginOrCreate_ExistingAccountSignsIn(t *testing.T) {
	store, fx := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	first, err := store.LoginOrCreate(ctx, models.ProviderGoogle, "google-789", "Returning", "ret@test.com", "pic.png")
	if err != nil {
		t.Fatalf("first LoginOrCreate failed: %v", err)
	}

	second, err := store.LoginOrCreate(ctx, models.ProviderGoogle, "google-789", "Returning", "ret@test.com", "pic.png")
	if err != nil {
		t.Fatalf("second LoginOrCreate failed: %v", err)
	}

	if first.ID != second.ID {
		t.Error("expected the same user on repeat login")
	}

	// Still exactly one of everything.
	db := fx.DB()
	n, err := db.Collection("users").CountDocuments(ctx, bson.M{})
	if err != nil {
		t.Fatalf("count users: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 user, got %d", n)
	}
}

func TestLoginOrCreate_ExistingEmailDifferentProvider(t *testing.T) {
	store, fx := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	registered, err := store.Register(ctx, "Early Bird", "early@test.com", "first-provider")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	// The same email arriving through Google signs in as the existing
	// user; the first provider keeps the account.
	got, err := store.LoginOrCreate(ctx, models.ProviderGoogle, "google-5150", "Early B.", "Early@Test.com", "new-pic.png")
	if err != nil {
		t.Fatalf("LoginOrCreate with existing email failed: %v", err)
	}
	if got.ID != registered.ID {
		t.Errorf("expected existing user %s, got %s", registered.ID.Hex(), got.ID.Hex())
	}
	if got.Name != registered.Name {
		t.Errorf("user was modified on federated sign-in: name %q", got.Name)
	}

	db := fx.DB()
	for coll, want := range map[string]int64{
		"users":      1,
		"accounts":   1,
		"workspaces": 1,
		"members":    1,
	} {
		n, err := db.Collection(coll).CountDocuments(ctx, bson.M{})
		if err != nil {
			t.Fatalf("count %s: %v", coll, err)
		}
		if n != want {
			t.Errorf("%s: got %d docs, want %d", coll, n, want)
		}
	}

	var acct models.Account
	if err := db.Collection("accounts").FindOne(ctx, bson.M{"user_id": registered.ID}).Decode(&acct); err != nil {
		t.Fatalf("account lookup failed: %v", err)
	}
	if acct.Provider != models.ProviderEmail {
		t.Errorf("account provider changed: got %q, want %q", acct.Provider, models.ProviderEmail)
	}
}

func TestRegister_MidBootstrapFailureRollsBack(t *testing.T) {
	store, fx := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// Occupy the (provider, provider_id) slot the registration will want.
	// The user insert inside the transaction then succeeds and the account
	// insert fails, which must roll everything back.
	squatter := models.Account{
		ID:         primitive.NewObjectID(),
		UserID:     primitive.NewObjectID(),
		Provider:   models.ProviderEmail,
		ProviderID: "clash@test.com",
		CreatedAt:  time.Now(),
	}
	db := fx.DB()
	if _, err := db.Collection("accounts").InsertOne(ctx, squatter); err != nil {
		t.Fatalf("seeding conflicting account failed: %v", err)
	}

	if _, err := store.Register(ctx, "Clash", "clash@test.com", "password1"); err == nil {
		t.Fatal("expected Register to fail on the account insert")
	}

	n, err := db.Collection("users").CountDocuments(ctx, bson.M{"email": "clash@test.com"})
	if err != nil {
		t.Fatalf("count users: %v", err)
	}
	if n != 0 {
		t.Errorf("user document survived an aborted bootstrap (%d found)", n)
	}
	for coll, want := range map[string]int64{
		"accounts":   1, // only the squatter
		"workspaces": 0,
		"members":    0,
	} {
		got, err := db.Collection(coll).CountDocuments(ctx, bson.M{})
		if err != nil {
			t.Fatalf("count %s: %v", coll, err)
		}
		if got != want {
			t.Errorf("%s: got %d docs, want %d after aborted bootstrap", coll, got, want)
		}
	}
}
