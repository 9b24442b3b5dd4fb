package gates_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	memberstore "github.com/taskhive-dev/taskhive/internal/app/store/members"
	"github.com/taskhive-dev/taskhive/internal/app/system/authz"
	"github.com/taskhive-dev/taskhive/internal/app/system/gates"
	"github.com/taskhive-dev/taskhive/internal/domain/models"
	"github.com/taskhive-dev/taskhive/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type env struct {
	gate  *gates.Gate
	fx    *testutil.Fixtures
	roles map[string]primitive.ObjectID
	ws    models.Workspace
	owner models.User
}

func setup(t *testing.T) env {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	roles := fx.SeedRoles(ctx)

	owner := fx.CreateUser(ctx, "Owner", "owner@test.com")
	ws := fx.CreateWorkspace(ctx, "Acme", owner.ID)
	fx.AddMember(ctx, owner.ID, ws.ID, roles[models.RoleOwner])

	return env{
		gate:  gates.New(memberstore.New(db)),
		fx:    fx,
		roles: roles,
		ws:    ws,
		owner: owner,
	}
}

func (e env) request(u models.User, wsID string) (*httptest.ResponseRecorder, *http.Request) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r = testutil.WithUser(r, u)
	r = testutil.WithChiURLParam(r, "workspaceID", wsID)
	return httptest.NewRecorder(), r
}

func TestRequireWorkspace_OwnerPasses(t *testing.T) {
	e := setup(t)

	rec, r := e.request(e.owner, e.ws.ID.Hex())
	res := e.gate.RequireWorkspace(rec, r, authz.DeleteWorkspace)
	if !res.OK {
		t.Fatalf("owner should pass, response: %d %s", rec.Code, rec.Body.String())
	}
	if res.Role != models.RoleOwner {
		t.Errorf("role: got %q, want OWNER", res.Role)
	}
	if res.UserID != e.owner.ID || res.WorkspaceID != e.ws.ID {
		t.Error("resolved identity does not match the request")
	}
}

func TestRequireWorkspace_NoSession(t *testing.T) {
	e := setup(t)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r = testutil.WithChiURLParam(r, "workspaceID", e.ws.ID.Hex())
	rec := httptest.NewRecorder()

	res := e.gate.RequireWorkspace(rec, r, authz.ViewOnly)
	if res.OK {
		t.Fatal("anonymous request should not pass")
	}
	testutil.AssertStatus(t, rec, http.StatusUnauthorized)
}

func TestRequireWorkspace_WorkspaceMissing(t *testing.T) {
	e := setup(t)

	rec, r := e.request(e.owner, primitive.NewObjectID().Hex())
	if res := e.gate.RequireWorkspace(rec, r, authz.ViewOnly); res.OK {
		t.Fatal("missing workspace should not pass")
	}
	testutil.AssertStatus(t, rec, http.StatusNotFound)
}

func TestRequireWorkspace_NotMember(t *testing.T) {
	e := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	outsider := e.fx.CreateUser(ctx, "Outsider", "out@test.com")

	rec, r := e.request(outsider, e.ws.ID.Hex())
	if res := e.gate.RequireWorkspace(rec, r, authz.ViewOnly); res.OK {
		t.Fatal("non-member should not pass")
	}
	testutil.AssertStatus(t, rec, http.StatusUnauthorized)
}

func TestRequireWorkspace_InsufficientRole(t *testing.T) {
	e := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	member := e.fx.CreateUser(ctx, "Member", "member@test.com")
	e.fx.AddMember(ctx, member.ID, e.ws.ID, e.roles[models.RoleMember])

	rec, r := e.request(member, e.ws.ID.Hex())
	if res := e.gate.RequireWorkspace(rec, r, authz.DeleteWorkspace); res.OK {
		t.Fatal("MEMBER should not hold DELETE_WORKSPACE")
	}
	testutil.AssertStatus(t, rec, http.StatusForbidden)

	// The same member does hold task permissions.
	rec, r = e.request(member, e.ws.ID.Hex())
	if res := e.gate.RequireWorkspace(rec, r, authz.CreateTask); !res.OK {
		t.Fatalf("MEMBER should hold CREATE_TASK, response: %d %s", rec.Code, rec.Body.String())
	}
}

func TestRequireWorkspace_BadWorkspaceID(t *testing.T) {
	e := setup(t)

	rec, r := e.request(e.owner, "not-an-object-id")
	if res := e.gate.RequireWorkspace(rec, r, authz.ViewOnly); res.OK {
		t.Fatal("malformed workspace id should not pass")
	}
	testutil.AssertStatus(t, rec, http.StatusBadRequest)
}
