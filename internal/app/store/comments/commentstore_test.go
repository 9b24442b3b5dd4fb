package commentstore_test

import (
	"errors"
	"testing"

	commentstore "github.com/taskhive-dev/taskhive/internal/app/store/comments"
	"github.com/taskhive-dev/taskhive/internal/domain/models"
	"github.com/taskhive-dev/taskhive/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type env struct {
	store *commentstore.Store
	fx    *testutil.Fixtures
	owner models.User
	ws    models.Workspace
	task  models.Task
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
	project := fx.CreateProject(ctx, "Launch", ws.ID, owner.ID)
	task := fx.CreateTask(ctx, "Ship it", ws.ID, project.ID, owner.ID)

	return env{
		store: commentstore.New(db),
		fx:    fx,
		owner: owner,
		ws:    ws,
		task:  task,
	}
}

func TestCreate(t *testing.T) {
	e := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	cm, err := e.store.Create(ctx, e.ws.ID, e.task.ID, e.owner.ID, "looks good", []string{"https://cdn.test/shot.png"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if cm.Message != "looks good" {
		t.Errorf("message: got %q", cm.Message)
	}
	if len(cm.Attachments) != 1 {
		t.Errorf("attachments: got %d, want 1", len(cm.Attachments))
	}
	if cm.TaskID != e.task.ID || cm.WorkspaceID != e.ws.ID || cm.UserID != e.owner.ID {
		t.Error("comment not bound to task, workspace, and author")
	}
}

func TestGetByID_ScopedToWorkspace(t *testing.T) {
	e := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	cm := e.fx.CreateComment(ctx, e.task.ID, e.ws.ID, e.owner.ID, "hello")

	got, err := e.store.GetByID(ctx, e.ws.ID, cm.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.ID != cm.ID {
		t.Errorf("got comment %s, want %s", got.ID.Hex(), cm.ID.Hex())
	}

	if _, err := e.store.GetByID(ctx, primitive.NewObjectID(), cm.ID); !errors.Is(err, commentstore.ErrNotFound) {
		t.Errorf("cross-workspace lookup: got %v, want ErrNotFound", err)
	}
}

func TestUpdate_AuthorOnly(t *testing.T) {
	e := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	other := e.fx.CreateUser(ctx, "Other", "other@test.com")
	cm := e.fx.CreateComment(ctx, e.task.ID, e.ws.ID, e.owner.ID, "first draft")

	got, err := e.store.Update(ctx, e.ws.ID, cm.ID, e.owner.ID, "second draft")
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if got.Message != "second draft" {
		t.Errorf("message not updated: got %q", got.Message)
	}

	if _, err := e.store.Update(ctx, e.ws.ID, cm.ID, other.ID, "hijacked"); !errors.Is(err, commentstore.ErrNotFound) {
		t.Errorf("non-author update: got %v, want ErrNotFound", err)
	}

	fresh, err := e.store.GetByID(ctx, e.ws.ID, cm.ID)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if fresh.Message != "second draft" {
		t.Errorf("non-author update leaked through: got %q", fresh.Message)
	}
}

func TestDelete(t *testing.T) {
	e := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	cm := e.fx.CreateComment(ctx, e.task.ID, e.ws.ID, e.owner.ID, "delete me")

	if err := e.store.Delete(ctx, e.ws.ID, cm.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := e.store.GetByID(ctx, e.ws.ID, cm.ID); !errors.Is(err, commentstore.ErrNotFound) {
		t.Errorf("comment still present: %v", err)
	}
	if err := e.store.Delete(ctx, e.ws.ID, cm.ID); !errors.Is(err, commentstore.ErrNotFound) {
		t.Errorf("second delete: got %v, want ErrNotFound", err)
	}
}

func TestListForTask(t *testing.T) {
	e := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	other := e.fx.CreateUser(ctx, "Grace", "grace@test.com")
	first := e.fx.CreateComment(ctx, e.task.ID, e.ws.ID, e.owner.ID, "first")
	second := e.fx.CreateComment(ctx, e.task.ID, e.ws.ID, other.ID, "second")

	// A comment on a different task must not show up.
	project := e.fx.CreateProject(ctx, "Side", e.ws.ID, e.owner.ID)
	otherTask := e.fx.CreateTask(ctx, "Elsewhere", e.ws.ID, project.ID, e.owner.ID)
	e.fx.CreateComment(ctx, otherTask.ID, e.ws.ID, e.owner.ID, "noise")

	list, err := e.store.ListForTask(ctx, e.ws.ID, e.task.ID)
	if err != nil {
		t.Fatalf("ListForTask failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("got %d comments, want 2", len(list))
	}
	if list[0].ID != first.ID || list[1].ID != second.ID {
		t.Error("comments not in oldest-first order")
	}
	if list[1].Author.ID != other.ID || list[1].Author.Name != "Grace" {
		t.Errorf("author join: got %+v", list[1].Author)
	}
}
