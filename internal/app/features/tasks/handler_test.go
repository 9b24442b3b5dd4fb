package tasks_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	tasksfeature "github.com/taskhive-dev/taskhive/internal/app/features/tasks"
	memberstore "github.com/taskhive-dev/taskhive/internal/app/store/members"
	projectstore "github.com/taskhive-dev/taskhive/internal/app/store/projects"
	taskstore "github.com/taskhive-dev/taskhive/internal/app/store/tasks"
	"github.com/taskhive-dev/taskhive/internal/app/system/gates"
	"github.com/taskhive-dev/taskhive/internal/domain/models"
	"github.com/taskhive-dev/taskhive/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type env struct {
	h       *tasksfeature.Handler
	fx      *testutil.Fixtures
	roles   map[string]primitive.ObjectID
	owner   models.User
	ws      models.Workspace
	project models.Project
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

	logger := zap.NewNop()
	h := tasksfeature.NewHandler(
		taskstore.New(db, logger),
		projectstore.New(db, logger),
		gates.New(memberstore.New(db)),
		logger)

	return env{h: h, fx: fx, roles: roles, owner: owner, ws: ws, project: project}
}

func (e env) taskRequest(method, target string, body any, u models.User, projectID string, extra ...string) *http.Request {
	r := testutil.NewJSONRequest(method, target, body)
	r = testutil.WithUser(r, u)
	r = testutil.WithChiURLParam(r, "workspaceID", e.ws.ID.Hex())
	r = testutil.WithChiURLParam(r, "projectID", projectID)
	for i := 0; i+1 < len(extra); i += 2 {
		r = testutil.WithChiURLParam(r, extra[i], extra[i+1])
	}
	return r
}

func TestHandleCreate(t *testing.T) {
	e := setup(t)

	r := e.taskRequest(http.MethodPost, "/tasks", map[string]any{
		"title":    "Ship the beta",
		"priority": models.TaskPriorityHigh,
	}, e.owner, e.project.ID.Hex())
	rec := httptest.NewRecorder()
	e.h.HandleCreate(rec, r)

	testutil.AssertStatus(t, rec, http.StatusCreated)

	var body struct {
		Task models.Task `json:"task"`
	}
	testutil.DecodeJSON(t, rec, &body)
	if body.Task.Title != "Ship the beta" {
		t.Errorf("title: got %q", body.Task.Title)
	}
	if body.Task.Priority != models.TaskPriorityHigh {
		t.Errorf("priority: got %q", body.Task.Priority)
	}
	if body.Task.CreatedBy != e.owner.ID {
		t.Error("created_by should be the caller")
	}
}

func TestHandleCreate_ProjectMissing(t *testing.T) {
	e := setup(t)

	r := e.taskRequest(http.MethodPost, "/tasks", map[string]any{"title": "orphan"},
		e.owner, primitive.NewObjectID().Hex())
	rec := httptest.NewRecorder()
	e.h.HandleCreate(rec, r)

	testutil.AssertStatus(t, rec, http.StatusNotFound)
}

func TestHandleCreate_Validation(t *testing.T) {
	e := setup(t)

	cases := []struct {
		name string
		body map[string]any
		want string
	}{
		{"missing title", map[string]any{"description": "no title"}, "title is required"},
		{"bad status", map[string]any{"title": "x", "status": "SOMEDAY"}, "status"},
		{"bad priority", map[string]any{"title": "x", "priority": "URGENT"}, "priority"},
		{"bad assignee hex", map[string]any{"title": "x", "assigned_to": "zzz"}, "bad assignee id"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := e.taskRequest(http.MethodPost, "/tasks", tc.body, e.owner, e.project.ID.Hex())
			rec := httptest.NewRecorder()
			e.h.HandleCreate(rec, r)

			testutil.AssertStatus(t, rec, http.StatusBadRequest)
			testutil.AssertMessage(t, rec, tc.want)
		})
	}
}

func TestHandleCreate_AssigneeNotMember(t *testing.T) {
	e := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	outsider := e.fx.CreateUser(ctx, "Outsider", "out@test.com")

	r := e.taskRequest(http.MethodPost, "/tasks", map[string]any{
		"title":       "unassignable",
		"assigned_to": outsider.ID.Hex(),
	}, e.owner, e.project.ID.Hex())
	rec := httptest.NewRecorder()
	e.h.HandleCreate(rec, r)

	testutil.AssertStatus(t, rec, http.StatusNotFound)
	testutil.AssertMessage(t, rec, "member")
}

func TestServeView(t *testing.T) {
	e := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	task := e.fx.CreateTask(ctx, "Find me", e.ws.ID, e.project.ID, e.owner.ID)

	r := e.taskRequest(http.MethodGet, "/tasks/"+task.ID.Hex(), nil,
		e.owner, e.project.ID.Hex(), "taskID", task.ID.Hex())
	rec := httptest.NewRecorder()
	e.h.ServeView(rec, r)

	testutil.AssertStatus(t, rec, http.StatusOK)

	var body struct {
		Task models.Task `json:"task"`
	}
	testutil.DecodeJSON(t, rec, &body)
	if body.Task.ID != task.ID {
		t.Errorf("got task %s, want %s", body.Task.ID.Hex(), task.ID.Hex())
	}
}

func TestServeView_WrongProject(t *testing.T) {
	e := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	task := e.fx.CreateTask(ctx, "Elsewhere", e.ws.ID, e.project.ID, e.owner.ID)
	other := e.fx.CreateProject(ctx, "Other", e.ws.ID, e.owner.ID)

	r := e.taskRequest(http.MethodGet, "/tasks/"+task.ID.Hex(), nil,
		e.owner, other.ID.Hex(), "taskID", task.ID.Hex())
	rec := httptest.NewRecorder()
	e.h.ServeView(rec, r)

	testutil.AssertStatus(t, rec, http.StatusNotFound)
}

func TestHandleUpdate(t *testing.T) {
	e := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	task := e.fx.CreateTask(ctx, "Draft", e.ws.ID, e.project.ID, e.owner.ID)

	r := e.taskRequest(http.MethodPut, "/tasks/"+task.ID.Hex(), map[string]any{
		"title":  "Final",
		"status": models.TaskStatusDone,
	}, e.owner, e.project.ID.Hex(), "taskID", task.ID.Hex())
	rec := httptest.NewRecorder()
	e.h.HandleUpdate(rec, r)

	testutil.AssertStatus(t, rec, http.StatusOK)

	var body struct {
		Task models.Task `json:"task"`
	}
	testutil.DecodeJSON(t, rec, &body)
	if body.Task.Title != "Final" || body.Task.Status != models.TaskStatusDone {
		t.Errorf("update not applied: %+v", body.Task)
	}
	if body.Task.CompletedAt == nil {
		t.Error("moving to DONE should stamp completed_at")
	}
}

func TestHandleUpdate_MemberRoleAllowed(t *testing.T) {
	e := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	member := e.fx.CreateUser(ctx, "Member", "member@test.com")
	e.fx.AddMember(ctx, member.ID, e.ws.ID, e.roles[models.RoleMember])
	task := e.fx.CreateTask(ctx, "Shared", e.ws.ID, e.project.ID, e.owner.ID)

	r := e.taskRequest(http.MethodPut, "/tasks/"+task.ID.Hex(), map[string]any{
		"title": "Edited by member",
	}, member, e.project.ID.Hex(), "taskID", task.ID.Hex())
	rec := httptest.NewRecorder()
	e.h.HandleUpdate(rec, r)

	testutil.AssertStatus(t, rec, http.StatusOK)
}

func TestHandleDelete_MemberRoleForbidden(t *testing.T) {
	e := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	member := e.fx.CreateUser(ctx, "Member", "member@test.com")
	e.fx.AddMember(ctx, member.ID, e.ws.ID, e.roles[models.RoleMember])
	task := e.fx.CreateTask(ctx, "Protected", e.ws.ID, e.project.ID, e.owner.ID)

	r := e.taskRequest(http.MethodDelete, "/tasks/"+task.ID.Hex(), nil,
		member, e.project.ID.Hex(), "taskID", task.ID.Hex())
	rec := httptest.NewRecorder()
	e.h.HandleDelete(rec, r)

	testutil.AssertStatus(t, rec, http.StatusForbidden)
}

func TestHandleDelete(t *testing.T) {
	e := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	task := e.fx.CreateTask(ctx, "Doomed", e.ws.ID, e.project.ID, e.owner.ID)

	r := e.taskRequest(http.MethodDelete, "/tasks/"+task.ID.Hex(), nil,
		e.owner, e.project.ID.Hex(), "taskID", task.ID.Hex())
	rec := httptest.NewRecorder()
	e.h.HandleDelete(rec, r)

	testutil.AssertStatus(t, rec, http.StatusOK)

	r = e.taskRequest(http.MethodGet, "/tasks/"+task.ID.Hex(), nil,
		e.owner, e.project.ID.Hex(), "taskID", task.ID.Hex())
	rec = httptest.NewRecorder()
	e.h.ServeView(rec, r)
	testutil.AssertStatus(t, rec, http.StatusNotFound)
}

func TestServeList_Filters(t *testing.T) {
	e := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	e.fx.CreateTaskWith(ctx, models.Task{
		Title: "todo one", WorkspaceID: e.ws.ID, ProjectID: e.project.ID,
		CreatedBy: e.owner.ID, Status: models.TaskStatusTodo,
	})
	e.fx.CreateTaskWith(ctx, models.Task{
		Title: "done one", WorkspaceID: e.ws.ID, ProjectID: e.project.ID,
		CreatedBy: e.owner.ID, Status: models.TaskStatusDone,
	})

	r := testutil.NewJSONRequest(http.MethodGet, "/tasks?status="+models.TaskStatusDone, nil)
	r = testutil.WithUser(r, e.owner)
	r = testutil.WithChiURLParam(r, "workspaceID", e.ws.ID.Hex())
	rec := httptest.NewRecorder()
	e.h.ServeList(rec, r)

	testutil.AssertStatus(t, rec, http.StatusOK)

	var page taskstore.Page
	testutil.DecodeJSON(t, rec, &page)
	if page.TotalCount != 1 {
		t.Errorf("filtered total: got %d, want 1", page.TotalCount)
	}
	if len(page.Tasks) != 1 || page.Tasks[0].Title != "done one" {
		t.Errorf("filtered tasks: got %+v", page.Tasks)
	}
}

func TestServeList_BadDueDate(t *testing.T) {
	e := setup(t)

	r := testutil.NewJSONRequest(http.MethodGet, "/tasks?dueDate=tomorrow", nil)
	r = testutil.WithUser(r, e.owner)
	r = testutil.WithChiURLParam(r, "workspaceID", e.ws.ID.Hex())
	rec := httptest.NewRecorder()
	e.h.ServeList(rec, r)

	testutil.AssertStatus(t, rec, http.StatusBadRequest)
	testutil.AssertMessage(t, rec, "dueDate")
}
