// internal/app/features/tasks/list.go
package tasks

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	taskstore "github.com/taskhive-dev/taskhive/internal/app/store/tasks"
	"github.com/taskhive-dev/taskhive/internal/app/system/authz"
	"github.com/taskhive-dev/taskhive/internal/app/system/httpjson"
	"github.com/taskhive-dev/taskhive/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
)

// ServeList returns the workspace's tasks, filtered and paginated.
// Filters arrive as query params: projectId, status, priority, assignedTo
// (the last three accept comma-separated lists), keyword, and dueDate
// (RFC 3339; matches that calendar day).
//
// Route: GET /workspaces/{workspaceID}/tasks
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	res := h.Gate.RequireWorkspace(w, r, authz.ViewOnly)
	if !res.OK {
		return
	}

	f, ok := parseFilter(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	page, err := h.Tasks.List(ctx, res.WorkspaceID, f,
		listIntParam(r, "pageNumber", 1), listIntParam(r, "pageSize", 10))
	if err != nil {
		httpjson.Internal(w, h.Log, "list tasks failed", err)
		return
	}
	httpjson.JSON(w, http.StatusOK, page)
}

func parseFilter(w http.ResponseWriter, r *http.Request) (taskstore.Filter, bool) {
	var f taskstore.Filter

	if v := query.Get(r, "projectId"); v != "" {
		id, err := primitive.ObjectIDFromHex(v)
		if err != nil {
			httpjson.Message(w, http.StatusBadRequest, "bad projectId")
			return taskstore.Filter{}, false
		}
		f.ProjectID = &id
	}
	f.Status = splitList(query.Get(r, "status"))
	f.Priority = splitList(query.Get(r, "priority"))
	for _, hex := range splitList(query.Get(r, "assignedTo")) {
		id, err := primitive.ObjectIDFromHex(hex)
		if err != nil {
			httpjson.Message(w, http.StatusBadRequest, "bad assignedTo")
			return taskstore.Filter{}, false
		}
		f.AssignedTo = append(f.AssignedTo, id)
	}
	f.Keyword = query.Get(r, "keyword")
	if v := query.Get(r, "dueDate"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			httpjson.Message(w, http.StatusBadRequest, "bad dueDate")
			return taskstore.Filter{}, false
		}
		f.DueDate = &t
	}
	return f, true
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func listIntParam(r *http.Request, name string, fallback int64) int64 {
	v := query.Get(r, name)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}
