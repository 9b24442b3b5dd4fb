// internal/app/features/tasks/handler.go
package tasks

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	projectstore "github.com/taskhive-dev/taskhive/internal/app/store/projects"
	taskstore "github.com/taskhive-dev/taskhive/internal/app/store/tasks"
	"github.com/taskhive-dev/taskhive/internal/app/system/gates"
	"github.com/taskhive-dev/taskhive/internal/app/system/httpjson"
)

// Handler is the feature-level entry point for tasks.
type Handler struct {
	Tasks    *taskstore.Store
	Projects *projectstore.Store
	Gate     *gates.Gate
	Log      *zap.Logger
}

func NewHandler(tasks *taskstore.Store, projects *projectstore.Store, gate *gates.Gate, logger *zap.Logger) *Handler {
	return &Handler{Tasks: tasks, Projects: projects, Gate: gate, Log: logger}
}

type taskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	AssignedTo  string     `json:"assigned_to"`
	DueDate     *time.Time `json:"due_date"`
}

// input converts the wire request into store input, parsing the optional
// assignee. Reports a bad hex with ok=false after writing the error.
func (req taskRequest) input(w http.ResponseWriter) (taskstore.Input, bool) {
	in := taskstore.Input{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
	}
	if req.AssignedTo != "" {
		id, err := primitive.ObjectIDFromHex(req.AssignedTo)
		if err != nil {
			httpjson.Message(w, http.StatusBadRequest, "bad assignee id")
			return taskstore.Input{}, false
		}
		in.AssignedTo = &id
	}
	return in, true
}

// pathID parses one ObjectID route param.
func pathID(w http.ResponseWriter, r *http.Request, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, name))
	if err != nil {
		httpjson.Message(w, http.StatusBadRequest, "bad "+name)
		return primitive.NilObjectID, false
	}
	return id, true
}
