package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Task statuses.
const (
	TaskStatusBacklog    = "BACKLOG"
	TaskStatusTodo       = "TODO"
	TaskStatusInProgress = "IN_PROGRESS"
	TaskStatusInReview   = "IN_REVIEW"
	TaskStatusDone       = "DONE"
)

// Task priorities.
const (
	TaskPriorityLow    = "LOW"
	TaskPriorityMedium = "MEDIUM"
	TaskPriorityHigh   = "HIGH"
)

// TaskStatuses is the canonical status list, in board order.
var TaskStatuses = []string{
	TaskStatusBacklog,
	TaskStatusTodo,
	TaskStatusInProgress,
	TaskStatusInReview,
	TaskStatusDone,
}

// TaskPriorities is the canonical priority list, lowest first.
var TaskPriorities = []string{TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh}

// IsValidTaskStatus reports whether s is one of the task statuses.
func IsValidTaskStatus(s string) bool {
	switch s {
	case TaskStatusBacklog, TaskStatusTodo, TaskStatusInProgress, TaskStatusInReview, TaskStatusDone:
		return true
	}
	return false
}

// IsValidTaskPriority reports whether p is one of the task priorities.
func IsValidTaskPriority(p string) bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	}
	return false
}

// Task belongs to exactly one project and one workspace, and those must
// agree: task.WorkspaceID == project.WorkspaceID. AssignedTo, when set,
// must be a member of the task's workspace.
type Task struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	TaskCode    string              `bson:"task_code" json:"task_code"`
	Title       string              `bson:"title" json:"title"`
	Description string              `bson:"description,omitempty" json:"description,omitempty"`
	ProjectID   primitive.ObjectID  `bson:"project_id" json:"project_id"`
	WorkspaceID primitive.ObjectID  `bson:"workspace_id" json:"workspace_id"`
	Priority    string              `bson:"priority" json:"priority"`
	Status      string              `bson:"status" json:"status"`
	AssignedTo  *primitive.ObjectID `bson:"assigned_to,omitempty" json:"assigned_to,omitempty"`
	CreatedBy   primitive.ObjectID  `bson:"created_by" json:"created_by"`
	DueDate     *time.Time          `bson:"due_date,omitempty" json:"due_date,omitempty"`

	// CompletedAt is stamped when status transitions to DONE and cleared
	// when it leaves DONE; analytics derives completion latency from it.
	CompletedAt *time.Time `bson:"completed_at,omitempty" json:"completed_at,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
