// Package codes generates the short opaque identifiers used for
// workspace invites and task labels.
package codes

import (
	"strings"

	"github.com/google/uuid"
)

// InviteCode returns an 8 character join code for a workspace.
func InviteCode() string {
	return short(8)
}

// TaskCode returns a short display label for a task, e.g. "task-4f2".
func TaskCode() string {
	return "task-" + short(3)
}

func short(n int) string {
	s := strings.ReplaceAll(uuid.NewString(), "-", "")
	return s[:n]
}
