package codes

import (
	"strings"
	"testing"
)

func TestInviteCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		c := InviteCode()
		if len(c) != 8 {
			t.Fatalf("InviteCode() = %q, want 8 chars", c)
		}
		if strings.Contains(c, "-") {
			t.Fatalf("InviteCode() = %q, contains dash", c)
		}
		for _, r := range c {
			if !strings.ContainsRune("0123456789abcdef", r) {
				t.Fatalf("InviteCode() = %q, unexpected rune %q", c, r)
			}
		}
		seen[c] = true
	}
	if len(seen) < 90 {
		t.Fatalf("expected near-unique codes, got %d distinct of 100", len(seen))
	}
}

func TestTaskCode(t *testing.T) {
	c := TaskCode()
	if !strings.HasPrefix(c, "task-") {
		t.Fatalf("TaskCode() = %q, want task- prefix", c)
	}
	if len(c) != len("task-")+3 {
		t.Fatalf("TaskCode() = %q, want 3 char suffix", c)
	}
}
