// Package normalize centralizes input normalization so that lookups and
// stored values agree on casing and whitespace.
package normalize

import "strings"

// Email lowercases and trims an email address. Emails are compared
// case-insensitively everywhere, so every write and every lookup must go
// through this.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding whitespace but preserves case.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// Role trims and uppercases a role name (OWNER, ADMIN, MEMBER).
func Role(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// QueryParam trims a raw query or form value.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}
