// Package inputval validates user-supplied identity fields before they
// reach a store. Normalization (trimming, case folding) lives in
// normalize; this package only answers yes or no.
package inputval

import (
	"net/mail"
	"strings"
)

// MinPasswordLen is the shortest password accepted at registration.
const MinPasswordLen = 8

// IsValidEmail reports whether s is a plausible bare email address.
// Display-name forms ("Name <a@b.com>") are rejected; the stores expect
// the address alone.
func IsValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, " <>") {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return false
	}
	return addr.Address == s
}

// IsValidPassword reports whether a registration password meets the
// minimum length. Length is the only rule; composition requirements push
// users toward predictable substitutions.
func IsValidPassword(s string) bool {
	return len(s) >= MinPasswordLen
}
