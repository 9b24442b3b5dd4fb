// Package authz holds the static role→permission table and the gate that
// checks a resolved role against the permissions a route requires.
//
// The gate is pure: no I/O, no request state. Resolving which role a user
// holds in a workspace is the members store's job; handlers resolve first,
// then call Require.
package authz

import "errors"

// ErrPermissionDenied is returned when a role lacks a required permission.
var ErrPermissionDenied = errors.New("you do not have permission to perform this action")

// Require returns nil only if role holds every permission in required.
// An unknown role holds nothing and always fails.
func Require(role string, required ...Permission) error {
	held := RolePermissions[role]
	if held == nil {
		return ErrPermissionDenied
	}
	set := make(map[Permission]struct{}, len(held))
	for _, p := range held {
		set[p] = struct{}{}
	}
	for _, p := range required {
		if _, ok := set[p]; !ok {
			return ErrPermissionDenied
		}
	}
	return nil
}

// Has reports whether role holds a single permission.
func Has(role string, p Permission) bool {
	return Require(role, p) == nil
}
