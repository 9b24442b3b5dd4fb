package authz

// Permission is a single allowed action inside a workspace.
type Permission string

// The full permission catalog.
const (
	CreateWorkspace         Permission = "CREATE_WORKSPACE"
	EditWorkspace           Permission = "EDIT_WORKSPACE"
	DeleteWorkspace         Permission = "DELETE_WORKSPACE"
	ManageWorkspaceSettings Permission = "MANAGE_WORKSPACE_SETTINGS"

	AddMember        Permission = "ADD_MEMBER"
	ChangeMemberRole Permission = "CHANGE_MEMBER_ROLE"
	RemoveMember     Permission = "REMOVE_MEMBER"

	CreateProject Permission = "CREATE_PROJECT"
	EditProject   Permission = "EDIT_PROJECT"
	DeleteProject Permission = "DELETE_PROJECT"

	CreateTask Permission = "CREATE_TASK"
	EditTask   Permission = "EDIT_TASK"
	DeleteTask Permission = "DELETE_TASK"

	ViewOnly Permission = "VIEW_ONLY"
)

// RolePermissions maps each role name to the permissions it holds. The
// table is loaded once and never mutated at runtime; it is the single
// source of truth for authorization and for seeding the roles collection.
var RolePermissions = map[string][]Permission{
	"OWNER": {
		CreateWorkspace,
		EditWorkspace,
		DeleteWorkspace,
		ManageWorkspaceSettings,
		AddMember,
		ChangeMemberRole,
		RemoveMember,
		CreateProject,
		EditProject,
		DeleteProject,
		CreateTask,
		EditTask,
		DeleteTask,
		ViewOnly,
	},
	"ADMIN": {
		AddMember,
		CreateProject,
		EditProject,
		DeleteProject,
		CreateTask,
		EditTask,
		DeleteTask,
		ManageWorkspaceSettings,
		ViewOnly,
	},
	"MEMBER": {
		ViewOnly,
		CreateTask,
		EditTask,
	},
}

// PermissionsOf returns the permission set for a role name, or nil for an
// unknown role.
func PermissionsOf(role string) []Permission {
	return RolePermissions[role]
}

// PermissionStrings returns a role's permissions as plain strings, in
// table order. Used when seeding the roles collection.
func PermissionStrings(role string) []string {
	perms := RolePermissions[role]
	out := make([]string, len(perms))
	for i, p := range perms {
		out[i] = string(p)
	}
	return out
}
