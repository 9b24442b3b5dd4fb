package authz

import "testing"

func TestRequire_OwnerHoldsEverything(t *testing.T) {
	all := []Permission{
		CreateWorkspace, EditWorkspace, DeleteWorkspace, ManageWorkspaceSettings,
		AddMember, ChangeMemberRole, RemoveMember,
		CreateProject, EditProject, DeleteProject,
		CreateTask, EditTask, DeleteTask,
		ViewOnly,
	}
	if err := Require("OWNER", all...); err != nil {
		t.Errorf("Require(OWNER, all) = %v, want nil", err)
	}
}

func TestRequire(t *testing.T) {
	tests := []struct {
		name     string
		role     string
		required []Permission
		wantErr  bool
	}{
		{"member can create task", "MEMBER", []Permission{CreateTask}, false},
		{"member can edit task", "MEMBER", []Permission{EditTask}, false},
		{"member can view", "MEMBER", []Permission{ViewOnly}, false},
		{"member cannot delete workspace", "MEMBER", []Permission{DeleteWorkspace}, true},
		{"member cannot delete task", "MEMBER", []Permission{DeleteTask}, true},
		{"member cannot create project", "MEMBER", []Permission{CreateProject}, true},
		{"admin can add member", "ADMIN", []Permission{AddMember}, false},
		{"admin can manage projects", "ADMIN", []Permission{CreateProject, EditProject, DeleteProject}, false},
		{"admin can manage settings", "ADMIN", []Permission{ManageWorkspaceSettings}, false},
		{"admin cannot delete workspace", "ADMIN", []Permission{DeleteWorkspace}, true},
		{"admin cannot edit workspace", "ADMIN", []Permission{EditWorkspace}, true},
		{"admin cannot change roles", "ADMIN", []Permission{ChangeMemberRole}, true},
		{"admin cannot remove members", "ADMIN", []Permission{RemoveMember}, true},
		{"owner can delete workspace", "OWNER", []Permission{DeleteWorkspace}, false},
		{"all-or-nothing across required set", "ADMIN", []Permission{CreateProject, DeleteWorkspace}, true},
		{"empty requirement always passes for known role", "MEMBER", nil, false},
		{"unknown role holds nothing", "SUPERVISOR", nil, true},
		{"unknown role fails any permission", "SUPERVISOR", []Permission{ViewOnly}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Require(tt.role, tt.required...)
			if (err != nil) != tt.wantErr {
				t.Errorf("Require(%s, %v) = %v, wantErr %v", tt.role, tt.required, err, tt.wantErr)
			}
		})
	}
}

func TestHas(t *testing.T) {
	if !Has("ADMIN", CreateTask) {
		t.Error("expected ADMIN to hold CREATE_TASK")
	}
	if Has("MEMBER", AddMember) {
		t.Error("expected MEMBER not to hold ADD_MEMBER")
	}
}

func TestPermissionStrings(t *testing.T) {
	got := PermissionStrings("MEMBER")
	want := []string{"VIEW_ONLY", "CREATE_TASK", "EDIT_TASK"}
	if len(got) != len(want) {
		t.Fatalf("PermissionStrings(MEMBER) = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("PermissionStrings(MEMBER)[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRolePermissions_OwnerHasFourteen(t *testing.T) {
	if n := len(RolePermissions["OWNER"]); n != 14 {
		t.Errorf("OWNER permission count = %d, want 14", n)
	}
}
