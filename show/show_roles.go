package show

import (
	"caster/role"
)

// Show permissions are per-instance capabilities: a grant of a show role
// applies to exactly one show, never to the table as a whole.
var (
	PermShowUpdate = role.Permission{
		Key:         "SHOW_UPDATE",
		Name:        "Update show",
		Description: "update the attributes of the show",
	}
	PermShowDelete = role.Permission{
		Key:         "SHOW_DELETE",
		Name:        "Delete show",
		Description: "delete the show",
	}
	PermShowManageEpisodes = role.Permission{
		Key:         "SHOW_MANAGE_EPISODES",
		Name:        "Manage episodes",
		Description: "create, update and delete episodes of the show",
	}
	PermShowManageRoles = role.Permission{
		Key:         "SHOW_MANAGE_ROLES",
		Name:        "Manage show roles",
		Description: "grant and revoke roles over the show",
	}

	RoleShowManager = role.Role{
		Key:         "SHOW_MANAGER",
		Name:        "Show manager",
		Description: "maintains the show and its episodes",
		Permissions: []role.Permission{PermShowUpdate, PermShowManageEpisodes},
	}
	RoleShowAdmin = role.Role{
		Key:         "SHOW_ADMIN",
		Name:        "Show admin",
		Description: "full control over the show, including its role grants",
		Permissions: []role.Permission{PermShowUpdate, PermShowManageEpisodes, PermShowDelete, PermShowManageRoles},
	}
)

func Permissions() []role.Permission {
	return []role.Permission{PermShowUpdate, PermShowDelete, PermShowManageEpisodes, PermShowManageRoles}
}

func Roles() []role.Role {
	return []role.Role{RoleShowManager, RoleShowAdmin}
}
