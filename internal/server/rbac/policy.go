package rbac

import "fmt"

// grants is the static Role -> permissions table. It is built once at package
// init and never mutated afterwards; use the predicates below to query it.
var grants = map[Role][]Permission{
	RoleTechnician: {
		PermContentRead,
		PermContentCreate,
		PermContentUpdate,
		PermUsersRead,
	},
	RoleSupervisor: {
		PermContentRead,
		PermContentCreate,
		PermContentUpdate,
		PermContentDelete,
		PermContentPublish,
		PermFilesManage,
		PermReportExport,
		PermUsersRead,
	},
	RoleAdministrator: {
		PermContentRead,
		PermContentCreate,
		PermContentUpdate,
		PermContentDelete,
		PermContentPublish,
		PermFilesManage,
		PermReportExport,
		PermUsersRead,
		PermUsersCreate,
		PermUsersUpdate,
		PermUsersDelete,
		PermRolesManage,
	},
}

// ValidateTable confirms that every role in the hierarchy has an entry in the
// grants table. Called at process start so that adding a role without granting
// it permissions is a startup error, not a silent deny-all in production.
func ValidateTable() error {
	for _, r := range hierarchy {
		if _, ok := grants[r]; !ok {
			return fmt.Errorf("rbac: role %q has no permission grants", r)
		}
	}
	for r := range grants {
		if !r.Valid() {
			return fmt.Errorf("rbac: grants reference unknown role %q", r)
		}
	}
	return nil
}

// HasPermission reports whether role holds the (resource, action) permission.
// Unknown roles hold nothing.
func HasPermission(role Role, resource Resource, action Action) bool {
	for _, p := range grants[role] {
		if p.Resource == resource && p.Action == action {
			return true
		}
	}
	return false
}

// Permissions returns the full permission set of role, or nil for an unknown
// role.
func Permissions(role Role) []Permission {
	ps, ok := grants[role]
	if !ok {
		return nil
	}
	out := make([]Permission, len(ps))
	copy(out, ps)
	return out
}

// AccessibleResources projects the permission table onto the set of resource
// names role can touch in any way. Useful for capability negotiation with UIs.
func AccessibleResources(role Role) []Resource {
	seen := make(map[Resource]struct{})
	var out []Resource
	for _, p := range grants[role] {
		if _, ok := seen[p.Resource]; ok {
			continue
		}
		seen[p.Resource] = struct{}{}
		out = append(out, p.Resource)
	}
	return out
}
