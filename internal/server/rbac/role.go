// Package rbac implements the static role/permission model: a closed set of
// roles with a total privilege order, and a fixed table mapping each role to
// the permissions it holds. Every predicate fails closed on unknown input.
package rbac

// Role identifies one of the fixed account roles.
type Role string

const (
	RoleAdministrator Role = "administrator"
	RoleSupervisor    Role = "supervisor"
	RoleTechnician    Role = "technician"
)

// hierarchy orders roles from most to least privileged. A lower index means
// higher privilege.
var hierarchy = []Role{
	RoleAdministrator,
	RoleSupervisor,
	RoleTechnician,
}

// Roles returns the closed set of roles, most privileged first.
func Roles() []Role {
	out := make([]Role, len(hierarchy))
	copy(out, hierarchy)
	return out
}

// Valid reports whether r is a member of the closed role set.
func (r Role) Valid() bool {
	return rank(r) >= 0
}

func rank(r Role) int {
	for i, h := range hierarchy {
		if h == r {
			return i
		}
	}
	return -1
}

// HasEqualOrHigherPrivilege reports whether role sits at or above required in
// the hierarchy. Unknown roles on either side yield false.
func HasEqualOrHigherPrivilege(role, required Role) bool {
	ri, qi := rank(role), rank(required)
	if ri < 0 || qi < 0 {
		return false
	}
	return ri <= qi
}
