package rbac

import "workforce-lodging/internal/identity"

// Staff roles operate the hotel side. They may decide and progress any
// request: a single hotel operator is assumed, so staff are not tenant scoped.
var StaffRoles = []identity.Role{identity.RoleFrontdesk, identity.RoleAdmin}

// IsStaff reports whether role belongs to the hotel operator.
func IsStaff(role identity.Role) bool {
	switch role {
	case identity.RoleFrontdesk, identity.RoleAdmin:
		return true
	case identity.RoleEmployer:
		return false
	default:
		return false
	}
}

// Allows reports whether role is in allowed.
func Allows(allowed []identity.Role, role identity.Role) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}
