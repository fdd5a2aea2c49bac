// Package access implements role-gated access control over a closed role set.
//
// A user holds zero or more roles. Holding at least one role makes the user
// "staff"; a user with zero roles is in a pending-approval state and is
// rejected before any route requirement is evaluated.
package access

// Role is an application role from the closed set known to the system.
type Role string

const (
	RoleAdmin        Role = "admin"
	RolePharmacist   Role = "pharmacist"
	RoleDoctor       Role = "doctor"
	RoleStoreManager Role = "store_manager"
)

// AllRoles lists every recognized role.
var AllRoles = []Role{RoleAdmin, RolePharmacist, RoleDoctor, RoleStoreManager}

// IsValidRole reports whether r is a member of the closed role set.
func IsValidRole(r Role) bool {
	for _, known := range AllRoles {
		if r == known {
			return true
		}
	}
	return false
}

// IsStaff reports whether the user holds at least one role.
func IsStaff(userRoles []Role) bool {
	return len(userRoles) > 0
}

// CanAccess decides whether a user with the given role set may access a route
// guarded by requiredRoles.
//
//   - A user with zero roles is always rejected, regardless of requirements.
//   - An empty requiredRoles grants access to any staff user.
//   - With requireAny, access is granted when the role sets intersect.
//   - Without requireAny, the user must hold every required role.
func CanAccess(userRoles []Role, requiredRoles []Role, requireAny bool) bool {
	if !IsStaff(userRoles) {
		return false
	}

	if len(requiredRoles) == 0 {
		return true
	}

	if requireAny {
		for _, required := range requiredRoles {
			if hasRole(userRoles, required) {
				return true
			}
		}
		return false
	}

	for _, required := range requiredRoles {
		if !hasRole(userRoles, required) {
			return false
		}
	}
	return true
}

func hasRole(userRoles []Role, role Role) bool {
	for _, r := range userRoles {
		if r == role {
			return true
		}
	}
	return false
}

// FromStrings converts raw role strings to Roles, dropping unrecognized values.
func FromStrings(raw []string) []Role {
	var roles []Role
	for _, s := range raw {
		if r := Role(s); IsValidRole(r) {
			roles = append(roles, r)
		}
	}
	return roles
}

// ToStrings converts a role set back to its string form.
func ToStrings(roles []Role) []string {
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}
