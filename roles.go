package sochx

// UserRole is the closed set of platform roles. Role checks go through
// exhaustive switches, never string or slice containment.
type UserRole string

const (
	// RoleStudentResearcher is the default role assigned at registration.
	RoleStudentResearcher UserRole = "STUDENT_RESEARCHER"
	// RoleMentor marks accounts that guide student projects.
	RoleMentor UserRole = "MENTOR"
	// RoleAdmin can manage resources and read platform aggregates.
	RoleAdmin UserRole = "ADMIN"
)

// IsValid checks if the role is one of the predefined valid roles.
func (r UserRole) IsValid() bool {
	switch r {
	case RoleStudentResearcher, RoleMentor, RoleAdmin:
		return true
	default:
		return false
	}
}

// In reports whether r is a member of the allowed set.
func (r UserRole) In(allowed ...UserRole) bool {
	for _, a := range allowed {
		if r == a {
			return true
		}
	}
	return false
}

// AllRoles returns every predefined role.
func AllRoles() []UserRole {
	return []UserRole{RoleStudentResearcher, RoleMentor, RoleAdmin}
}

// ParseRole safely parses a string into a UserRole.
func ParseRole(s string) (UserRole, bool) {
	role := UserRole(s)
	return role, role.IsValid()
}
