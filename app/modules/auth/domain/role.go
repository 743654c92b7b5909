package authdomain

// Role represents a user's role for authorization purposes.
type Role string

const (
	RoleViewer    Role = "viewer"
	RoleVolunteer Role = "volunteer"
	RoleTabStaff  Role = "tab_staff"
	RoleAdmin     Role = "admin"
)

// roleRank orders roles from least to most privileged.
var roleRank = map[Role]int{
	RoleViewer:    0,
	RoleVolunteer: 1,
	RoleTabStaff:  2,
	RoleAdmin:     3,
}

// IsValid checks if the role is a valid value.
func (r Role) IsValid() bool {
	_, ok := roleRank[r]
	return ok
}

// AtLeast reports whether the role grants everything required does.
func (r Role) AtLeast(required Role) bool {
	rank, ok := roleRank[r]
	if !ok {
		return false
	}
	requiredRank, ok := roleRank[required]
	if !ok {
		return false
	}
	return rank >= requiredRank
}

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}
