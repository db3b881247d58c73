package enums

import (
	"fmt"
	"strings"
)

// Role is the caller-supplied actor role used for permission checks.
// The core never authenticates; it only authorizes against these values.
type Role string

const (
	RoleUser       Role = "user"
	RoleManager    Role = "manager"
	RoleAdmin      Role = "admin"
	RoleSuperadmin Role = "superadmin"
)

var validRoles = []Role{
	RoleUser,
	RoleManager,
	RoleAdmin,
	RoleSuperadmin,
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// IsValid reports whether the value is a known role.
func (r Role) IsValid() bool {
	for _, candidate := range validRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// AtLeastManager reports whether the role carries manager privileges or above.
func (r Role) AtLeastManager() bool {
	return r == RoleManager || r == RoleAdmin || r == RoleSuperadmin
}

// ParseRole converts raw input into a Role.
func ParseRole(value string) (Role, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid role %q", value)
}
