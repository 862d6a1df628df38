package enums

import (
	"fmt"
	"strings"
)

// Role is the privilege classification stored on an identity.
type Role string

const (
	RoleNone   Role = "none"
	RoleUser   Role = "user"
	RoleAdmin  Role = "admin"
	RoleSeller Role = "seller"
)

var validRoles = []Role{
	RoleNone,
	RoleUser,
	RoleAdmin,
	RoleSeller,
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// IsValid reports whether the value is a known Role.
func (r Role) IsValid() bool {
	for _, candidate := range validRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// Normalize maps empty or unknown values to RoleNone so capability checks stay total.
func (r Role) Normalize() Role {
	if r.IsValid() {
		return r
	}
	return RoleNone
}

// ParseRole converts raw input into a Role. Empty input parses as RoleNone.
func ParseRole(value string) (Role, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return RoleNone, nil
	}
	for _, candidate := range validRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid role %q", value)
}
