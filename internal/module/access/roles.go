package access

import (
	"database/sql/driver"
	"encoding"
	"fmt"
)

// Role is a board role. Roles are totally ordered by privilege:
// RoleNone < RoleViewer < RoleEditor < RoleOwner.
type Role int8

const (
	RoleNone Role = iota
	RoleViewer
	RoleEditor
	RoleOwner
)

var roleNames = [...]string{
	RoleNone:   "none",
	RoleViewer: "viewer",
	RoleEditor: "editor",
	RoleOwner:  "owner",
}

// ParseRole parses a role name. "none" is not accepted.
func ParseRole(s string) (Role, error) {
	for r := RoleViewer; r <= RoleOwner; r++ {
		if roleNames[r] == s {
			return r, nil
		}
	}
	return RoleNone, fmt.Errorf("%w: %q", ErrInvalidRole, s)
}

func (r Role) String() string {
	if r < RoleNone || r > RoleOwner {
		return fmt.Sprintf("Role(%d)", int8(r))
	}
	return roleNames[r]
}

// Rank returns the role's position in the privilege order.
func (r Role) Rank() int {
	return int(r)
}

// AtLeast reports whether r grants everything min grants.
// RoleNone never satisfies anything.
func (r Role) AtLeast(min Role) bool {
	return r != RoleNone && r >= min
}

// IsValid reports whether r is a real board role.
func (r Role) IsValid() bool {
	return r >= RoleViewer && r <= RoleOwner
}

// IsInviteRole reports whether r can be granted by an invitation.
// Ownership is never transferred by invite.
func (r Role) IsInviteRole() bool {
	return r == RoleViewer || r == RoleEditor
}

func (r Role) MarshalText() ([]byte, error) {
	if !r.IsValid() && r != RoleNone {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRole, int8(r))
	}
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(b []byte) error {
	parsed, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Value stores the role by name.
func (r Role) Value() (driver.Value, error) {
	if !r.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRole, int8(r))
	}
	return r.String(), nil
}

// Scan reads a role stored by name.
func (r *Role) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return r.UnmarshalText([]byte(v))
	case []byte:
		return r.UnmarshalText(v)
	default:
		return fmt.Errorf("access: cannot scan %T into Role", src)
	}
}

var (
	_ encoding.TextMarshaler = Role(0)
	_ driver.Valuer          = Role(0)
)
