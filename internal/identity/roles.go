package identity

import "fmt"

// Role is the closed set of roles a principal can hold.
// The string values are part of the token and database contracts; keep them stable.
type Role string

const (
	RoleEmployer  Role = "EMPLOYER"
	RoleFrontdesk Role = "FRONTDESK"
	RoleAdmin     Role = "ADMIN"
)

// Roles lists every known role.
func Roles() []Role { return []Role{RoleEmployer, RoleFrontdesk, RoleAdmin} }

// ParseRole accepts only the three known role strings.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleEmployer, RoleFrontdesk, RoleAdmin:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}
