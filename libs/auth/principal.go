// Package auth defines the authenticated caller identity shared by middleware and services
package auth

// Role is the numeric role carried in access tokens
type Role int

const (
	RoleUser  Role = 1
	RoleAdmin Role = 3
)

// Principal is the authenticated caller of an operation
type Principal struct {
	UserID int
	Role   Role
}

// IsAdmin reports whether the principal has administrative capability
func (p Principal) IsAdmin() bool {
	return p.Role >= RoleAdmin
}

// RequireAdmin is the capability check used by admin-only operations
func RequireAdmin(p Principal) bool {
	return p.IsAdmin()
}
