package models

type Role string

const (
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super-admin"
)

type User struct {
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// Scope returns the owner identifier used to filter events and purchases.
// Super admins see everything, so their scope is empty.
func (u User) Scope() string {
	if u.Role == RoleSuperAdmin {
		return ""
	}
	return u.Username
}
