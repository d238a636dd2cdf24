package domain

// UserRole enumerates dashboard roles.
type UserRole string

const (
	RoleAdmin    UserRole = "admin"
	RoleMaster   UserRole = "master"
	RoleManagerA UserRole = "managerA"
	RoleManagerB UserRole = "managerB"
)

// IsManager reports whether the role is one of the field-manager roles.
func (r UserRole) IsManager() bool {
	return r == RoleManagerA || r == RoleManagerB
}

// User is a portal account resolved through the user directory.
type User struct {
	ID           string   `json:"id"`
	Email        string   `json:"email"`
	Name         string   `json:"name"`
	Role         UserRole `json:"role"`
	PasswordHash string   `json:"-"`
}
