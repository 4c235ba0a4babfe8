package domain

import "time"

// Role is the RBAC role assigned to a user by the API.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleManager Role = "MANAGER"
	RoleStaff   Role = "STAFF"
)

// Valid reports whether r is one of the roles the API issues.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleStaff:
		return true
	}
	return false
}

// Roles lists every assignable role, in the order the UI presents them.
func Roles() []Role {
	return []Role{RoleAdmin, RoleManager, RoleStaff}
}

// UserStatus is the account status of a user.
type UserStatus string

const (
	UserActive   UserStatus = "ACTIVE"
	UserInactive UserStatus = "INACTIVE"
)

// Identity is the denormalized profile the API returns at login or
// invite registration. It is cached in the session verbatim; the portal
// never derives it from the bearer token.
type Identity struct {
	ID     string     `json:"id"`
	Name   string     `json:"name,omitempty"`
	Email  string     `json:"email"`
	Role   Role       `json:"role"`
	Status UserStatus `json:"status"`
}

// DisplayName returns the name to greet the user with.
func (i Identity) DisplayName() string {
	if i.Name != "" {
		return i.Name
	}
	return i.Email
}

// IsAdmin reports whether the identity may reach admin-only screens.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// User is a row of the user-management table as the API reports it.
type User struct {
	ID        string     `json:"_id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      Role       `json:"role"`
	Status    UserStatus `json:"status"`
	InvitedAt time.Time  `json:"invitedAt"`
	CreatedAt time.Time  `json:"createdAt"`
}
