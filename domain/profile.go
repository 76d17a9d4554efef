package domain

import "time"

// Role is the closed set of admin console roles.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// AdminProfile is the console account row keyed by the identity-provider user id.
type AdminProfile struct {
	ID        string    `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	Role      Role      `json:"role" db:"role"`
	IsActive  bool      `json:"isActive" db:"is_active"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
