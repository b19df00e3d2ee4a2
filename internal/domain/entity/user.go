package entity

import (
	"fmt"
	"time"
)

// Role determines what an identity may do
type Role string

const (
	RoleCustomer    Role = "customer"
	RoleFieldWorker Role = "field_worker"
	RoleAdmin       Role = "admin"
)

// ParseRole converts a raw role value, rejecting unknown roles
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleCustomer, RoleFieldWorker, RoleAdmin:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// String returns the string representation of the role
func (r Role) String() string {
	return string(r)
}

// User is a registered identity
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	PhoneNumber  string    `json:"phone_number"`
	Role         Role      `json:"role"`
	IsApproved   bool      `json:"is_approved"`
	IsActive     bool      `json:"is_active"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Principal returns the caller identity used by the lifecycle engines
func (u *User) Principal() Principal {
	return Principal{ID: u.ID, Role: u.Role, Approved: u.IsApproved}
}

// Principal is the authenticated caller of an operation
type Principal struct {
	ID       int64
	Role     Role
	Approved bool
}

// IsAdmin reports whether the principal has the admin role
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// IsFieldWorker reports whether the principal has the field worker role
func (p Principal) IsFieldWorker() bool {
	return p.Role == RoleFieldWorker
}

// IsCustomer reports whether the principal has the customer role
func (p Principal) IsCustomer() bool {
	return p.Role == RoleCustomer
}
