package model

import (
	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin        Role = "ADMIN"
	RoleTenantAdmin  Role = "TENANT_ADMIN"
	RoleProfessional Role = "PROFESSIONAL"
	RoleClient       Role = "CLIENT"
)

// IsTenant reports whether the role belongs to a tenant's staff.
func (r Role) IsTenant() bool {
	return r == RoleTenantAdmin || r == RoleProfessional
}

// RedirectPath is where the dashboard sends a user after sign-in.
func (r Role) RedirectPath() string {
	switch {
	case r == RoleAdmin:
		return "/admin"
	case r.IsTenant():
		return "/tenant"
	default:
		return "/"
	}
}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleTenantAdmin, RoleProfessional, RoleClient:
		return true
	}
	return false
}

type User struct {
	Base
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	Phone        string     `json:"phone"`
	PasswordHash *string    `json:"-"`
	Role         Role       `json:"role"`
	TenantID     *uuid.UUID `json:"tenantId"`
	IsActive     bool       `json:"isActive"`
}

// DisplayName falls back to the email when no name was given.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}
