package users

import (
	"time"

	"github.com/colloki/console/internal/rbac"
)

// User represents a console account. Every user holds exactly one role.
type User struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Email     string        `json:"email"`
	Role      rbac.RoleName `json:"role"`
	TenantID  string        `json:"tenantId"`
	CreatedAt time.Time     `json:"createdAt"`
	AvatarURL string        `json:"avatarUrl"`
}

// GetID implements rbac.Principal.
func (u *User) GetID() string { return u.ID }

// GetRole implements rbac.Principal.
func (u *User) GetRole() rbac.RoleName { return u.Role }

// GetTenantID implements rbac.Principal.
func (u *User) GetTenantID() string { return u.TenantID }

// GetName is used for audit attribution.
func (u *User) GetName() string { return u.Name }

// CreateInput carries an admin's new-user form.
type CreateInput struct {
	Name  string        `json:"name" validate:"required,max=120"`
	Email string        `json:"email" validate:"required,email"`
	Role  rbac.RoleName `json:"role" validate:"required,oneof='System Admin' 'Tenant Admin' User"`
}

// UpdateInput carries an admin edit of name, email or role.
type UpdateInput struct {
	Name  string        `json:"name" validate:"required,max=120"`
	Email string        `json:"email" validate:"required,email"`
	Role  rbac.RoleName `json:"role" validate:"required,oneof='System Admin' 'Tenant Admin' User"`
}

// ProfileInput is the subset a user may change about themselves.
type ProfileInput struct {
	Name      string `json:"name" validate:"required,max=120"`
	Email     string `json:"email" validate:"required,email"`
	AvatarURL string `json:"avatarUrl" validate:"omitempty,url"`
}
