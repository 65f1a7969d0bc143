package rbac

import (
	"context"

	"github.com/colloki/console/internal/shared"
)

// RoleName is the fixed set of role names a user can hold.
type RoleName string

// Built-in roles.
const (
	RoleSystemAdmin RoleName = "System Admin"
	RoleTenantAdmin RoleName = "Tenant Admin"
	RoleUser        RoleName = "User"
)

// SuperUser holds every permission regardless of its listed set.
const SuperUser = RoleSystemAdmin

// Valid reports whether n is a known role name.
func (n RoleName) Valid() bool {
	switch n {
	case RoleSystemAdmin, RoleTenantAdmin, RoleUser:
		return true
	}
	return false
}

// Role represents a tenant scoped permission grouping.
type Role struct {
	ID          string              `json:"id"`
	Name        RoleName            `json:"name"`
	Description string              `json:"description"`
	Permissions []shared.Permission `json:"permissions"`
}

// Clone returns a deep copy of the role.
func (r Role) Clone() Role {
	out := r
	out.Permissions = append([]shared.Permission(nil), r.Permissions...)
	return out
}

// Principal describes the authenticated actor.
type Principal interface {
	GetID() string
	GetRole() RoleName
	GetTenantID() string
}

// DefaultRoles returns the catalog seeded for every new tenant.
func DefaultRoles() []Role {
	return []Role{
		{
			ID:          "role-1",
			Name:        RoleTenantAdmin,
			Description: "Has full access to manage the tenant.",
			Permissions: shared.AllPermissions(),
		},
		{
			ID:          "role-2",
			Name:        RoleUser,
			Description: "Has basic access to the system.",
			Permissions: []shared.Permission{shared.PermDashboardView, shared.PermFilesView, shared.PermOwnProfileManage},
		},
		{
			ID:          "role-3",
			Name:        RoleSystemAdmin,
			Description: "Has access to the entire system.",
			Permissions: shared.AllPermissions(),
		},
	}
}

type principalContextKey struct{}

// WithPrincipal stores the authenticated principal in context.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext returns the principal stored by WithPrincipal, or nil.
func PrincipalFromContext(ctx context.Context) Principal {
	p, _ := ctx.Value(principalContextKey{}).(Principal)
	return p
}

// DisplayName returns the principal's name when it carries one, else its id.
func DisplayName(p Principal) string {
	if named, ok := p.(interface{ GetName() string }); ok {
		if name := named.GetName(); name != "" {
			return name
		}
	}
	return p.GetID()
}
