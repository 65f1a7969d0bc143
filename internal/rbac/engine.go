package rbac

import (
	"reflect"
	"sync"

	"github.com/colloki/console/internal/shared"
)

type catalog map[RoleName]Role

// Engine decides grant/deny for principals against tenant scoped role catalogs.
// Tenants without a loaded catalog fall back to the default one. Safe for concurrent use.
type Engine struct {
	mu       sync.RWMutex
	defaults catalog
	tenants  map[string]catalog
}

// NewEngine builds an engine whose fallback catalog is defaults.
func NewEngine(defaults []Role) *Engine {
	return &Engine{defaults: buildCatalog(defaults), tenants: make(map[string]catalog)}
}

// LoadTenant replaces the catalog used for tenantID.
func (e *Engine) LoadTenant(tenantID string, roles []Role) {
	c := buildCatalog(roles)
	e.mu.Lock()
	e.tenants[tenantID] = c
	e.mu.Unlock()
}

// ReplaceRole swaps a single role within the tenant catalog, seeding it from defaults when absent.
func (e *Engine) ReplaceRole(tenantID string, role Role) {
	e.mu.Lock()
	defer e.mu.Unlock()
	c, ok := e.tenants[tenantID]
	if !ok {
		c = make(catalog, len(e.defaults))
		for name, r := range e.defaults {
			c[name] = r.Clone()
		}
		e.tenants[tenantID] = c
	}
	c[role.Name] = role.Clone()
}

// HasPermission reports whether p holds at least one of required. An empty
// requirement means no requirement. Absent principals and unknown roles are denied.
func (e *Engine) HasPermission(p Principal, required ...shared.Permission) bool {
	role, ok := e.resolve(p)
	if !ok {
		return false
	}
	if role.Name == SuperUser {
		return true
	}
	if len(required) == 0 {
		return true
	}
	for _, want := range required {
		for _, granted := range role.Permissions {
			if granted == want {
				return true
			}
		}
	}
	return false
}

// HasAll reports whether p holds every permission in required, one check per permission.
func (e *Engine) HasAll(p Principal, required ...shared.Permission) bool {
	if _, ok := e.resolve(p); !ok {
		return false
	}
	for _, want := range required {
		if !e.HasPermission(p, want) {
			return false
		}
	}
	return true
}

// Authorize is HasPermission returning an AccessDeniedError on denial.
func (e *Engine) Authorize(p Principal, required ...shared.Permission) error {
	if isNilPrincipal(p) {
		return shared.ErrAccessDenied("rbac: no authenticated user")
	}
	if !e.HasPermission(p, required...) {
		return shared.ErrAccessDenied("rbac: %s lacks %v", p.GetRole(), required)
	}
	return nil
}

// EffectivePermissions lists what p may do, in catalog order.
func (e *Engine) EffectivePermissions(p Principal) []shared.Permission {
	role, ok := e.resolve(p)
	if !ok {
		return nil
	}
	if role.Name == SuperUser {
		return shared.AllPermissions()
	}
	out := make([]shared.Permission, 0, len(role.Permissions))
	for _, perm := range shared.AllPermissions() {
		if e.HasPermission(p, perm) {
			out = append(out, perm)
		}
	}
	return out
}

func (e *Engine) resolve(p Principal) (Role, bool) {
	if isNilPrincipal(p) {
		return Role{}, false
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	c, ok := e.tenants[p.GetTenantID()]
	if !ok {
		c = e.defaults
	}
	role, ok := c[p.GetRole()]
	return role, ok
}

func buildCatalog(roles []Role) catalog {
	c := make(catalog, len(roles))
	for _, r := range roles {
		c[r.Name] = r.Clone()
	}
	return c
}

// isNilPrincipal catches typed nil pointers hidden behind the interface.
func isNilPrincipal(p Principal) bool {
	if p == nil {
		return true
	}
	v := reflect.ValueOf(p)
	return v.Kind() == reflect.Ptr && v.IsNil()
}
