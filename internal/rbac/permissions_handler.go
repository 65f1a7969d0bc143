package rbac

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/colloki/console/internal/platform/httpx"
	"github.com/colloki/console/internal/shared"
)

// PermissionsHandler exposes the permission catalog and the caller's navigation.
type PermissionsHandler struct {
	logger *slog.Logger
	engine *Engine
	tree   []NavItem
	rbac   Middleware
}

// NewPermissionsHandler builds PermissionsHandler instance.
func NewPermissionsHandler(logger *slog.Logger, engine *Engine, tree []NavItem, rbac Middleware) *PermissionsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PermissionsHandler{logger: logger, engine: engine, tree: tree, rbac: rbac}
}

// MountRoutes registers permission routes.
func (h *PermissionsHandler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermRolesView))
		r.Get("/permissions", h.listPermissions)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAuthenticated())
		r.Get("/navigation", h.navigation)
		r.Get("/permissions/me", h.myPermissions)
	})
}

func (h *PermissionsHandler) listPermissions(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]any{"permissions": shared.AllPermissions()})
}

func (h *PermissionsHandler) myPermissions(w http.ResponseWriter, r *http.Request) {
	p := PrincipalFromContext(r.Context())
	httpx.JSON(w, http.StatusOK, map[string]any{
		"role":        p.GetRole(),
		"permissions": h.engine.EffectivePermissions(p),
	})
}

func (h *PermissionsHandler) navigation(w http.ResponseWriter, r *http.Request) {
	p := PrincipalFromContext(r.Context())
	httpx.JSON(w, http.StatusOK, map[string]any{"items": h.engine.FilterNavigation(h.tree, p)})
}
