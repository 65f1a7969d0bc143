package rbac

import (
	"log/slog"
	"net/http"

	"github.com/colloki/console/internal/platform/httpx"
	"github.com/colloki/console/internal/shared"
)

// Middleware wires RBAC authorization helpers for HTTP handlers.
type Middleware struct {
	Engine *Engine
	Logger *slog.Logger
}

// RequireAny ensures the current principal has at least one of the required permissions.
func (m Middleware) RequireAny(perms ...shared.Permission) func(http.Handler) http.Handler {
	return m.require("any", perms, m.Engine.HasPermission)
}

// RequireAll ensures the current principal has all required permissions.
func (m Middleware) RequireAll(perms ...shared.Permission) func(http.Handler) http.Handler {
	return m.require("all", perms, m.Engine.HasAll)
}

// RequireAuthenticated only checks that a principal is present.
func (m Middleware) RequireAuthenticated() func(http.Handler) http.Handler {
	return m.require("authenticated", nil, m.Engine.HasPermission)
}

func (m Middleware) require(mode string, perms []shared.Permission, check func(Principal, ...shared.Permission) bool) func(http.Handler) http.Handler {
	required := append([]shared.Permission(nil), perms...)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := PrincipalFromContext(r.Context())
			if isNilPrincipal(p) {
				httpx.RespondError(w, shared.ErrUnauthenticated)
				return
			}
			if check(p, required...) {
				next.ServeHTTP(w, r)
				return
			}
			if m.Logger != nil {
				m.Logger.Warn("rbac denied",
					slog.String("mode", mode),
					slog.String("user", p.GetID()),
					slog.String("role", string(p.GetRole())),
					slog.Any("required", required),
					slog.String("path", r.URL.Path))
			}
			httpx.RespondError(w, shared.ErrAccessDenied("forbidden"))
		})
	}
}
