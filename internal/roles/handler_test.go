package roles

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/colloki/console/internal/rbac"
)

func newRouter(role rbac.RoleName) http.Handler {
	svc, _, engine := newTestService()
	h := NewHandler(nil, svc, rbac.Middleware{Engine: engine})
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(ctxAs(role)))
		})
	})
	r.Route("/roles", h.MountRoutes)
	return r
}

func TestHandlerUpdatePermissions(t *testing.T) {
	router := newRouter(rbac.RoleTenantAdmin)

	req := httptest.NewRequest(http.MethodPut, "/roles/role-2/permissions", strings.NewReader(`{"permissions":["view:dashboard","view:users"]}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"view:users"`)
}

func TestHandlerRejectsUnknownField(t *testing.T) {
	router := newRouter(rbac.RoleTenantAdmin)

	req := httptest.NewRequest(http.MethodPut, "/roles/role-2/permissions", strings.NewReader(`{"perms":[]}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerUserCannotManageRoles(t *testing.T) {
	router := newRouter(rbac.RoleUser)

	req := httptest.NewRequest(http.MethodPut, "/roles/role-2/permissions", strings.NewReader(`{"permissions":[]}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
}
