package audithttp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/colloki/console/internal/audit"
	"github.com/colloki/console/internal/rbac"
	"github.com/colloki/console/internal/shared"
)

type stubQueryService struct {
	entries      []shared.AuditLog
	lastCriteria audit.Criteria
}

func (s *stubQueryService) Query(_ context.Context, c audit.Criteria) (audit.Result, error) {
	s.lastCriteria = c
	got := audit.Filter(s.entries, c)
	return audit.Result{Entries: got, Total: len(s.entries)}, nil
}

func (s *stubQueryService) Export(_ context.Context, c audit.Criteria) ([]shared.AuditLog, error) {
	s.lastCriteria = c
	return audit.Filter(s.entries, c), nil
}

type stubPrincipal struct {
	id   string
	role rbac.RoleName
}

func (p stubPrincipal) GetID() string          { return p.id }
func (p stubPrincipal) GetRole() rbac.RoleName { return p.role }
func (p stubPrincipal) GetTenantID() string    { return "tenant-123" }

func newAuditRouter(t *testing.T, service *stubQueryService, p rbac.Principal) http.Handler {
	t.Helper()
	handler := NewHandler(nil, service, rbac.Middleware{Engine: rbac.NewEngine(rbac.DefaultRoles())})
	handler.now = func() time.Time { return time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC) }
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(rbac.WithPrincipal(req.Context(), p)))
		})
	})
	r.Route("/audit", handler.MountRoutes)
	return r
}

func sampleEntries() []shared.AuditLog {
	return []shared.AuditLog{
		{ID: "log-1", UserID: "user-1", UserName: "Admin User", Action: "USER_LOGIN", Details: "ok", Timestamp: time.Date(2023, 10, 27, 9, 0, 0, 0, time.UTC)},
		{ID: "log-2", UserID: "user-2", UserName: "Jane Doe", Action: "FILE_UPLOAD", Details: `Said "hi" today`, Timestamp: time.Date(2023, 10, 27, 9, 5, 0, 0, time.UTC)},
	}
}

func TestListRequiresPermission(t *testing.T) {
	router := newAuditRouter(t, &stubQueryService{}, stubPrincipal{id: "user-2", role: rbac.RoleUser})
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/audit/", nil))
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
}

func TestListParsesCriteria(t *testing.T) {
	service := &stubQueryService{entries: sampleEntries()}
	router := newAuditRouter(t, service, stubPrincipal{id: "user-1", role: rbac.RoleTenantAdmin})
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/audit/?action=login&user=user-1&startDate=2023-10-27&endDate=2023-10-28T00:00:00Z", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if service.lastCriteria.From.Format(time.RFC3339) != "2023-10-27T00:00:00Z" {
		t.Fatalf("unexpected criteria: %+v", service.lastCriteria)
	}
	if !strings.Contains(rr.Body.String(), `"log-1"`) || strings.Contains(rr.Body.String(), `"log-2"`) {
		t.Fatalf("unexpected body: %s", rr.Body.String())
	}
}

func TestListRejectsBadDate(t *testing.T) {
	router := newAuditRouter(t, &stubQueryService{}, stubPrincipal{id: "user-1", role: rbac.RoleTenantAdmin})
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/audit/?startDate=yesterday", nil))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestExportCSV(t *testing.T) {
	router := newAuditRouter(t, &stubQueryService{entries: sampleEntries()}, stubPrincipal{id: "user-1", role: rbac.RoleTenantAdmin})
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/audit/export.csv", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if ctype := rr.Header().Get("Content-Type"); !strings.Contains(ctype, "text/csv") {
		t.Fatalf("unexpected content-type: %s", ctype)
	}
	if disp := rr.Header().Get("Content-Disposition"); !strings.Contains(disp, "audit_logs_20240315.csv") {
		t.Fatalf("unexpected disposition: %s", disp)
	}
	if !strings.Contains(rr.Body.String(), `"Said ""hi"" today"`) {
		t.Fatalf("details must be quoted: %s", rr.Body.String())
	}
}

func TestExportIsRateLimitedPerUser(t *testing.T) {
	router := newAuditRouter(t, &stubQueryService{}, stubPrincipal{id: "user-1", role: rbac.RoleTenantAdmin})
	for i := 0; i < rateLimit; i++ {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/audit/export.csv", nil))
		if rr.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, rr.Code)
		}
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/audit/export.csv", nil))
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rr.Code)
	}
}
