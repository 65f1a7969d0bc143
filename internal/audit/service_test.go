package audit

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/colloki/console/internal/rbac"
	"github.com/colloki/console/internal/shared"
	"github.com/colloki/console/internal/users"
)

func ts(value string) time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		panic(err)
	}
	return t
}

func sampleLogs() []shared.AuditLog {
	return []shared.AuditLog{
		{ID: "log-1", UserID: "user-1", UserName: "Admin User", Action: "USER_LOGIN", Details: "User logged in successfully.", Timestamp: ts("2023-10-27T09:00:00Z")},
		{ID: "log-2", UserID: "user-2", UserName: "Jane Doe", Action: "FILE_UPLOAD", Details: `Uploaded file "report.pdf".`, Timestamp: ts("2023-10-27T09:05:00Z")},
		{ID: "log-3", UserID: "user-1", UserName: "Admin User", Action: "USER_UPDATE", Details: "Updated profile for user John Smith.", Timestamp: ts("2023-10-27T09:10:00Z")},
		{ID: "log-4", UserID: "user-3", UserName: "John Smith", Action: "USER_LOGIN", Details: "User logged in successfully.", Timestamp: ts("2023-10-27T09:12:00Z")},
	}
}

func ids(entries []shared.AuditLog) string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return strings.Join(out, ",")
}

func TestFilterActionIsCaseInsensitive(t *testing.T) {
	entries := []shared.AuditLog{{ID: "a", Action: "USER_LOGIN"}, {ID: "b", Action: "FILE_UPLOAD"}}
	for _, needle := range []string{"LOGIN", "login", "LoGiN"} {
		got := Filter(entries, Criteria{Action: needle})
		if ids(got) != "a" {
			t.Fatalf("%q: expected only a, got %s", needle, ids(got))
		}
	}
}

func TestFilterCombinesCriteria(t *testing.T) {
	got := Filter(sampleLogs(), Criteria{UserID: "user-1", Action: "user"})
	if ids(got) != "log-1,log-3" {
		t.Fatalf("unexpected result %s", ids(got))
	}

	got = Filter(sampleLogs(), Criteria{Action: "login", From: ts("2023-10-27T09:00:00Z"), To: ts("2023-10-27T09:10:00Z")})
	if ids(got) != "log-1" {
		t.Fatalf("time bounds must be inclusive, got %s", ids(got))
	}
}

func TestFilterBoundsAreInclusive(t *testing.T) {
	got := Filter(sampleLogs(), Criteria{From: ts("2023-10-27T09:05:00Z"), To: ts("2023-10-27T09:10:00Z")})
	if ids(got) != "log-2,log-3" {
		t.Fatalf("unexpected result %s", ids(got))
	}
}

func TestFilterStartAfterEverythingIsEmpty(t *testing.T) {
	got := Filter(sampleLogs(), Criteria{From: ts("2024-01-01T00:00:00Z")})
	if len(got) != 0 {
		t.Fatalf("expected empty result, got %s", ids(got))
	}
}

func TestFilterEmptyCriteriaKeepsOrder(t *testing.T) {
	got := Filter(sampleLogs(), Criteria{})
	if ids(got) != "log-1,log-2,log-3,log-4" {
		t.Fatalf("unexpected order %s", ids(got))
	}
}

func TestExportCSVQuotesDetails(t *testing.T) {
	out := ExportCSV([]shared.AuditLog{{
		UserName:  "Jane Doe",
		Action:    "FILE_UPLOAD",
		Details:   `Said "hi" today`,
		Timestamp: ts("2023-10-27T09:05:00Z"),
	}})
	want := "Timestamp,User,Action,Details\n" +
		`2023-10-27T09:05:00.000Z,Jane Doe,FILE_UPLOAD,"Said ""hi"" today"`
	if out != want {
		t.Fatalf("unexpected csv:\n%s\nwant:\n%s", out, want)
	}
}

func TestExportCSVQuotesOtherFieldsOnlyWhenNeeded(t *testing.T) {
	out := ExportCSV([]shared.AuditLog{{
		UserName:  "Doe, Jane",
		Action:    "USER_LOGIN",
		Details:   "ok",
		Timestamp: ts("2023-10-27T09:05:00+07:00"),
	}})
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header and one row, got %q", out)
	}
	if lines[1] != `2023-10-27T09:05:00.000+07:00,"Doe, Jane",USER_LOGIN,"ok"` {
		t.Fatalf("unexpected row %q", lines[1])
	}
}

func TestExportCSVHeaderOnly(t *testing.T) {
	if out := ExportCSV(nil); out != "Timestamp,User,Action,Details" {
		t.Fatalf("unexpected csv %q", out)
	}
}

type stubSource struct {
	logs  []shared.AuditLog
	users []users.User
	err   error
}

func (s stubSource) FetchAuditLogs(context.Context, string) ([]shared.AuditLog, error) {
	return append([]shared.AuditLog(nil), s.logs...), s.err
}

func (s stubSource) FetchUsers(context.Context, string) ([]users.User, error) {
	return append([]users.User(nil), s.users...), nil
}

type viewer rbac.RoleName

func (v viewer) GetID() string          { return "user-1" }
func (v viewer) GetRole() rbac.RoleName { return rbac.RoleName(v) }
func (v viewer) GetTenantID() string    { return "tenant-123" }

func TestQueryResolvesCurrentNames(t *testing.T) {
	src := stubSource{
		logs: sampleLogs(),
		users: []users.User{
			{ID: "user-1", Name: "Renamed Admin"},
			{ID: "user-2", Name: "Jane Doe"},
		},
	}
	svc := NewService(src, src, rbac.NewEngine(rbac.DefaultRoles()), nil)
	ctx := rbac.WithPrincipal(context.Background(), viewer(rbac.RoleTenantAdmin))

	res, err := svc.Query(ctx, Criteria{Action: "login"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if ids(res.Entries) != "log-1,log-4" || res.Total != 4 {
		t.Fatalf("unexpected result %s total %d", ids(res.Entries), res.Total)
	}
	if res.Entries[0].UserName != "Renamed Admin" {
		t.Fatalf("expected current name, got %s", res.Entries[0].UserName)
	}
	if res.Entries[1].UserName != "John Smith" {
		t.Fatalf("deleted user must keep stored name, got %s", res.Entries[1].UserName)
	}
	if len(res.Users) != 2 || res.Users[0].Name != "Jane Doe" {
		t.Fatalf("unexpected user options %+v", res.Users)
	}
}

func TestQueryDeniedForPlainUser(t *testing.T) {
	svc := NewService(stubSource{}, stubSource{}, rbac.NewEngine(rbac.DefaultRoles()), nil)
	ctx := rbac.WithPrincipal(context.Background(), viewer(rbac.RoleUser))

	_, err := svc.Query(ctx, Criteria{})
	var denied *shared.AccessDeniedError
	if !errors.As(err, &denied) {
		t.Fatalf("expected access denied, got %v", err)
	}
	_, err = svc.Export(ctx, Criteria{})
	if !errors.As(err, &denied) {
		t.Fatalf("expected access denied, got %v", err)
	}
}

func TestQueryPropagatesTransportError(t *testing.T) {
	src := stubSource{err: shared.ErrTransport("fetch_audit_logs", errors.New("down"))}
	svc := NewService(src, src, rbac.NewEngine(rbac.DefaultRoles()), nil)
	ctx := rbac.WithPrincipal(context.Background(), viewer(rbac.RoleTenantAdmin))

	_, err := svc.Query(ctx, Criteria{})
	var transport *shared.TransportError
	if !errors.As(err, &transport) {
		t.Fatalf("expected transport error, got %v", err)
	}
}
