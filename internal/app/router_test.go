package app

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/colloki/console/internal/observability"
	"github.com/colloki/console/internal/remote"
	"github.com/colloki/console/internal/settings"
	"github.com/colloki/console/internal/shared"
)

type consoleClient struct {
	t      *testing.T
	base   string
	client *http.Client
	csrf   string
}

func newConsole(t *testing.T) *consoleClient {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	metrics := observability.NewMetrics()
	gateway := remote.New(remote.Options{Metrics: metrics.Gateway()})
	gateway.Seed("tenant-123")

	cfg := &Config{
		AppEnv:            "test",
		AppRequestTimeout: 5 * time.Second,
		RateLimitPerMin:   1000,
		SessionTTL:        time.Hour,
		CSRFSecret:        "csrf-secret",
		SettingsBackend:   SettingsBackendRedis,
		DefaultTenantID:   "tenant-123",
	}
	params, err := Assemble(context.Background(), Dependencies{
		Config:    cfg,
		Redis:     client,
		Persister: settings.NewRedisPersister(client),
		Gateway:   gateway,
		Metrics:   metrics,
	})
	require.NoError(t, err)

	srv := httptest.NewServer(NewRouter(params))
	t.Cleanup(srv.Close)
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &consoleClient{t: t, base: srv.URL, client: &http.Client{Jar: jar}}
}

func (c *consoleClient) do(method, path, body string) (int, string) {
	c.t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, c.base+path, reader)
	require.NoError(c.t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.csrf != "" {
		req.Header.Set(shared.CSRFHeader, c.csrf)
	}
	resp, err := c.client.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	return resp.StatusCode, string(data)
}

func (c *consoleClient) login(email string) {
	c.t.Helper()
	code, body := c.do(http.MethodGet, "/auth/csrf", "")
	require.Equal(c.t, http.StatusOK, code)
	var token map[string]string
	require.NoError(c.t, json.Unmarshal([]byte(body), &token))
	c.csrf = token["token"]

	code, body = c.do(http.MethodPost, "/auth/login", `{"email":"`+email+`"}`)
	require.Equal(c.t, http.StatusOK, code, body)
	var session struct {
		CSRFToken string `json:"csrfToken"`
	}
	require.NoError(c.t, json.Unmarshal([]byte(body), &session))
	require.NotEmpty(c.t, session.CSRFToken)
	c.csrf = session.CSRFToken
}

func TestHealthz(t *testing.T) {
	c := newConsole(t)
	code, body := c.do(http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, code)
	require.JSONEq(t, `{"status":"ok"}`, body)
}

func TestUnsafeRequestsRequireCSRFToken(t *testing.T) {
	c := newConsole(t)
	code, _ := c.do(http.MethodPost, "/auth/login", `{"email":"admin@colloki.com"}`)
	require.Equal(t, http.StatusForbidden, code)
}

func TestAnonymousRequestsAreRejected(t *testing.T) {
	c := newConsole(t)
	code, _ := c.do(http.MethodGet, "/users", "")
	require.Equal(t, http.StatusUnauthorized, code)
}

func TestAdminSettingsRoundTrip(t *testing.T) {
	c := newConsole(t)
	c.login("admin@colloki.com")

	code, body := c.do(http.MethodGet, "/users", "")
	require.Equal(t, http.StatusOK, code)
	require.Contains(t, body, "jane.doe@colloki.com")

	code, body = c.do(http.MethodPatch, "/settings", `{"primaryColor":"#000000"}`)
	require.Equal(t, http.StatusOK, code, body)
	var view settings.View
	require.NoError(t, json.Unmarshal([]byte(body), &view))
	require.True(t, view.Dirty)
	require.Equal(t, "#000000", view.Settings.PrimaryColor)

	code, body = c.do(http.MethodPatch, "/settings", `{"supportEmail":"","customDomain":"","logoUrl":""}`)
	require.Equal(t, http.StatusOK, code, body)
	require.NoError(t, json.Unmarshal([]byte(body), &view))
	require.Empty(t, view.Settings.SupportEmail)
	require.Empty(t, view.Settings.CustomDomain)

	code, body = c.do(http.MethodPost, "/settings/save", "")
	require.Equal(t, http.StatusOK, code, body)
	require.NoError(t, json.Unmarshal([]byte(body), &view))
	require.False(t, view.Dirty)

	code, body = c.do(http.MethodGet, "/audit/export.csv", "")
	require.Equal(t, http.StatusOK, code)
	require.True(t, strings.HasPrefix(body, "Timestamp,User,Action,Details\n"))
	require.Contains(t, body, shared.ActionSettingsUpdate)
	require.Contains(t, body, shared.ActionUserLogin)

	code, body = c.do(http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, code)
	require.Contains(t, body, "console_http_requests_total")
	require.Contains(t, body, "console_gateway_calls_total")
}

func TestBasicUserIsDeniedAdminRoutes(t *testing.T) {
	c := newConsole(t)
	c.login("jane.doe@colloki.com")

	code, _ := c.do(http.MethodGet, "/users", "")
	require.Equal(t, http.StatusForbidden, code)
	code, _ = c.do(http.MethodGet, "/files", "")
	require.Equal(t, http.StatusOK, code)

	code, body := c.do(http.MethodGet, "/navigation", "")
	require.Equal(t, http.StatusOK, code)
	require.NotContains(t, body, "/security/users")
}

func TestLogoutEndsSession(t *testing.T) {
	c := newConsole(t)
	c.login("admin@colloki.com")
	code, _ := c.do(http.MethodPost, "/auth/logout", "")
	require.Equal(t, http.StatusNoContent, code)
	code, _ = c.do(http.MethodGet, "/auth/me", "")
	require.Equal(t, http.StatusUnauthorized, code)
}
