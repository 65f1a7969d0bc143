package auth

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/colloki/console/internal/platform/httpx"
	"github.com/colloki/console/internal/rbac"
	"github.com/colloki/console/internal/settings"
	"github.com/colloki/console/internal/shared"
)

// SettingsReader exposes the tenant settings the second-factor gate depends on.
type SettingsReader interface {
	Current(ctx context.Context, tenantID string) (settings.Snapshot, error)
}

// Middleware turns the session's authentication record into a request principal.
type Middleware struct {
	settings SettingsReader
	logger   *slog.Logger
}

// NewMiddleware constructs Middleware.
func NewMiddleware(settings SettingsReader, logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return Middleware{settings: settings, logger: logger}
}

// LoadPrincipal places the logged-in user into the request context.
func (m Middleware) LoadPrincipal(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec, ok := ReadRecord(shared.SessionFromContext(r.Context()))
		if ok {
			r = r.WithContext(rbac.WithPrincipal(r.Context(), rec.User))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSecondFactor rejects principals of tenants with enforce2FA until the session has
// verified a one-time passcode. Anonymous requests pass through to the permission checks.
func (m Middleware) RequireSecondFactor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec, ok := ReadRecord(shared.SessionFromContext(r.Context()))
		if !ok || rec.SecondFactor {
			next.ServeHTTP(w, r)
			return
		}
		snap, err := m.settings.Current(r.Context(), rec.TenantID)
		if err != nil {
			m.logger.Error("load tenant settings", slog.String("tenant_id", rec.TenantID), slog.Any("error", err))
			httpx.RespondError(w, err)
			return
		}
		if snap.Enforce2FA {
			httpx.Problem(w, http.StatusForbidden, "Second Factor Required", "verify a one-time passcode to continue")
			return
		}
		next.ServeHTTP(w, r)
	})
}
