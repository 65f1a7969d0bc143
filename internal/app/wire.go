package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/colloki/console/internal/audit"
	audithttp "github.com/colloki/console/internal/audit/http"
	"github.com/colloki/console/internal/auth"
	"github.com/colloki/console/internal/files"
	"github.com/colloki/console/internal/observability"
	"github.com/colloki/console/internal/rbac"
	"github.com/colloki/console/internal/remote"
	"github.com/colloki/console/internal/roles"
	"github.com/colloki/console/internal/settings"
	"github.com/colloki/console/internal/shared"
	"github.com/colloki/console/internal/users"
)

const idempotencyTTL = 24 * time.Hour

// Dependencies are the process-wide resources the console is assembled from.
type Dependencies struct {
	Logger    *slog.Logger
	Config    *Config
	Redis     *redis.Client
	Persister settings.Persister
	Gateway   *remote.Gateway
	Metrics   *observability.Metrics
}

// Assemble builds every service and handler and returns the router parameters.
// The default tenant's role catalog is loaded into the engine before returning.
func Assemble(ctx context.Context, deps Dependencies) (RouterParams, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := deps.Config
	gateway := deps.Gateway

	engine := rbac.NewEngine(rbac.DefaultRoles())
	rbacMiddleware := rbac.Middleware{Engine: engine, Logger: logger}
	auditLogger := shared.NewAuditLogger(gateway)

	sessions := shared.NewSessionManager(deps.Redis, "console_session", cfg.SessionTTL, cfg.IsProduction())
	csrf := shared.NewCSRFManager(cfg.CSRFSecret)
	idempotency := shared.NewIdempotencyStore(deps.Redis, idempotencyTTL)

	rolesService := roles.NewService(gateway, engine, auditLogger, logger)
	if err := rolesService.Refresh(ctx, cfg.DefaultTenantID); err != nil {
		return RouterParams{}, err
	}

	settingsService := settings.NewService(settings.NewRegistry(deps.Persister), gateway, engine, auditLogger, logger)
	authService := auth.NewService(gateway, sessions, auditLogger, cfg.DefaultTenantID, logger)
	twoFactor := auth.NewTwoFactor(deps.Redis, cfg.TOTPIssuer)

	return RouterParams{
		Logger:             logger,
		Config:             cfg,
		SessionManager:     sessions,
		CSRFManager:        csrf,
		AuthMiddleware:     auth.NewMiddleware(settingsService, logger),
		AuthHandler:        auth.NewHandler(logger, authService, twoFactor, csrf, rbacMiddleware),
		UsersHandler:       users.NewHandler(logger, users.NewService(gateway, engine, auditLogger, logger), idempotency, authService, rbacMiddleware),
		RolesHandler:       roles.NewHandler(logger, rolesService, rbacMiddleware),
		FilesHandler:       files.NewHandler(logger, files.NewService(gateway, engine, auditLogger, logger), rbacMiddleware),
		SettingsHandler:    settings.NewHandler(logger, settingsService, rbacMiddleware),
		AuditHandler:       audithttp.NewHandler(logger, audit.NewService(gateway, gateway, engine, logger), rbacMiddleware),
		PermissionsHandler: rbac.NewPermissionsHandler(logger, engine, rbac.DefaultNavigation(), rbacMiddleware),
		Metrics:            deps.Metrics,
	}, nil
}
