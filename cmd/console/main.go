package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/colloki/console/internal/app"
	"github.com/colloki/console/internal/observability"
	"github.com/colloki/console/internal/platform/cache"
	"github.com/colloki/console/internal/platform/db"
	"github.com/colloki/console/internal/remote"
	"github.com/colloki/console/internal/settings"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	redisClient, err := cache.New(ctx, cache.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	var persister settings.Persister = settings.NewRedisPersister(redisClient)
	if cfg.SettingsBackend == app.SettingsBackendPostgres {
		pool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
		if err != nil {
			logger.Error("connect postgres", slog.Any("error", err))
			os.Exit(1)
		}
		defer pool.Close()
		pg := settings.NewPostgresPersister(pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			logger.Error("prepare settings schema", slog.Any("error", err))
			os.Exit(1)
		}
		persister = pg
	}

	metrics := observability.NewMetrics()
	gateway := remote.New(remote.Options{
		Latency: cfg.GatewayLatency,
		Metrics: metrics.Gateway(),
		Logger:  logger,
	})
	gateway.Seed(cfg.DefaultTenantID)

	params, err := app.Assemble(ctx, app.Dependencies{
		Logger:    logger,
		Config:    cfg,
		Redis:     redisClient,
		Persister: persister,
		Gateway:   gateway,
		Metrics:   metrics,
	})
	if err != nil {
		logger.Error("assemble console", slog.Any("error", err))
		os.Exit(1)
	}
	params.RequestLogging = !cfg.IsProduction()

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      app.NewRouter(params),
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("tenant", cfg.DefaultTenantID))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
