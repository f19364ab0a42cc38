// Copyright (c) 2026 NovaGate Studio. All rights reserved.
// Author: khanh.ngo@novagate.studio

// Command portal is the entry point for the NovaGate account portal gateway.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to Redis (optional; in-memory stores otherwise).
//  4. Wire the upstream gateway, flow registry, and profile cache.
//  5. Wire HTTP handlers.
//  6. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/novagate/account-portal/internal/account"
	"github.com/novagate/account-portal/internal/api"
	"github.com/novagate/account-portal/internal/auth"
	"github.com/novagate/account-portal/internal/platform/config"
	"github.com/novagate/account-portal/internal/platform/constants"
	redisstore "github.com/novagate/account-portal/internal/platform/redis"
	"github.com/novagate/account-portal/internal/profile"
	"github.com/novagate/account-portal/internal/session"
	"github.com/novagate/account-portal/internal/upstream"
	"github.com/novagate/account-portal/internal/verification"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", constants.AppName))
	slog.SetDefault(log)

	log.Info("service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", constants.AppName))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.Bool("redis", cfg.HasRedis()),
	)

	// Application context: cancelled on shutdown so background sweepers
	// (rate limiter, in-memory stores) stop with the server.
	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	startupCtx, startupCancel := context.WithTimeout(appCtx, 30*time.Second)
	defer startupCancel()

	// ── 3. Redis (optional) ───────────────────────────────────────────────
	var rdb *goredis.Client
	if cfg.HasRedis() {
		rdb, err = redisstore.NewClient(startupCtx, cfg.RedisURL, log)
		must(log, err, "connect to redis")
		defer func() {
			log.Info("closing redis client")
			if cerr := rdb.Close(); cerr != nil {
				log.Error("redis close error", slog.Any("error", cerr))
			}
		}()
	}

	// ── 4. Upstream Gateway & State ───────────────────────────────────────
	gateway := upstream.New(cfg.UpstreamBaseURL, log)
	sessions := session.NewStore(cfg.SessionCookieDomain(), !cfg.IsLocal())
	accountClient := account.NewClient(gateway)

	var flowStore verification.Store
	var profileStore profile.CacheStore
	if rdb != nil {
		flowStore = verification.NewRedisStore(rdb)
		profileStore = profile.NewRedisStore(rdb)
	} else {
		flowStore = verification.NewMemoryStore(appCtx)
		profileStore = profile.NewMemoryStore(appCtx)
	}

	flows := verification.NewRegistry(flowStore, accountClient, log)
	profileCache := profile.NewCache(profileStore, accountClient, log)

	// ── 5. Health handlers (wired with real dependency checkers) ──────────
	probe := &http.Client{Timeout: 3 * time.Second}
	deps := api.HealthDependencies{
		// Any HTTP answer counts as reachable; only transport failures matter.
		CheckUpstream: func() error {
			response, err := probe.Head(cfg.UpstreamBaseURL)
			if err != nil {
				return err
			}
			return response.Body.Close()
		},
	}
	if rdb != nil {
		deps.CheckCache = func() error {
			return redisstore.Ping(context.Background(), rdb)
		}
	}
	liveness, readiness := api.NewHealthHandlers(deps, log)

	// ── 6. Domain Wiring ──────────────────────────────────────────────────
	authService := auth.NewService(auth.NewClient(gateway), log)
	authHandler := auth.NewHandler(authService, sessions)

	accountService := account.NewService(accountClient, flows, profileCache, log)
	accountHandler := account.NewHandler(accountService, sessions)

	// ── 7. HTTP Server ────────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      authHandler,
		Account:   accountHandler,
	}

	server := api.NewServer(appCtx, cfg, log, sessions, handlers)

	// ── 8. Graceful Shutdown ──────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
