package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/sportx-platform/access-gateway/internal/api/http"
	"github.com/sportx-platform/access-gateway/internal/api/http/handlers"
	"github.com/sportx-platform/access-gateway/internal/audit"
	"github.com/sportx-platform/access-gateway/internal/auth"
	"github.com/sportx-platform/access-gateway/internal/config"
	"github.com/sportx-platform/access-gateway/internal/gate"
	"github.com/sportx-platform/access-gateway/internal/observability"
	"github.com/sportx-platform/access-gateway/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	if cfg.Auth.MainSecret == "" {
		logger.Warn("JWT_ACCESS_SECRET not set; every main-platform session will fail closed")
	}
	if cfg.Auth.MatchesSecret == "" {
		logger.Warn("MATCHES_JWT_SECRET not set; every matches session will fail closed")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	auditStore, err := audit.NewStore(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer auditStore.Close()

	if cfg.Postgres.RunMigrations {
		if err := auditStore.RunMigrations(ctx, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	var recorder audit.Recorder = audit.NopRecorder{}
	if auditStore.Enabled() {
		asyncRecorder := audit.NewAsyncRecorder(auditStore, logger)
		defer asyncRecorder.Close()
		recorder = asyncRecorder
	}

	denylist := session.NewDenylist(cfg.Redis, logger)
	defer denylist.Close()

	mainFamily := auth.MainFamily(cfg.Auth.MainSecret, logger)
	matchesFamily := auth.MatchesFamily(cfg.Auth.MatchesSecret, logger)

	metrics := observability.NewMetrics()
	headers := gate.NewSecurityHeaders(cfg.Security.ScriptCDNHost, cfg.Security.BackendHost)

	edgeGate := gate.NewEdgeGate(gate.EdgeGateOptions{
		Main:        mainFamily,
		Matches:     matchesFamily,
		Denylist:    denylist,
		Audit:       recorder,
		Metrics:     metrics,
		Logger:      logger,
		Headers:     headers,
		Maintenance: cfg.Security.DeliverySuspended,
	})
	renderGate := gate.NewRenderGate(mainFamily, denylist, logger)
	ownerGate := gate.NewOwnerGate(cfg.Auth.OwnerKeyHash, logger)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, auditStore, denylist),
		Shell:  handlers.NewShellHandler(),
		Auth:   handlers.NewAuthHandler([]auth.CredentialFamily{mainFamily, matchesFamily}, denylist, logger),
		Edge:   edgeGate,
		Render: renderGate,
		Owner:  ownerGate,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
