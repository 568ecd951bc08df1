package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/sportx-platform/access-gateway/internal/api/http/handlers"
	"github.com/sportx-platform/access-gateway/internal/gate"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health *handlers.HealthHandler
	Shell  *handlers.ShellHandler
	Auth   *handlers.AuthHandler
	Edge   *gate.EdgeGate
	Render *gate.RenderGate
	Owner  *gate.OwnerGate
}

// RegisterRoutes wires HTTP routes. The edge gate runs on every request
// before any route handler; the render and owner gates wrap their subtrees.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Use(cfg.Edge.Handle)

	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Get("/", cfg.Shell.Home)
	app.Get("/login", cfg.Shell.Login)
	app.Get("/matches/login", cfg.Shell.MatchesLogin)
	app.Get(gate.SuspendedPath, cfg.Shell.DeliverySuspended)

	app.Post("/auth/logout", cfg.Auth.Logout)

	dashboard := app.Group("/dashboard", cfg.Render.Handle)
	dashboard.Get("/", cfg.Shell.Dashboard)
	dashboard.Get("/*", cfg.Shell.Dashboard)

	matches := app.Group("/matches/dashboard")
	matches.Get("/", cfg.Shell.MatchesDashboard)
	matches.Get("/*", cfg.Shell.MatchesDashboard)

	owner := app.Group("/owner", cfg.Owner.Handle)
	owner.Get("/", cfg.Shell.OwnerPanel)
	owner.Get("/*", cfg.Shell.OwnerPanel)
}
