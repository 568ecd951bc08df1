package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/sportx-platform/access-gateway/internal/gate"
)

// ShellHandler serves the minimal page shells the gate layers protect. The
// real product UI lives in the frontend bundle; these shells exist so every
// protected route resolves to something observable behind the gates.
type ShellHandler struct{}

// NewShellHandler returns a new handler instance.
func NewShellHandler() *ShellHandler {
	return &ShellHandler{}
}

// Home serves the public landing shell.
func (h *ShellHandler) Home(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"page": "home"})
}

// Login echoes the redirect contract so the login UI can restore the
// caller's target and translate the reason code.
func (h *ShellHandler) Login(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"page":     "login",
		"redirect": c.Query("redirect"),
		"reason":   c.Query("reason"),
	})
}

// MatchesLogin is the matches sub-product's login shell.
func (h *ShellHandler) MatchesLogin(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"page":     "matches-login",
		"redirect": c.Query("redirect"),
		"reason":   c.Query("reason"),
	})
}

// DeliverySuspended serves the maintenance notice.
func (h *ShellHandler) DeliverySuspended(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"page": "delivery-suspended"})
}

// Dashboard serves the server-rendered dashboard shell. The render gate has
// already verified the session; claims are present in locals.
func (h *ShellHandler) Dashboard(c *fiber.Ctx) error {
	payload := fiber.Map{
		"page": "dashboard",
		"path": c.Path(),
	}
	if claims, ok := gate.ClaimsFromContext(c); ok {
		payload["subject"] = claims.Subject
		payload["role"] = claims.Role
	}
	return c.JSON(payload)
}

// MatchesDashboard serves the matches dashboard shell.
func (h *ShellHandler) MatchesDashboard(c *fiber.Ctx) error {
	payload := fiber.Map{
		"page": "matches-dashboard",
		"path": c.Path(),
	}
	if claims, ok := gate.ClaimsFromContext(c); ok {
		payload["subject"] = claims.Subject
	}
	return c.JSON(payload)
}

// OwnerPanel serves the hidden platform-control shell.
func (h *ShellHandler) OwnerPanel(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"page": "owner-panel"})
}
