package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/sportx-platform/access-gateway/internal/auth"
	"github.com/sportx-platform/access-gateway/internal/gate"
	"github.com/sportx-platform/access-gateway/internal/session"
)

// AuthHandler owns the gateway's slice of the auth lifecycle: logout. Login
// belongs to the backend, which mints the cookies this gateway verifies.
type AuthHandler struct {
	families []auth.CredentialFamily
	denylist *session.Denylist
	logger   *zap.Logger
}

// NewAuthHandler returns a new handler instance.
func NewAuthHandler(families []auth.CredentialFamily, denylist *session.Denylist, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{families: families, denylist: denylist, logger: logger}
}

// Logout revokes every presented credential until its natural expiry and
// clears the cookies. Unverifiable tokens are just cleared; they already
// fail the gates.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	for _, family := range h.families {
		token := family.TokenFrom(func(name string) string { return c.Cookies(name) })
		if token != "" {
			if claims := family.Verifier.Verify(token); claims != nil {
				if err := h.denylist.Revoke(c.UserContext(), claims); err != nil {
					h.logger.Warn("denylist revoke failed",
						zap.String("family", family.Name),
						zap.Error(err),
					)
				}
			}
		}
		for _, name := range family.AllCookieNames() {
			gate.ExpireCookie(c, name)
		}
	}
	return c.JSON(fiber.Map{"status": "logged_out"})
}
