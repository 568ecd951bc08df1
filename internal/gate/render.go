package gate

import (
	"net/url"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/sportx-platform/access-gateway/internal/auth"
	"github.com/sportx-platform/access-gateway/internal/session"
)

// RenderGate wraps the server-rendered dashboard shell. It re-verifies the
// session on its own, without trusting the edge gate: a caching proxy or a
// future misconfiguration upstream must not leak protected content. It is
// deliberately coarse (authenticated-or-not); role correctness belongs to
// the edge gate and the client route guard.
//
// Unlike the edge gate, only the canonical cookie is read here. The legacy
// alias is an edge-layer compatibility shim; a session carried solely by the
// alias re-authenticates when it reaches a server-rendered shell.
type RenderGate struct {
	family   auth.CredentialFamily
	denylist *session.Denylist
	logger   *zap.Logger
}

// NewRenderGate constructs the render gate for the main family.
func NewRenderGate(family auth.CredentialFamily, denylist *session.Denylist, logger *zap.Logger) *RenderGate {
	return &RenderGate{family: family, denylist: denylist, logger: logger}
}

// Handle verifies the canonical cookie and redirects to login before any
// shell content is written. Any failure, absent cookie included, reports
// no_session; distinguishing invalid_session and clearing stale cookies is
// the edge gate's job.
func (g *RenderGate) Handle(c *fiber.Ctx) error {
	token := c.Cookies(g.family.CookieName)
	claims := g.family.Verifier.Verify(token)
	if claims == nil {
		return g.redirectToLogin(c)
	}

	if revoked, err := g.denylist.Contains(c.UserContext(), claims); err != nil || revoked {
		if err != nil {
			g.logger.Warn("denylist lookup failed", zap.Error(err))
		}
		return g.redirectToLogin(c)
	}

	c.Locals(claimsKey, claims)
	return c.Next()
}

func (g *RenderGate) redirectToLogin(c *fiber.Ctx) error {
	query := url.Values{}
	query.Set("redirect", c.Path())
	query.Set("reason", auth.ReasonNoSession)
	return c.Redirect(g.family.LoginPath+"?"+query.Encode(), fiber.StatusTemporaryRedirect)
}
