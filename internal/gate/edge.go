package gate

import (
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/sportx-platform/access-gateway/internal/audit"
	"github.com/sportx-platform/access-gateway/internal/auth"
	"github.com/sportx-platform/access-gateway/internal/observability"
	"github.com/sportx-platform/access-gateway/internal/policy"
	"github.com/sportx-platform/access-gateway/internal/session"
)

const claimsKey = "auth_claims"

// SuspendedPath hosts the maintenance notice.
const SuspendedPath = "/delivery-suspended"

// publicPaths pass through with no auth logic at all.
var publicPaths = map[string]struct{}{
	"/":              {},
	"/login":         {},
	"/register":      {},
	"/matches/login": {},
	"/jobs":          {},
	"/about":         {},
	"/contact":       {},
}

// bypassPrefixes cover static assets, the gateway's own API surface, and
// the owner panel (which carries its own header gate).
var bypassPrefixes = []string{
	"/assets/",
	"/static/",
	"/api/",
	"/health/",
	"/auth/",
	"/owner/",
}

var bypassExact = map[string]struct{}{
	"/favicon.ico": {},
	"/robots.txt":  {},
}

// matchesPrefixes are the matches sub-product's protected paths.
var matchesPrefixes = []string{
	"/matches/dashboard",
	"/matches/account",
}

// EdgeGate runs once per incoming request, before any page code. It is a
// pure function of the request plus the maintenance flag: same request in,
// same decision out.
type EdgeGate struct {
	main        auth.CredentialFamily
	matches     auth.CredentialFamily
	denylist    *session.Denylist
	audit       audit.Recorder
	metrics     *observability.Metrics
	logger      *zap.Logger
	headers     SecurityHeaders
	maintenance bool
}

// EdgeGateOptions bundles dependencies for the edge gate.
type EdgeGateOptions struct {
	Main        auth.CredentialFamily
	Matches     auth.CredentialFamily
	Denylist    *session.Denylist
	Audit       audit.Recorder
	Metrics     *observability.Metrics
	Logger      *zap.Logger
	Headers     SecurityHeaders
	Maintenance bool
}

// NewEdgeGate constructs the gate.
func NewEdgeGate(opts EdgeGateOptions) *EdgeGate {
	if opts.Audit == nil {
		opts.Audit = audit.NopRecorder{}
	}
	return &EdgeGate{
		main:        opts.Main,
		matches:     opts.Matches,
		denylist:    opts.Denylist,
		audit:       opts.Audit,
		metrics:     opts.Metrics,
		logger:      opts.Logger,
		headers:     opts.Headers,
		maintenance: opts.Maintenance,
	}
}

// Handle classifies the request path and enforces the matching credential
// family. Evaluation order: maintenance override, public passthrough,
// matches branch, main dashboard branch, default passthrough. First match
// wins. Security headers go on every response path, redirects included.
func (g *EdgeGate) Handle(c *fiber.Ctx) error {
	g.headers.Apply(c)
	path := c.Path()

	if g.maintenance {
		if path != SuspendedPath {
			return c.Redirect(SuspendedPath, fiber.StatusTemporaryRedirect)
		}
		return c.Next()
	}
	if path == SuspendedPath {
		return c.Redirect("/", fiber.StatusTemporaryRedirect)
	}

	if isPublicPath(path) {
		return c.Next()
	}

	if underAny(path, matchesPrefixes) {
		// The matches sub-product has no internal roles: any verified
		// matches-session holder may use any matches-dashboard path.
		return g.guard(c, g.matches, path, false)
	}

	if path == policy.DashboardRoot || strings.HasPrefix(path, policy.DashboardRoot+"/") {
		return g.guard(c, g.main, path, true)
	}

	return c.Next()
}

func (g *EdgeGate) guard(c *fiber.Ctx, family auth.CredentialFamily, path string, roleCheck bool) error {
	token := family.TokenFrom(func(name string) string { return c.Cookies(name) })
	if token == "" {
		g.deny(c, family, audit.OutcomeNoSession, "")
		return g.redirectToLogin(c, family, path, auth.ReasonNoSession, false)
	}

	claims := family.Verifier.Verify(token)
	if claims == nil {
		g.deny(c, family, audit.OutcomeInvalidSession, "")
		return g.redirectToLogin(c, family, path, auth.ReasonInvalidSession, true)
	}

	if revoked, err := g.denylist.Contains(c.UserContext(), claims); err != nil || revoked {
		if err != nil {
			// A denylist we cannot read is a denylist that may contain this
			// token; ambiguity is never authorization.
			g.logger.Warn("denylist lookup failed", zap.Error(err))
		}
		g.deny(c, family, audit.OutcomeRevoked, claims.Subject)
		return g.redirectToLogin(c, family, path, auth.ReasonInvalidSession, true)
	}

	if roleCheck && !policy.IsSharedPath(path) && !policy.CanAccess(claims.Role, path) {
		g.denyWithRole(c, family, audit.OutcomeAccessDenied, claims.Subject, claims.Role)
		// Access denial is silent at the edge: the caller lands on their own
		// home route, not a login page.
		return c.Redirect(policy.HomeRouteFor(claims.Role), fiber.StatusTemporaryRedirect)
	}

	g.metrics.RecordDecision(family.Name, "pass")
	c.Locals(claimsKey, claims)
	return c.Next()
}

func (g *EdgeGate) redirectToLogin(c *fiber.Ctx, family auth.CredentialFamily, path, reason string, clearCookies bool) error {
	if clearCookies {
		for _, name := range family.AllCookieNames() {
			ExpireCookie(c, name)
		}
	}
	query := url.Values{}
	query.Set("redirect", path)
	query.Set("reason", reason)
	return c.Redirect(family.LoginPath+"?"+query.Encode(), fiber.StatusTemporaryRedirect)
}

func (g *EdgeGate) deny(c *fiber.Ctx, family auth.CredentialFamily, outcome audit.Outcome, subject string) {
	g.denyWithRole(c, family, outcome, subject, "")
}

func (g *EdgeGate) denyWithRole(c *fiber.Ctx, family auth.CredentialFamily, outcome audit.Outcome, subject string, role policy.Role) {
	g.metrics.RecordDecision(family.Name, string(outcome))
	g.audit.Record(audit.NewEvent(family.Name, outcome, c.Path(), c.Method(), subject, role, c.IP()))
}

// ClaimsFromContext retrieves verified claims stored by a gate layer.
func ClaimsFromContext(c *fiber.Ctx) (*auth.Claims, bool) {
	val := c.Locals(claimsKey)
	if val == nil {
		return nil, false
	}
	claims, ok := val.(*auth.Claims)
	return claims, ok
}

func isPublicPath(path string) bool {
	if _, ok := publicPaths[path]; ok {
		return true
	}
	if _, ok := bypassExact[path]; ok {
		return true
	}
	return underAny(path, bypassPrefixes)
}

// underAny matches prefix boundaries: a prefix ending in "/" matches as a
// raw prefix, otherwise the next byte must be a path separator so
// /matches/dashboard does not admit /matches/dashboardx.
func underAny(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasSuffix(prefix, "/") {
			if strings.HasPrefix(path, prefix) {
				return true
			}
			continue
		}
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}
