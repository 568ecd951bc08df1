package gate_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/gofiber/fiber/v2"

	httptransport "github.com/sportx-platform/access-gateway/internal/api/http"
	"github.com/sportx-platform/access-gateway/internal/api/http/handlers"
	"github.com/sportx-platform/access-gateway/internal/audit"
	"github.com/sportx-platform/access-gateway/internal/auth"
	"github.com/sportx-platform/access-gateway/internal/gate"
	"github.com/sportx-platform/access-gateway/internal/observability"
	"github.com/sportx-platform/access-gateway/internal/policy"
)

const (
	mainSecret    = "main-secret"
	matchesSecret = "matches-secret"
	ownerKey      = "owner-master-key"
)

func signToken(t *testing.T, secret, issuer string, role policy.Role, subject string, expiresAt time.Time) string {
	t.Helper()
	claims := &auth.Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func newGatewayApp(t *testing.T, maintenance bool) *fiber.App {
	t.Helper()
	logger := zap.NewNop()

	mainFamily := auth.MainFamily(mainSecret, logger)
	matchesFamily := auth.MatchesFamily(matchesSecret, logger)

	edge := gate.NewEdgeGate(gate.EdgeGateOptions{
		Main:        mainFamily,
		Matches:     matchesFamily,
		Metrics:     observability.NewMetrics(),
		Logger:      logger,
		Headers:     gate.NewSecurityHeaders("https://cdn.jsdelivr.net", "https://api.sportx.pro"),
		Maintenance: maintenance,
	})
	render := gate.NewRenderGate(mainFamily, nil, logger)

	hash, err := bcrypt.GenerateFromPassword([]byte(ownerKey), bcrypt.MinCost)
	require.NoError(t, err)
	owner := gate.NewOwnerGate(string(hash), logger)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, observability.NewMetrics(), 0)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler("test", "test", &audit.Store{}, nil),
		Shell:  handlers.NewShellHandler(),
		Auth:   handlers.NewAuthHandler([]auth.CredentialFamily{mainFamily, matchesFamily}, nil, logger),
		Edge:   edge,
		Render: render,
		Owner:  owner,
	})
	return app
}

func doRequest(t *testing.T, app *fiber.App, req *http.Request) *http.Response {
	t.Helper()
	resp, err := app.Test(req, 5000)
	require.NoError(t, err)
	return resp
}

func TestMissingCookieRedirectsToLogin(t *testing.T) {
	app := newGatewayApp(t, false)

	req := httptest.NewRequest(http.MethodGet, "/dashboard/player", nil)
	resp := doRequest(t, app, req)

	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	assert.Equal(t, "/login?redirect=%2Fdashboard%2Fplayer&reason=no_session", resp.Header.Get("Location"))
}

func TestExpiredTokenRedirectsAndClearsCookies(t *testing.T) {
	app := newGatewayApp(t, false)

	expired := signToken(t, mainSecret, auth.MainIssuer, policy.RoleCoach, "user-2", time.Now().Add(-time.Minute))
	req := httptest.NewRequest(http.MethodGet, "/dashboard/coach", nil)
	req.AddCookie(&http.Cookie{Name: auth.MainCookie, Value: expired})

	resp := doRequest(t, app, req)

	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	assert.Equal(t, "/login?redirect=%2Fdashboard%2Fcoach&reason=invalid_session", resp.Header.Get("Location"))

	cleared := map[string]bool{}
	for _, cookie := range resp.Cookies() {
		if cookie.Value == "" && cookie.MaxAge < 0 {
			cleared[cookie.Name] = true
		}
	}
	assert.True(t, cleared[auth.MainCookie], "canonical cookie should be cleared")
	assert.True(t, cleared[auth.LegacyMainCookie], "legacy cookie should be cleared")
}

func TestLegacyCookieAcceptedAtEdge(t *testing.T) {
	app := newGatewayApp(t, false)

	token := signToken(t, mainSecret, auth.MainIssuer, policy.RolePlayer, "user-1", time.Now().Add(time.Hour))
	req := httptest.NewRequest(http.MethodGet, "/dashboard/player", nil)
	req.AddCookie(&http.Cookie{Name: auth.LegacyMainCookie, Value: token})

	resp := doRequest(t, app, req)

	// The edge gate accepts the alias; the render gate behind it reads only
	// the canonical cookie, so the request re-authenticates there.
	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	assert.Equal(t, "/login?redirect=%2Fdashboard%2Fplayer&reason=no_session", resp.Header.Get("Location"))
}

func TestWrongRoleRedirectsToOwnHome(t *testing.T) {
	app := newGatewayApp(t, false)

	token := signToken(t, mainSecret, auth.MainIssuer, policy.RolePlayer, "user-1", time.Now().Add(time.Hour))
	req := httptest.NewRequest(http.MethodGet, "/dashboard/coach", nil)
	req.AddCookie(&http.Cookie{Name: auth.MainCookie, Value: token})

	resp := doRequest(t, app, req)

	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	assert.Equal(t, "/dashboard/player", resp.Header.Get("Location"))
}

func TestValidTokenReachesOwnDashboard(t *testing.T) {
	app := newGatewayApp(t, false)

	token := signToken(t, mainSecret, auth.MainIssuer, policy.RolePlayer, "user-1", time.Now().Add(time.Hour))
	req := httptest.NewRequest(http.MethodGet, "/dashboard/player", nil)
	req.AddCookie(&http.Cookie{Name: auth.MainCookie, Value: token})

	resp := doRequest(t, app, req)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSharedPathOpenToAnyRole(t *testing.T) {
	app := newGatewayApp(t, false)

	token := signToken(t, mainSecret, auth.MainIssuer, policy.RoleSecretary, "user-9", time.Now().Add(time.Hour))
	req := httptest.NewRequest(http.MethodGet, "/dashboard/notifications", nil)
	req.AddCookie(&http.Cookie{Name: auth.MainCookie, Value: token})

	resp := doRequest(t, app, req)
	// The edge gate lets any authenticated role through to shared paths; the
	// render gate only re-checks authentication.
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestEdgeGateIdempotent(t *testing.T) {
	app := newGatewayApp(t, false)

	token := signToken(t, mainSecret, auth.MainIssuer, policy.RolePlayer, "user-1", time.Now().Add(time.Hour))
	build := func() *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/dashboard/coach", nil)
		req.AddCookie(&http.Cookie{Name: auth.MainCookie, Value: token})
		return req
	}

	first := doRequest(t, app, build())
	second := doRequest(t, app, build())

	assert.Equal(t, first.StatusCode, second.StatusCode)
	assert.Equal(t, first.Header.Get("Location"), second.Header.Get("Location"))
}

func TestMaintenanceModeRedirectsWithoutLoop(t *testing.T) {
	app := newGatewayApp(t, true)

	resp := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	assert.Equal(t, gate.SuspendedPath, resp.Header.Get("Location"))

	resp = doRequest(t, app, httptest.NewRequest(http.MethodGet, gate.SuspendedPath, nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode, "suspension page itself must not redirect")
}

func TestSuspensionPageRedirectsAwayWhenFlagClear(t *testing.T) {
	app := newGatewayApp(t, false)

	resp := doRequest(t, app, httptest.NewRequest(http.MethodGet, gate.SuspendedPath, nil))
	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
}

func TestMainTokenDoesNotGrantMatchesAccess(t *testing.T) {
	app := newGatewayApp(t, false)

	token := signToken(t, mainSecret, auth.MainIssuer, policy.RolePlayer, "user-1", time.Now().Add(time.Hour))
	req := httptest.NewRequest(http.MethodGet, "/matches/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: auth.MainCookie, Value: token})

	resp := doRequest(t, app, req)

	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	assert.Equal(t, "/matches/login?redirect=%2Fmatches%2Fdashboard&reason=no_session", resp.Header.Get("Location"))
}

func TestMatchesTokenPassesMatchesBranch(t *testing.T) {
	app := newGatewayApp(t, false)

	token := signToken(t, matchesSecret, auth.MatchesIssuer, "", "user-7", time.Now().Add(time.Hour))
	req := httptest.NewRequest(http.MethodGet, "/matches/dashboard/fixtures", nil)
	req.AddCookie(&http.Cookie{Name: auth.MatchesCookie, Value: token})

	resp := doRequest(t, app, req)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestInvalidMatchesTokenClearsMatchesCookie(t *testing.T) {
	app := newGatewayApp(t, false)

	token := signToken(t, "wrong-secret", auth.MatchesIssuer, "", "user-7", time.Now().Add(time.Hour))
	req := httptest.NewRequest(http.MethodGet, "/matches/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: auth.MatchesCookie, Value: token})

	resp := doRequest(t, app, req)

	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	assert.Equal(t, "/matches/login?redirect=%2Fmatches%2Fdashboard&reason=invalid_session", resp.Header.Get("Location"))

	cleared := false
	for _, cookie := range resp.Cookies() {
		if cookie.Name == auth.MatchesCookie && cookie.Value == "" && cookie.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared, "matches cookie should be cleared")
}

func TestSecurityHeadersOnEveryResponsePath(t *testing.T) {
	app := newGatewayApp(t, false)

	// Passthrough response.
	public := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/", nil))
	// Redirect response.
	redirect := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/dashboard/player", nil))

	for _, resp := range []*http.Response{public, redirect} {
		assert.NotEmpty(t, resp.Header.Get("Strict-Transport-Security"))
		assert.Equal(t, "SAMEORIGIN", resp.Header.Get("X-Frame-Options"))
		assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
		assert.Equal(t, "strict-origin-when-cross-origin", resp.Header.Get("Referrer-Policy"))
		assert.NotEmpty(t, resp.Header.Get("Permissions-Policy"))
		assert.Contains(t, resp.Header.Get("Content-Security-Policy"), "default-src 'self'")
		assert.Contains(t, resp.Header.Get("Content-Security-Policy"), "wss:")
		assert.Contains(t, resp.Header.Get("Content-Security-Policy"), "upgrade-insecure-requests")
	}
}

func TestPublicAndStaticPassthrough(t *testing.T) {
	app := newGatewayApp(t, false)

	resp := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/login", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doRequest(t, app, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLogoutClearsAllFamilies(t *testing.T) {
	app := newGatewayApp(t, false)

	token := signToken(t, mainSecret, auth.MainIssuer, policy.RolePlayer, "user-1", time.Now().Add(time.Hour))
	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: auth.MainCookie, Value: token})

	resp := doRequest(t, app, req)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cleared := map[string]bool{}
	for _, cookie := range resp.Cookies() {
		if cookie.Value == "" && cookie.MaxAge < 0 {
			cleared[cookie.Name] = true
		}
	}
	assert.True(t, cleared[auth.MainCookie])
	assert.True(t, cleared[auth.LegacyMainCookie])
	assert.True(t, cleared[auth.MatchesCookie])
}
