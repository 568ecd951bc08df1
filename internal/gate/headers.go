package gate

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
)

// SecurityHeaders is the fixed header set stamped on every response the
// gateway produces, redirects included.
type SecurityHeaders struct {
	pairs [][2]string
}

// NewSecurityHeaders builds the header set. The CSP directive list is part
// of the wire contract; only the script CDN and backend hosts vary by
// environment.
func NewSecurityHeaders(scriptCDNHost, backendHost string) SecurityHeaders {
	csp := fmt.Sprintf(
		"default-src 'self'; "+
			"script-src 'self' %s; "+
			"style-src 'self' 'unsafe-inline'; "+
			"img-src 'self' data: %s; "+
			"connect-src 'self' %s wss:; "+
			"font-src 'self' data:; "+
			"frame-ancestors 'self'; "+
			"form-action 'self'; "+
			"base-uri 'self'; "+
			"upgrade-insecure-requests",
		scriptCDNHost, backendHost, backendHost,
	)

	return SecurityHeaders{pairs: [][2]string{
		{"Strict-Transport-Security", "max-age=63072000; includeSubDomains; preload"},
		{"X-Frame-Options", "SAMEORIGIN"},
		{"X-Content-Type-Options", "nosniff"},
		{"Referrer-Policy", "strict-origin-when-cross-origin"},
		{"Permissions-Policy", "camera=(), microphone=(), geolocation=()"},
		{"Content-Security-Policy", csp},
	}}
}

// Apply stamps all headers onto the response.
func (h SecurityHeaders) Apply(c *fiber.Ctx) {
	for _, pair := range h.pairs {
		c.Set(pair[0], pair[1])
	}
}

// ExpireCookie overwrites a cookie with an already-expired value so the
// browser stops resending a dead credential.
func ExpireCookie(c *fiber.Ctx, name string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
	})
}
