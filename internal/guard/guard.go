package guard

import (
	"context"
	"errors"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/sportx-platform/access-gateway/internal/auth"
	"github.com/sportx-platform/access-gateway/internal/policy"
	"github.com/sportx-platform/access-gateway/internal/session"
)

// State is the guard's position in its check lifecycle.
type State int

const (
	StateChecking State = iota
	StateAuthorized
	StateRedirectingUnauthenticated
	StateRedirectingUnauthorized
	StateTimedOut
)

func (s State) String() string {
	switch s {
	case StateChecking:
		return "checking"
	case StateAuthorized:
		return "authorized"
	case StateRedirectingUnauthenticated:
		return "redirecting-unauthenticated"
	case StateRedirectingUnauthorized:
		return "redirecting-unauthorized"
	case StateTimedOut:
		return "timeout"
	default:
		return "unknown"
	}
}

// Decision is the guard's terminal answer for one navigation. For the
// timeout state, RedirectTo is the manual re-login affordance the UI offers;
// the guard never navigates there on its own.
type Decision struct {
	State      State
	RedirectTo string
	Reason     string
}

// Revalidator confirms a bootstrapped session with the backend.
type Revalidator interface {
	Revalidate(ctx context.Context) (*session.User, error)
}

// DefaultCheckTimeout bounds the checking phase. Past it the guard surfaces
// a manual escape hatch instead of spinning forever.
const DefaultCheckTimeout = 8 * time.Second

// RouteGuard re-checks authentication and role policy on every client-side
// navigation. Client transitions do not pass the edge gate, so this layer
// must stand on its own.
type RouteGuard struct {
	authCtx      *session.AuthContext
	revalidator  Revalidator
	allowedRoles []policy.Role
	fallbackPath string
	timeout      time.Duration
	logger       *zap.Logger
}

// Option customizes a RouteGuard.
type Option func(*RouteGuard)

// WithAllowedRoles restricts the guarded subtree to the given roles.
func WithAllowedRoles(roles ...policy.Role) Option {
	return func(g *RouteGuard) { g.allowedRoles = roles }
}

// WithFallbackPath overrides where a role-denied user lands; the default is
// the role's canonical home route.
func WithFallbackPath(path string) Option {
	return func(g *RouteGuard) { g.fallbackPath = path }
}

// WithTimeout overrides the checking-phase budget.
func WithTimeout(d time.Duration) Option {
	return func(g *RouteGuard) { g.timeout = d }
}

// New builds a guard over the shared auth context.
func New(authCtx *session.AuthContext, revalidator Revalidator, logger *zap.Logger, opts ...Option) *RouteGuard {
	g := &RouteGuard{
		authCtx:     authCtx,
		revalidator: revalidator,
		timeout:     DefaultCheckTimeout,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Evaluate runs one full check for the given path. Callers invoke it again
// on every route change; the guard reads the shared context fresh each time
// instead of caching a stale capture.
func (g *RouteGuard) Evaluate(ctx context.Context, currentPath string) Decision {
	deadline := time.Now().Add(g.timeout)
	timer := time.NewTimer(g.timeout)
	defer timer.Stop()

	states, cancel := g.authCtx.Subscribe()
	defer cancel()

	state := g.authCtx.Snapshot()
	for state.Loading {
		select {
		case state = <-states:
		case <-timer.C:
			return g.timedOut(currentPath)
		case <-ctx.Done():
			return g.timedOut(currentPath)
		}
	}

	if state.User == nil {
		return Decision{
			State:      StateRedirectingUnauthenticated,
			RedirectTo: loginURL(currentPath, auth.ReasonNoSession),
			Reason:     auth.ReasonNoSession,
		}
	}

	if !state.Validated {
		revalCtx, cancelReval := context.WithDeadline(ctx, deadline)
		user, err := g.revalidator.Revalidate(revalCtx)
		cancelReval()
		switch {
		case err == nil:
			g.authCtx.SetValidated(user)
			state = g.authCtx.Snapshot()
		case errors.Is(err, context.DeadlineExceeded):
			return g.timedOut(currentPath)
		default:
			// A dead session and an unreachable backend both fail closed.
			if !errors.Is(err, session.ErrSessionInvalid) {
				g.logger.Warn("session revalidation failed", zap.Error(err))
			}
			g.authCtx.Clear()
			return Decision{
				State:      StateRedirectingUnauthenticated,
				RedirectTo: loginURL(currentPath, auth.ReasonSessionInvalid),
				Reason:     auth.ReasonSessionInvalid,
			}
		}
	}

	if len(g.allowedRoles) > 0 && !g.roleAllowed(state.User.Role) {
		target := g.fallbackPath
		if target == "" {
			target = policy.HomeRouteFor(state.User.Role)
		}
		return Decision{
			State:      StateRedirectingUnauthorized,
			RedirectTo: target,
			Reason:     auth.ReasonAccessDenied,
		}
	}

	return Decision{State: StateAuthorized}
}

// Watch emits a fresh decision whenever the shared context changes while a
// subtree is already authorized, so a logout in another tab tears this one
// down too. The channel closes when ctx ends.
func (g *RouteGuard) Watch(ctx context.Context, currentPath string) <-chan Decision {
	out := make(chan Decision, 1)
	states, cancel := g.authCtx.Subscribe()

	go func() {
		defer cancel()
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case state := <-states:
				if state.Loading {
					continue
				}
				decision := g.Evaluate(ctx, currentPath)
				select {
				case out <- decision:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

// Can answers intra-dashboard feature gating for the current user.
func (g *RouteGuard) Can(p policy.Permission) bool {
	state := g.authCtx.Snapshot()
	if !state.Authenticated() {
		return false
	}
	return policy.HasPermission(state.User.Role, state.User.Permissions, p)
}

func (g *RouteGuard) roleAllowed(role policy.Role) bool {
	for _, allowed := range g.allowedRoles {
		if role == allowed {
			return true
		}
	}
	return false
}

func (g *RouteGuard) timedOut(currentPath string) Decision {
	return Decision{
		State:      StateTimedOut,
		RedirectTo: loginURL(currentPath, auth.ReasonTimeout),
		Reason:     auth.ReasonTimeout,
	}
}

func loginURL(currentPath, reason string) string {
	query := url.Values{}
	query.Set("redirect", currentPath)
	query.Set("reason", reason)
	return "/login?" + query.Encode()
}
