package guard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sportx-platform/access-gateway/internal/policy"
	"github.com/sportx-platform/access-gateway/internal/session"
)

type fakeRevalidator struct {
	user  *session.User
	err   error
	calls int
}

func (f *fakeRevalidator) Revalidate(context.Context) (*session.User, error) {
	f.calls++
	return f.user, f.err
}

func player() *session.User {
	return &session.User{ID: "user-1", Role: policy.RolePlayer}
}

func TestTimeoutWhenContextNeverSettles(t *testing.T) {
	authCtx := session.NewAuthContext() // stays loading forever
	g := New(authCtx, &fakeRevalidator{}, zap.NewNop(), WithTimeout(50*time.Millisecond))

	decision := g.Evaluate(context.Background(), "/dashboard/player")

	assert.Equal(t, StateTimedOut, decision.State)
	assert.Equal(t, "timeout", decision.Reason)
	assert.Contains(t, decision.RedirectTo, "reason=timeout")
}

func TestUnauthenticatedRedirectsToLogin(t *testing.T) {
	authCtx := session.NewAuthContext()
	authCtx.Bootstrap(nil)
	g := New(authCtx, &fakeRevalidator{}, zap.NewNop())

	decision := g.Evaluate(context.Background(), "/dashboard/player")

	assert.Equal(t, StateRedirectingUnauthenticated, decision.State)
	assert.Equal(t, "/login?redirect=%2Fdashboard%2Fplayer&reason=no_session", decision.RedirectTo)
}

func TestBootstrapTriggersRevalidation(t *testing.T) {
	authCtx := session.NewAuthContext()
	authCtx.Bootstrap(player())
	reval := &fakeRevalidator{user: player()}
	g := New(authCtx, reval, zap.NewNop())

	decision := g.Evaluate(context.Background(), "/dashboard/player")

	assert.Equal(t, StateAuthorized, decision.State)
	assert.Equal(t, 1, reval.calls)
	assert.True(t, authCtx.Snapshot().Validated)
}

func TestValidatedSessionSkipsRevalidation(t *testing.T) {
	authCtx := session.NewAuthContext()
	authCtx.SetValidated(player())
	reval := &fakeRevalidator{}
	g := New(authCtx, reval, zap.NewNop())

	decision := g.Evaluate(context.Background(), "/dashboard/player")

	assert.Equal(t, StateAuthorized, decision.State)
	assert.Zero(t, reval.calls)
}

func TestInvalidSessionClearsContextAndRedirects(t *testing.T) {
	authCtx := session.NewAuthContext()
	authCtx.Bootstrap(player())
	g := New(authCtx, &fakeRevalidator{err: session.ErrSessionInvalid}, zap.NewNop())

	decision := g.Evaluate(context.Background(), "/dashboard/player")

	assert.Equal(t, StateRedirectingUnauthenticated, decision.State)
	assert.Equal(t, "session_invalid", decision.Reason)
	assert.Nil(t, authCtx.Snapshot().User)
}

func TestBackendErrorFailsClosed(t *testing.T) {
	authCtx := session.NewAuthContext()
	authCtx.Bootstrap(player())
	g := New(authCtx, &fakeRevalidator{err: errors.New("connection refused")}, zap.NewNop())

	decision := g.Evaluate(context.Background(), "/dashboard/player")

	assert.Equal(t, StateRedirectingUnauthenticated, decision.State)
	assert.Equal(t, "session_invalid", decision.Reason)
}

func TestRoleDenialFallsBackToHomeRoute(t *testing.T) {
	authCtx := session.NewAuthContext()
	authCtx.SetValidated(player())
	g := New(authCtx, &fakeRevalidator{}, zap.NewNop(), WithAllowedRoles(policy.RoleCoach))

	decision := g.Evaluate(context.Background(), "/dashboard/coach")

	assert.Equal(t, StateRedirectingUnauthorized, decision.State)
	assert.Equal(t, "/dashboard/player", decision.RedirectTo)
	assert.Equal(t, "access_denied", decision.Reason)
}

func TestRoleDenialHonorsExplicitFallback(t *testing.T) {
	authCtx := session.NewAuthContext()
	authCtx.SetValidated(player())
	g := New(authCtx, &fakeRevalidator{}, zap.NewNop(),
		WithAllowedRoles(policy.RoleCoach),
		WithFallbackPath("/dashboard"),
	)

	decision := g.Evaluate(context.Background(), "/dashboard/coach")

	assert.Equal(t, StateRedirectingUnauthorized, decision.State)
	assert.Equal(t, "/dashboard", decision.RedirectTo)
}

func TestEvaluateWaitsForLateSettle(t *testing.T) {
	authCtx := session.NewAuthContext()
	g := New(authCtx, &fakeRevalidator{user: player()}, zap.NewNop(), WithTimeout(2*time.Second))

	go func() {
		time.Sleep(30 * time.Millisecond)
		authCtx.Bootstrap(player())
	}()

	decision := g.Evaluate(context.Background(), "/dashboard/player")
	assert.Equal(t, StateAuthorized, decision.State)
}

func TestWatchDetectsLogoutInAnotherTab(t *testing.T) {
	authCtx := session.NewAuthContext()
	authCtx.SetValidated(player())
	g := New(authCtx, &fakeRevalidator{}, zap.NewNop(), WithTimeout(time.Second))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	decisions := g.Watch(ctx, "/dashboard/player")
	authCtx.Clear()

	select {
	case decision := <-decisions:
		assert.Equal(t, StateRedirectingUnauthenticated, decision.State)
	case <-time.After(2 * time.Second):
		t.Fatal("no decision after logout")
	}
}

func TestCanUsesPermissionPolicy(t *testing.T) {
	authCtx := session.NewAuthContext()
	authCtx.SetValidated(&session.User{
		ID:          "team-1",
		Role:        policy.RoleTeam,
		Permissions: policy.NewPermissionSet("users.view"),
	})
	g := New(authCtx, &fakeRevalidator{}, zap.NewNop())

	assert.True(t, g.Can("users.view"))
	assert.False(t, g.Can("users.delete"))

	authCtx.Clear()
	assert.False(t, g.Can("users.view"), "no permissions without a session")
}

func TestStateStrings(t *testing.T) {
	require.Equal(t, "checking", StateChecking.String())
	require.Equal(t, "authorized", StateAuthorized.String())
	require.Equal(t, "timeout", StateTimedOut.String())
}
