package profile

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sportx-platform/access-gateway/internal/auth"
	"github.com/sportx-platform/access-gateway/internal/policy"
	"github.com/sportx-platform/access-gateway/internal/session"
)

func TestFetchDecodesProfile(t *testing.T) {
	var gotCookie string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/account/profile", r.URL.Path)
		if cookie, err := r.Cookie(auth.MainCookie); err == nil {
			gotCookie = cookie.Value
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"user-1","role":"team","permissions":["users.view","jobs.edit"]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, zap.NewNop())
	user, err := client.Fetch(context.Background(), "token-value")

	require.NoError(t, err)
	assert.Equal(t, "token-value", gotCookie)
	assert.Equal(t, "user-1", user.ID)
	assert.Equal(t, policy.RoleTeam, user.Role)
	assert.True(t, user.Permissions.Has("users.view"))
	assert.False(t, user.Permissions.Has("users.delete"))
}

func TestFetchMapsUnauthorizedToSessionInvalid(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(server.URL, zap.NewNop())
	_, err := client.Fetch(context.Background(), "stale-token")

	assert.ErrorIs(t, err, session.ErrSessionInvalid)
}

func TestFetchOtherStatusIsPlainError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, zap.NewNop())
	_, err := client.Fetch(context.Background(), "token")

	require.Error(t, err)
	assert.NotErrorIs(t, err, session.ErrSessionInvalid)
}

func TestRevalidatorWithoutTokenIsInvalid(t *testing.T) {
	client := NewClient("http://backend.invalid", zap.NewNop())
	reval := NewRevalidator(client, func() string { return "" })

	_, err := reval.Revalidate(context.Background())
	assert.ErrorIs(t, err, session.ErrSessionInvalid)
}
