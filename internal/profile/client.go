package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/sportx-platform/access-gateway/internal/auth"
	"github.com/sportx-platform/access-gateway/internal/policy"
	"github.com/sportx-platform/access-gateway/internal/session"
)

const profilePath = "/api/account/profile"

// payload mirrors the backend's profile response.
type payload struct {
	ID          string              `json:"id"`
	Role        policy.Role         `json:"role"`
	Permissions []policy.Permission `json:"permissions"`
}

// Client revalidates sessions against the platform backend's profile
// endpoint. The backend is a black box here; only its cookie-in,
// profile-out contract matters.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient builds a profile client.
func NewClient(baseURL string, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

// Fetch asks the backend who the session belongs to. A 401 means the
// session is dead (session.ErrSessionInvalid); any other failure is an
// error the caller must treat as not-validated.
func (c *Client) Fetch(ctx context.Context, token string) (*session.User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+profilePath, nil)
	if err != nil {
		return nil, err
	}
	req.AddCookie(&http.Cookie{Name: auth.MainCookie, Value: token})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, session.ErrSessionInvalid
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("profile fetch: unexpected status %d", resp.StatusCode)
	}

	var body payload
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("profile fetch: decode: %w", err)
	}

	return &session.User{
		ID:          body.ID,
		Role:        body.Role,
		Permissions: policy.NewPermissionSet(body.Permissions...),
	}, nil
}

// Revalidator adapts the client to the route guard's revalidation hook,
// binding a token source (the locally stored credential).
type Revalidator struct {
	client      *Client
	tokenSource func() string
}

// NewRevalidator builds the adapter.
func NewRevalidator(client *Client, tokenSource func() string) *Revalidator {
	return &Revalidator{client: client, tokenSource: tokenSource}
}

// Revalidate fetches the profile with the current token. An absent token is
// an invalid session.
func (r *Revalidator) Revalidate(ctx context.Context) (*session.User, error) {
	token := r.tokenSource()
	if token == "" {
		return nil, session.ErrSessionInvalid
	}
	return r.client.Fetch(ctx, token)
}
