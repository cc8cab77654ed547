package token

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	cmap "github.com/orcaman/concurrent-map/v2"
	"github.com/rs/zerolog"
)

// Provider hands out bearer tokens scoped to a remote resource.
type Provider interface {
	Token(ctx context.Context, resource string) (string, error)
}

// refreshMargin is how long before expiry a cached token is discarded, so a
// token never expires mid-request.
const refreshMargin = 2 * time.Minute

// tokenResponse is the OAuth2 token endpoint response body.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

type cachedToken struct {
	value     string
	expiresAt time.Time
}

// Manager acquires client-credential tokens from the identity platform and
// caches one per resource. Tokens are held in memory only and never persisted.
type Manager struct {
	endpoint     string
	tenantID     string
	clientID     string
	clientSecret string
	httpClient   *http.Client
	cache        cmap.ConcurrentMap[string, cachedToken]
	logger       zerolog.Logger
}

// NewManager initializes a Manager against the given token endpoint base,
// e.g. https://login.microsoftonline.com.
func NewManager(endpoint, tenantID, clientID, clientSecret string, logger zerolog.Logger) *Manager {
	return &Manager{
		endpoint:     endpoint,
		tenantID:     tenantID,
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   &http.Client{Timeout: 15 * time.Second},
		cache:        cmap.New[cachedToken](),
		logger:       logger,
	}
}

// Token returns a bearer token for the resource, reusing the cached one while
// it has more than the refresh margin left.
func (m *Manager) Token(ctx context.Context, resource string) (string, error) {
	if cached, ok := m.cache.Get(resource); ok && time.Until(cached.expiresAt) > refreshMargin {
		return cached.value, nil
	}

	payload, err := m.exchange(ctx, resource)
	if err != nil {
		return "", err
	}

	m.cache.Set(resource, cachedToken{
		value:     payload.AccessToken,
		expiresAt: time.Now().Add(time.Duration(payload.ExpiresIn) * time.Second),
	})
	m.logger.Debug().Str("resource", resource).Int("expires_in", payload.ExpiresIn).Msg("Acquired access token")

	return payload.AccessToken, nil
}

// exchange performs the client-credentials grant for one resource scope.
func (m *Manager) exchange(ctx context.Context, resource string) (*tokenResponse, error) {
	if m.tenantID == "" || m.clientID == "" || m.clientSecret == "" {
		return nil, errors.New("token: client credentials config incomplete")
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", m.clientID)
	form.Set("client_secret", m.clientSecret)
	form.Set("scope", strings.TrimSuffix(resource, "/")+"/.default")

	endpoint := strings.TrimSuffix(m.endpoint, "/") + "/" + m.tenantID + "/oauth2/v2.0/token"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("token: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token: exchange failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("token: exchange unexpected status %d", res.StatusCode)
	}

	var payload tokenResponse
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("token: decode response: %w", err)
	}

	if payload.AccessToken == "" {
		return nil, errors.New("token: empty access token in response")
	}

	return &payload, nil
}
