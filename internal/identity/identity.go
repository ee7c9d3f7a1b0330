package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// ErrAuthenticationRequired is returned when no verified caller identity is
// present: the session token is missing or rejected, or the token vault has
// no streaming-provider token for the subject.
var ErrAuthenticationRequired = errors.New("authentication required")

// Identity is the provider's assertion about the signed-in user.
type Identity struct {
	Subject  string `json:"subject"`
	Nickname string `json:"nickname"`
	Name     string `json:"name"`
}

// Verifier resolves a session token to an identity assertion.
type Verifier interface {
	VerifySession(ctx context.Context, sessionToken string) (*Identity, error)
}

// TokenSource yields the streaming-provider bearer token stored in the
// identity provider's OAuth token vault for a subject.
type TokenSource interface {
	AccessToken(ctx context.Context, subject string) (string, error)
}

type Client struct {
	baseURL    string
	apiKey     string
	provider   string
	httpClient *http.Client

	mu     sync.RWMutex
	tokens map[string]*oauth2.Token
}

// NewClient builds a client for the hosted identity provider from
// IDENTITY_URL, IDENTITY_API_KEY and TOKEN_PROVIDER.
func NewClient() (*Client, error) {
	baseURL := os.Getenv("IDENTITY_URL")
	if baseURL == "" {
		return nil, fmt.Errorf("IDENTITY_URL must be set")
	}
	provider := os.Getenv("TOKEN_PROVIDER")
	if provider == "" {
		provider = "oauth_spotify"
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     os.Getenv("IDENTITY_API_KEY"),
		provider:   provider,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		tokens:     make(map[string]*oauth2.Token),
	}, nil
}

func (c *Client) VerifySession(ctx context.Context, sessionToken string) (*Identity, error) {
	if sessionToken == "" {
		return nil, ErrAuthenticationRequired
	}

	url := c.baseURL + "/v1/sessions/me"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create session request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+sessionToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to verify session: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusNotFound {
		return nil, ErrAuthenticationRequired
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("identity provider returned status %d", resp.StatusCode)
	}

	var ident Identity
	if err := json.NewDecoder(resp.Body).Decode(&ident); err != nil {
		return nil, fmt.Errorf("failed to decode identity response: %w", err)
	}
	if ident.Subject == "" {
		return nil, ErrAuthenticationRequired
	}
	return &ident, nil
}

type vaultTokenResponse struct {
	Token     string `json:"access_token"`
	ExpiresMs int64  `json:"expiration"`
}

// expirationBuffer defines how close to expiration a cached token is still
// considered usable.
const expirationBuffer = 60 * time.Second

// AccessToken returns the subject's streaming-provider token, fetching from
// the vault only when the cached token is missing or expiring soon.
func (c *Client) AccessToken(ctx context.Context, subject string) (string, error) {
	now := time.Now()

	c.mu.RLock()
	cached, ok := c.tokens[subject]
	c.mu.RUnlock()
	if ok && now.Before(cached.Expiry.Add(-expirationBuffer)) {
		return cached.AccessToken, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Another goroutine may have refreshed while we waited for the lock.
	if cached, ok := c.tokens[subject]; ok && time.Now().Before(cached.Expiry.Add(-expirationBuffer)) {
		return cached.AccessToken, nil
	}

	token, err := c.fetchVaultToken(ctx, subject)
	if err != nil {
		return "", err
	}
	c.tokens[subject] = token

	logger.Debug("Fetched vault token",
		zap.String("subject", subject),
		zap.Time("expiry", token.Expiry))
	return token.AccessToken, nil
}

func (c *Client) fetchVaultToken(ctx context.Context, subject string) (*oauth2.Token, error) {
	url := fmt.Sprintf("%s/v1/users/%s/oauth_tokens/%s", c.baseURL, subject, c.provider)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch vault token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrAuthenticationRequired
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("token vault returned status %d", resp.StatusCode)
	}

	var result vaultTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode vault token response: %w", err)
	}
	if result.Token == "" {
		return nil, ErrAuthenticationRequired
	}

	token := &oauth2.Token{AccessToken: result.Token}
	if result.ExpiresMs > 0 {
		token.Expiry = time.UnixMilli(result.ExpiresMs)
	}
	return token, nil
}
