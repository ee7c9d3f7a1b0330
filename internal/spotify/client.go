package spotify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	defaultAPIURL = "https://api.spotify.com/v1"

	// Spotify caps batched metadata lookups at 50 ids and playlist track
	// inserts at 100 uris per call.
	maxIdsPerRequest  = 50
	maxUrisPerRequest = 100

	// Requests per second against the provider, shared across all calls.
	defaultRateLimit = 10
)

// APIError carries the provider's status code and error body for any
// non-success response. The body is surfaced without transformation.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("spotify returned status %d: %s", e.StatusCode, e.Body)
}

// Client makes one-shot authenticated REST calls against the streaming
// provider. Each call is a single attempt; failures propagate to the caller.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewClient() *Client {
	transport := &http.Transport{
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		MaxIdleConnsPerHost: 10,
	}
	return &Client{
		baseURL: defaultAPIURL,
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   30 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(defaultRateLimit), defaultRateLimit),
	}
}

// NewClientWithBaseURL points the client at an alternate API root. Used by
// tests.
func NewClientWithBaseURL(baseURL string) *Client {
	c := NewClient()
	c.baseURL = baseURL
	return c
}

func (c *Client) doJSON(ctx context.Context, method, token, url string, body any, expectStatus int, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait failed: %w", err)
	}

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("error encoding request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Error("Error making request to Spotify",
			zap.String("url", url),
			zap.Error(err))
		return fmt.Errorf("error making %s request: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != expectStatus {
		bodyBytes, _ := io.ReadAll(resp.Body)
		logger.Error("Error response from Spotify server",
			zap.Int("statusCode", resp.StatusCode),
			zap.String("url", url))
		return &APIError{StatusCode: resp.StatusCode, Body: string(bodyBytes)}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			logger.Error("Error decoding Spotify response body",
				zap.String("url", url),
				zap.Error(err))
			return fmt.Errorf("error decoding response: %w", err)
		}
	}
	return nil
}

func (c *Client) get(ctx context.Context, token, url string, out any) error {
	return c.doJSON(ctx, http.MethodGet, token, url, nil, http.StatusOK, out)
}

// chunk splits ids into slices of at most size elements, preserving order.
func chunk(ids []string, size int) [][]string {
	var chunks [][]string
	for i := 0; i < len(ids); i += size {
		end := i + size
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, ids[i:end])
	}
	return chunks
}
