// Package recommend wraps the external recommendation backend. The backend
// owns the actual algorithm; this client only forwards top-track IDs and
// relays the recommended IDs back.
package recommend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// BackendError reports a non-success response from the recommendation
// backend, carrying the upstream error payload without transformation.
type BackendError struct {
	StatusCode int
	Body       string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("recommendation backend returned status %d: %s", e.StatusCode, e.Body)
}

type Recommender interface {
	Recommend(ctx context.Context, topTrackIds []string) ([]string, error)
}

type recommendationRequest struct {
	TopTracks []string `json:"topTracks"`
}

type httpRecommender struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a recommender for the backend at RECOMMENDER_URL.
func NewClient() (Recommender, error) {
	baseURL := os.Getenv("RECOMMENDER_URL")
	if baseURL == "" {
		return nil, fmt.Errorf("RECOMMENDER_URL must be set")
	}
	return NewClientWithBaseURL(baseURL), nil
}

// NewClientWithBaseURL points the recommender at an explicit backend root.
// Used by tests.
func NewClientWithBaseURL(baseURL string) Recommender {
	return &httpRecommender{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Recommend forwards the caller's top-track IDs and returns the backend's
// recommended track IDs as-is. Single attempt, no retry.
func (c *httpRecommender) Recommend(ctx context.Context, topTrackIds []string) ([]string, error) {
	data, err := json.Marshal(recommendationRequest{TopTracks: topTrackIds})
	if err != nil {
		return nil, fmt.Errorf("error encoding recommendation request: %w", err)
	}

	url := c.baseURL + "/api/recommendation"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("error creating recommendation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error calling recommendation backend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, &BackendError{StatusCode: resp.StatusCode, Body: string(bodyBytes)}
	}

	var recommended []string
	if err := json.NewDecoder(resp.Body).Decode(&recommended); err != nil {
		return nil, fmt.Errorf("error decoding recommendation response: %w", err)
	}
	return recommended, nil
}
