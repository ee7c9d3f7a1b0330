package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func testClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     "svc-key",
		provider:   "oauth_spotify",
		httpClient: &http.Client{Timeout: time.Second},
		tokens:     make(map[string]*oauth2.Token),
	}
}

func TestVerifySessionEmptyTokenSkipsProvider(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer server.Close()

	client := testClient(server.URL)
	_, err := client.VerifySession(context.Background(), "")
	assert.ErrorIs(t, err, ErrAuthenticationRequired)
	assert.Zero(t, calls, "empty token must not reach the provider")
}

func TestVerifySession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/sessions/me", r.URL.Path)
		require.Equal(t, "Bearer sess-1", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(Identity{Subject: "ext-1", Nickname: "alice", Name: "Alice"})
	}))
	defer server.Close()

	client := testClient(server.URL)
	ident, err := client.VerifySession(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "ext-1", ident.Subject)
	assert.Equal(t, "alice", ident.Nickname)
}

func TestVerifySessionRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := testClient(server.URL)
	_, err := client.VerifySession(context.Background(), "expired")
	assert.ErrorIs(t, err, ErrAuthenticationRequired)
}

func TestVerifySessionMissingSubject(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := testClient(server.URL)
	_, err := client.VerifySession(context.Background(), "sess-1")
	assert.ErrorIs(t, err, ErrAuthenticationRequired)
}

func TestAccessTokenCachesUntilExpiry(t *testing.T) {
	var fetches atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches.Add(1)
		require.Equal(t, "/v1/users/ext-1/oauth_tokens/oauth_spotify", r.URL.Path)
		require.Equal(t, "Bearer svc-key", r.Header.Get("Authorization"))

		expiry := time.Now().Add(time.Hour).UnixMilli()
		fmt.Fprintf(w, `{"access_token":"tok-1","expiration":%d}`, expiry)
	}))
	defer server.Close()

	client := testClient(server.URL)
	for i := 0; i < 3; i++ {
		token, err := client.AccessToken(context.Background(), "ext-1")
		require.NoError(t, err)
		assert.Equal(t, "tok-1", token)
	}
	assert.Equal(t, int64(1), fetches.Load(), "subsequent calls served from cache")
}

func TestAccessTokenRefreshesNearExpiry(t *testing.T) {
	var fetches atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := fetches.Add(1)
		// First token expires inside the refresh buffer, so the next
		// call must hit the vault again.
		expiry := time.Now().Add(30 * time.Second).UnixMilli()
		if n > 1 {
			expiry = time.Now().Add(time.Hour).UnixMilli()
		}
		fmt.Fprintf(w, `{"access_token":"tok-%d","expiration":%d}`, n, expiry)
	}))
	defer server.Close()

	client := testClient(server.URL)

	token, err := client.AccessToken(context.Background(), "ext-1")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)

	token, err = client.AccessToken(context.Background(), "ext-1")
	require.NoError(t, err)
	assert.Equal(t, "tok-2", token)
	assert.Equal(t, int64(2), fetches.Load())
}

func TestAccessTokenVaultMiss(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := testClient(server.URL)
	_, err := client.AccessToken(context.Background(), "ext-unlinked")
	assert.ErrorIs(t, err, ErrAuthenticationRequired)
}
