package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTopTracksBuildsRequest(t *testing.T) {
	var gotPath, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.RequestURI()
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(topTracksResponse{Items: []Track{{Id: "t1"}, {Id: "t2"}}})
	}))
	defer server.Close()

	client := NewClientWithBaseURL(server.URL)
	tracks, err := client.GetTopTracks(context.Background(), "tok", TimeRangeMedium, 50)
	require.NoError(t, err)
	require.Len(t, tracks, 2)
	assert.Equal(t, "/me/top/tracks?limit=50&time_range=medium_term", gotPath)
	assert.Equal(t, "Bearer tok", gotAuth)
}

func TestGetTracksBatchesAtFifty(t *testing.T) {
	var batchSizes []int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ids := strings.Split(r.URL.Query().Get("ids"), ",")
		batchSizes = append(batchSizes, len(ids))

		tracks := make([]Track, len(ids))
		for i, id := range ids {
			tracks[i] = Track{Id: id}
		}
		json.NewEncoder(w).Encode(tracksResponse{Tracks: tracks})
	}))
	defer server.Close()

	ids := make([]string, 120)
	for i := range ids {
		ids[i] = fmt.Sprintf("t%d", i)
	}

	client := NewClientWithBaseURL(server.URL)
	tracks, err := client.GetTracks(context.Background(), "tok", ids)
	require.NoError(t, err)
	assert.Len(t, tracks, 120)
	assert.Equal(t, []int{50, 50, 20}, batchSizes)
	assert.Equal(t, "t0", tracks[0].Id)
	assert.Equal(t, "t119", tracks[119].Id)
}

func TestGetArtistsBatchesAtFifty(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		ids := strings.Split(r.URL.Query().Get("ids"), ",")
		require.LessOrEqual(t, len(ids), 50)

		artists := make([]Artist, len(ids))
		for i, id := range ids {
			artists[i] = Artist{Id: id, Genres: []string{"rock"}}
		}
		json.NewEncoder(w).Encode(artistsResponse{Artists: artists})
	}))
	defer server.Close()

	ids := make([]string, 51)
	for i := range ids {
		ids[i] = fmt.Sprintf("a%d", i)
	}

	client := NewClientWithBaseURL(server.URL)
	artists, err := client.GetArtists(context.Background(), "tok", ids)
	require.NoError(t, err)
	assert.Len(t, artists, 51)
	assert.Equal(t, 2, calls)
}

func TestAPIErrorCarriesStatusAndBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"status":403,"message":"Insufficient client scope"}}`))
	}))
	defer server.Close()

	client := NewClientWithBaseURL(server.URL)
	_, err := client.GetTopTracks(context.Background(), "tok", TimeRangeLong, 50)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "Insufficient client scope")
}

func TestCreatePlaylist(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/me/playlists", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "summer", body["name"])
		assert.Equal(t, true, body["public"])

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"sp1","name":"summer","external_urls":{"spotify":"https://open.spotify.com/playlist/sp1"}}`))
	}))
	defer server.Close()

	client := NewClientWithBaseURL(server.URL)
	playlist, err := client.CreatePlaylist(context.Background(), "tok", "summer", "Exported playlist", true)
	require.NoError(t, err)
	assert.Equal(t, "sp1", playlist.Id)
	assert.Equal(t, "https://open.spotify.com/playlist/sp1", playlist.ExternalURLs.Spotify)
}

func TestAddTracksToPlaylistBatchesAtHundred(t *testing.T) {
	var batchSizes []int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/playlists/sp1/tracks", r.URL.Path)

		var body struct {
			Uris []string `json:"uris"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		batchSizes = append(batchSizes, len(body.Uris))
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	uris := make([]string, 250)
	for i := range uris {
		uris[i] = fmt.Sprintf("spotify:track:t%d", i)
	}

	client := NewClientWithBaseURL(server.URL)
	err := client.AddTracksToPlaylist(context.Background(), "tok", "sp1", uris)
	require.NoError(t, err)
	assert.Equal(t, []int{100, 100, 50}, batchSizes)
}

func TestValidTimeRange(t *testing.T) {
	assert.True(t, ValidTimeRange(TimeRangeShort))
	assert.True(t, ValidTimeRange(TimeRangeMedium))
	assert.True(t, ValidTimeRange(TimeRangeLong))
	assert.False(t, ValidTimeRange("whenever"))
	assert.False(t, ValidTimeRange(""))
}
