package spotify

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// CreatePlaylist creates a playlist on the signed-in user's account.
func (c *Client) CreatePlaylist(ctx context.Context, token, name, description string, public bool) (*Playlist, error) {
	url := fmt.Sprintf("%s/me/playlists", c.baseURL)
	postData := map[string]any{
		"name":        name,
		"description": description,
		"public":      public,
	}

	playlist := &Playlist{}
	err := c.doJSON(ctx, http.MethodPost, token, url, postData, http.StatusCreated, playlist)
	if err != nil {
		logger.Error("Error creating playlist",
			zap.String("name", name),
			zap.Error(err))
		return nil, err
	}
	if playlist.Id == "" {
		return nil, fmt.Errorf("failed to parse playlist ID from response")
	}

	logger.Info("Created playlist",
		zap.String("playlistId", playlist.Id),
		zap.String("name", name))
	return playlist, nil
}

// AddTracksToPlaylist appends track URIs to a playlist, batching at the
// provider limit of 100 uris per call.
func (c *Client) AddTracksToPlaylist(ctx context.Context, token, playlistId string, uris []string) error {
	for _, batch := range chunk(uris, maxUrisPerRequest) {
		url := fmt.Sprintf("%s/playlists/%s/tracks", c.baseURL, playlistId)
		postData := map[string]any{
			"uris": batch,
		}

		if err := c.doJSON(ctx, http.MethodPost, token, url, postData, http.StatusCreated, nil); err != nil {
			logger.Error("Error adding tracks to playlist",
				zap.String("playlistId", playlistId),
				zap.Int("batchSize", len(batch)),
				zap.Error(err))
			return err
		}
	}

	logger.Info("Added tracks to playlist",
		zap.String("playlistId", playlistId),
		zap.Int("tracks", len(uris)))
	return nil
}
