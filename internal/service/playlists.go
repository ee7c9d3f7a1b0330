package service

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type savePlaylistRequest struct {
	Name   string   `json:"name"`
	Tracks []string `json:"tracks"`
}

func (s *Service) SavePlaylistHandler(c *gin.Context) {
	ident := callerIdentity(c)

	var body savePlaylistRequest
	if err := c.ShouldBindJSON(&body); err != nil || body.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing name or tracks"})
		return
	}

	caller, err := s.store.GetUserByExternalId(c.Request.Context(), ident.Subject)
	if err != nil {
		abortWithError(c, err, "Error resolving caller")
		return
	}

	playlistId, err := s.store.SavePlaylist(c.Request.Context(), caller.UserId, body.Name, body.Tracks)
	if err != nil {
		abortWithError(c, err, "Error saving playlist")
		return
	}

	c.JSON(http.StatusOK, gin.H{"playlistId": playlistId})
}

func (s *Service) GetPlaylistsHandler(c *gin.Context) {
	ident := callerIdentity(c)

	caller, err := s.store.GetUserByExternalId(c.Request.Context(), ident.Subject)
	if err != nil {
		abortWithError(c, err, "Error resolving caller")
		return
	}

	playlists, err := s.store.GetAllPlaylists(c.Request.Context(), caller.UserId)
	if err != nil {
		abortWithError(c, err, "Error getting playlists")
		return
	}

	c.JSON(http.StatusOK, playlists)
}

func (s *Service) LatestPlaylistHandler(c *gin.Context) {
	ident := callerIdentity(c)

	caller, err := s.store.GetUserByExternalId(c.Request.Context(), ident.Subject)
	if err != nil {
		abortWithError(c, err, "Error resolving caller")
		return
	}

	playlist, err := s.store.GetMostRecentPlaylist(c.Request.Context(), caller.UserId)
	if err != nil {
		abortWithError(c, err, "Error getting playlist")
		return
	}

	c.JSON(http.StatusOK, playlist)
}

func (s *Service) DeletePlaylistHandler(c *gin.Context) {
	ident := callerIdentity(c)
	playlistId := c.Param("id")

	caller, err := s.store.GetUserByExternalId(c.Request.Context(), ident.Subject)
	if err != nil {
		abortWithError(c, err, "Error resolving caller")
		return
	}

	// Ownership is re-verified at delete time; a non-owner's attempt is
	// reported identically to a missing ID.
	if err := s.store.DeletePlaylist(c.Request.Context(), caller.UserId, playlistId); err != nil {
		abortWithError(c, err, "Error deleting playlist")
		return
	}

	c.JSON(http.StatusOK, Message{Status: "success", Message: "Playlist deleted"})
}

type exportPlaylistRequest struct {
	PlaylistName string   `json:"playlistName"`
	Tracks       []string `json:"tracks"`
}

const trackURIPrefix = "spotify:track:"

// ExportPlaylistHandler creates a playlist on the streaming provider from
// the given track URIs, then upserts the matching named playlist row for
// the caller and returns the provider URL.
func (s *Service) ExportPlaylistHandler(c *gin.Context) {
	ident := callerIdentity(c)

	var body exportPlaylistRequest
	if err := c.ShouldBindJSON(&body); err != nil || body.PlaylistName == "" || len(body.Tracks) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}

	token, err := s.tokens.AccessToken(c.Request.Context(), ident.Subject)
	if err != nil {
		abortWithError(c, err, "Error getting provider token")
		return
	}

	s.metrics.UpstreamCalls.Inc()
	playlist, err := s.streaming.CreatePlaylist(c.Request.Context(), token,
		body.PlaylistName, "Exported playlist", true)
	if err != nil {
		s.metrics.UpstreamErrors.Inc()
		abortWithError(c, err, "Error creating playlist")
		return
	}

	s.metrics.UpstreamCalls.Inc()
	if err := s.streaming.AddTracksToPlaylist(c.Request.Context(), token, playlist.Id, body.Tracks); err != nil {
		s.metrics.UpstreamErrors.Inc()
		abortWithError(c, err, "Error adding tracks to playlist")
		return
	}

	caller, err := s.store.GetUserByExternalId(c.Request.Context(), ident.Subject)
	if err != nil {
		abortWithError(c, err, "Error resolving caller")
		return
	}

	trackIds := make([]string, len(body.Tracks))
	for i, uri := range body.Tracks {
		trackIds[i] = strings.TrimPrefix(uri, trackURIPrefix)
	}
	if _, err := s.store.SavePlaylist(c.Request.Context(), caller.UserId, body.PlaylistName, trackIds); err != nil {
		abortWithError(c, err, "Error saving playlist")
		return
	}

	logger.Info("Exported playlist",
		zap.String("caller", ident.Subject),
		zap.String("playlistId", playlist.Id),
		zap.Int("tracks", len(body.Tracks)))
	c.JSON(http.StatusOK, gin.H{
		"message": "Playlist exported successfully",
		"url":     playlist.ExternalURLs.Spotify,
	})
}
