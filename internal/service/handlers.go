package service

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/resonatefm/resonate/internal/spotify"
)

const topTracksLimit = 50

func (s *Service) timeRangeParam(c *gin.Context) (string, bool) {
	timeRange := c.DefaultQuery("time_range", spotify.TimeRangeLong)
	if !spotify.ValidTimeRange(timeRange) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid time_range"})
		return "", false
	}
	return timeRange, true
}

func (s *Service) TopTracksHandler(c *gin.Context) {
	ident := callerIdentity(c)

	timeRange, ok := s.timeRangeParam(c)
	if !ok {
		return
	}

	token, err := s.tokens.AccessToken(c.Request.Context(), ident.Subject)
	if err != nil {
		abortWithError(c, err, "Error getting provider token")
		return
	}

	s.metrics.UpstreamCalls.Inc()
	tracks, err := s.streaming.GetTopTracks(c.Request.Context(), token, timeRange, topTracksLimit)
	if err != nil {
		s.metrics.UpstreamErrors.Inc()
		abortWithError(c, err, "Error fetching top tracks")
		return
	}

	c.JSON(http.StatusOK, gin.H{"topTracks": tracks})
}

// RecommendationsHandler forwards the caller's top-track IDs to the
// recommendation backend and resolves the recommended IDs back to full
// track metadata.
func (s *Service) RecommendationsHandler(c *gin.Context) {
	ident := callerIdentity(c)

	timeRange, ok := s.timeRangeParam(c)
	if !ok {
		return
	}

	token, err := s.tokens.AccessToken(c.Request.Context(), ident.Subject)
	if err != nil {
		abortWithError(c, err, "Error getting provider token")
		return
	}

	s.metrics.UpstreamCalls.Inc()
	topTracks, err := s.streaming.GetTopTracks(c.Request.Context(), token, timeRange, topTracksLimit)
	if err != nil {
		s.metrics.UpstreamErrors.Inc()
		abortWithError(c, err, "Error fetching top tracks")
		return
	}

	topTrackIds := make([]string, len(topTracks))
	for i, track := range topTracks {
		topTrackIds[i] = track.Id
	}

	s.metrics.UpstreamCalls.Inc()
	recommendedIds, err := s.recommender.Recommend(c.Request.Context(), topTrackIds)
	if err != nil {
		s.metrics.UpstreamErrors.Inc()
		abortWithError(c, err, "Error fetching recommendations")
		return
	}

	if len(recommendedIds) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"topTracks":       topTracks,
			"recommendations": []spotify.Track{},
		})
		return
	}

	s.metrics.UpstreamCalls.Inc()
	recommendations, err := s.streaming.GetTracks(c.Request.Context(), token, recommendedIds)
	if err != nil {
		s.metrics.UpstreamErrors.Inc()
		abortWithError(c, err, "Error fetching recommended tracks")
		return
	}

	logger.Info("Generated recommendations",
		zap.String("caller", ident.Subject),
		zap.String("timeRange", timeRange),
		zap.Int("count", len(recommendations)))
	c.JSON(http.StatusOK, gin.H{
		"topTracks":       topTracks,
		"recommendations": recommendations,
	})
}

func (s *Service) TrackInfoHandler(c *gin.Context) {
	ident := callerIdentity(c)

	idsParam := c.Query("trackIds")
	if idsParam == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No track IDs provided"})
		return
	}

	var trackIds []string
	for _, id := range strings.Split(idsParam, ",") {
		if id = strings.TrimSpace(id); id != "" {
			trackIds = append(trackIds, id)
		}
	}
	if len(trackIds) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No track IDs provided"})
		return
	}

	token, err := s.tokens.AccessToken(c.Request.Context(), ident.Subject)
	if err != nil {
		abortWithError(c, err, "Error getting provider token")
		return
	}

	s.metrics.UpstreamCalls.Inc()
	tracks, err := s.streaming.GetTracks(c.Request.Context(), token, trackIds)
	if err != nil {
		s.metrics.UpstreamErrors.Inc()
		abortWithError(c, err, "Error fetching track details")
		return
	}

	c.JSON(http.StatusOK, gin.H{"tracks": tracks})
}
