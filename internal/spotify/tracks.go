package spotify

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Listening-history windows accepted by the provider.
const (
	TimeRangeShort  = "short_term"
	TimeRangeMedium = "medium_term"
	TimeRangeLong   = "long_term"
)

// ValidTimeRange reports whether the provider accepts timeRange as a
// listening-history window.
func ValidTimeRange(timeRange string) bool {
	switch timeRange {
	case TimeRangeShort, TimeRangeMedium, TimeRangeLong:
		return true
	}
	return false
}

// GetTopTracks fetches the user's top tracks for a time window. limit is
// clamped to the provider maximum of 50.
func (c *Client) GetTopTracks(ctx context.Context, token, timeRange string, limit int) ([]Track, error) {
	if limit <= 0 || limit > maxIdsPerRequest {
		limit = maxIdsPerRequest
	}
	url := fmt.Sprintf("%s/me/top/tracks?limit=%d&time_range=%s", c.baseURL, limit, timeRange)

	var response topTracksResponse
	if err := c.get(ctx, token, url, &response); err != nil {
		logger.Error("Error fetching user's top tracks",
			zap.String("timeRange", timeRange),
			zap.Error(err))
		return nil, err
	}

	logger.Debug("Retrieved user's top tracks",
		zap.String("timeRange", timeRange),
		zap.Int("count", len(response.Items)))
	return response.Items, nil
}

// GetTracks fetches track metadata by ID, batching requests at the provider
// limit of 50 ids per call. Result order follows the provider's response
// order within each batch.
func (c *Client) GetTracks(ctx context.Context, token string, ids []string) ([]Track, error) {
	var allTracks []Track
	for _, batch := range chunk(ids, maxIdsPerRequest) {
		url := fmt.Sprintf("%s/tracks?ids=%s", c.baseURL, strings.Join(batch, ","))

		var response tracksResponse
		if err := c.get(ctx, token, url, &response); err != nil {
			logger.Error("Error fetching tracks batch",
				zap.Int("batchSize", len(batch)),
				zap.Error(err))
			return nil, err
		}
		allTracks = append(allTracks, response.Tracks...)
	}

	logger.Debug("Retrieved tracks", zap.Int("count", len(allTracks)))
	return allTracks, nil
}
