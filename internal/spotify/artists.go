package spotify

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// GetArtists fetches artist metadata, including genre tags, batching at the
// provider limit of 50 ids per call.
func (c *Client) GetArtists(ctx context.Context, token string, ids []string) ([]Artist, error) {
	var allArtists []Artist
	for _, batch := range chunk(ids, maxIdsPerRequest) {
		url := fmt.Sprintf("%s/artists?ids=%s", c.baseURL, strings.Join(batch, ","))

		var response artistsResponse
		if err := c.get(ctx, token, url, &response); err != nil {
			logger.Error("Error fetching artists batch",
				zap.Int("batchSize", len(batch)),
				zap.Error(err))
			return nil, err
		}
		allArtists = append(allArtists, response.Artists...)
	}

	logger.Debug("Retrieved artists", zap.Int("count", len(allArtists)))
	return allArtists, nil
}
