package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type Stats struct {
	StatsId   string   `json:"stats_id"`
	OwnerId   string   `json:"owner_id"`
	TopGenre  string   `json:"top_genre"`
	TopTracks []string `json:"top_tracks"`
}

const insertStatsQuery = `
	INSERT INTO "stats" (stats_id, owner_id, top_genre, top_tracks)
	VALUES ($1, $2, $3, $4)
	RETURNING stats_id
`

// AppendStats records a new listening snapshot. History is append-only;
// rows are never updated or deleted.
func (s *Store) AppendStats(ctx context.Context, ownerId, topGenre string, topTracks []string) (string, error) {
	var statsId string
	err := s.q.QueryRow(ctx, insertStatsQuery,
		uuid.NewString(),
		ownerId,
		topGenre,
		topTracks,
	).Scan(&statsId)
	if err != nil {
		logger.Error("AppendStats: insert failed",
			zap.String("ownerId", ownerId),
			zap.Error(err))
		return "", fmt.Errorf("error inserting stats: %w", err)
	}
	if statsId == "" {
		return "", fmt.Errorf("stats insert returned no identifier")
	}

	logger.Info("Appended stats",
		zap.String("ownerId", ownerId),
		zap.String("topGenre", topGenre))
	return statsId, nil
}

const selectLatestStatsQuery = `
	SELECT stats_id, owner_id, top_genre, top_tracks
	FROM "stats"
	WHERE owner_id = $1
	ORDER BY created_at DESC
	LIMIT 1
`

func (s *Store) GetLatestStats(ctx context.Context, ownerId string) (*Stats, error) {
	var stats Stats
	err := s.q.QueryRow(ctx, selectLatestStatsQuery, ownerId).Scan(
		&stats.StatsId,
		&stats.OwnerId,
		&stats.TopGenre,
		&stats.TopTracks,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error querying stats: %w", err)
	}
	return &stats, nil
}
