package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type Playlist struct {
	PlaylistId string   `json:"playlist_id"`
	OwnerId    string   `json:"owner_id"`
	Name       string   `json:"name"`
	Tracks     []string `json:"tracks"`
}

const savePlaylistQuery = `
	INSERT INTO "playlist" (playlist_id, owner_id, name, tracks)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (owner_id, name) DO UPDATE
	SET tracks = $4,
		updated_at = now()
	RETURNING playlist_id
`

// SavePlaylist upserts by (owner, name): saving a name the owner already has
// replaces that playlist's track list in place and returns the existing ID,
// so repeated saves never accumulate duplicate rows.
func (s *Store) SavePlaylist(ctx context.Context, ownerId, name string, tracks []string) (string, error) {
	var playlistId string
	err := s.q.QueryRow(ctx, savePlaylistQuery,
		uuid.NewString(),
		ownerId,
		name,
		tracks,
	).Scan(&playlistId)
	if err != nil {
		logger.Error("SavePlaylist: upsert failed",
			zap.String("ownerId", ownerId),
			zap.String("name", name),
			zap.Error(err))
		return "", fmt.Errorf("error saving playlist: %w", err)
	}
	if playlistId == "" {
		return "", fmt.Errorf("playlist save returned no identifier")
	}

	logger.Info("Saved playlist",
		zap.String("ownerId", ownerId),
		zap.String("name", name),
		zap.Int("tracks", len(tracks)))
	return playlistId, nil
}

const selectMostRecentPlaylistQuery = `
	SELECT playlist_id, owner_id, name, tracks
	FROM "playlist"
	WHERE owner_id = $1
	ORDER BY updated_at DESC
	LIMIT 1
`

func (s *Store) GetMostRecentPlaylist(ctx context.Context, ownerId string) (*Playlist, error) {
	var playlist Playlist
	err := s.q.QueryRow(ctx, selectMostRecentPlaylistQuery, ownerId).Scan(
		&playlist.PlaylistId,
		&playlist.OwnerId,
		&playlist.Name,
		&playlist.Tracks,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error querying playlist: %w", err)
	}
	return &playlist, nil
}

const selectAllPlaylistsQuery = `
	SELECT playlist_id, owner_id, name, tracks
	FROM "playlist"
	WHERE owner_id = $1
	ORDER BY updated_at DESC
`

func (s *Store) GetAllPlaylists(ctx context.Context, ownerId string) ([]*Playlist, error) {
	rows, err := s.q.Query(ctx, selectAllPlaylistsQuery, ownerId)
	if err != nil {
		return nil, fmt.Errorf("error querying playlists: %w", err)
	}
	defer rows.Close()

	playlists := []*Playlist{}
	for rows.Next() {
		var playlist Playlist
		if err := rows.Scan(
			&playlist.PlaylistId,
			&playlist.OwnerId,
			&playlist.Name,
			&playlist.Tracks,
		); err != nil {
			return nil, fmt.Errorf("error scanning playlist row: %w", err)
		}
		playlists = append(playlists, &playlist)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading playlist rows: %w", err)
	}
	return playlists, nil
}

const deletePlaylistQuery = `
	DELETE FROM "playlist"
	WHERE playlist_id = $1 AND owner_id = $2
`

// DeletePlaylist removes a playlist the caller owns. A missing row and an
// ownership mismatch both return ErrNotFound; callers cannot tell "does not
// exist" from "exists but forbidden".
func (s *Store) DeletePlaylist(ctx context.Context, callerId, playlistId string) error {
	// A malformed ID cannot reference a row; reject it here instead of
	// letting Postgres raise a uuid cast error.
	if _, err := uuid.Parse(playlistId); err != nil {
		return ErrNotFound
	}

	tag, err := s.q.Exec(ctx, deletePlaylistQuery, playlistId, callerId)
	if err != nil {
		return fmt.Errorf("error deleting playlist: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	logger.Info("Deleted playlist",
		zap.String("callerId", callerId),
		zap.String("playlistId", playlistId))
	return nil
}
