package db

import (
	"context"
	"fmt"
)

// Friends holds internal user IDs as plain text on purpose: references may
// dangle after the referenced row is gone and ListFriends surfaces those as
// nil entries instead of failing.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS "user" (
		user_id UUID PRIMARY KEY,
		external_id TEXT NOT NULL UNIQUE,
		username TEXT NOT NULL DEFAULT '',
		display_name TEXT NOT NULL DEFAULT '',
		friends TEXT[] NOT NULL DEFAULT '{}',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS user_username_idx
		ON "user" (username text_pattern_ops)`,
	`CREATE TABLE IF NOT EXISTS "playlist" (
		playlist_id UUID PRIMARY KEY,
		owner_id UUID NOT NULL REFERENCES "user" (user_id),
		name TEXT NOT NULL,
		tracks TEXT[] NOT NULL DEFAULT '{}',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (owner_id, name)
	)`,
	`CREATE TABLE IF NOT EXISTS "stats" (
		stats_id UUID PRIMARY KEY,
		owner_id UUID NOT NULL REFERENCES "user" (user_id),
		top_genre TEXT NOT NULL DEFAULT '',
		top_tracks TEXT[] NOT NULL DEFAULT '{}',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

// Migrate creates the schema if it does not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	for i, stmt := range migrations {
		if _, err := s.q.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d failed: %w", i, err)
		}
	}
	return nil
}
