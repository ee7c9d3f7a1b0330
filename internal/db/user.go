package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type User struct {
	UserId      string   `json:"user_id"`
	ExternalId  string   `json:"external_id"`
	Username    string   `json:"username"`
	DisplayName string   `json:"display_name"`
	Friends     []string `json:"friends"`
}

const resolveUserQuery = `
	INSERT INTO "user" (user_id, external_id, username, display_name)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (external_id) DO UPDATE
	SET username = $3,
		display_name = $4
	RETURNING user_id
`

// ResolveOrCreateUser maps an identity-provider subject to an internal user
// ID, creating the row on first sight. Display fields are overwritten on
// every call, last write wins. The unique constraint on external_id makes
// concurrent first logins converge on a single row.
func (s *Store) ResolveOrCreateUser(ctx context.Context, externalId, username, displayName string) (string, error) {
	var userId string
	err := s.q.QueryRow(ctx, resolveUserQuery,
		uuid.NewString(),
		externalId,
		username,
		displayName,
	).Scan(&userId)
	if err != nil {
		logger.Error("ResolveOrCreateUser: upsert failed",
			zap.String("externalId", externalId),
			zap.Error(err))
		return "", fmt.Errorf("error resolving user record: %w", err)
	}

	logger.Info("Resolved user",
		zap.String("externalId", externalId),
		zap.String("userId", userId))
	return userId, nil
}

const selectUserByExternalIdQuery = `
	SELECT user_id, external_id, username, display_name, friends
	FROM "user"
	WHERE external_id = $1
`

func (s *Store) GetUserByExternalId(ctx context.Context, externalId string) (*User, error) {
	return s.getUser(ctx, selectUserByExternalIdQuery, externalId)
}

const selectUserByIdQuery = `
	SELECT user_id, external_id, username, display_name, friends
	FROM "user"
	WHERE user_id = $1
`

func (s *Store) GetUserById(ctx context.Context, userId string) (*User, error) {
	if _, err := uuid.Parse(userId); err != nil {
		return nil, ErrNotFound
	}
	return s.getUser(ctx, selectUserByIdQuery, userId)
}

func (s *Store) getUser(ctx context.Context, query string, arg string) (*User, error) {
	var user User
	err := s.q.QueryRow(ctx, query, arg).Scan(
		&user.UserId,
		&user.ExternalId,
		&user.Username,
		&user.DisplayName,
		&user.Friends,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error querying user: %w", err)
	}
	return &user, nil
}

const searchUsersQuery = `
	SELECT user_id, external_id, username, display_name, friends
	FROM "user"
	WHERE username LIKE $1 || '%'
	ORDER BY username
`

// SearchUsersByUsername returns users whose username starts with the query
// string. An empty result is a nil-free empty slice, not an error.
func (s *Store) SearchUsersByUsername(ctx context.Context, query string) ([]*User, error) {
	rows, err := s.q.Query(ctx, searchUsersQuery, query)
	if err != nil {
		return nil, fmt.Errorf("error searching users: %w", err)
	}
	defer rows.Close()

	users := []*User{}
	for rows.Next() {
		var user User
		if err := rows.Scan(
			&user.UserId,
			&user.ExternalId,
			&user.Username,
			&user.DisplayName,
			&user.Friends,
		); err != nil {
			return nil, fmt.Errorf("error scanning user row: %w", err)
		}
		users = append(users, &user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading user rows: %w", err)
	}
	return users, nil
}
