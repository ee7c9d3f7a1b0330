package db

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"
)

const appendFriendQuery = `
	UPDATE "user"
	SET friends = array_append(friends, $2)
	WHERE user_id = $1
`

// AddFriend appends the target's internal ID to the caller's friends list.
// It reports added=false without writing when the target is already present.
// Either side missing yields ErrNotFound.
func (s *Store) AddFriend(ctx context.Context, callerExternalId, targetExternalId string) (bool, error) {
	caller, err := s.GetUserByExternalId(ctx, callerExternalId)
	if err != nil {
		return false, err
	}
	target, err := s.GetUserByExternalId(ctx, targetExternalId)
	if err != nil {
		return false, err
	}

	if slices.Contains(caller.Friends, target.UserId) {
		logger.Debug("AddFriend: already a friend",
			zap.String("callerId", caller.UserId),
			zap.String("targetId", target.UserId))
		return false, nil
	}

	if _, err := s.q.Exec(ctx, appendFriendQuery, caller.UserId, target.UserId); err != nil {
		return false, fmt.Errorf("error appending friend: %w", err)
	}

	logger.Info("Added friend",
		zap.String("callerId", caller.UserId),
		zap.String("targetId", target.UserId))
	return true, nil
}

// ListFriends resolves each stored friend reference in order. A reference
// that no longer resolves is kept as a nil entry; references are not pruned.
func (s *Store) ListFriends(ctx context.Context, callerExternalId string) ([]*User, error) {
	caller, err := s.GetUserByExternalId(ctx, callerExternalId)
	if err != nil {
		return nil, err
	}

	friends := make([]*User, 0, len(caller.Friends))
	for _, friendId := range caller.Friends {
		friend, err := s.GetUserById(ctx, friendId)
		if errors.Is(err, ErrNotFound) {
			friends = append(friends, nil)
			continue
		}
		if err != nil {
			return nil, err
		}
		friends = append(friends, friend)
	}
	return friends, nil
}
