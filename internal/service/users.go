package service

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/resonatefm/resonate/internal/db"
)

// LoginHandler upserts the caller's user row from the verified identity
// assertion and returns the internal ID. Repeated logins overwrite the
// display fields, last write wins.
func (s *Service) LoginHandler(c *gin.Context) {
	ident := callerIdentity(c)

	userId, err := s.store.ResolveOrCreateUser(c.Request.Context(),
		ident.Subject, ident.Nickname, ident.Name)
	if err != nil {
		abortWithError(c, err, "Error resolving user")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"userId":   userId,
		"username": ident.Nickname,
		"name":     ident.Name,
	})
}

func (s *Service) SearchUsersHandler(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing q"})
		return
	}

	users, err := s.store.SearchUsersByUsername(c.Request.Context(), query)
	if err != nil {
		abortWithError(c, err, "Error searching users")
		return
	}

	c.JSON(http.StatusOK, users)
}

// addFriendRequest identifies the target either directly by external ID or
// by exact username.
// UserProfileHandler returns another user's public profile: the user row,
// their latest stats snapshot (null when none exists) and their playlists.
func (s *Service) UserProfileHandler(c *gin.Context) {
	user, err := s.store.GetUserById(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err, "Error getting user")
		return
	}

	stats, err := s.store.GetLatestStats(c.Request.Context(), user.UserId)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		abortWithError(c, err, "Error getting stats")
		return
	}

	playlists, err := s.store.GetAllPlaylists(c.Request.Context(), user.UserId)
	if err != nil {
		abortWithError(c, err, "Error getting playlists")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":      user,
		"stats":     stats,
		"playlists": playlists,
	})
}

type addFriendRequest struct {
	ExternalId string `json:"externalId"`
	Username   string `json:"username"`
}

func (s *Service) AddFriendHandler(c *gin.Context) {
	ident := callerIdentity(c)

	var body addFriendRequest
	if err := c.ShouldBindJSON(&body); err != nil || (body.ExternalId == "" && body.Username == "") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing externalId or username"})
		return
	}

	targetExternalId := body.ExternalId
	if targetExternalId == "" {
		matches, err := s.store.SearchUsersByUsername(c.Request.Context(), body.Username)
		if err != nil {
			abortWithError(c, err, "Error resolving username")
			return
		}
		for _, user := range matches {
			if user.Username == body.Username {
				targetExternalId = user.ExternalId
				break
			}
		}
		if targetExternalId == "" {
			abortWithError(c, db.ErrNotFound, "User not found")
			return
		}
	}

	added, err := s.store.AddFriend(c.Request.Context(), ident.Subject, targetExternalId)
	if err != nil {
		abortWithError(c, err, "Error adding friend")
		return
	}

	if !added {
		c.JSON(http.StatusOK, Message{Status: "success", Message: "Already a friend"})
		return
	}

	logger.Info("Friend added",
		zap.String("caller", ident.Subject),
		zap.String("target", targetExternalId))
	c.JSON(http.StatusOK, Message{Status: "success", Message: "Friend added"})
}

// ListFriendsHandler returns the caller's friends in stored order. Dangling
// references appear as null entries; they are not pruned.
func (s *Service) ListFriendsHandler(c *gin.Context) {
	ident := callerIdentity(c)

	friends, err := s.store.ListFriends(c.Request.Context(), ident.Subject)
	if err != nil {
		abortWithError(c, err, "Error listing friends")
		return
	}

	c.JSON(http.StatusOK, friends)
}
