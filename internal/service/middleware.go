package service

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/resonatefm/resonate/internal/db"
	"github.com/resonatefm/resonate/internal/identity"
	"github.com/resonatefm/resonate/internal/recommend"
	"github.com/resonatefm/resonate/internal/spotify"
)

const identityKey = "callerIdentity"

// AuthRequired verifies the session token from the Authorization header and
// stores the resolved identity in the request context. Unauthenticated
// requests are rejected before any handler or database write runs.
func (s *Service) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if token == header {
			token = ""
		}

		ident, err := s.verifier.VerifySession(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, identity.ErrAuthenticationRequired) {
				logger.Warn("Rejected unauthenticated request",
					zap.String("path", c.Request.URL.Path),
					zap.String("method", c.Request.Method),
					zap.String("ip", c.ClientIP()))
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
				return
			}
			logger.Error("Session verification failed", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Error verifying session"})
			return
		}

		c.Set(identityKey, ident)
		c.Next()
	}
}

// callerIdentity returns the identity stored by AuthRequired.
func callerIdentity(c *gin.Context) *identity.Identity {
	value, exists := c.Get(identityKey)
	if !exists {
		return nil
	}
	ident, ok := value.(*identity.Identity)
	if !ok {
		return nil
	}
	return ident
}

// abortWithError translates a failure into the HTTP response the front end
// renders. Upstream errors relay the provider's status and payload; nothing
// is retried server-side.
func abortWithError(c *gin.Context, err error, message string) {
	var apiErr *spotify.APIError
	var backendErr *recommend.BackendError

	switch {
	case errors.Is(err, identity.ErrAuthenticationRequired):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
	case errors.Is(err, db.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": message + ": not found"})
	case errors.As(err, &apiErr):
		status := apiErr.StatusCode
		if status < http.StatusBadRequest {
			status = http.StatusBadGateway
		}
		c.JSON(status, gin.H{"error": message, "upstream": apiErr.Body})
	case errors.As(err, &backendErr):
		status := backendErr.StatusCode
		if status < http.StatusBadRequest {
			status = http.StatusBadGateway
		}
		c.JSON(status, gin.H{"error": message, "upstream": backendErr.Body})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": message + ": " + err.Error()})
	}
}
