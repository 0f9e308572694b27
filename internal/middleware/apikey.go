package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/traitgame/similar-backend/internal/logger"
)

type APIKeyMiddleware struct {
	log *logger.Logger
	key string
}

// NewAPIKeyMiddleware guards the API with a shared key, the stand-in for the
// hosted store's anon key. An empty key disables the check.
func NewAPIKeyMiddleware(log *logger.Logger, key string) *APIKeyMiddleware {
	return &APIKeyMiddleware{log: log.With("middleware", "APIKeyMiddleware"), key: key}
}

func (am *APIKeyMiddleware) RequireKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		if am.key == "" {
			c.Next()
			return
		}
		if c.GetHeader("X-Api-Key") != am.key {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid api key"})
			return
		}
		c.Next()
	}
}
