package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	apperrors "firedues/internal/errors"
)

// APIKeyMiddleware guards the internal job endpoints. Callers such as an
// external scheduler send the configured key in X-API-Key.
func APIKeyMiddleware(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" {
			AbortWithError(c, apperrors.ErrJobsNotConfigured)
			return
		}
		key := c.GetHeader("X-API-Key")
		if subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) != 1 {
			AbortWithError(c, apperrors.ErrInvalidAPIKey)
			return
		}
		c.Next()
	}
}
