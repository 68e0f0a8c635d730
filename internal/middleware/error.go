package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	apperrors "firedues/internal/errors"
	"firedues/internal/logger"
)

// ErrorHandler writes the last error a handler attached with c.Error, unless
// the handler already wrote a response.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		RespondError(c, c.Errors.Last().Err)
	}
}

// RespondError writes err as {"error": {"code", "message"}}. Errors that are
// not AppErrors are logged and reported as INTERNAL_ERROR.
func RespondError(c *gin.Context, err error) {
	writeError(c, err, false)
}

// AbortWithError is RespondError for middleware that must stop the chain.
func AbortWithError(c *gin.Context, err error) {
	writeError(c, err, true)
}

func writeError(c *gin.Context, err error, abort bool) {
	log := logger.Get().With("path", c.Request.URL.Path, "method", c.Request.Method, "request_id", RequestID(c))

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		log.Errorw("Unexpected error", "error", err.Error())
		appErr = apperrors.ErrInternalServer
	} else if appErr.Internal != nil {
		log.Errorw("Request failed", "code", appErr.Code, "internal", appErr.Internal.Error())
	}

	body := gin.H{"error": gin.H{"code": appErr.Code, "message": appErr.Message}}
	if abort {
		c.AbortWithStatusJSON(appErr.StatusCode, body)
		return
	}
	c.JSON(appErr.StatusCode, body)
}
