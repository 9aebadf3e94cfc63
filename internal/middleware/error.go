package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	apperrors "kasa/internal/errors"
	"kasa/internal/logger"
)

// ErrorHandler renders the last error a handler attached with c.Error, unless
// the handler already wrote a response.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		WriteError(c, c.Errors.Last().Err)
	}
}

// WriteError writes err as the JSON error envelope. AppErrors keep their status,
// code and message; anything else becomes INTERNAL_ERROR and is logged with the
// request id so the response never carries internal detail.
func WriteError(c *gin.Context, err error) {
	log := logger.Named("http").With(
		"request_id", c.GetString(requestIDKey),
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
	)

	appErr := apperrors.ErrInternalServer
	var target *apperrors.AppError
	switch {
	case errors.As(err, &target):
		appErr = target
		if appErr.Internal != nil {
			log.Errorw("app error", "code", appErr.Code, "internal", appErr.Internal.Error())
		}
	default:
		log.Errorw("unexpected error", "error", err.Error())
	}

	c.AbortWithStatusJSON(appErr.StatusCode, gin.H{
		"error": gin.H{
			"code":    appErr.Code,
			"message": appErr.Message,
		},
	})
}
