package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"kasa/internal/logger"
	"kasa/internal/uuid"
)

const requestIDKey = "requestID"

// RequestLogging returns a Gin middleware that logs each request with a unique
// request ID, method, path, status code, latency, and client IP using Zap.
func RequestLogging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader("X-Request-ID")
		if !uuid.IsValid(requestID) {
			requestID = uuid.New()
		}
		c.Set(requestIDKey, requestID)
		c.Writer.Header().Set("X-Request-ID", requestID)

		c.Next()

		log := logger.Named("http")
		fields := []interface{}{
			"request_id", requestID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if c.Writer.Status() >= 500 {
			log.Errorw("request", fields...)
			return
		}
		log.Infow("request", fields...)
	}
}
