// Package requestlog provides middleware for request tracing and logging
package requestlog

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// HeaderName is the header clients use to pass their request id
const HeaderName = "X-Request-ID"

// ContextKey is the gin context key holding the request id
const ContextKey = "request_id"

// New returns a middleware that tags each request with an id and logs it
func New(logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		requestID := c.GetHeader(HeaderName)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(ContextKey, requestID)
		c.Header(HeaderName, requestID)

		c.Next()

		latency := time.Since(startTime)
		status := c.Writer.Status()

		logLevel := logger.Info
		if status >= 400 {
			logLevel = logger.Error
		} else if status >= 300 {
			logLevel = logger.Warn
		}

		logLevel("Request completed",
			"request_id", requestID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency", latency,
			"size", c.Writer.Size(),
		)
	}
}
