package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	applog "finance-dashboard/internal/log"
)

const headerRequestID = "X-Request-ID"

// requestID reuses an incoming X-Request-ID or generates one, echoes it on
// the response and stores it in the context for logging.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(applog.FieldRequestID, id)
		c.Header(headerRequestID, id)
		c.Next()
	}
}

// accessLog attaches a request-scoped logger and records each request once
// it completes.
func accessLog(logger *applog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		reqLogger := logger.With(applog.FieldRequestID, c.GetString(applog.FieldRequestID))
		c.Request = c.Request.WithContext(applog.NewContext(c.Request.Context(), reqLogger))

		c.Next()

		status := c.Writer.Status()
		args := []any{
			applog.FieldMethod, c.Request.Method,
			applog.FieldPath, c.Request.URL.Path,
			applog.FieldStatusCode, status,
			applog.FieldDuration, time.Since(start).Milliseconds(),
			applog.FieldClientIP, c.ClientIP(),
		}
		switch {
		case status >= 500:
			reqLogger.ErrorContext(c.Request.Context(), "Request completed", args...)
		case status >= 400:
			reqLogger.WarnContext(c.Request.Context(), "Request completed", args...)
		default:
			reqLogger.InfoContext(c.Request.Context(), "Request completed", args...)
		}
	}
}
