package middleware

import (
	"strings"
	"time"

	"learnez/pkg/logger"
	"learnez/pkg/utils"

	"github.com/gin-gonic/gin"
)

// RequestLogger stores a request-scoped logger in the gin context and logs
// one line per request once the handler chain returns. It must run after
// TraceIDMiddleware.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if log == nil {
			c.Next()
			return
		}
		start := time.Now()
		reqLog := log.With("trace_id", c.GetString(utils.ContextTraceIDKey))
		c.Set(utils.ContextLoggerKey, reqLog)

		c.Next()

		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		fields := []interface{}{
			"method", strings.ToUpper(c.Request.Method),
			"path", path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if userID := c.GetString(utils.ContextUserIDKey); userID != "" {
			fields = append(fields, "user_id", userID)
		}

		switch {
		case status >= 500:
			reqLog.Error("HTTP request", fields...)
		case status >= 400:
			reqLog.Warn("HTTP request", fields...)
		default:
			reqLog.Info("HTTP request", fields...)
		}
	}
}
