package logger

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GinMiddleware logs each admin API request once it completes. The
// request-scoped logger it builds carries the request ID set by the RequestID
// middleware and the active trace IDs, so handler logs line up with spans.
func GinMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		reqLogger := WithTraceContext(c.Request.Context(), logger)
		if requestID, exists := c.Get("request_id"); exists {
			reqLogger = reqLogger.With(zap.String("request_id", requestID.(string)))
		}
		c.Set("logger", reqLogger)

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if query := c.Request.URL.RawQuery; query != "" {
			fields = append(fields, zap.String("query", query))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch {
		case status >= http.StatusInternalServerError:
			reqLogger.Error("HTTP request", fields...)
		case status >= http.StatusBadRequest:
			reqLogger.Warn("HTTP request", fields...)
		default:
			reqLogger.Info("HTTP request", fields...)
		}
	}
}

// Recovery turns a handler panic into a 500 response and an error log entry
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				fields := []zap.Field{
					zap.Any("panic", err),
					zap.String("method", c.Request.Method),
					zap.String("path", c.Request.URL.Path),
				}
				if requestID, exists := c.Get("request_id"); exists {
					fields = append(fields, zap.String("request_id", requestID.(string)))
				}
				logger.Error("Panic recovered", fields...)
				c.AbortWithStatus(http.StatusInternalServerError)
			}
		}()
		c.Next()
	}
}
