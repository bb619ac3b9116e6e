package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/princinho/o3dstudio/logger"
)

const requestIDHeader = "X-Request-Id"

func RequestID(logg *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader(requestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Header(requestIDHeader, reqID)
		c.Set("requestID", reqID)

		if logg != nil {
			c.Request = c.Request.WithContext(logg.WithRequestID(c.Request.Context(), reqID))
		}
		c.Next()
	}
}

func RequestLogger(logg *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if logg == nil {
			c.Next()
			return
		}

		start := time.Now()
		ctx := logg.WithFields(c.Request.Context(), map[string]any{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		})
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		ctx = logg.WithFields(ctx, map[string]any{
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
		})
		if len(c.Errors) > 0 {
			logg.Error(ctx, "request.complete", c.Errors.Last())
			return
		}
		logg.Info(ctx, "request.complete")
	}
}
