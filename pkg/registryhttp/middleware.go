package registryhttp

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wuxler/rregistry/pkg/xlog"
)

// requestLogger attaches a request scoped logger to the request context and logs
// every request once it is handled.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		ctx := xlog.WithContext(c.Request.Context(),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
		)
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		args := []any{
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			args = append(args, "error", c.Errors.String())
		}
		logger := xlog.C(ctx)
		if c.Writer.Status() >= 500 {
			logger.Error("request failed", args...)
			return
		}
		logger.Info("request handled", args...)
	}
}
