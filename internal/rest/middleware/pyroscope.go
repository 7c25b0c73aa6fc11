package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/grafana/pyroscope-go"
	"github.com/guardpost/console/internal/config"
	"github.com/guardpost/console/internal/types"
)

// PyroscopeMiddleware labels the profile samples of a request with its route
// and tenant
func PyroscopeMiddleware(cfg *config.Configuration) gin.HandlerFunc {
	if !cfg.Pyroscope.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}

		labels := pyroscope.Labels(
			"method", c.Request.Method,
			"endpoint", endpoint,
			"tenant_id", c.GetHeader(types.HeaderTenantID),
		)
		pyroscope.TagWrapper(c.Request.Context(), labels, func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}
