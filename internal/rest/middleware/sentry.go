package middleware

import (
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/guardpost/console/internal/config"
	"github.com/guardpost/console/internal/types"
)

// SentryMiddleware captures panics of API requests and tags each request's
// scope with the tenant and request id the console sent
func SentryMiddleware(cfg *config.Configuration) []gin.HandlerFunc {
	if !cfg.Sentry.Enabled {
		return nil
	}

	return []gin.HandlerFunc{
		sentrygin.New(sentrygin.Options{
			Repanic: true,
			Timeout: 2 * time.Second,
		}),
		sentryScope,
	}
}

func sentryScope(c *gin.Context) {
	if hub := sentrygin.GetHubFromContext(c); hub != nil {
		scope := hub.Scope()
		scope.SetTag("request_id", types.GetRequestID(c.Request.Context()))
		if tenantID := c.GetHeader(types.HeaderTenantID); tenantID != "" {
			scope.SetTag("tenant_id", tenantID)
		}
		scope.SetTag("route", c.FullPath())
	}
	c.Next()
}
