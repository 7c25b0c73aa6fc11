package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/guardpost/console/internal/config"
	"github.com/guardpost/console/internal/types"
	"github.com/samber/lo"
)

var (
	corsAllowedHeaders = strings.Join([]string{
		"Content-Type",
		types.HeaderRequestID,
		types.HeaderTenantID,
		types.HeaderUserID,
		types.HeaderIdempotencyKey,
	}, ", ")

	// the console reads the request id back and the download filename of documents
	corsExposedHeaders = strings.Join([]string{
		types.HeaderRequestID,
		"Content-Disposition",
	}, ", ")
)

// CORSMiddleware lets the console UI call the API from the configured
// origins. Requests from other origins get no CORS headers.
func CORSMiddleware(cfg *config.Configuration) gin.HandlerFunc {
	allowed := cfg.Server.AllowedOrigins
	anyOrigin := lo.Contains(allowed, "*")

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		switch {
		case anyOrigin:
			c.Header("Access-Control-Allow-Origin", "*")
		case origin != "" && lo.Contains(allowed, origin):
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
		default:
			c.Next()
			return
		}

		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", corsAllowedHeaders)
		c.Header("Access-Control-Expose-Headers", corsExposedHeaders)
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
