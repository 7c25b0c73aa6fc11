package middleware

import (
	"net/http"

	ierr "github.com/guardpost/console/internal/errors"
	"github.com/guardpost/console/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func RequestIDMiddleware(c *gin.Context) {
	requestID := c.GetHeader(types.HeaderRequestID)
	if requestID == "" {
		requestID = uuid.New().String()
	}

	c.Request = c.Request.WithContext(types.SetRequestID(c.Request.Context(), requestID))
	c.Header(types.HeaderRequestID, requestID)

	c.Next()
}

// TenantMiddleware scopes the request to the tenant named in the X-Tenant-ID
// header. Authentication happens upstream of the console API.
func TenantMiddleware(c *gin.Context) {
	tenantID := c.GetHeader(types.HeaderTenantID)
	if tenantID == "" {
		c.Error(ierr.NewError("missing tenant header").
			WithHintf("The %s header is required", types.HeaderTenantID).
			Mark(ierr.ErrValidation))
		c.Abort()
		return
	}

	ctx := types.SetTenantID(c.Request.Context(), tenantID)
	if userID := c.GetHeader(types.HeaderUserID); userID != "" {
		ctx = types.SetUserID(ctx, userID)
	}
	c.Request = c.Request.WithContext(ctx)

	c.Next()
}

// GuestTenantMiddleware scopes every request to the default tenant. Used in
// local mode only.
func GuestTenantMiddleware(c *gin.Context) {
	ctx := c.Request.Context()
	if types.GetTenantID(ctx) == "" {
		tenantID := c.GetHeader(types.HeaderTenantID)
		if tenantID == "" {
			tenantID = types.DefaultTenantID
		}
		ctx = types.SetTenantID(ctx, tenantID)
		ctx = types.SetUserID(ctx, types.DefaultUserID)
	}
	c.Request = c.Request.WithContext(ctx)
	c.Next()
}

// NoRoute renders unknown routes through the error middleware
func NoRoute(c *gin.Context) {
	c.Error(ierr.NewError("route not found").
		WithHintf("%s %s does not exist", c.Request.Method, c.Request.URL.Path).
		Mark(ierr.ErrNotFound))
	c.Status(http.StatusNotFound)
}
