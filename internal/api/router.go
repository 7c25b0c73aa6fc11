package api

import (
	v1 "github.com/guardpost/console/internal/api/v1"
	"github.com/guardpost/console/internal/config"
	"github.com/guardpost/console/internal/logger"
	"github.com/guardpost/console/internal/rest/middleware"
	"github.com/guardpost/console/internal/sentry"
	"github.com/guardpost/console/internal/types"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type Handlers struct {
	Health  *v1.HealthHandler
	Invoice *v1.InvoiceHandler
	Payment *v1.PaymentHandler
	Catalog *v1.CatalogHandler
}

func NewRouter(handlers Handlers, cfg *config.Configuration, logger *logger.Logger, sentryService *sentry.Service) *gin.Engine {
	if cfg.Deployment.Mode != types.ModeLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.CORSMiddleware(cfg),
		middleware.RequestIDMiddleware,
	)
	router.Use(middleware.SentryMiddleware(cfg)...)
	router.Use(
		middleware.PyroscopeMiddleware(cfg),
		middleware.ErrorHandler(logger, sentryService),
	)
	router.NoRoute(middleware.NoRoute)

	router.GET("/health", handlers.Health.Health)
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1Group := router.Group("/v1")
	if cfg.Deployment.Mode == types.ModeLocal {
		v1Group.Use(middleware.GuestTenantMiddleware)
	} else {
		v1Group.Use(middleware.TenantMiddleware)
	}

	// Invoice routes
	invoices := v1Group.Group("/invoices")
	{
		invoices.POST("/calculate", handlers.Invoice.Calculate)
		invoices.POST("", handlers.Invoice.CreateInvoice)
		invoices.GET("/:id", handlers.Invoice.GetInvoice)
		invoices.PUT("/:id", handlers.Invoice.UpdateInvoice)
		invoices.POST("/:id/items", handlers.Invoice.AddLineItem)
		invoices.PUT("/:id/items/:item_id", handlers.Invoice.UpdateLineItem)
		invoices.DELETE("/:id/items/:item_id", handlers.Invoice.RemoveLineItem)
		invoices.POST("/:id/preview", handlers.Invoice.PreviewInvoice)
		invoices.GET("/:id/preview.pdf", handlers.Invoice.RenderPreview)
		invoices.POST("/:id/send", handlers.Invoice.SendInvoice)
		invoices.GET("/:id/status", handlers.Invoice.GetInvoiceStatus)
		invoices.GET("/:id/document", handlers.Invoice.DownloadDocument)
		invoices.GET("/:id/document/url", handlers.Invoice.GetDocumentURL)

		// Payment routes
		invoices.POST("/:id/payments", handlers.Payment.RegisterPayment)
		invoices.GET("/:id/payments", handlers.Payment.ListPayments)
		invoices.GET("/:id/ledger", handlers.Payment.GetLedger)
	}

	// Catalog routes
	catalog := v1Group.Group("/catalog")
	{
		catalog.GET("", handlers.Catalog.GetCatalog)
		catalog.POST("/entries", handlers.Catalog.CreateEntry)
	}

	return router
}
