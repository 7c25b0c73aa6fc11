package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/guardpost/console/internal/api"
	v1 "github.com/guardpost/console/internal/api/v1"
	"github.com/guardpost/console/internal/cache"
	"github.com/guardpost/console/internal/config"
	"github.com/guardpost/console/internal/httpclient"
	"github.com/guardpost/console/internal/logger"
	"github.com/guardpost/console/internal/pdfgen"
	pubsubRouter "github.com/guardpost/console/internal/pubsub/router"
	"github.com/guardpost/console/internal/pyroscope"
	"github.com/guardpost/console/internal/repository"
	"github.com/guardpost/console/internal/s3"
	"github.com/guardpost/console/internal/sentry"
	"github.com/guardpost/console/internal/service"
	"github.com/guardpost/console/internal/svix"
	"github.com/guardpost/console/internal/types"
	"github.com/guardpost/console/internal/validator"
	"github.com/guardpost/console/internal/webhook"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

// @title Guardpost Console API
// @version 1.0
// @description Invoice composition and payment reconciliation for the guard console
// @BasePath /v1
// @schemes http https
// @securityDefinitions.apikey TenantAuth
// @in header
// @name X-Tenant-ID

func init() {
	// Set UTC timezone for the entire application
	time.Local = time.UTC
}

func main() {
	var opts []fx.Option

	// Core dependencies
	opts = append(opts,
		fx.Provide(
			// Validator
			validator.NewValidator,

			// Config
			config.NewConfig,

			// Logger
			logger.NewLogger,

			// Cache
			cache.NewInMemoryCache,

			// HTTP Client
			httpclient.NewClientConfig,
			httpclient.NewDefaultClient,

			// Backend collaborators
			repository.NewBackendClient,
			repository.NewInvoiceRepository,
			repository.NewPaymentRepository,
			repository.NewCatalogRepository,
			repository.NewCustomerRepository,

			// Documents
			pdfgen.NewPDFRenderer,
			s3.NewService,

			// Outbound webhooks
			svix.NewClient,
			pubsubRouter.NewRouter,
		),
	)

	// Webhook module (must be initialised before services)
	opts = append(opts, webhook.Module)

	// Monitoring
	opts = append(opts, sentry.Module(), pyroscope.Module())

	// Service layer
	opts = append(opts,
		fx.Provide(
			service.NewServiceParams,

			service.NewCatalogService,
			service.NewInvoiceService,
			service.NewPaymentService,
		),
	)

	// API
	opts = append(opts,
		fx.Provide(
			provideHandlers,
			api.NewRouter,
		),
		fx.Invoke(start),
	)

	app := fx.New(opts...)
	app.Run()
}

func provideHandlers(
	logger *logger.Logger,
	invoiceService service.InvoiceService,
	paymentService service.PaymentService,
	catalogService service.CatalogService,
) api.Handlers {
	return api.Handlers{
		Health:  v1.NewHealthHandler(logger),
		Invoice: v1.NewInvoiceHandler(invoiceService, logger),
		Payment: v1.NewPaymentHandler(paymentService, logger),
		Catalog: v1.NewCatalogHandler(catalogService, logger),
	}
}

func start(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	r *gin.Engine,
	router *pubsubRouter.Router,
	webhookService *webhook.WebhookService,
	log *logger.Logger,
) {
	mode := cfg.Deployment.Mode
	if mode == "" {
		mode = types.ModeLocal
	}

	switch mode {
	case types.ModeLocal, types.ModeAPI:
		startAPIServer(lc, r, cfg, log)
		startMessageRouter(lc, cfg, router, webhookService, log)
	case types.ModeAWSLambdaAPI:
		startMessageRouter(lc, cfg, router, webhookService, log)
		startAWSLambdaAPI(lc, r, log)
	default:
		log.Fatalf("Unknown deployment mode: %s", mode)
	}
}

// startAWSLambdaAPI hands the router to the Lambda runtime once the other
// start hooks have run. lambda.Start never returns.
func startAWSLambdaAPI(lc fx.Lifecycle, r *gin.Engine, log *logger.Logger) {
	ginLambda := ginadapter.New(r)
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			log.Info("Starting AWS Lambda API handler...")
			go lambda.Start(ginLambda.ProxyWithContext)
			return nil
		},
	})
}

func startAPIServer(
	lc fx.Lifecycle,
	r *gin.Engine,
	cfg *config.Configuration,
	log *logger.Logger,
) {
	srv := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: r,
	}

	log.Info("Registering API server start hook")
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("Starting API server...",
				"address", cfg.Server.Address,
				"mode", cfg.Deployment.Mode,
				"backend", cfg.Backend.BaseURL,
			)
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down server...")
			return srv.Shutdown(ctx)
		},
	})
}

func startMessageRouter(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	router *pubsubRouter.Router,
	webhookService *webhook.WebhookService,
	log *logger.Logger,
) {
	if !cfg.Webhook.Enabled {
		log.Info("webhooks disabled, message router not started")
		return
	}

	// handlers must be registered before the router runs
	webhookService.RegisterHandler(router)

	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			log.Infow("starting message router",
				"topic", cfg.Webhook.Topic,
				"pubsub", cfg.Webhook.PubSub,
			)
			go func() {
				if err := router.Run(ctx); err != nil {
					log.Errorw("message router failed", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			log.Info("stopping message router")
			cancel()
			if err := router.Close(); err != nil {
				return err
			}
			return webhookService.Stop()
		},
	})
}
