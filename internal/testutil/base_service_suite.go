package testutil

import (
	"context"
	"time"

	"github.com/guardpost/console/internal/cache"
	"github.com/guardpost/console/internal/config"
	"github.com/guardpost/console/internal/logger"
	"github.com/guardpost/console/internal/sentry"
	"github.com/guardpost/console/internal/types"
	"github.com/guardpost/console/internal/validator"
	"github.com/guardpost/console/internal/webhook/publisher"
	"github.com/stretchr/testify/suite"
)

// Stores holds the in-memory collaborators services are wired to in tests
type Stores struct {
	InvoiceRepo  *InMemoryInvoiceStore
	PaymentRepo  *InMemoryPaymentStore
	CatalogRepo  *InMemoryCatalogStore
	CustomerRepo *InMemoryCustomerStore
	Documents    *InMemoryDocumentStore
}

// BaseServiceTestSuite provides common functionality for all service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx           context.Context
	stores        Stores
	cache         cache.Cache
	logger        *logger.Logger
	config        *config.Configuration
	sentryService *sentry.Service
	pdfRenderer   *MockPDFRenderer
	pubSub        *InMemoryPubSub
	webhookPub    publisher.WebhookPublisher
	now           time.Time
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	validator.NewValidator()

	s.config = config.GetDefaultConfig()
	s.config.Logging.Level = types.LogLevelInfo
	s.config.Webhook.Enabled = true
	s.logger = logger.NewNopLogger()
	s.sentryService = sentry.NewSentryService(s.config, s.logger)
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.setupContext()
	s.setupStores()
	s.now = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.clearStores()
}

func (s *BaseServiceTestSuite) setupContext() {
	s.ctx = SetupContext()
}

func (s *BaseServiceTestSuite) setupStores() {
	s.stores = Stores{
		InvoiceRepo:  NewInMemoryInvoiceStore(),
		PaymentRepo:  NewInMemoryPaymentStore(),
		CatalogRepo:  NewInMemoryCatalogStore(),
		CustomerRepo: NewInMemoryCustomerStore(),
		Documents:    NewInMemoryDocumentStore(),
	}
	s.stores.Documents.Now = s.GetNow
	s.cache = cache.NewInMemoryCache(s.config)
	s.pdfRenderer = NewMockPDFRenderer()

	s.pubSub = NewInMemoryPubSub()
	var err error
	s.webhookPub, err = publisher.NewPublisher(s.pubSub, s.config, s.logger)
	s.Require().NoError(err)
}

func (s *BaseServiceTestSuite) clearStores() {
	s.stores.InvoiceRepo.Clear()
	s.stores.PaymentRepo.Clear()
	s.stores.CatalogRepo.Clear()
	s.stores.CustomerRepo.Clear()
	s.stores.Documents.Clear()
	s.pubSub.ClearMessages()
}

func (s *BaseServiceTestSuite) ClearStores() {
	s.clearStores()
}

// GetContext returns the test context
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// GetConfig returns the test configuration
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// GetLogger returns the test logger
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

// GetStores returns all test repositories
func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

// GetCache returns the catalog cache
func (s *BaseServiceTestSuite) GetCache() cache.Cache {
	return s.cache
}

// GetSentry returns a disabled sentry service
func (s *BaseServiceTestSuite) GetSentry() *sentry.Service {
	return s.sentryService
}

// GetPDFRenderer returns the mock renderer
func (s *BaseServiceTestSuite) GetPDFRenderer() *MockPDFRenderer {
	return s.pdfRenderer
}

// GetNow returns the pinned clock of the test
func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.now
}

// GetPubSub returns the pubsub webhook events are recorded on
func (s *BaseServiceTestSuite) GetPubSub() *InMemoryPubSub {
	return s.pubSub
}

// GetWebhookPublisher returns a publisher writing to GetPubSub
func (s *BaseServiceTestSuite) GetWebhookPublisher() publisher.WebhookPublisher {
	return s.webhookPub
}

// PublishedEvents returns the names of the webhook events published so far
func (s *BaseServiceTestSuite) PublishedEvents() []string {
	return s.pubSub.EventNames(s.config.Webhook.Topic)
}
