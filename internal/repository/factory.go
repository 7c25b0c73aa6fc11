package repository

import (
	"github.com/guardpost/console/internal/config"
	"github.com/guardpost/console/internal/domain/catalog"
	"github.com/guardpost/console/internal/domain/customer"
	"github.com/guardpost/console/internal/domain/invoice"
	"github.com/guardpost/console/internal/domain/payment"
	"github.com/guardpost/console/internal/httpclient"
	"github.com/guardpost/console/internal/logger"
	"github.com/guardpost/console/internal/repository/rest"
	"github.com/guardpost/console/internal/sentry"
)

// NewBackendClient builds the client every collaborator shares
func NewBackendClient(cfg *config.Configuration, log *logger.Logger, sentry *sentry.Service) *rest.Client {
	http := httpclient.NewDefaultClient(httpclient.NewClientConfig(cfg), log)
	return rest.NewClient(cfg, http, log, sentry)
}

func NewInvoiceRepository(client *rest.Client) invoice.Repository {
	return rest.NewInvoiceRepository(client)
}

func NewPaymentRepository(client *rest.Client) payment.Repository {
	return rest.NewPaymentRepository(client)
}

func NewCatalogRepository(client *rest.Client) catalog.Repository {
	return rest.NewCatalogRepository(client)
}

func NewCustomerRepository(client *rest.Client) customer.Repository {
	return rest.NewCustomerRepository(client)
}
