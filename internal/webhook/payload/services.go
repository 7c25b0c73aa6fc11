package payload

import "github.com/guardpost/console/internal/service"

// Services container for all services needed by payload builders
type Services struct {
	InvoiceService service.InvoiceService
	PaymentService service.PaymentService
}

func NewServices(invoiceService service.InvoiceService, paymentService service.PaymentService) *Services {
	return &Services{
		InvoiceService: invoiceService,
		PaymentService: paymentService,
	}
}
