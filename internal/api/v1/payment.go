package v1

import (
	"net/http"

	"github.com/guardpost/console/internal/api/dto"
	"github.com/guardpost/console/internal/logger"
	"github.com/guardpost/console/internal/service"
	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	paymentService service.PaymentService
	logger         *logger.Logger
}

func NewPaymentHandler(paymentService service.PaymentService, logger *logger.Logger) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		logger:         logger,
	}
}

// @Summary Register payment
// @Description Record a payment against an invoice. The amount must be positive and may not exceed the remaining balance.
// @Tags Payments
// @Accept json
// @Produce json
// @Param X-Tenant-ID header string true "Tenant ID"
// @Param id path string true "Invoice ID"
// @Param request body dto.RegisterPaymentRequest true "Payment"
// @Success 201 {object} dto.LedgerResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 422 {object} ierr.ErrorResponse
// @Failure 502 {object} ierr.ErrorResponse
// @Router /invoices/{id}/payments [post]
func (h *PaymentHandler) RegisterPayment(c *gin.Context) {
	invoiceID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.RegisterPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errInvalidRequest(err))
		return
	}

	resp, err := h.paymentService.RegisterPayment(c.Request.Context(), invoiceID, req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// @Summary List payments
// @Description Payments recorded against an invoice, newest first
// @Tags Payments
// @Produce json
// @Param X-Tenant-ID header string true "Tenant ID"
// @Param id path string true "Invoice ID"
// @Success 200 {object} dto.ListResponse[dto.PaymentResponse]
// @Failure 404 {object} ierr.ErrorResponse
// @Router /invoices/{id}/payments [get]
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	invoiceID, ok := pathID(c, "id")
	if !ok {
		return
	}

	resp, err := h.paymentService.ListPayments(c.Request.Context(), invoiceID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Get payment ledger
// @Description Total, paid, remaining balance and display status of an invoice
// @Tags Payments
// @Produce json
// @Param X-Tenant-ID header string true "Tenant ID"
// @Param id path string true "Invoice ID"
// @Success 200 {object} dto.LedgerResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /invoices/{id}/ledger [get]
func (h *PaymentHandler) GetLedger(c *gin.Context) {
	invoiceID, ok := pathID(c, "id")
	if !ok {
		return
	}

	resp, err := h.paymentService.GetLedger(c.Request.Context(), invoiceID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
