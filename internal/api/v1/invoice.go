package v1

import (
	"net/http"

	"github.com/guardpost/console/internal/api/dto"
	ierr "github.com/guardpost/console/internal/errors"
	"github.com/guardpost/console/internal/logger"
	"github.com/guardpost/console/internal/service"
	"github.com/guardpost/console/internal/types"
	"github.com/gin-gonic/gin"
)

type InvoiceHandler struct {
	invoiceService service.InvoiceService
	logger         *logger.Logger
}

func NewInvoiceHandler(invoiceService service.InvoiceService, logger *logger.Logger) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
		logger:         logger,
	}
}

// @Summary Calculate invoice totals
// @Description Price line items and return the document totals without saving anything
// @Tags Invoices
// @Accept json
// @Produce json
// @Param X-Tenant-ID header string true "Tenant ID"
// @Param request body dto.CalculateInvoiceRequest true "Line items"
// @Success 200 {object} dto.CalculateInvoiceResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /invoices/calculate [post]
func (h *InvoiceHandler) Calculate(c *gin.Context) {
	var req dto.CalculateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errInvalidRequest(err))
		return
	}

	resp, err := h.invoiceService.Calculate(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Create invoice
// @Description Create a draft invoice
// @Tags Invoices
// @Accept json
// @Produce json
// @Param X-Tenant-ID header string true "Tenant ID"
// @Param request body dto.CreateInvoiceRequest true "Invoice"
// @Success 201 {object} dto.InvoiceResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 502 {object} ierr.ErrorResponse
// @Router /invoices [post]
func (h *InvoiceHandler) CreateInvoice(c *gin.Context) {
	var req dto.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errInvalidRequest(err))
		return
	}

	resp, err := h.invoiceService.CreateInvoice(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// @Summary Get invoice
// @Tags Invoices
// @Produce json
// @Param X-Tenant-ID header string true "Tenant ID"
// @Param id path string true "Invoice ID"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /invoices/{id} [get]
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	resp, err := h.invoiceService.GetInvoice(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Update invoice
// @Description Edit the header fields or replace the line items of a draft invoice
// @Tags Invoices
// @Accept json
// @Produce json
// @Param X-Tenant-ID header string true "Tenant ID"
// @Param id path string true "Invoice ID"
// @Param request body dto.UpdateInvoiceRequest true "Changes"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /invoices/{id} [put]
func (h *InvoiceHandler) UpdateInvoice(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errInvalidRequest(err))
		return
	}

	resp, err := h.invoiceService.UpdateInvoice(c.Request.Context(), id, req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Add line item
// @Description Append a row to a draft invoice, optionally copied from a catalog entry
// @Tags Invoices
// @Accept json
// @Produce json
// @Param X-Tenant-ID header string true "Tenant ID"
// @Param id path string true "Invoice ID"
// @Param request body dto.AddLineItemRequest true "Line item"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /invoices/{id}/items [post]
func (h *InvoiceHandler) AddLineItem(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.AddLineItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errInvalidRequest(err))
		return
	}

	resp, err := h.invoiceService.AddLineItem(c.Request.Context(), id, req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Update line item
// @Tags Invoices
// @Accept json
// @Produce json
// @Param X-Tenant-ID header string true "Tenant ID"
// @Param id path string true "Invoice ID"
// @Param item_id path string true "Line item ID"
// @Param request body dto.UpdateLineItemRequest true "Changes"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /invoices/{id}/items/{item_id} [put]
func (h *InvoiceHandler) UpdateLineItem(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	itemID, ok := pathID(c, "item_id")
	if !ok {
		return
	}

	var req dto.UpdateLineItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errInvalidRequest(err))
		return
	}

	resp, err := h.invoiceService.UpdateLineItem(c.Request.Context(), id, itemID, req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Remove line item
// @Description Remove a row; removing the last row leaves a blank one
// @Tags Invoices
// @Produce json
// @Param X-Tenant-ID header string true "Tenant ID"
// @Param id path string true "Invoice ID"
// @Param item_id path string true "Line item ID"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /invoices/{id}/items/{item_id} [delete]
func (h *InvoiceHandler) RemoveLineItem(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	itemID, ok := pathID(c, "item_id")
	if !ok {
		return
	}

	resp, err := h.invoiceService.RemoveLineItem(c.Request.Context(), id, itemID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Preview invoice
// @Description Resolve the client and post site and move the draft to PREVIEWED
// @Tags Invoices
// @Produce json
// @Param X-Tenant-ID header string true "Tenant ID"
// @Param id path string true "Invoice ID"
// @Success 200 {object} dto.PreviewInvoiceResponse
// @Failure 409 {object} ierr.ErrorResponse
// @Router /invoices/{id}/preview [post]
func (h *InvoiceHandler) PreviewInvoice(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	resp, err := h.invoiceService.PreviewInvoice(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Send invoice
// @Description Deliver a previewed, fully paid invoice
// @Tags Invoices
// @Produce json
// @Param X-Tenant-ID header string true "Tenant ID"
// @Param id path string true "Invoice ID"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 409 {object} ierr.ErrorResponse
// @Failure 502 {object} ierr.ErrorResponse
// @Router /invoices/{id}/send [post]
func (h *InvoiceHandler) SendInvoice(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	resp, err := h.invoiceService.SendInvoice(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Get invoice status
// @Description Lifecycle status, payment display status and whether the invoice can be sent
// @Tags Invoices
// @Produce json
// @Param X-Tenant-ID header string true "Tenant ID"
// @Param id path string true "Invoice ID"
// @Success 200 {object} dto.InvoiceStatusResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /invoices/{id}/status [get]
func (h *InvoiceHandler) GetInvoiceStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	resp, err := h.invoiceService.GetInvoiceStatus(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Download invoice document
// @Tags Invoices
// @Produce application/pdf
// @Produce text/html
// @Param X-Tenant-ID header string true "Tenant ID"
// @Param id path string true "Invoice ID"
// @Param format query string false "pdf or html" default(pdf)
// @Success 200 {file} file
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 502 {object} ierr.ErrorResponse
// @Router /invoices/{id}/document [get]
func (h *InvoiceHandler) DownloadDocument(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	format := types.DocumentFormat(c.DefaultQuery("format", string(types.DocumentFormatPDF)))
	doc, err := h.invoiceService.DownloadDocument(c.Request.Context(), id, format)
	if err != nil {
		c.Error(err)
		return
	}

	writeDocument(c, doc)
}

// @Summary Render invoice preview
// @Description Render a local PDF of the invoice as it currently stands
// @Tags Invoices
// @Produce application/pdf
// @Param X-Tenant-ID header string true "Tenant ID"
// @Param id path string true "Invoice ID"
// @Success 200 {file} file
// @Failure 404 {object} ierr.ErrorResponse
// @Router /invoices/{id}/preview.pdf [get]
func (h *InvoiceHandler) RenderPreview(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	doc, err := h.invoiceService.RenderPreview(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	writeDocument(c, doc)
}

// @Summary Get archived document URL
// @Description Archive a sent invoice's PDF and return a presigned link to it
// @Tags Invoices
// @Produce json
// @Param X-Tenant-ID header string true "Tenant ID"
// @Param id path string true "Invoice ID"
// @Success 200 {object} dto.DocumentURLResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 409 {object} ierr.ErrorResponse
// @Router /invoices/{id}/document/url [get]
func (h *InvoiceHandler) GetDocumentURL(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	resp, err := h.invoiceService.GetDocumentURL(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func writeDocument(c *gin.Context, doc *dto.DocumentResponse) {
	c.Header("Content-Disposition", "attachment; filename="+doc.Filename)
	c.Data(http.StatusOK, doc.ContentType, doc.Content)
}

func pathID(c *gin.Context, name string) (string, bool) {
	id := c.Param(name)
	if id == "" {
		c.Error(ierr.NewError(name + " is required").
			WithHintf("%s is required", name).
			Mark(ierr.ErrValidation))
		return "", false
	}
	return id, true
}

func errInvalidRequest(err error) error {
	return ierr.WithError(err).
		WithHint("Invalid request format").
		Mark(ierr.ErrValidation)
}
