package v1

import (
	"net/http"

	"github.com/guardpost/console/internal/api/dto"
	"github.com/guardpost/console/internal/logger"
	"github.com/guardpost/console/internal/service"
	"github.com/gin-gonic/gin"
)

type CatalogHandler struct {
	catalogService service.CatalogService
	logger         *logger.Logger
}

func NewCatalogHandler(catalogService service.CatalogService, logger *logger.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		logger:         logger,
	}
}

// @Summary Get catalog
// @Description Catalog entries and tax rates offered when composing an invoice
// @Tags Catalog
// @Produce json
// @Param X-Tenant-ID header string true "Tenant ID"
// @Success 200 {object} dto.CatalogResponse
// @Failure 502 {object} ierr.ErrorResponse
// @Router /catalog [get]
func (h *CatalogHandler) GetCatalog(c *gin.Context) {
	resp, err := h.catalogService.GetCatalog(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Create catalog entry
// @Description Save a reusable service description with its default price and tax rate
// @Tags Catalog
// @Accept json
// @Produce json
// @Param X-Tenant-ID header string true "Tenant ID"
// @Param request body dto.CreateCatalogEntryRequest true "Catalog entry"
// @Success 201 {object} catalog.Entry
// @Failure 400 {object} ierr.ErrorResponse
// @Router /catalog/entries [post]
func (h *CatalogHandler) CreateEntry(c *gin.Context) {
	var req dto.CreateCatalogEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errInvalidRequest(err))
		return
	}

	entry, err := h.catalogService.CreateEntry(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, entry)
}
