package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"invoicebridge/internal/middleware"
	"invoicebridge/internal/service"
)

// PurchaseHandler serves purchases created by imports.
type PurchaseHandler struct {
	importService service.ImportService
}

// NewPurchaseHandler creates a new PurchaseHandler.
func NewPurchaseHandler(importService service.ImportService) *PurchaseHandler {
	return &PurchaseHandler{importService: importService}
}

// GetByID handles GET /api/v1/purchases/:id
// @Summary Get a purchase
// @Description Returns a purchase with its supplier and items. When the invoice came with a PDF rendering a temporary download URL is included.
// @Tags purchases
// @Produce json
// @Param id path string true "Purchase ID"
// @Success 200 {object} Response{data=domain.Purchase} "Purchase"
// @Failure 400 {object} ErrorResponseBody "Invalid ID"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 404 {object} ErrorResponseBody "Not found"
// @Security BearerAuth
// @Router /purchases/{id} [get]
func (h *PurchaseHandler) GetByID(c *gin.Context) {
	tenantID, err := middleware.GetTenantID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing tenant context")
		return
	}

	purchaseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid purchase ID")
		return
	}

	purchase, err := h.importService.GetPurchase(c.Request.Context(), tenantID, purchaseID)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, purchase)
}
