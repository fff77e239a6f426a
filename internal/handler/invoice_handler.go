package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"invoicebridge/internal/domain"
	"invoicebridge/internal/middleware"
	"invoicebridge/internal/service"
)

// InvoiceHandler handles the invoice preview and import endpoints.
type InvoiceHandler struct {
	importService  service.ImportService
	maxUploadBytes int64
}

// NewInvoiceHandler creates a new InvoiceHandler.
func NewInvoiceHandler(importService service.ImportService, maxUploadBytes int64) *InvoiceHandler {
	return &InvoiceHandler{importService: importService, maxUploadBytes: maxUploadBytes}
}

// Preview handles POST /api/v1/invoices/preview
// @Summary Preview an invoice import
// @Description Reads an electronic invoice bundle (zip with XML and optional PDF, or a bare XML) and reports what an import would do, without writing anything.
// @Tags invoices
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Invoice bundle (zip or xml)"
// @Param profit_margin formData number false "Profit margin percentage for new products"
// @Param supplier_name formData string false "Supplier name override"
// @Param removed_items formData string false "JSON array of zero-based item indices to leave out"
// @Param shipping_cost formData number false "Shipping cost added to the purchase total"
// @Param discount_amount formData number false "Discount subtracted from the purchase total"
// @Success 200 {object} Response{data=service.PreviewResult} "Import preview"
// @Failure 400 {object} ErrorResponseBody "Unreadable bundle or invalid option"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 413 {object} ErrorResponseBody "File too large"
// @Security BearerAuth
// @Router /invoices/preview [post]
func (h *InvoiceHandler) Preview(c *gin.Context) {
	tenantID, err := middleware.GetTenantID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing tenant context")
		return
	}

	name, data, ok := h.readUpload(c)
	if !ok {
		return
	}
	opts, err := parseImportOptions(c)
	if err != nil {
		HandleError(c, err)
		return
	}

	result, err := h.importService.Preview(c.Request.Context(), service.PreviewInput{
		TenantID: tenantID,
		FileName: name,
		Data:     data,
		Options:  opts,
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, result)
}

// Import handles POST /api/v1/invoices/import
// @Summary Import an invoice as a purchase
// @Description Creates the supplier, products and purchase for an electronic invoice bundle in one transaction.
// @Tags invoices
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Invoice bundle (zip or xml)"
// @Param profit_margin formData number false "Profit margin percentage for new products"
// @Param supplier_name formData string false "Supplier name override"
// @Param removed_items formData string false "JSON array of zero-based item indices to leave out"
// @Param shipping_cost formData number false "Shipping cost added to the purchase total"
// @Param discount_amount formData number false "Discount subtracted from the purchase total"
// @Success 201 {object} Response{data=service.ImportResult} "Purchase created"
// @Failure 400 {object} ErrorResponseBody "Unreadable bundle or invalid option"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 409 {object} ErrorResponseBody "Invoice already imported"
// @Failure 413 {object} ErrorResponseBody "File too large"
// @Failure 422 {object} ErrorResponseBody "Invoice failed validation"
// @Failure 500 {object} ErrorResponseBody "Import failed and was rolled back"
// @Security BearerAuth
// @Router /invoices/import [post]
func (h *InvoiceHandler) Import(c *gin.Context) {
	tenantID, userID, ok := extractAuthContext(c)
	if !ok {
		return
	}

	name, data, ok := h.readUpload(c)
	if !ok {
		return
	}
	opts, err := parseImportOptions(c)
	if err != nil {
		HandleError(c, err)
		return
	}

	result, err := h.importService.Import(c.Request.Context(), service.ImportInput{
		TenantID: tenantID,
		UserID:   userID,
		Email:    middleware.GetEmail(c),
		FileName: name,
		Data:     data,
		Options:  opts,
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, result)
}

// readUpload reads the multipart "file" field. It writes the error response
// itself and returns false when the upload is missing or not acceptable.
func (h *InvoiceHandler) readUpload(c *gin.Context) (string, []byte, bool) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return "", nil, false
	}
	defer func() { _ = file.Close() }()

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(header.Filename)), ".")
	if !domain.AllowedUploadExtensions[ext] {
		HandleError(c, domain.ErrUnsupportedFileType)
		return "", nil, false
	}
	if h.maxUploadBytes > 0 && header.Size > h.maxUploadBytes {
		HandleError(c, domain.ErrFileTooLarge)
		return "", nil, false
	}

	var r io.Reader = file
	if h.maxUploadBytes > 0 {
		r = io.LimitReader(file, h.maxUploadBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		HandleError(c, fmt.Errorf("reading upload: %w", err))
		return "", nil, false
	}
	if h.maxUploadBytes > 0 && int64(len(data)) > h.maxUploadBytes {
		HandleError(c, domain.ErrFileTooLarge)
		return "", nil, false
	}
	return header.Filename, data, true
}

// parseImportOptions reads the optional import form fields.
func parseImportOptions(c *gin.Context) (service.ImportOptions, error) {
	var opts service.ImportOptions

	if v := strings.TrimSpace(c.PostForm("profit_margin")); v != "" {
		margin, err := decimal.NewFromString(v)
		if err != nil {
			return opts, fmt.Errorf("%w: profit_margin must be a number", domain.ErrInvalidImportOption)
		}
		opts.ProfitMargin = &margin
	}

	amounts := []struct {
		field string
		dst   *decimal.Decimal
	}{
		{"shipping_cost", &opts.ShippingCost},
		{"discount_amount", &opts.DiscountAmount},
	}
	for _, a := range amounts {
		v := strings.TrimSpace(c.PostForm(a.field))
		if v == "" {
			continue
		}
		d, err := decimal.NewFromString(v)
		if err != nil {
			return opts, fmt.Errorf("%w: %s must be a number", domain.ErrInvalidImportOption, a.field)
		}
		*a.dst = d
	}

	if v := strings.TrimSpace(c.PostForm("removed_items")); v != "" {
		if err := json.Unmarshal([]byte(v), &opts.RemovedItems); err != nil {
			return opts, fmt.Errorf("%w: removed_items must be a JSON array of item indices", domain.ErrInvalidImportOption)
		}
	}

	opts.SupplierName = strings.TrimSpace(c.PostForm("supplier_name"))
	return opts, nil
}
