package handler

import "invoicebridge/internal/domain"

// Swagger type definitions for API documentation.
// These types are used by swag to generate OpenAPI documentation.

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
	Error  string `json:"error,omitempty" example:"database not reachable"`
}

// Response wraps a successful response.
type Response struct {
	Success bool        `json:"success" example:"true"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponseBody wraps an error response.
type ErrorResponseBody struct {
	Success bool      `json:"success" example:"false"`
	Error   *APIError `json:"error"`
}

// --- Error details (for documentation) ---

// ValidationErrorDetails accompanies INVALID_INVOICE.
type ValidationErrorDetails struct {
	Errors []string `json:"errors" example:"invoice number is required,supplier name is required"`
}

// DuplicateErrorDetails accompanies DUPLICATE_INVOICE.
type DuplicateErrorDetails struct {
	InvoiceNumber string                  `json:"invoice_number" example:"FE-1001"`
	Existing      *domain.PurchaseSummary `json:"existing"`
}

// ImportFailedDetails accompanies IMPORT_FAILED.
type ImportFailedDetails struct {
	Step      string `json:"step" example:"purchase_items"`
	ItemIndex *int   `json:"item_index,omitempty" example:"2"`
}
