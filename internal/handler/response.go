package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"invoicebridge/internal/domain"
	"invoicebridge/internal/einvoice"
	"invoicebridge/internal/logger"
	"invoicebridge/internal/middleware"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondCreated sends a 201 success response.
func RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{Success: true, Data: data})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	RespondErrorDetails(c, status, code, msg, nil)
}

// RespondErrorDetails sends an error response carrying machine-readable details.
func RespondErrorDetails(c *gin.Context, status int, code, msg string, details interface{}) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg, Details: details},
	})
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
func MapDomainError(err error) (status int, code, msg string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", "resource not found"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "FORBIDDEN", "forbidden"
	case errors.Is(err, domain.ErrUnsupportedFileType):
		return http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE", "unsupported file type; allowed: zip, xml"
	case errors.Is(err, domain.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds maximum allowed size"
	case errors.Is(err, domain.ErrInvalidImportOption):
		return http.StatusBadRequest, "INVALID_IMPORT_OPTION", err.Error()
	case errors.Is(err, einvoice.ErrExtraction):
		return http.StatusBadRequest, "INVALID_ARCHIVE", err.Error()
	case errors.Is(err, einvoice.ErrMalformedDocument):
		return http.StatusBadRequest, "MALFORMED_DOCUMENT", err.Error()
	case errors.Is(err, einvoice.ErrEnvelopeUnwrap):
		return http.StatusBadRequest, "ENVELOPE_UNWRAP_FAILED", err.Error()
	case errors.Is(err, domain.ErrInvalidInvoice):
		return http.StatusUnprocessableEntity, "INVALID_INVOICE", "invoice failed validation"
	case errors.Is(err, domain.ErrDuplicateInvoice):
		return http.StatusConflict, "DUPLICATE_INVOICE", "invoice has already been imported"
	case errors.Is(err, domain.ErrImportFailed):
		return http.StatusInternalServerError, "IMPORT_FAILED", "invoice import failed and was rolled back"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// errorDetails returns the payload a client needs to act on err, if any.
func errorDetails(err error) interface{} {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return gin.H{"errors": verr.Errors}
	}
	var dup *domain.DuplicateInvoiceError
	if errors.As(err, &dup) {
		return gin.H{"invoice_number": dup.InvoiceNumber, "existing": dup.Existing}
	}
	var stepErr *domain.ImportStepError
	if errors.As(err, &stepErr) {
		details := gin.H{"step": stepErr.Step}
		if stepErr.ItemIndex >= 0 {
			details["item_index"] = stepErr.ItemIndex
		}
		return details
	}
	return nil
}

// extractAuthContext extracts tenant ID and user ID from the request context.
// Returns false if auth context is missing (error response already written).
func extractAuthContext(c *gin.Context) (tenantID, userID uuid.UUID, ok bool) {
	var err error
	tenantID, err = middleware.GetTenantID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing tenant context")
		return uuid.Nil, uuid.Nil, false
	}
	userID, err = middleware.GetUserID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing user context")
		return uuid.Nil, uuid.Nil, false
	}
	return tenantID, userID, true
}

// HandleError maps a domain error and sends the appropriate error response.
func HandleError(c *gin.Context, err error) {
	status, code, msg := MapDomainError(err)
	if status >= 500 {
		l := logger.WithRequestID(middleware.GetRequestID(c))
		l.Error().Err(err).Str("code", code).Msg("handler: request failed")
	}
	_ = c.Error(err)
	RespondErrorDetails(c, status, code, msg, errorDetails(err))
}
