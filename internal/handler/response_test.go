package handler_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"invoicebridge/internal/domain"
	"invoicebridge/internal/einvoice"
	"invoicebridge/internal/handler"
)

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", domain.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"wrapped not found", fmt.Errorf("purchaseRepo.GetByID: %w", domain.ErrNotFound), http.StatusNotFound, "NOT_FOUND"},
		{"unauthorized", domain.ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{"file type", domain.ErrUnsupportedFileType, http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE"},
		{"file size", domain.ErrFileTooLarge, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE"},
		{"option", domain.ErrInvalidImportOption, http.StatusBadRequest, "INVALID_IMPORT_OPTION"},
		{"archive", einvoice.ErrExtraction, http.StatusBadRequest, "INVALID_ARCHIVE"},
		{"malformed", einvoice.ErrMalformedDocument, http.StatusBadRequest, "MALFORMED_DOCUMENT"},
		{"envelope", einvoice.ErrEnvelopeUnwrap, http.StatusBadRequest, "ENVELOPE_UNWRAP_FAILED"},
		{"validation", &domain.ValidationError{Errors: []string{"x"}}, http.StatusUnprocessableEntity, "INVALID_INVOICE"},
		{"duplicate", &domain.DuplicateInvoiceError{InvoiceNumber: "FE-1"}, http.StatusConflict, "DUPLICATE_INVOICE"},
		{"step", &domain.ImportStepError{Step: domain.StepCommit, ItemIndex: -1, Err: errors.New("x")}, http.StatusInternalServerError, "IMPORT_FAILED"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code, _ := handler.MapDomainError(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, code)
		})
	}
}
