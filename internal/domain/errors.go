package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound            = errors.New("resource not found")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrInvalidImportOption = errors.New("invalid import option")
	ErrInvalidInvoice      = errors.New("invoice failed validation")
	ErrDuplicateInvoice    = errors.New("invoice already imported")
	ErrImportFailed        = errors.New("invoice import failed")
)

// ValidationError carries every validation failure of an invoice.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invoice failed validation: %s", strings.Join(e.Errors, "; "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInvoice
}

// DuplicateInvoiceError reports that the tenant already imported the invoice number.
type DuplicateInvoiceError struct {
	InvoiceNumber string
	Existing      *PurchaseSummary
}

func (e *DuplicateInvoiceError) Error() string {
	return fmt.Sprintf("invoice %s already imported", e.InvoiceNumber)
}

func (e *DuplicateInvoiceError) Is(target error) bool {
	return target == ErrDuplicateInvoice
}

// Import steps reported by ImportStepError.
const (
	StepDuplicateCheck     = "duplicate_check"
	StepSupplierResolution = "supplier_resolution"
	StepItemMaterialize    = "item_materialization"
	StepPurchaseHeader     = "purchase_header"
	StepPurchaseItems      = "purchase_items"
	StepCommit             = "commit"
)

// ImportStepError wraps a failure inside the import transaction with the step
// and, for per-item steps, the zero-based source item index (-1 otherwise).
type ImportStepError struct {
	Step      string
	ItemIndex int
	Err       error
}

func (e *ImportStepError) Error() string {
	if e.ItemIndex >= 0 {
		return fmt.Sprintf("import failed at %s (item %d): %v", e.Step, e.ItemIndex, e.Err)
	}
	return fmt.Sprintf("import failed at %s: %v", e.Step, e.Err)
}

func (e *ImportStepError) Unwrap() error {
	return e.Err
}

func (e *ImportStepError) Is(target error) bool {
	return target == ErrImportFailed
}
