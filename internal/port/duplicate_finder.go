package port

import (
	"context"

	"github.com/google/uuid"

	"invoicebridge/internal/domain"
)

// DuplicateInvoiceFinder looks up an existing purchase for an invoice number.
type DuplicateInvoiceFinder interface {
	// FindByInvoiceNumber returns domain.ErrNotFound when the tenant has no
	// purchase for the number.
	FindByInvoiceNumber(ctx context.Context, tenantID uuid.UUID, invoiceNumber string) (*domain.PurchaseSummary, error)
}
