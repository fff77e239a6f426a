package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ImportSummary is what a completed import notification carries.
type ImportSummary struct {
	TenantID      uuid.UUID
	PurchaseID    uuid.UUID
	InvoiceNumber string
	SupplierName  string
	Total         decimal.Decimal
	ItemCount     int
	NewProducts   int
}

// EmailSender defines the contract for sending emails.
type EmailSender interface {
	SendImportSummary(ctx context.Context, toEmail string, summary ImportSummary) error
}
