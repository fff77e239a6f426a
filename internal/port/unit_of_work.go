package port

import (
	"context"

	"github.com/google/uuid"
)

// ImportRepos is the set of repositories an import touches. Inside RunInTx
// every repository shares the transaction.
type ImportRepos interface {
	Suppliers() SupplierRepository
	Products() ProductRepository
	Purchases() PurchaseRepository
	Duplicates() DuplicateInvoiceFinder
	// LockInvoiceNumber serializes imports of the same invoice number for a
	// tenant until the surrounding transaction ends. Outside a transaction it
	// is a no-op.
	LockInvoiceNumber(ctx context.Context, tenantID uuid.UUID, invoiceNumber string) error
}

// TxRunner runs fn in one transaction: committed when fn returns nil, rolled
// back otherwise (including on context cancellation).
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(repos ImportRepos) error) error
}
