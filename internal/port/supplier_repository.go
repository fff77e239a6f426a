package port

import (
	"context"

	"github.com/google/uuid"

	"invoicebridge/internal/domain"
)

// SupplierRepository defines the contract for supplier persistence.
// All query methods include tenantID to enforce tenant isolation at the data layer.
type SupplierRepository interface {
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.Supplier, error)
	GetByTaxID(ctx context.Context, tenantID uuid.UUID, taxID string) (*domain.Supplier, error)
	// GetByName matches case-insensitively on the trimmed name.
	GetByName(ctx context.Context, tenantID uuid.UUID, name string) (*domain.Supplier, error)
	// Upsert inserts the supplier or, when a supplier with the same tax id
	// already exists for the tenant, returns that one. ID and timestamps are
	// filled in from the stored row.
	Upsert(ctx context.Context, supplier *domain.Supplier) error
}
