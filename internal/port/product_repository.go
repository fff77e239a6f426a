package port

import (
	"context"

	"github.com/google/uuid"

	"invoicebridge/internal/domain"
)

// ProductRepository defines the contract for product persistence.
type ProductRepository interface {
	GetBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (*domain.Product, error)
	// GetByName matches case-insensitively on the trimmed name.
	GetByName(ctx context.Context, tenantID uuid.UUID, name string) (*domain.Product, error)
	// Create inserts the product and reports whether it was new. If the SKU
	// already exists the stored product is loaded into product instead.
	Create(ctx context.Context, product *domain.Product) (created bool, err error)
}
