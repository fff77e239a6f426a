package port

import (
	"context"

	"github.com/google/uuid"

	"invoicebridge/internal/domain"
)

// PurchaseRepository defines the contract for purchase persistence.
type PurchaseRepository interface {
	Create(ctx context.Context, purchase *domain.Purchase) error
	CreateItem(ctx context.Context, item *domain.PurchaseItem) error
	// GetByID returns the purchase with its supplier and ordered items.
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.Purchase, error)
}
