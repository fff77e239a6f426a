package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"invoicebridge/internal/domain"
	"invoicebridge/internal/port"
)

const productColumns = `id, tenant_id, sku, name, cost, sale_price, tax_rate, created_at, updated_at`

type productRepo struct {
	db sqlx.ExtContext
}

// NewProductRepo creates a new PostgreSQL-backed ProductRepository.
func NewProductRepo(db sqlx.ExtContext) port.ProductRepository {
	return &productRepo{db: db}
}

func (r *productRepo) GetBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (*domain.Product, error) {
	var p domain.Product
	err := sqlx.GetContext(ctx, r.db, &p,
		"SELECT "+productColumns+" FROM products WHERE tenant_id = $1 AND sku = $2",
		tenantID, strings.TrimSpace(sku))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("productRepo.GetBySKU: %w", err)
	}
	return &p, nil
}

func (r *productRepo) GetByName(ctx context.Context, tenantID uuid.UUID, name string) (*domain.Product, error) {
	var p domain.Product
	err := sqlx.GetContext(ctx, r.db, &p,
		"SELECT "+productColumns+` FROM products
		WHERE tenant_id = $1 AND lower(name) = lower($2)
		ORDER BY created_at LIMIT 1`,
		tenantID, strings.TrimSpace(name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("productRepo.GetByName: %w", err)
	}
	return &p, nil
}

// Create inserts a product. When a concurrent import already created the same
// SKU, the stored product is loaded into product and created is false.
func (r *productRepo) Create(ctx context.Context, product *domain.Product) (bool, error) {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now

	var row struct {
		domain.Product
		Inserted bool `db:"inserted"`
	}
	query := `INSERT INTO products (id, tenant_id, sku, name, cost, sale_price, tax_rate, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (tenant_id, sku) DO UPDATE SET sku = EXCLUDED.sku
		RETURNING ` + productColumns + `, (xmax = 0) AS inserted`

	err := sqlx.GetContext(ctx, r.db, &row, query,
		product.ID, product.TenantID, product.SKU, product.Name,
		product.Cost, product.SalePrice, product.TaxRate,
		product.CreatedAt, product.UpdatedAt)
	if err != nil {
		return false, fmt.Errorf("productRepo.Create: %w", err)
	}
	*product = row.Product
	return row.Inserted, nil
}
