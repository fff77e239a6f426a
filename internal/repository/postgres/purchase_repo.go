package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"invoicebridge/internal/domain"
	"invoicebridge/internal/port"
)

const purchaseColumns = `id, tenant_id, supplier_id, invoice_number, issue_date, due_date, status,
	subtotal, tax_total, shipping_cost, discount_amount, total, profit_margin,
	source_format, source_file_name, rendering_file_name, created_by, created_at`

const purchaseItemColumns = `id, purchase_id, tenant_id, product_id, position, source_index,
	description, sku, quantity, unit_cost, tax_percentage, tax_amount, subtotal, total,
	sale_price, is_new_product`

type purchaseRepo struct {
	db sqlx.ExtContext
}

// NewPurchaseRepo creates a new PostgreSQL-backed PurchaseRepository.
func NewPurchaseRepo(db sqlx.ExtContext) port.PurchaseRepository {
	return &purchaseRepo{db: db}
}

func (r *purchaseRepo) Create(ctx context.Context, purchase *domain.Purchase) error {
	if purchase.ID == uuid.Nil {
		purchase.ID = uuid.New()
	}
	purchase.CreatedAt = time.Now().UTC()
	if purchase.Status == "" {
		purchase.Status = domain.PurchaseStatusPending
	}

	query := `INSERT INTO purchases (` + purchaseColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`

	_, err := r.db.ExecContext(ctx, query,
		purchase.ID, purchase.TenantID, purchase.SupplierID, purchase.InvoiceNumber,
		purchase.IssueDate, purchase.DueDate, purchase.Status,
		purchase.Subtotal, purchase.TaxTotal, purchase.ShippingCost, purchase.DiscountAmount,
		purchase.Total, purchase.ProfitMargin, purchase.SourceFormat, purchase.SourceFileName,
		purchase.RenderingFileName, purchase.CreatedBy, purchase.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, purchaseInvoiceNumberKey) {
			return &domain.DuplicateInvoiceError{InvoiceNumber: purchase.InvoiceNumber}
		}
		return fmt.Errorf("purchaseRepo.Create: %w", err)
	}
	return nil
}

func (r *purchaseRepo) CreateItem(ctx context.Context, item *domain.PurchaseItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}

	query := `INSERT INTO purchase_items (` + purchaseItemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	_, err := r.db.ExecContext(ctx, query,
		item.ID, item.PurchaseID, item.TenantID, item.ProductID, item.Position, item.SourceIndex,
		item.Description, item.SKU, item.Quantity, item.UnitCost, item.TaxPercentage,
		item.TaxAmount, item.Subtotal, item.Total, item.SalePrice, item.IsNewProduct)
	if err != nil {
		return fmt.Errorf("purchaseRepo.CreateItem: %w", err)
	}
	return nil
}

func (r *purchaseRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.Purchase, error) {
	var p domain.Purchase
	err := sqlx.GetContext(ctx, r.db, &p,
		"SELECT "+purchaseColumns+" FROM purchases WHERE id = $1 AND tenant_id = $2", id, tenantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("purchaseRepo.GetByID: %w", err)
	}

	var supplier domain.Supplier
	err = sqlx.GetContext(ctx, r.db, &supplier,
		"SELECT "+supplierColumns+" FROM suppliers WHERE id = $1 AND tenant_id = $2", p.SupplierID, tenantID)
	if err != nil {
		return nil, fmt.Errorf("purchaseRepo.GetByID supplier: %w", err)
	}
	p.Supplier = &supplier

	p.Items = []domain.PurchaseItem{}
	err = sqlx.SelectContext(ctx, r.db, &p.Items,
		"SELECT "+purchaseItemColumns+" FROM purchase_items WHERE purchase_id = $1 AND tenant_id = $2 ORDER BY position",
		p.ID, tenantID)
	if err != nil {
		return nil, fmt.Errorf("purchaseRepo.GetByID items: %w", err)
	}
	return &p, nil
}
