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

const supplierColumns = `id, tenant_id, tax_id, name, email, phone, address, created_at, updated_at`

type supplierRepo struct {
	db sqlx.ExtContext
}

// NewSupplierRepo creates a new PostgreSQL-backed SupplierRepository. db may be
// a *sqlx.DB or a *sqlx.Tx.
func NewSupplierRepo(db sqlx.ExtContext) port.SupplierRepository {
	return &supplierRepo{db: db}
}

func (r *supplierRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.Supplier, error) {
	var s domain.Supplier
	err := sqlx.GetContext(ctx, r.db, &s,
		"SELECT "+supplierColumns+" FROM suppliers WHERE id = $1 AND tenant_id = $2", id, tenantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("supplierRepo.GetByID: %w", err)
	}
	return &s, nil
}

func (r *supplierRepo) GetByTaxID(ctx context.Context, tenantID uuid.UUID, taxID string) (*domain.Supplier, error) {
	var s domain.Supplier
	err := sqlx.GetContext(ctx, r.db, &s,
		"SELECT "+supplierColumns+" FROM suppliers WHERE tenant_id = $1 AND tax_id = $2",
		tenantID, strings.TrimSpace(taxID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("supplierRepo.GetByTaxID: %w", err)
	}
	return &s, nil
}

func (r *supplierRepo) GetByName(ctx context.Context, tenantID uuid.UUID, name string) (*domain.Supplier, error) {
	var s domain.Supplier
	err := sqlx.GetContext(ctx, r.db, &s,
		"SELECT "+supplierColumns+` FROM suppliers
		WHERE tenant_id = $1 AND lower(name) = lower($2)
		ORDER BY created_at LIMIT 1`,
		tenantID, strings.TrimSpace(name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("supplierRepo.GetByName: %w", err)
	}
	return &s, nil
}

func (r *supplierRepo) Upsert(ctx context.Context, supplier *domain.Supplier) error {
	if supplier.ID == uuid.Nil {
		supplier.ID = uuid.New()
	}
	now := time.Now().UTC()
	supplier.CreatedAt = now
	supplier.UpdatedAt = now

	// The no-op update makes RETURNING yield the existing row on conflict.
	query := `INSERT INTO suppliers (id, tenant_id, tax_id, name, email, phone, address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (tenant_id, tax_id) DO UPDATE SET tax_id = EXCLUDED.tax_id
		RETURNING ` + supplierColumns

	err := sqlx.GetContext(ctx, r.db, supplier, query,
		supplier.ID, supplier.TenantID, supplier.TaxID, supplier.Name,
		supplier.Email, supplier.Phone, supplier.Address,
		supplier.CreatedAt, supplier.UpdatedAt)
	if err != nil {
		return fmt.Errorf("supplierRepo.Upsert: %w", err)
	}
	return nil
}
