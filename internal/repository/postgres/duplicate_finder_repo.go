package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"invoicebridge/internal/domain"
	"invoicebridge/internal/port"
)

type duplicateFinderRepo struct {
	db sqlx.ExtContext
}

// NewDuplicateFinderRepo creates a new PostgreSQL-backed DuplicateInvoiceFinder.
func NewDuplicateFinderRepo(db sqlx.ExtContext) port.DuplicateInvoiceFinder {
	return &duplicateFinderRepo{db: db}
}

func (r *duplicateFinderRepo) FindByInvoiceNumber(
	ctx context.Context,
	tenantID uuid.UUID,
	invoiceNumber string,
) (*domain.PurchaseSummary, error) {
	var match domain.PurchaseSummary
	err := sqlx.GetContext(ctx, r.db, &match, `
		SELECT p.id, p.invoice_number, s.name AS supplier_name, p.total, p.created_at
		FROM purchases p
		JOIN suppliers s ON s.id = p.supplier_id
		WHERE p.tenant_id = $1
		  AND p.invoice_number = $2`,
		tenantID, strings.TrimSpace(invoiceNumber),
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("duplicateFinderRepo.FindByInvoiceNumber: %w", err)
	}
	return &match, nil
}
