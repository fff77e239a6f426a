package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"invoicebridge/internal/port"
)

type importRepos struct {
	q    sqlx.ExtContext
	inTx bool
}

// NewImportRepos returns the import repositories bound to the pool, for reads
// outside a transaction.
func NewImportRepos(db *sqlx.DB) port.ImportRepos {
	return &importRepos{q: db}
}

func (r *importRepos) Suppliers() port.SupplierRepository      { return NewSupplierRepo(r.q) }
func (r *importRepos) Products() port.ProductRepository        { return NewProductRepo(r.q) }
func (r *importRepos) Purchases() port.PurchaseRepository      { return NewPurchaseRepo(r.q) }
func (r *importRepos) Duplicates() port.DuplicateInvoiceFinder { return NewDuplicateFinderRepo(r.q) }

// LockInvoiceNumber takes a transaction-scoped advisory lock keyed on tenant
// and invoice number. A second import of the same number waits here until the
// first commits, then sees its purchase in the duplicate check.
func (r *importRepos) LockInvoiceNumber(ctx context.Context, tenantID uuid.UUID, invoiceNumber string) error {
	if !r.inTx {
		return nil
	}
	key := tenantID.String() + ":" + invoiceNumber
	if _, err := r.q.ExecContext(ctx, "SELECT pg_advisory_xact_lock(hashtextextended($1, 0))", key); err != nil {
		return fmt.Errorf("importRepos.LockInvoiceNumber: %w", err)
	}
	return nil
}

type txRunner struct {
	db *sqlx.DB
}

// NewTxRunner creates a TxRunner over the pool.
func NewTxRunner(db *sqlx.DB) port.TxRunner {
	return &txRunner{db: db}
}

func (r *txRunner) RunInTx(ctx context.Context, fn func(repos port.ImportRepos) error) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("txRunner.RunInTx begin: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(&importRepos{q: tx, inTx: true}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Warn().Err(rbErr).Msg("txRunner.RunInTx: rollback failed")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("txRunner.RunInTx commit: %w", err)
	}
	return nil
}
