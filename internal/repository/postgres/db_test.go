package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoicebridge/internal/domain"
)

// execRecorder is a sqlx.ExtContext that records Exec calls and returns a
// fixed error. Queries are not supported.
type execRecorder struct {
	err   error
	query string
	args  []interface{}
	calls int
}

func (e *execRecorder) ExecContext(_ context.Context, query string, args ...interface{}) (sql.Result, error) {
	e.calls++
	e.query = query
	e.args = args
	if e.err != nil {
		return nil, e.err
	}
	return driverResult(1), nil
}

func (e *execRecorder) QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error) {
	return nil, errors.New("not supported")
}

func (e *execRecorder) QueryxContext(context.Context, string, ...interface{}) (*sqlx.Rows, error) {
	return nil, errors.New("not supported")
}

func (e *execRecorder) QueryRowxContext(context.Context, string, ...interface{}) *sqlx.Row {
	return nil
}

func (e *execRecorder) DriverName() string { return "pgx" }

func (e *execRecorder) Rebind(query string) string { return sqlx.Rebind(sqlx.DOLLAR, query) }

func (e *execRecorder) BindNamed(query string, arg interface{}) (string, []interface{}, error) {
	return sqlx.BindNamed(sqlx.DOLLAR, query, arg)
}

type driverResult int64

func (r driverResult) LastInsertId() (int64, error) { return 0, nil }
func (r driverResult) RowsAffected() (int64, error) { return int64(r), nil }

func TestIsUniqueViolation(t *testing.T) {
	onKey := &pgconn.PgError{Code: "23505", ConstraintName: purchaseInvoiceNumberKey}
	otherKey := &pgconn.PgError{Code: "23505", ConstraintName: "products_tenant_sku_key"}
	fkErr := &pgconn.PgError{Code: "23503", ConstraintName: purchaseInvoiceNumberKey}

	tests := []struct {
		name       string
		err        error
		constraint string
		want       bool
	}{
		{"matching constraint", onKey, purchaseInvoiceNumberKey, true},
		{"wrapped", fmt.Errorf("insert: %w", onKey), purchaseInvoiceNumberKey, true},
		{"any constraint", otherKey, "", true},
		{"other constraint", otherKey, purchaseInvoiceNumberKey, false},
		{"other code", fkErr, purchaseInvoiceNumberKey, false},
		{"plain error", errors.New("boom"), "", false},
		{"nil", nil, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isUniqueViolation(tt.err, tt.constraint))
		})
	}
}

func TestPurchaseRepo_Create_DuplicateInvoiceNumber(t *testing.T) {
	db := &execRecorder{err: &pgconn.PgError{Code: "23505", ConstraintName: purchaseInvoiceNumberKey}}
	repo := NewPurchaseRepo(db)

	err := repo.Create(context.Background(), &domain.Purchase{TenantID: uuid.New(), InvoiceNumber: "FE-1001"})

	var dup *domain.DuplicateInvoiceError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "FE-1001", dup.InvoiceNumber)
	assert.ErrorIs(t, err, domain.ErrDuplicateInvoice)
}

func TestPurchaseRepo_Create_OtherErrorsWrapped(t *testing.T) {
	cause := &pgconn.PgError{Code: "23503", ConstraintName: "purchases_supplier_id_fkey"}
	repo := NewPurchaseRepo(&execRecorder{err: cause})

	err := repo.Create(context.Background(), &domain.Purchase{TenantID: uuid.New(), InvoiceNumber: "FE-1001"})

	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrDuplicateInvoice)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "purchaseRepo.Create")
}

func TestPurchaseRepo_Create_Defaults(t *testing.T) {
	db := &execRecorder{}
	p := &domain.Purchase{TenantID: uuid.New(), InvoiceNumber: "FE-1001"}

	require.NoError(t, NewPurchaseRepo(db).Create(context.Background(), p))

	assert.NotEqual(t, uuid.Nil, p.ID)
	assert.False(t, p.CreatedAt.IsZero())
	assert.Equal(t, domain.PurchaseStatusPending, p.Status)
	assert.Contains(t, db.query, "INSERT INTO purchases")
}

func TestImportRepos_LockInvoiceNumber(t *testing.T) {
	tenantID := uuid.New()

	t.Run("inside a transaction", func(t *testing.T) {
		db := &execRecorder{}
		repos := &importRepos{q: db, inTx: true}

		require.NoError(t, repos.LockInvoiceNumber(context.Background(), tenantID, "FE-1001"))
		assert.Equal(t, 1, db.calls)
		assert.Contains(t, db.query, "pg_advisory_xact_lock")
		assert.Equal(t, []interface{}{tenantID.String() + ":FE-1001"}, db.args)
	})

	t.Run("outside a transaction", func(t *testing.T) {
		db := &execRecorder{}
		repos := &importRepos{q: db}

		require.NoError(t, repos.LockInvoiceNumber(context.Background(), tenantID, "FE-1001"))
		assert.Zero(t, db.calls)
	})

	t.Run("lock failure", func(t *testing.T) {
		cause := errors.New("canceling statement due to lock timeout")
		repos := &importRepos{q: &execRecorder{err: cause}, inTx: true}

		err := repos.LockInvoiceNumber(context.Background(), tenantID, "FE-1001")
		assert.ErrorIs(t, err, cause)
	})
}
