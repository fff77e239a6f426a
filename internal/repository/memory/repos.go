package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"invoicebridge/internal/domain"
	"invoicebridge/internal/port"
)

// repos implements every import repository. Inside a transaction tx is the
// private copy; otherwise each call locks the store and uses committed data.
type repos struct {
	store *Store
	tx    *state
}

func (r *repos) acquire() (*state, func()) {
	if r.tx != nil {
		return r.tx, func() {}
	}
	r.store.mu.Lock()
	return r.store.data, r.store.mu.Unlock
}

func (r *repos) Suppliers() port.SupplierRepository      { return r }
func (r *repos) Products() port.ProductRepository        { return productRepo{r} }
func (r *repos) Purchases() port.PurchaseRepository      { return purchaseRepo{r} }
func (r *repos) Duplicates() port.DuplicateInvoiceFinder { return r }

// LockInvoiceNumber is a no-op: transactions already run one at a time.
func (r *repos) LockInvoiceNumber(context.Context, uuid.UUID, string) error { return nil }

// SupplierRepository

func (r *repos) GetByID(_ context.Context, tenantID, id uuid.UUID) (*domain.Supplier, error) {
	st, release := r.acquire()
	defer release()
	s, ok := st.suppliers[id]
	if !ok || s.TenantID != tenantID {
		return nil, domain.ErrNotFound
	}
	return &s, nil
}

func (r *repos) GetByTaxID(_ context.Context, tenantID uuid.UUID, taxID string) (*domain.Supplier, error) {
	st, release := r.acquire()
	defer release()
	taxID = strings.TrimSpace(taxID)
	for _, s := range st.suppliers {
		if s.TenantID == tenantID && s.TaxID != nil && *s.TaxID == taxID {
			return &s, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *repos) GetByName(_ context.Context, tenantID uuid.UUID, name string) (*domain.Supplier, error) {
	st, release := r.acquire()
	defer release()
	var found *domain.Supplier
	for _, s := range st.suppliers {
		if s.TenantID == tenantID && sameText(s.Name, name) {
			if found == nil || s.CreatedAt.Before(found.CreatedAt) {
				s := s
				found = &s
			}
		}
	}
	if found == nil {
		return nil, domain.ErrNotFound
	}
	return found, nil
}

func (r *repos) Upsert(_ context.Context, supplier *domain.Supplier) error {
	st, release := r.acquire()
	defer release()
	if supplier.TaxID != nil {
		for _, s := range st.suppliers {
			if s.TenantID == supplier.TenantID && s.TaxID != nil && *s.TaxID == *supplier.TaxID {
				*supplier = s
				return nil
			}
		}
	}
	if supplier.ID == uuid.Nil {
		supplier.ID = uuid.New()
	}
	now := time.Now().UTC()
	supplier.CreatedAt = now
	supplier.UpdatedAt = now
	st.suppliers[supplier.ID] = *supplier
	return nil
}

// DuplicateInvoiceFinder

func (r *repos) FindByInvoiceNumber(_ context.Context, tenantID uuid.UUID, invoiceNumber string) (*domain.PurchaseSummary, error) {
	st, release := r.acquire()
	defer release()
	invoiceNumber = strings.TrimSpace(invoiceNumber)
	for _, p := range st.purchases {
		if p.TenantID == tenantID && p.InvoiceNumber == invoiceNumber {
			return &domain.PurchaseSummary{
				ID:            p.ID,
				InvoiceNumber: p.InvoiceNumber,
				SupplierName:  st.suppliers[p.SupplierID].Name,
				Total:         p.Total,
				CreatedAt:     p.CreatedAt,
			}, nil
		}
	}
	return nil, domain.ErrNotFound
}

type productRepo struct{ r *repos }

func (p productRepo) GetBySKU(_ context.Context, tenantID uuid.UUID, sku string) (*domain.Product, error) {
	st, release := p.r.acquire()
	defer release()
	sku = strings.TrimSpace(sku)
	for _, v := range st.products {
		if v.TenantID == tenantID && v.SKU == sku {
			return &v, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (p productRepo) GetByName(_ context.Context, tenantID uuid.UUID, name string) (*domain.Product, error) {
	st, release := p.r.acquire()
	defer release()
	var found *domain.Product
	for _, v := range st.products {
		if v.TenantID == tenantID && sameText(v.Name, name) {
			if found == nil || v.CreatedAt.Before(found.CreatedAt) {
				v := v
				found = &v
			}
		}
	}
	if found == nil {
		return nil, domain.ErrNotFound
	}
	return found, nil
}

func (p productRepo) Create(_ context.Context, product *domain.Product) (bool, error) {
	st, release := p.r.acquire()
	defer release()
	if f := p.r.store.faults.CreateProduct; f != nil {
		if err := f(product); err != nil {
			return false, err
		}
	}
	for _, v := range st.products {
		if v.TenantID == product.TenantID && v.SKU == product.SKU {
			*product = v
			return false, nil
		}
	}
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now
	st.products[product.ID] = *product
	return true, nil
}

type purchaseRepo struct{ r *repos }

func (p purchaseRepo) Create(_ context.Context, purchase *domain.Purchase) error {
	st, release := p.r.acquire()
	defer release()
	for _, v := range st.purchases {
		if v.TenantID == purchase.TenantID && v.InvoiceNumber == purchase.InvoiceNumber {
			return &domain.DuplicateInvoiceError{InvoiceNumber: purchase.InvoiceNumber}
		}
	}
	if purchase.ID == uuid.Nil {
		purchase.ID = uuid.New()
	}
	if purchase.Status == "" {
		purchase.Status = domain.PurchaseStatusPending
	}
	purchase.CreatedAt = time.Now().UTC()
	header := *purchase
	header.Supplier, header.Items = nil, nil
	st.purchases[purchase.ID] = header
	return nil
}

func (p purchaseRepo) CreateItem(_ context.Context, item *domain.PurchaseItem) error {
	st, release := p.r.acquire()
	defer release()
	if f := p.r.store.faults.CreateItem; f != nil {
		if err := f(item); err != nil {
			return err
		}
	}
	if _, ok := st.purchases[item.PurchaseID]; !ok {
		return domain.ErrNotFound
	}
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	st.items[item.PurchaseID] = append(st.items[item.PurchaseID], *item)
	return nil
}

func (p purchaseRepo) GetByID(_ context.Context, tenantID, id uuid.UUID) (*domain.Purchase, error) {
	st, release := p.r.acquire()
	defer release()
	purchase, ok := st.purchases[id]
	if !ok || purchase.TenantID != tenantID {
		return nil, domain.ErrNotFound
	}
	if s, ok := st.suppliers[purchase.SupplierID]; ok {
		purchase.Supplier = &s
	}
	purchase.Items = append([]domain.PurchaseItem{}, st.items[id]...)
	sort.Slice(purchase.Items, func(i, j int) bool { return purchase.Items[i].Position < purchase.Items[j].Position })
	return &purchase, nil
}
