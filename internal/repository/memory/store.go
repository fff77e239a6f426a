// Package memory is an in-process implementation of the import repositories.
// It backs offline previews in the CLI and the import service tests. A
// transaction works on a private copy of the data that replaces the shared
// copy only on success, so a failed import leaves nothing behind.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"invoicebridge/internal/domain"
	"invoicebridge/internal/port"
)

// Faults injects errors into repository writes.
type Faults struct {
	CreateProduct func(p *domain.Product) error
	CreateItem    func(item *domain.PurchaseItem) error
}

type state struct {
	suppliers map[uuid.UUID]domain.Supplier
	products  map[uuid.UUID]domain.Product
	purchases map[uuid.UUID]domain.Purchase
	items     map[uuid.UUID][]domain.PurchaseItem
}

func newState() *state {
	return &state{
		suppliers: make(map[uuid.UUID]domain.Supplier),
		products:  make(map[uuid.UUID]domain.Product),
		purchases: make(map[uuid.UUID]domain.Purchase),
		items:     make(map[uuid.UUID][]domain.PurchaseItem),
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.suppliers {
		c.suppliers[k] = v
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.purchases {
		c.purchases[k] = v
	}
	for k, v := range s.items {
		c.items[k] = append([]domain.PurchaseItem(nil), v...)
	}
	return c
}

// Store holds the data and serializes transactions.
type Store struct {
	mu     sync.Mutex
	data   *state
	faults Faults
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{data: newState()}
}

// SetFaults replaces the injected faults.
func (s *Store) SetFaults(f Faults) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults = f
}

// RunInTx implements port.TxRunner.
func (s *Store) RunInTx(ctx context.Context, fn func(repos port.ImportRepos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	work := s.data.clone()
	if err := fn(&repos{store: s, tx: work}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.data = work
	return nil
}

// Reader returns repositories that read and write the committed data directly.
func (s *Store) Reader() port.ImportRepos {
	return &repos{store: s}
}

// Suppliers returns the tenant's suppliers ordered by name.
func (s *Store) Suppliers(tenantID uuid.UUID) []domain.Supplier {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Supplier
	for _, v := range s.data.suppliers {
		if v.TenantID == tenantID {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Products returns the tenant's products ordered by SKU.
func (s *Store) Products(tenantID uuid.UUID) []domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Product
	for _, v := range s.data.products {
		if v.TenantID == tenantID {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return out
}

// Purchases returns the tenant's purchase headers ordered by invoice number.
func (s *Store) Purchases(tenantID uuid.UUID) []domain.Purchase {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Purchase
	for _, v := range s.data.purchases {
		if v.TenantID == tenantID {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].InvoiceNumber < out[j].InvoiceNumber })
	return out
}

func sameText(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
