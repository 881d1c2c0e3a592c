package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/pos-stock-api/internal/domain/entity"
	"github.com/jhoicas/pos-stock-api/internal/domain/repository"
)

// Store almacenamiento en memoria (pruebas y STORAGE_DRIVER=memory).
// Las transacciones se serializan: Run trabaja sobre una copia del estado y la
// publica solo si fn no falla.
type Store struct {
	mu    sync.RWMutex
	state *state
}

type state struct {
	products  map[string]*entity.Product
	movements []*entity.StockMovement
	sales     map[string]*entity.Sale
	orders    map[string]*entity.PurchaseOrder
	suppliers map[string]*entity.Supplier
}

// NewStore crea un almacenamiento vacío.
func NewStore() *Store {
	return &Store{state: &state{
		products:  make(map[string]*entity.Product),
		sales:     make(map[string]*entity.Sale),
		orders:    make(map[string]*entity.PurchaseOrder),
		suppliers: make(map[string]*entity.Supplier),
	}}
}

// Repositories repositorios fuera de transacción; cada llamada toma el candado del store.
func (s *Store) Repositories() repository.Repositories {
	return newRepositories(&access{store: s})
}

// Run implementa TxRunner.
func (s *Store) Run(ctx context.Context, fn func(repos repository.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	working := s.state.clone()
	if err := fn(newRepositories(&access{tx: working})); err != nil {
		return err
	}
	s.state = working
	return nil
}

// access resuelve el estado sobre el que opera un repositorio: el de la tx o el compartido.
type access struct {
	store *Store
	tx    *state
}

func (a *access) read(fn func(st *state) error) error {
	if a.tx != nil {
		return fn(a.tx)
	}
	a.store.mu.RLock()
	defer a.store.mu.RUnlock()
	return fn(a.store.state)
}

func (a *access) write(fn func(st *state) error) error {
	if a.tx != nil {
		return fn(a.tx)
	}
	a.store.mu.Lock()
	defer a.store.mu.Unlock()
	return fn(a.store.state)
}

func newRepositories(a *access) repository.Repositories {
	return repository.Repositories{
		Products:       &ProductRepo{a: a},
		Movements:      &StockMovementRepo{a: a},
		Sales:          &SaleRepo{a: a},
		PurchaseOrders: &PurchaseOrderRepo{a: a},
		Suppliers:      &SupplierRepo{a: a},
	}
}

func (st *state) clone() *state {
	out := &state{
		products:  make(map[string]*entity.Product, len(st.products)),
		movements: make([]*entity.StockMovement, len(st.movements), len(st.movements)+8),
		sales:     make(map[string]*entity.Sale, len(st.sales)),
		orders:    make(map[string]*entity.PurchaseOrder, len(st.orders)),
		suppliers: make(map[string]*entity.Supplier, len(st.suppliers)),
	}
	for k, v := range st.products {
		out.products[k] = cloneProduct(v)
	}
	copy(out.movements, st.movements)
	for k, v := range st.sales {
		out.sales[k] = cloneSale(v)
	}
	for k, v := range st.orders {
		out.orders[k] = clonePurchaseOrder(v)
	}
	for k, v := range st.suppliers {
		c := *v
		out.suppliers[k] = &c
	}
	return out
}

var (
	_ repository.ProductRepository       = (*ProductRepo)(nil)
	_ repository.StockMovementRepository = (*StockMovementRepo)(nil)
	_ repository.SaleRepository          = (*SaleRepo)(nil)
	_ repository.PurchaseOrderRepository = (*PurchaseOrderRepo)(nil)
	_ repository.SupplierRepository      = (*SupplierRepo)(nil)
)
