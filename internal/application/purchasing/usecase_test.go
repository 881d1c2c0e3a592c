package purchasing_test

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-stock-api/internal/application/dto"
	"github.com/jhoicas/pos-stock-api/internal/application/inventory"
	"github.com/jhoicas/pos-stock-api/internal/application/numbering"
	"github.com/jhoicas/pos-stock-api/internal/application/purchasing"
	"github.com/jhoicas/pos-stock-api/internal/domain"
	"github.com/jhoicas/pos-stock-api/internal/domain/entity"
	domaininv "github.com/jhoicas/pos-stock-api/internal/domain/inventory"
	"github.com/jhoicas/pos-stock-api/internal/domain/repository"
	"github.com/jhoicas/pos-stock-api/internal/infrastructure/lock"
	"github.com/jhoicas/pos-stock-api/internal/infrastructure/memory"
)

type fixture struct {
	uc        *purchasing.UseCase
	suppliers *purchasing.SupplierUseCase
	store     *memory.Store
	ledger    *inventory.Ledger
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := memory.NewStore()
	ledger := inventory.NewLedger(store, lock.NewLocalLocker(), nil, nil, zerolog.Nop())
	return fixture{
		uc:        purchasing.NewUseCase(ledger, store.Repositories(), numbering.NewGenerator(), zerolog.Nop()),
		suppliers: purchasing.NewSupplierUseCase(store.Repositories().Suppliers),
		store:     store,
		ledger:    ledger,
	}
}

func (f fixture) movements(t *testing.T, reference string) []*entity.StockMovement {
	t.Helper()
	moves, err := f.store.Repositories().Movements.List(context.Background(), repository.MovementFilter{Reference: reference})
	require.NoError(t, err)
	return moves
}

// afterFirstRead ejecuta hook una vez, justo después de la primera lectura de una orden.
type afterFirstRead struct {
	repository.PurchaseOrderRepository
	once sync.Once
	hook func()
}

func (r *afterFirstRead) GetByID(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	po, err := r.PurchaseOrderRepository.GetByID(ctx, id)
	r.once.Do(r.hook)
	return po, err
}

func (f fixture) seedProduct(t *testing.T, id string, stock int, cost string) {
	t.Helper()
	p := &entity.Product{ID: id, SKU: "SKU-" + id, Name: "Producto " + id, Price: decimal.NewFromInt(100), Cost: decimal.RequireFromString(cost), MinStock: 5, Active: true}
	domaininv.SetStock(p, stock, time.Now())
	require.NoError(t, f.store.Repositories().Products.Create(context.Background(), p))
}

func (f fixture) product(t *testing.T, id string) *entity.Product {
	t.Helper()
	p, err := f.store.Repositories().Products.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p
}

func (f fixture) supplier(t *testing.T) string {
	t.Helper()
	s, err := f.suppliers.Create(context.Background(), nil, dto.CreateSupplierRequest{Name: "Distribuidora Central", Email: " Ventas@Central.com "})
	require.NoError(t, err)
	assert.Equal(t, "ventas@central.com", s.Email)
	return s.ID
}

func (f fixture) order(t *testing.T, supplierID string, items ...dto.PurchaseOrderItemRequest) *dto.PurchaseOrderResponse {
	t.Helper()
	po, err := f.uc.CreatePurchaseOrder(context.Background(), "keeper-1", nil, dto.CreatePurchaseOrderRequest{
		SupplierID: supplierID,
		Items:      items,
		TaxRate:    decimal.NewFromInt(10),
	})
	require.NoError(t, err)
	return po
}

func TestCreatePurchaseOrder(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, "a", 0, "0")
	supplierID := f.supplier(t)

	po := f.order(t, supplierID, dto.PurchaseOrderItemRequest{ProductID: "a", Quantity: 10, UnitCost: decimal.NewFromInt(50)})

	assert.Regexp(t, regexp.MustCompile(`^PO-\d{8}$`), po.PONumber)
	assert.Equal(t, entity.POStatusPending, po.Status)
	assert.True(t, po.Subtotal.Equal(decimal.NewFromInt(500)))
	assert.True(t, po.Tax.Equal(decimal.NewFromInt(50)))
	assert.True(t, po.Total.Equal(decimal.NewFromInt(550)))
	assert.Equal(t, "Producto a", po.Items[0].Name)
	assert.Equal(t, 0, f.product(t, "a").Stock, "crear la orden no mueve stock")
}

func TestCreatePurchaseOrder_Validaciones(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, "a", 0, "0")
	supplierID := f.supplier(t)

	_, err := f.uc.CreatePurchaseOrder(context.Background(), "u", nil, dto.CreatePurchaseOrderRequest{SupplierID: "nope", Items: []dto.PurchaseOrderItemRequest{{ProductID: "a", Quantity: 1}}})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.uc.CreatePurchaseOrder(context.Background(), "u", nil, dto.CreatePurchaseOrderRequest{SupplierID: supplierID})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.uc.CreatePurchaseOrder(context.Background(), "u", nil, dto.CreatePurchaseOrderRequest{SupplierID: supplierID, Items: []dto.PurchaseOrderItemRequest{{ProductID: "a", Quantity: -1}}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.uc.CreatePurchaseOrder(context.Background(), "u", nil, dto.CreatePurchaseOrderRequest{SupplierID: supplierID, Items: []dto.PurchaseOrderItemRequest{{ProductID: "zz", Quantity: 1}}})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReceivePurchaseOrder_EntradaYCostoPromedio(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, "a", 10, "100")
	f.seedProduct(t, "b", 0, "0")
	supplierID := f.supplier(t)
	po := f.order(t, supplierID,
		dto.PurchaseOrderItemRequest{ProductID: "a", Quantity: 10, UnitCost: decimal.NewFromInt(200)},
		dto.PurchaseOrderItemRequest{ProductID: "b", Quantity: 3, UnitCost: decimal.NewFromInt(40)},
	)

	got, err := f.uc.ReceivePurchaseOrder(context.Background(), po.ID, "keeper-1", "shop-1")
	require.NoError(t, err)
	assert.Equal(t, entity.POStatusReceived, got.Status)
	require.NotNil(t, got.ReceivedDate)

	a := f.product(t, "a")
	assert.Equal(t, 20, a.Stock)
	assert.Equal(t, 20, a.MainStock.Quantity)
	assert.True(t, a.Cost.Equal(decimal.NewFromInt(150)), a.Cost.String())
	b := f.product(t, "b")
	assert.Equal(t, 3, b.Stock)
	assert.True(t, b.LowStock)
	assert.True(t, b.Cost.Equal(decimal.NewFromInt(40)), b.Cost.String())

	moves, err := f.store.Repositories().Movements.List(context.Background(), repository.MovementFilter{Reference: po.PONumber})
	require.NoError(t, err)
	require.Len(t, moves, 2)
	for _, m := range moves {
		assert.Equal(t, entity.MovementTypeIn, m.Type)
		assert.Equal(t, entity.ReasonPurchaseOrder, m.Reason)
		assert.Equal(t, "shop-1", m.ShopID)
		assert.Equal(t, m.Quantity, m.NewStock-m.PreviousStock)
	}

	_, err = f.uc.ReceivePurchaseOrder(context.Background(), po.ID, "keeper-1", "")
	assert.ErrorIs(t, err, domain.ErrAlreadyReceived)
	assert.Equal(t, 20, f.product(t, "a").Stock)
	assert.Len(t, f.movements(t, po.PONumber), 2, "la recepción rechazada no registra movimientos")
}

func TestReceivePurchaseOrder_Concurrente(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, "a", 0, "0")
	po := f.order(t, f.supplier(t), dto.PurchaseOrderItemRequest{ProductID: "a", Quantity: 10, UnitCost: decimal.NewFromInt(5)})

	const workers = 8
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok       int
		rejected int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.uc.ReceivePurchaseOrder(context.Background(), po.ID, "keeper-1", "")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, domain.ErrAlreadyReceived):
				rejected++
			default:
				t.Errorf("error inesperado: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, workers-1, rejected)
	assert.Equal(t, 10, f.product(t, "a").Stock)
	assert.Len(t, f.movements(t, po.PONumber), 1)
}

func TestUpdateStatus_RecepcionEntreLecturaYEscritura(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, "a", 0, "0")
	po := f.order(t, f.supplier(t), dto.PurchaseOrderItemRequest{ProductID: "a", Quantity: 10, UnitCost: decimal.NewFromInt(5)})
	_, err := f.uc.UpdateStatus(context.Background(), po.ID, entity.POStatusOrdered)
	require.NoError(t, err)

	repos := f.store.Repositories()
	repos.PurchaseOrders = &afterFirstRead{
		PurchaseOrderRepository: repos.PurchaseOrders,
		hook: func() {
			_, err := f.uc.ReceivePurchaseOrder(context.Background(), po.ID, "keeper-1", "")
			require.NoError(t, err)
		},
	}
	racing := purchasing.NewUseCase(f.ledger, repos, numbering.NewGenerator(), zerolog.Nop())

	_, err = racing.UpdateStatus(context.Background(), po.ID, entity.POStatusOrdered)
	assert.ErrorIs(t, err, domain.ErrAlreadyReceived)

	got, err := f.uc.GetPurchaseOrder(context.Background(), po.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.POStatusReceived, got.Status)
	assert.NotNil(t, got.ReceivedDate)

	_, err = f.uc.ReceivePurchaseOrder(context.Background(), po.ID, "keeper-1", "")
	assert.ErrorIs(t, err, domain.ErrAlreadyReceived)
	assert.Equal(t, 10, f.product(t, "a").Stock)
	assert.Len(t, f.movements(t, po.PONumber), 1)
}

func TestUpdateStatus_CancelarContraRecepcionConcurrente(t *testing.T) {
	for i := 0; i < 20; i++ {
		f := newFixture(t)
		f.seedProduct(t, "a", 0, "0")
		po := f.order(t, f.supplier(t), dto.PurchaseOrderItemRequest{ProductID: "a", Quantity: 4, UnitCost: decimal.NewFromInt(5)})

		var (
			wg                    sync.WaitGroup
			cancelErr, receiveErr error
		)
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, cancelErr = f.uc.UpdateStatus(context.Background(), po.ID, entity.POStatusCancelled)
		}()
		go func() {
			defer wg.Done()
			_, receiveErr = f.uc.ReceivePurchaseOrder(context.Background(), po.ID, "keeper-1", "")
		}()
		wg.Wait()

		got, err := f.uc.GetPurchaseOrder(context.Background(), po.ID)
		require.NoError(t, err)
		if receiveErr == nil {
			assert.ErrorIs(t, cancelErr, domain.ErrAlreadyReceived)
			assert.Equal(t, entity.POStatusReceived, got.Status)
			assert.Equal(t, 4, f.product(t, "a").Stock)
			assert.Len(t, f.movements(t, po.PONumber), 1)
		} else {
			require.NoError(t, cancelErr)
			assert.ErrorIs(t, receiveErr, domain.ErrConflict)
			assert.Equal(t, entity.POStatusCancelled, got.Status)
			assert.Equal(t, 0, f.product(t, "a").Stock)
			assert.Empty(t, f.movements(t, po.PONumber))
		}
	}
}

func TestReceivePurchaseOrder_Cancelada(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, "a", 0, "0")
	po := f.order(t, f.supplier(t), dto.PurchaseOrderItemRequest{ProductID: "a", Quantity: 1, UnitCost: decimal.NewFromInt(1)})

	_, err := f.uc.UpdateStatus(context.Background(), po.ID, entity.POStatusCancelled)
	require.NoError(t, err)

	_, err = f.uc.ReceivePurchaseOrder(context.Background(), po.ID, "keeper-1", "")
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, 0, f.product(t, "a").Stock)
}

func TestUpdateStatus_Transiciones(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, "a", 0, "0")
	po := f.order(t, f.supplier(t), dto.PurchaseOrderItemRequest{ProductID: "a", Quantity: 1, UnitCost: decimal.NewFromInt(1)})

	got, err := f.uc.UpdateStatus(context.Background(), po.ID, entity.POStatusOrdered)
	require.NoError(t, err)
	assert.Equal(t, entity.POStatusOrdered, got.Status)

	_, err = f.uc.UpdateStatus(context.Background(), po.ID, entity.POStatusReceived)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.uc.UpdateStatus(context.Background(), po.ID, "perdida")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.uc.ReceivePurchaseOrder(context.Background(), po.ID, "keeper-1", "")
	require.NoError(t, err)
	_, err = f.uc.UpdateStatus(context.Background(), po.ID, entity.POStatusPending)
	assert.ErrorIs(t, err, domain.ErrAlreadyReceived)

	_, err = f.uc.UpdateStatus(context.Background(), "nope", entity.POStatusOrdered)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSuppliers_Listado(t *testing.T) {
	f := newFixture(t)
	owner := "seller-1"
	_, err := f.suppliers.Create(context.Background(), &owner, dto.CreateSupplierRequest{Name: "B proveedor"})
	require.NoError(t, err)
	_, err = f.suppliers.Create(context.Background(), nil, dto.CreateSupplierRequest{Name: "A proveedor"})
	require.NoError(t, err)
	_, err = f.suppliers.Create(context.Background(), nil, dto.CreateSupplierRequest{Name: "  "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	all, err := f.suppliers.List(context.Background(), nil, dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, all.Items, 2)
	assert.Equal(t, "A proveedor", all.Items[0].Name)

	mine, err := f.suppliers.List(context.Background(), &owner, dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, mine.Items, 1)
	assert.Equal(t, "B proveedor", mine.Items[0].Name)

	_, err = f.suppliers.GetByID(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSuppliers_ActualizarYDarDeBaja(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedProduct(t, "a", 0, "0")
	owner := "seller-1"
	other := "seller-2"
	created, err := f.suppliers.Create(ctx, &owner, dto.CreateSupplierRequest{Name: "Lácteos Norte", Phone: "555-0101"})
	require.NoError(t, err)

	name := "  Lácteos del Norte "
	email := " Pedidos@Norte.com"
	shop := "shop-9"
	updated, err := f.suppliers.Update(ctx, &owner, created.ID, dto.UpdateSupplierRequest{Name: &name, Email: &email, ShopID: &shop})
	require.NoError(t, err)
	assert.Equal(t, "Lácteos del Norte", updated.Name)
	assert.Equal(t, "pedidos@norte.com", updated.Email)
	assert.Equal(t, "555-0101", updated.Phone, "los campos ausentes no cambian")
	require.NotNil(t, updated.ShopID)
	assert.Equal(t, "shop-9", *updated.ShopID)

	blank := " "
	_, err = f.suppliers.Update(ctx, &owner, created.ID, dto.UpdateSupplierRequest{Name: &blank})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.suppliers.Update(ctx, &other, created.ID, dto.UpdateSupplierRequest{Name: &name})
	assert.ErrorIs(t, err, domain.ErrNotFound, "proveedor de otro dueño")
	assert.ErrorIs(t, f.suppliers.Deactivate(ctx, &other, created.ID), domain.ErrNotFound)

	require.NoError(t, f.suppliers.Deactivate(ctx, &owner, created.ID))
	require.NoError(t, f.suppliers.Deactivate(ctx, &owner, created.ID), "dar de baja dos veces no falla")

	got, err := f.suppliers.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)

	list, err := f.suppliers.List(ctx, &owner, dto.PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, list.Items, "los proveedores dados de baja no se listan")

	_, err = f.uc.CreatePurchaseOrder(ctx, "keeper-1", &owner, dto.CreatePurchaseOrderRequest{
		SupplierID: created.ID,
		Items:      []dto.PurchaseOrderItemRequest{{ProductID: "a", Quantity: 1, UnitCost: decimal.NewFromInt(1)}},
	})
	assert.ErrorIs(t, err, domain.ErrConflict)

	assert.ErrorIs(t, f.suppliers.Deactivate(ctx, nil, "nope"), domain.ErrNotFound)
}
