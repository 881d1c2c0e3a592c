package inventory_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-stock-api/internal/application/dto"
	"github.com/jhoicas/pos-stock-api/internal/application/inventory"
	"github.com/jhoicas/pos-stock-api/internal/domain"
	"github.com/jhoicas/pos-stock-api/internal/domain/entity"
	domaininv "github.com/jhoicas/pos-stock-api/internal/domain/inventory"
	"github.com/jhoicas/pos-stock-api/internal/domain/repository"
	"github.com/jhoicas/pos-stock-api/internal/infrastructure/lock"
	"github.com/jhoicas/pos-stock-api/internal/infrastructure/memory"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []any
}

func (p *recordingPublisher) Publish(_ context.Context, _ string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) lowStock() []inventory.LowStockDetected {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []inventory.LowStockDetected
	for _, e := range p.events {
		if low, ok := e.(inventory.LowStockDetected); ok {
			out = append(out, low)
		}
	}
	return out
}

func newLedger(t *testing.T) (*inventory.Ledger, *memory.Store, *recordingPublisher) {
	t.Helper()
	store := memory.NewStore()
	pub := &recordingPublisher{}
	return inventory.NewLedger(store, lock.NewLocalLocker(), pub, nil, zerolog.Nop()), store, pub
}

func seedProduct(t *testing.T, store *memory.Store, id string, stock, minStock int) *entity.Product {
	t.Helper()
	p := &entity.Product{
		ID:       id,
		SKU:      "SKU-" + id,
		Name:     "Producto " + id,
		Price:    decimal.NewFromInt(100),
		MinStock: minStock,
		Active:   true,
	}
	domaininv.SetStock(p, stock, time.Now())
	require.NoError(t, store.Repositories().Products.Create(context.Background(), p))
	return p
}

func movementsOf(t *testing.T, store *memory.Store, productID string) []*entity.StockMovement {
	t.Helper()
	list, err := store.Repositories().Movements.List(context.Background(), repository.MovementFilter{ProductID: productID, Ascending: true})
	require.NoError(t, err)
	return list
}

func getProduct(t *testing.T, store *memory.Store, id string) *entity.Product {
	t.Helper()
	p, err := store.Repositories().Products.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p
}

func TestAdjustStock_EntradaActualizaStockYRegistraMovimiento(t *testing.T) {
	ledger, store, _ := newLedger(t)
	seedProduct(t, store, "p1", 10, 5)

	p, err := ledger.AdjustStock(context.Background(), "p1", 20, "restock", "user-1")
	require.NoError(t, err)

	assert.Equal(t, 30, p.Stock)
	assert.False(t, p.LowStock)
	assert.Equal(t, entity.MainStock{Quantity: 30, MinStock: 5, LowStock: false}, p.MainStock)

	moves := movementsOf(t, store, "p1")
	require.Len(t, moves, 1)
	m := moves[0]
	assert.Equal(t, entity.MovementTypeIn, m.Type)
	assert.Equal(t, 20, m.Quantity)
	assert.Equal(t, 10, m.PreviousStock)
	assert.Equal(t, 30, m.NewStock)
	assert.Equal(t, "restock", m.Reason)
	assert.Equal(t, "user-1", m.UserID)

	stored := getProduct(t, store, "p1")
	assert.Equal(t, 30, stored.Stock)
	assert.Equal(t, stored.Stock, stored.MainStock.Quantity)
}

func TestAdjustStock_SalidaNegativaMarcaStockBajo(t *testing.T) {
	ledger, store, pub := newLedger(t)
	seedProduct(t, store, "p1", 30, 5)

	p, err := ledger.AdjustStock(context.Background(), "p1", -25, "merma", "user-1")
	require.NoError(t, err)
	assert.Equal(t, 5, p.Stock)
	assert.True(t, p.LowStock)
	assert.True(t, p.MainStock.LowStock)

	moves := movementsOf(t, store, "p1")
	require.Len(t, moves, 1)
	assert.Equal(t, entity.MovementTypeOut, moves[0].Type)
	assert.Equal(t, 25, moves[0].Quantity)
	assert.Equal(t, moves[0].PreviousStock-moves[0].NewStock, moves[0].Quantity)

	low := pub.lowStock()
	require.Len(t, low, 1)
	assert.Equal(t, "p1", low[0].ProductID)
	assert.Equal(t, 5, low[0].Stock)
}

func TestAdjustStock_StockInsuficienteNoEscribeNada(t *testing.T) {
	ledger, store, pub := newLedger(t)
	seedProduct(t, store, "p1", 5, 5)

	_, err := ledger.AdjustStock(context.Background(), "p1", -10, "venta manual", "user-1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))

	assert.Equal(t, 5, getProduct(t, store, "p1").Stock)
	assert.Empty(t, movementsOf(t, store, "p1"))
	assert.Empty(t, pub.events)
}

func TestAdjustStock_ProductoInexistente(t *testing.T) {
	ledger, _, _ := newLedger(t)
	_, err := ledger.AdjustStock(context.Background(), "nope", 3, "restock", "user-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAdjustStock_Validaciones(t *testing.T) {
	ledger, store, _ := newLedger(t)
	seedProduct(t, store, "p1", 5, 1)

	_, err := ledger.AdjustStock(context.Background(), "p1", 0, "nada", "user-1")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = ledger.AdjustStock(context.Background(), "p1", 2, "  ", "user-1")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = ledger.AdjustStock(context.Background(), "p1", 2, "restock", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, movementsOf(t, store, "p1"))
}

func TestApplyStockChange_TipoInconsistenteConSigno(t *testing.T) {
	ledger, store, _ := newLedger(t)
	seedProduct(t, store, "p1", 5, 1)

	_, err := ledger.ApplyStockChange(context.Background(), inventory.StockChange{
		ProductID: "p1", Delta: 3, Type: entity.MovementTypeOut, Reason: "x", ActorID: "u",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	p, err := ledger.ApplyStockChange(context.Background(), inventory.StockChange{
		ProductID: "p1", Delta: -2, Type: entity.MovementTypeAdjustment, Reason: "conteo", ActorID: "u",
	})
	require.NoError(t, err)
	assert.Equal(t, 3, p.Stock)
}

func TestApplyStockChange_AjustesConcurrentes(t *testing.T) {
	ledger, store, _ := newLedger(t)
	seedProduct(t, store, "p1", 20, 0)

	const workers = 50
	var (
		wg           sync.WaitGroup
		mu           sync.Mutex
		ok, rejected int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := ledger.AdjustStock(context.Background(), "p1", -1, "venta", "user-1")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, domain.ErrInsufficientStock):
				rejected++
			default:
				t.Errorf("error inesperado: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, ok)
	assert.Equal(t, 30, rejected)
	p := getProduct(t, store, "p1")
	assert.Equal(t, 0, p.Stock)
	assert.Equal(t, 0, p.MainStock.Quantity)

	moves := movementsOf(t, store, "p1")
	require.Len(t, moves, 20)
	for i, m := range moves {
		assert.Equal(t, 20-i, m.PreviousStock)
		assert.Equal(t, 19-i, m.NewStock)
	}
}

func TestRun_TodoONada(t *testing.T) {
	ledger, store, pub := newLedger(t)
	seedProduct(t, store, "a", 10, 0)
	seedProduct(t, store, "b", 1, 0)

	err := ledger.Run(context.Background(), []string{"b", "a", "a"}, func(u *inventory.Unit) error {
		if _, _, err := u.Apply(inventory.StockChange{ProductID: "a", Delta: -5, Type: entity.MovementTypeOut, Reason: "Sale", ActorID: "u"}); err != nil {
			return err
		}
		_, _, err := u.Apply(inventory.StockChange{ProductID: "b", Delta: -2, Type: entity.MovementTypeOut, Reason: "Sale", ActorID: "u"})
		return err
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.Equal(t, 10, getProduct(t, store, "a").Stock)
	assert.Equal(t, 1, getProduct(t, store, "b").Stock)
	assert.Empty(t, movementsOf(t, store, "a"))
	assert.Empty(t, pub.events)
}

func TestRun_MismoProductoDosVeces(t *testing.T) {
	ledger, store, _ := newLedger(t)
	seedProduct(t, store, "a", 10, 0)

	err := ledger.Run(context.Background(), []string{"a", "a"}, func(u *inventory.Unit) error {
		for i := 0; i < 2; i++ {
			if _, _, err := u.Apply(inventory.StockChange{ProductID: "a", Delta: -4, Type: entity.MovementTypeOut, Reason: "Sale", ActorID: "u"}); err != nil {
				return err
			}
		}
		assert.Len(t, u.Movements(), 2)
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, 2, getProduct(t, store, "a").Stock)
	moves := movementsOf(t, store, "a")
	require.Len(t, moves, 2)
	assert.Equal(t, 6, moves[1].PreviousStock)
	assert.Equal(t, 2, moves[1].NewStock)
}

func TestRun_ProductoNoBloqueado(t *testing.T) {
	ledger, store, _ := newLedger(t)
	seedProduct(t, store, "a", 10, 0)
	seedProduct(t, store, "b", 10, 0)

	err := ledger.Run(context.Background(), []string{"a"}, func(u *inventory.Unit) error {
		_, _, err := u.Apply(inventory.StockChange{ProductID: "b", Delta: 1, Type: entity.MovementTypeIn, Reason: "x", ActorID: "u"})
		return err
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, 10, getProduct(t, store, "b").Stock)
}

func TestApplyStockChange_StockDeTienda(t *testing.T) {
	ledger, store, _ := newLedger(t)
	p := seedProduct(t, store, "p1", 50, 5)
	three := 3
	p.Shops = []entity.ShopListing{{ShopID: "shop-1", IsVisible: true, Stock: &three}}
	require.NoError(t, store.Repositories().Products.Update(context.Background(), p))

	got, err := ledger.ApplyStockChange(context.Background(), inventory.StockChange{
		ProductID: "p1", Delta: 4, Type: entity.MovementTypeIn, Reason: "Initial stock for shop",
		ActorID: "u", ShopID: "shop-1", ShopScoped: true,
	})
	require.NoError(t, err)

	assert.Equal(t, 50, got.Stock, "el stock global no cambia")
	l := got.Listing("shop-1")
	require.NotNil(t, l)
	require.NotNil(t, l.Stock)
	assert.Equal(t, 7, *l.Stock)
	require.NotNil(t, l.LowStock)
	assert.False(t, *l.LowStock)

	moves := movementsOf(t, store, "p1")
	require.Len(t, moves, 1)
	assert.Equal(t, 3, moves[0].PreviousStock)
	assert.Equal(t, 7, moves[0].NewStock)
	assert.Equal(t, "shop-1", moves[0].ShopID)

	_, err = ledger.ApplyStockChange(context.Background(), inventory.StockChange{
		ProductID: "p1", Delta: 1, Type: entity.MovementTypeIn, Reason: "x",
		ActorID: "u", ShopID: "shop-2", ShopScoped: true,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMovementsUseCase_MasRecientesPrimero(t *testing.T) {
	ledger, store, _ := newLedger(t)
	seedProduct(t, store, "p1", 0, 0)
	for i := 1; i <= 3; i++ {
		_, err := ledger.AdjustStock(context.Background(), "p1", i, "restock", "u")
		require.NoError(t, err)
	}

	uc := inventory.NewMovementsUseCase(store.Repositories().Movements)
	res, err := uc.List(context.Background(), nil, dto.MovementQuery{ProductID: "p1"})
	require.NoError(t, err)
	require.Len(t, res.Items, 3)
	assert.Equal(t, 3, res.Items[0].Quantity)
	assert.Equal(t, 6, res.Items[0].NewStock)
	assert.Equal(t, 1, res.Items[2].Quantity)

	res, err = uc.List(context.Background(), nil, dto.MovementQuery{ProductID: "p1", Limit: 1})
	require.NoError(t, err)
	assert.Len(t, res.Items, 1)

	_, err = uc.List(context.Background(), nil, dto.MovementQuery{Type: "otro"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAdjustStockFromRequest_ProductoDeOtroDueño(t *testing.T) {
	ledger, store, _ := newLedger(t)
	ownerA, ownerB := "owner-a", "owner-b"
	pa := seedProduct(t, store, "pa", 0, 0)
	pa.OwnerID = &ownerA
	require.NoError(t, store.Repositories().Products.Update(context.Background(), pa))
	pb := seedProduct(t, store, "pb", 0, 0)
	pb.OwnerID = &ownerB
	require.NoError(t, store.Repositories().Products.Update(context.Background(), pb))

	_, err := ledger.AdjustStockFromRequest(context.Background(), "u", &ownerA,
		dto.AdjustStockRequest{ProductID: "pb", Quantity: 5, Reason: "restock"})
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 0, getProduct(t, store, "pb").Stock)
	assert.Empty(t, movementsOf(t, store, "pb"))

	out, err := ledger.AdjustStockFromRequest(context.Background(), "u", &ownerA,
		dto.AdjustStockRequest{ProductID: "pa", Quantity: 5, Reason: "restock"})
	require.NoError(t, err)
	assert.Equal(t, 5, out.Stock)

	// sin dueño en el token (administrador) no se restringe
	_, err = ledger.AdjustStockFromRequest(context.Background(), "admin", nil,
		dto.AdjustStockRequest{ProductID: "pb", Quantity: 2, Reason: "restock"})
	require.NoError(t, err)

	uc := inventory.NewMovementsUseCase(store.Repositories().Movements)
	res, err := uc.List(context.Background(), &ownerA, dto.MovementQuery{})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "pa", res.Items[0].ProductID)

	res, err = uc.List(context.Background(), &ownerA, dto.MovementQuery{ProductID: "pb"})
	require.NoError(t, err)
	assert.Empty(t, res.Items)

	res, err = uc.List(context.Background(), nil, dto.MovementQuery{})
	require.NoError(t, err)
	assert.Len(t, res.Items, 2)
}

type failingLocker struct{ err error }

func (l failingLocker) Lock(context.Context, string) (func(), error) { return nil, l.err }

func TestRun_ErroresDeBloqueo(t *testing.T) {
	store := memory.NewStore()
	seedProduct(t, store, "p1", 10, 2)
	ctx := context.Background()
	change := inventory.StockChange{ProductID: "p1", Delta: -1, Type: entity.MovementTypeOut, Reason: "Merma", ActorID: "u1"}

	backend := errors.New("dial tcp 10.0.3.7:6379: connect: connection refused")
	ledger := inventory.NewLedger(store, failingLocker{err: backend}, nil, nil, zerolog.Nop())
	_, err := ledger.ApplyStockChange(ctx, change)
	require.ErrorIs(t, err, domain.ErrPersistence)
	assert.NotErrorIs(t, err, domain.ErrConflict, "una caída del backend no es un conflicto del cliente")

	timeout := fmt.Errorf("%w: lock:stock:product:p1", inventory.ErrLockTimeout)
	ledger = inventory.NewLedger(store, failingLocker{err: timeout}, nil, nil, zerolog.Nop())
	_, err = ledger.ApplyStockChange(ctx, change)
	require.ErrorIs(t, err, domain.ErrConflict)
	assert.NotErrorIs(t, err, inventory.ErrLockTimeout)
	assert.NotContains(t, err.Error(), "lock:stock")

	assert.Equal(t, 10, getProduct(t, store, "p1").Stock)
	assert.Empty(t, movementsOf(t, store, "p1"))
}
