package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-stock-api/internal/application/inventory"
	"github.com/jhoicas/pos-stock-api/internal/application/numbering"
	"github.com/jhoicas/pos-stock-api/internal/application/purchasing"
	"github.com/jhoicas/pos-stock-api/internal/application/sales"
	"github.com/jhoicas/pos-stock-api/internal/application/usecase"
	"github.com/jhoicas/pos-stock-api/internal/domain/entity"
	"github.com/jhoicas/pos-stock-api/internal/infrastructure/lock"
	"github.com/jhoicas/pos-stock-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/pos-stock-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/pos-stock-api/pkg/jwt"
)

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testIssuer    = "pos-stock-api-test"
)

type stubReceipts struct{}

func (stubReceipts) GenerateReceipt(_ context.Context, s *entity.Sale) ([]byte, error) {
	return []byte("%PDF-1.3 " + s.SaleNumber), nil
}

// newTestApp aplicación completa sobre el almacenamiento en memoria.
func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	return newTestAppWithLocker(t, lock.NewLocalLocker())
}

func newTestAppWithLocker(t *testing.T, locker inventory.Locker) *fiber.App {
	t.Helper()
	store := memory.NewStore()
	repos := store.Repositories()
	ledger := inventory.NewLedger(store, locker, nil, nil, zerolog.Nop())
	numbers := numbering.NewGenerator()

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		ProductUC:   usecase.NewProductUseCase(repos.Products, ledger),
		Ledger:      ledger,
		MovementsUC: inventory.NewMovementsUseCase(repos.Movements),
		SalesUC:     sales.NewUseCase(ledger, repos.Sales, numbers, stubReceipts{}, zerolog.Nop()),
		PurchaseUC:  purchasing.NewUseCase(ledger, repos, numbers, zerolog.Nop()),
		SupplierUC:  purchasing.NewSupplierUseCase(repos.Suppliers),
		JWTSecret:   testJWTSecret,
		Log:         zerolog.Nop(),
	})
	return app
}

func tokenFor(t *testing.T, role string) string {
	t.Helper()
	return tokenForOwner(t, role, "")
}

func tokenForOwner(t *testing.T, role, ownerID string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, testIssuer, pkgjwt.Principal{UserID: "user-" + role, Role: role, OwnerID: ownerID}, 60)
	require.NoError(t, err)
	return "Bearer " + tok
}

// call envía la petición y decodifica la respuesta JSON en out (si no es nil).
func call(t *testing.T, app *fiber.App, method, path, auth string, body any, out any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	if out != nil {
		defer resp.Body.Close()
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

// switchLocker delega en un LocalLocker hasta que se le asigna un error.
type switchLocker struct {
	inner *lock.LocalLocker
	mu    sync.Mutex
	err   error
}

func newSwitchLocker() *switchLocker {
	return &switchLocker{inner: lock.NewLocalLocker()}
}

func (l *switchLocker) failWith(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.err = err
}

func (l *switchLocker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	err := l.err
	l.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return l.inner.Lock(ctx, key)
}

type errorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	MessageEn string `json:"message_en"`
}

type productBody struct {
	ID       string `json:"id"`
	Stock    int    `json:"stock"`
	LowStock bool   `json:"low_stock"`
}

func createProduct(t *testing.T, app *fiber.App, sku string, stock int, price string) productBody {
	t.Helper()
	var p productBody
	resp := call(t, app, http.MethodPost, "/api/products", tokenFor(t, pkgjwt.RoleStockKeeper), map[string]any{
		"sku":           sku,
		"name":          "Producto " + sku,
		"price":         price,
		"initial_stock": stock,
		"min_stock":     5,
	}, &p)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return p
}
