package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/pos-stock-api/internal/application/inventory"
	"github.com/jhoicas/pos-stock-api/internal/application/purchasing"
	"github.com/jhoicas/pos-stock-api/internal/application/sales"
	"github.com/jhoicas/pos-stock-api/internal/application/usecase"
	"github.com/jhoicas/pos-stock-api/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC   *usecase.ProductUseCase
	Ledger      *inventory.Ledger
	MovementsUC *inventory.MovementsUseCase
	SalesUC     *sales.UseCase
	PurchaseUC  *purchasing.UseCase
	SupplierUC  *purchasing.SupplierUseCase
	JWTSecret   string
	Log         zerolog.Logger
}

// Router registra las rutas de la API bajo /api. Todas requieren Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	stockRoles := RequireRole(jwt.RoleAdmin, jwt.RoleManager, jwt.RoleStockKeeper, jwt.RoleSeller)
	salesRoles := RequireRole(jwt.RoleAdmin, jwt.RoleManager, jwt.RoleCashier, jwt.RoleSeller)
	shopRoles := RequireRole(jwt.RoleSeller, jwt.RoleAdmin)
	receivingRoles := RequireRole(jwt.RoleAdmin, jwt.RoleManager, jwt.RoleStockKeeper)

	// Products
	productHandler := NewProductHandler(deps.ProductUC, deps.Log)
	products := api.Group("/products")
	products.Post("/", stockRoles, productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)

	shops := api.Group("/shops/:shopId/products", shopRoles)
	shops.Post("/", productHandler.CreateForShop)
	shops.Put("/:id", productHandler.UpdateForShop)

	// Inventory
	inventoryHandler := NewInventoryHandler(deps.Ledger, deps.MovementsUC, deps.Log)
	inv := api.Group("/inventory", stockRoles)
	inv.Post("/adjustments", inventoryHandler.Adjust)
	inv.Get("/movements", inventoryHandler.ListMovements)

	// Sales
	saleHandler := NewSaleHandler(deps.SalesUC, deps.Log)
	salesGroup := api.Group("/sales")
	salesGroup.Post("/", salesRoles, saleHandler.Create)
	salesGroup.Get("/", salesRoles, saleHandler.List)
	salesGroup.Get("/:id", salesRoles, saleHandler.GetByID)
	salesGroup.Get("/:id/receipt", salesRoles, saleHandler.Receipt)
	salesGroup.Post("/:id/refund", RequireRole(jwt.RoleAdmin, jwt.RoleManager), saleHandler.Refund)

	// Suppliers y órdenes de compra
	poHandler := NewPurchaseOrderHandler(deps.PurchaseUC, deps.SupplierUC, deps.Log)
	suppliers := api.Group("/suppliers", stockRoles)
	suppliers.Post("/", poHandler.CreateSupplier)
	suppliers.Get("/", poHandler.ListSuppliers)
	suppliers.Get("/:id", poHandler.GetSupplier)
	suppliers.Put("/:id", poHandler.UpdateSupplier)
	suppliers.Delete("/:id", RequireRole(jwt.RoleAdmin, jwt.RoleManager, jwt.RoleSeller), poHandler.DeleteSupplier)

	orders := api.Group("/purchase-orders")
	orders.Post("/", stockRoles, poHandler.Create)
	orders.Get("/:id", stockRoles, poHandler.GetByID)
	orders.Patch("/:id/status", receivingRoles, poHandler.UpdateStatus)
	orders.Post("/:id/receive", receivingRoles, poHandler.Receive)
}
