package repository

// Repositories agrupa los repositorios atados a una misma transacción.
type Repositories struct {
	Products       ProductRepository
	Movements      StockMovementRepository
	Sales          SaleRepository
	PurchaseOrders PurchaseOrderRepository
	Suppliers      SupplierRepository
}
