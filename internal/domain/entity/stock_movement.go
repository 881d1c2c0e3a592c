package entity

import "time"

// Tipos de movimiento del libro de stock.
const (
	MovementTypeIn         = "in"
	MovementTypeOut        = "out"
	MovementTypeAdjustment = "adjustment"
)

// Motivos usados por los orquestadores.
const (
	ReasonSale             = "Sale"
	ReasonRefund           = "Refund"
	ReasonPurchaseOrder    = "Purchase Order"
	ReasonInitialStock     = "Initial stock"
	ReasonInitialShopStock = "Initial stock for shop"
	ReasonStockUpdate      = "Stock update"
)

// StockMovement registro inmutable de un cambio de stock (auditoría).
// Quantity es siempre la magnitud; la dirección la da Type.
type StockMovement struct {
	ID            string
	ProductID     string
	Type          string
	Quantity      int
	Reason        string
	Reference     string // número de venta, número de OC, etc.
	UserID        string
	ShopID        string
	OwnerID       string
	PreviousStock int
	NewStock      int
	CreatedAt     time.Time
}

// IsValidMovementType indica si t es uno de los tipos admitidos.
func IsValidMovementType(t string) bool {
	switch t {
	case MovementTypeIn, MovementTypeOut, MovementTypeAdjustment:
		return true
	}
	return false
}
