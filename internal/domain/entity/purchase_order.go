package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una orden de compra. Received y Cancelled son terminales.
const (
	POStatusPending   = "pending"
	POStatusOrdered   = "ordered"
	POStatusReceived  = "received"
	POStatusCancelled = "cancelled"
)

// PurchaseOrder orden de compra a un proveedor.
type PurchaseOrder struct {
	ID           string
	PONumber     string // PO-<8 dígitos>
	SupplierID   string
	Items        []PurchaseOrderItem
	Subtotal     decimal.Decimal
	Tax          decimal.Decimal
	Total        decimal.Decimal
	Status       string
	OwnerID      *string
	ShopID       *string
	OrderedBy    string
	OrderDate    time.Time
	ReceivedDate *time.Time
	Notes        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PurchaseOrderItem línea de la orden; Total = UnitCost * Quantity.
type PurchaseOrderItem struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	Total     decimal.Decimal `json:"total"`
}
