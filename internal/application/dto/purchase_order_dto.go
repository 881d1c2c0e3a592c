package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseOrderItemRequest línea de orden de compra.
type PurchaseOrderItemRequest struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
}

// CreatePurchaseOrderRequest body para POST /api/purchase-orders.
type CreatePurchaseOrderRequest struct {
	SupplierID string                     `json:"supplier_id"`
	ShopID     string                     `json:"shop_id,omitempty"`
	Items      []PurchaseOrderItemRequest `json:"items"`
	TaxRate    decimal.Decimal            `json:"tax_rate"`
	Notes      string                     `json:"notes"`
}

// UpdatePurchaseOrderStatusRequest body para PATCH /api/purchase-orders/:id/status.
type UpdatePurchaseOrderStatusRequest struct {
	Status string `json:"status"`
}

// ReceivePurchaseOrderRequest body opcional para POST /api/purchase-orders/:id/receive.
type ReceivePurchaseOrderRequest struct {
	ShopID string `json:"shop_id,omitempty"`
}

// PurchaseOrderItemResponse línea de orden de compra.
type PurchaseOrderItemResponse struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	Total     decimal.Decimal `json:"total"`
}

// PurchaseOrderResponse salida de una orden de compra.
type PurchaseOrderResponse struct {
	ID           string                      `json:"id"`
	PONumber     string                      `json:"po_number"`
	SupplierID   string                      `json:"supplier_id"`
	Items        []PurchaseOrderItemResponse `json:"items"`
	Subtotal     decimal.Decimal             `json:"subtotal"`
	Tax          decimal.Decimal             `json:"tax"`
	Total        decimal.Decimal             `json:"total"`
	Status       string                      `json:"status"`
	OwnerID      *string                     `json:"owner_id,omitempty"`
	ShopID       *string                     `json:"shop_id,omitempty"`
	OrderedBy    string                      `json:"ordered_by"`
	OrderDate    time.Time                   `json:"order_date"`
	ReceivedDate *time.Time                  `json:"received_date,omitempty"`
	Notes        string                      `json:"notes,omitempty"`
	CreatedAt    time.Time                   `json:"created_at"`
	UpdatedAt    time.Time                   `json:"updated_at"`
}
