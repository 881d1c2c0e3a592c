package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una venta. Refunded es terminal.
const (
	SaleStatusCompleted = "completed"
	SaleStatusRefunded  = "refunded"
)

// Medios de pago admitidos.
const (
	PaymentMethodCash = "cash"
	PaymentMethodCard = "card"
	PaymentMethodQR   = "qr"
)

// Sale cabecera de una venta de punto de venta.
type Sale struct {
	ID            string
	SaleNumber    string // SALE-<8 dígitos>
	CashierID     string
	ShopID        string
	Items         []SaleItem
	Subtotal      decimal.Decimal
	Tax           decimal.Decimal
	Discount      decimal.Decimal
	Total         decimal.Decimal
	PaymentMethod string
	AmountPaid    decimal.Decimal
	Change        decimal.Decimal
	Status        string
	CreatedAt     time.Time
	RefundedAt    *time.Time
}

// SaleItem línea de venta; Total = Price * Quantity.
type SaleItem struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Total     decimal.Decimal `json:"total"`
}
