package dto

import "time"

// AdjustStockRequest body para POST /api/inventory/adjustments.
// Quantity con signo: positivo suma, negativo resta.
type AdjustStockRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Reason    string `json:"reason"`
	ShopID    string `json:"shop_id,omitempty"`
}

// MovementQuery filtros de GET /api/inventory/movements.
type MovementQuery struct {
	ProductID string `query:"product_id"`
	ShopID    string `query:"shop_id"`
	Type      string `query:"type"`
	Reference string `query:"reference"`
	Limit     int    `query:"limit"`
}

// StockMovementResponse salida de un movimiento del libro.
type StockMovementResponse struct {
	ID            string    `json:"id"`
	ProductID     string    `json:"product_id"`
	Type          string    `json:"type"`
	Quantity      int       `json:"quantity"`
	Reason        string    `json:"reason"`
	Reference     string    `json:"reference,omitempty"`
	UserID        string    `json:"user_id"`
	ShopID        string    `json:"shop_id,omitempty"`
	PreviousStock int       `json:"previous_stock"`
	NewStock      int       `json:"new_stock"`
	CreatedAt     time.Time `json:"created_at"`
}

// MovementListResponse lista de movimientos, más recientes primero.
type MovementListResponse struct {
	Items []StockMovementResponse `json:"items"`
}
