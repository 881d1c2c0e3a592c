package inventory

import "time"

// Tipos de evento publicados por el motor.
const (
	EventStockMovementRecorded = "stock.movement.recorded"
	EventLowStockDetected      = "stock.low"
)

// StockMovementRecorded se publica por cada movimiento confirmado.
type StockMovementRecorded struct {
	EventType     string    `json:"event_type"`
	MovementID    string    `json:"movement_id"`
	ProductID     string    `json:"product_id"`
	Type          string    `json:"type"`
	Quantity      int       `json:"quantity"`
	PreviousStock int       `json:"previous_stock"`
	NewStock      int       `json:"new_stock"`
	Reason        string    `json:"reason"`
	Reference     string    `json:"reference,omitempty"`
	UserID        string    `json:"user_id"`
	ShopID        string    `json:"shop_id,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// LowStockDetected se publica cuando un movimiento deja el stock en o bajo el mínimo
// partiendo de un nivel por encima de él.
type LowStockDetected struct {
	EventType  string    `json:"event_type"`
	ProductID  string    `json:"product_id"`
	SKU        string    `json:"sku"`
	Name       string    `json:"name"`
	ShopID     string    `json:"shop_id,omitempty"`
	Stock      int       `json:"stock"`
	MinStock   int       `json:"min_stock"`
	OccurredAt time.Time `json:"occurred_at"`
}

// EventName tipo del evento, usado como cabecera por los publicadores.
func (e StockMovementRecorded) EventName() string { return e.EventType }

// EventName tipo del evento, usado como cabecera por los publicadores.
func (e LowStockDetected) EventName() string { return e.EventType }
