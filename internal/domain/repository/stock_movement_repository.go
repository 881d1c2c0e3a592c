package repository

import (
	"context"
	"time"

	"github.com/jhoicas/pos-stock-api/internal/domain/entity"
)

// MovementFilter criterios de búsqueda del libro de movimientos.
// Campos vacíos no filtran. Limit <= 0 aplica el valor por defecto del adaptador.
// OwnerID nil no filtra; no nil restringe a los movimientos de productos de ese dueño.
type MovementFilter struct {
	OwnerID   *string
	ProductID string
	ShopID    string
	Type      string
	Reference string
	From      *time.Time
	To        *time.Time
	Ascending bool // por defecto, más recientes primero
	Limit     int
}

// DefaultMovementLimit tope de resultados cuando el filtro no indica Limit.
const DefaultMovementLimit = 100

// StockMovementRepository puerto del libro de movimientos (solo inserción y consulta).
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	List(ctx context.Context, filter MovementFilter) ([]*entity.StockMovement, error)
}
