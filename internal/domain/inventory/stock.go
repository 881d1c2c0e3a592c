package inventory

import (
	"fmt"
	"time"

	"github.com/jhoicas/pos-stock-api/internal/domain"
	"github.com/jhoicas/pos-stock-api/internal/domain/entity"
)

// IsLowStock: existencia en o por debajo del mínimo configurado.
func IsLowStock(quantity, minStock int) bool {
	return quantity <= minStock
}

// NextStock calcula previous+delta y rechaza resultados negativos.
func NextStock(previous, delta int) (int, error) {
	next := previous + delta
	if next < 0 {
		return previous, fmt.Errorf("%w: disponible %d, solicitado %d", domain.ErrInsufficientStock, previous, -delta)
	}
	return next, nil
}

// MovementTypeFor tipo in/out según el signo del delta (ajustes manuales).
func MovementTypeFor(delta int) string {
	if delta > 0 {
		return entity.MovementTypeIn
	}
	return entity.MovementTypeOut
}

// ValidateDelta exige delta != 0 y coherencia con el tipo:
// in > 0, out < 0, adjustment cualquier signo.
func ValidateDelta(movementType string, delta int) error {
	if delta == 0 {
		return fmt.Errorf("%w: la cantidad no puede ser cero", domain.ErrInvalidInput)
	}
	switch movementType {
	case entity.MovementTypeIn:
		if delta < 0 {
			return fmt.Errorf("%w: un movimiento in debe aumentar el stock", domain.ErrInvalidInput)
		}
	case entity.MovementTypeOut:
		if delta > 0 {
			return fmt.Errorf("%w: un movimiento out debe disminuir el stock", domain.ErrInvalidInput)
		}
	case entity.MovementTypeAdjustment:
	default:
		return fmt.Errorf("%w: tipo de movimiento %q", domain.ErrInvalidInput, movementType)
	}
	return nil
}

// SetStock escribe el stock global y mantiene MainStock y LowStock sincronizados.
func SetStock(p *entity.Product, quantity int, now time.Time) {
	p.Stock = quantity
	RefreshFlags(p)
	p.UpdatedAt = now
}

// RefreshFlags recalcula los campos derivados de Stock/MinStock (usar tras editar MinStock).
func RefreshFlags(p *entity.Product) {
	low := IsLowStock(p.Stock, p.MinStock)
	p.LowStock = low
	p.MainStock = entity.MainStock{
		Quantity: p.Stock,
		MinStock: p.MinStock,
		LowStock: low,
	}
}

// SetListingStock escribe el stock propio de una tienda y su bandera de stock bajo.
func SetListingStock(l *entity.ShopListing, quantity int, now time.Time) {
	minStock := 0
	if l.MinStock != nil {
		minStock = *l.MinStock
	} else {
		l.MinStock = &minStock
	}
	low := IsLowStock(quantity, minStock)
	l.Stock = &quantity
	l.LowStock = &low
	l.UpdatedAt = now
}
