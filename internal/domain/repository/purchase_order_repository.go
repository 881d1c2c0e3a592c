package repository

import (
	"context"

	"github.com/jhoicas/pos-stock-api/internal/domain/entity"
)

// PurchaseOrderRepository define el puerto de persistencia para órdenes de compra.
type PurchaseOrderRepository interface {
	Create(ctx context.Context, po *entity.PurchaseOrder) error
	GetByID(ctx context.Context, id string) (*entity.PurchaseOrder, error)
	GetForUpdate(ctx context.Context, id string) (*entity.PurchaseOrder, error)
	// UpdateStatus guarda Status, ReceivedDate y UpdatedAt solo si la orden almacenada sigue
	// abierta (pending u ordered); si ya fue recibida o cancelada devuelve domain.ErrConflict.
	UpdateStatus(ctx context.Context, po *entity.PurchaseOrder) error
}
