package repository

import (
	"context"

	"github.com/jhoicas/pos-stock-api/internal/domain/entity"
)

// SupplierRepository define el puerto de persistencia para proveedores.
type SupplierRepository interface {
	Create(ctx context.Context, supplier *entity.Supplier) error
	GetByID(ctx context.Context, id string) (*entity.Supplier, error)
	// ListByOwner solo proveedores activos; ownerID nil = todos los dueños.
	ListByOwner(ctx context.Context, ownerID *string, limit, offset int) ([]*entity.Supplier, error)
	// Update guarda datos de contacto, Active, ShopID y UpdatedAt. domain.ErrNotFound si no existe.
	Update(ctx context.Context, supplier *entity.Supplier) error
}
