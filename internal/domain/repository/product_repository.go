package repository

import (
	"context"

	"github.com/jhoicas/pos-stock-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// GetByID/GetForUpdate devuelven (nil, nil) si el producto no existe.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// GetForUpdate bloquea el producto hasta el fin de la transacción (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	// GetByOwnerAndSKU ownerID nil = catálogo global.
	GetByOwnerAndSKU(ctx context.Context, ownerID *string, sku string) (*entity.Product, error)
	// Update guarda los datos de catálogo y fichas de tienda. No toca Stock, MinStock, MainStock ni Cost.
	Update(ctx context.Context, product *entity.Product) error
	// SaveStock guarda Stock, MinStock, LowStock, MainStock, Shops y Cost (motor de inventario).
	SaveStock(ctx context.Context, product *entity.Product) error
	List(ctx context.Context, ownerID *string, limit, offset int) ([]*entity.Product, error)
}
