package repository

import (
	"context"

	"github.com/jhoicas/pos-stock-api/internal/domain/entity"
)

// SaleRepository define el puerto de persistencia para ventas.
type SaleRepository interface {
	Create(ctx context.Context, sale *entity.Sale) error
	GetByID(ctx context.Context, id string) (*entity.Sale, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Sale, error)
	// UpdateStatus guarda Status y RefundedAt.
	UpdateStatus(ctx context.Context, sale *entity.Sale) error
	List(ctx context.Context, shopID string, limit, offset int) ([]*entity.Sale, error)
}
