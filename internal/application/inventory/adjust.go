package inventory

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/pos-stock-api/internal/application/dto"
	"github.com/jhoicas/pos-stock-api/internal/domain"
	"github.com/jhoicas/pos-stock-api/internal/domain/entity"
	domaininv "github.com/jhoicas/pos-stock-api/internal/domain/inventory"
)

// AdjustStock ajuste manual: tipo in si delta > 0, out en caso contrario.
func (l *Ledger) AdjustStock(ctx context.Context, productID string, delta int, reason, actorID string) (*entity.Product, error) {
	return l.adjust(ctx, productID, delta, reason, actorID, "", nil)
}

// AdjustStockFromRequest valida el body HTTP y aplica el ajuste. ShopID solo se registra en el movimiento.
// Con ownerID, un producto de otro dueño responde ErrNotFound.
func (l *Ledger) AdjustStockFromRequest(ctx context.Context, actorID string, ownerID *string, in dto.AdjustStockRequest) (*dto.ProductResponse, error) {
	product, err := l.adjust(ctx, in.ProductID, in.Quantity, in.Reason, actorID, in.ShopID, ownerID)
	if err != nil {
		return nil, err
	}
	return dto.NewProductResponse(product), nil
}

func (l *Ledger) adjust(ctx context.Context, productID string, delta int, reason, actorID, shopID string, ownerID *string) (*entity.Product, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: el motivo del ajuste es obligatorio", domain.ErrInvalidInput)
	}
	return l.ApplyStockChange(ctx, StockChange{
		ProductID: productID,
		Delta:     delta,
		Type:      domaininv.MovementTypeFor(delta),
		Reason:    reason,
		ActorID:   actorID,
		ShopID:    shopID,
		OwnerID:   ownerID,
	})
}
