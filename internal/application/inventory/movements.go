package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/pos-stock-api/internal/application/dto"
	"github.com/jhoicas/pos-stock-api/internal/domain"
	"github.com/jhoicas/pos-stock-api/internal/domain/entity"
	"github.com/jhoicas/pos-stock-api/internal/domain/repository"
)

// MovementsUseCase consultas sobre el libro de movimientos.
type MovementsUseCase struct {
	repo repository.StockMovementRepository
}

// NewMovementsUseCase construye el caso de uso.
func NewMovementsUseCase(repo repository.StockMovementRepository) *MovementsUseCase {
	return &MovementsUseCase{repo: repo}
}

// List movimientos más recientes primero; máximo repository.DefaultMovementLimit si no se indica Limit.
// Con ownerID solo se listan movimientos de productos de ese dueño.
func (uc *MovementsUseCase) List(ctx context.Context, ownerID *string, q dto.MovementQuery) (*dto.MovementListResponse, error) {
	if q.Type != "" && !entity.IsValidMovementType(q.Type) {
		return nil, fmt.Errorf("%w: tipo de movimiento %q", domain.ErrInvalidInput, q.Type)
	}
	limit := q.Limit
	if limit <= 0 || limit > repository.DefaultMovementLimit {
		limit = repository.DefaultMovementLimit
	}
	list, err := uc.repo.List(ctx, repository.MovementFilter{
		OwnerID:   ownerID,
		ProductID: q.ProductID,
		ShopID:    q.ShopID,
		Type:      q.Type,
		Reference: q.Reference,
		Limit:     limit,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.StockMovementResponse, 0, len(list))
	for _, m := range list {
		items = append(items, dto.NewStockMovementResponse(m))
	}
	return &dto.MovementListResponse{Items: items}, nil
}
