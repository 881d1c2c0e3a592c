package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/pos-stock-api/internal/domain/entity"
	"github.com/jhoicas/pos-stock-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo libro de movimientos sobre PostgreSQL. La tabla rechaza UPDATE y DELETE (trigger).
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Create agrega un movimiento.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock_movements (id, product_id, type, quantity, reason, reference, user_id, shop_id, owner_id, previous_stock, new_stock, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		m.ID, m.ProductID, m.Type, m.Quantity, m.Reason, nullString(m.Reference), m.UserID,
		nullString(m.ShopID), nullString(m.OwnerID), m.PreviousStock, m.NewStock, m.CreatedAt,
	)
	if err != nil {
		return writeErr("insert stock movement", err)
	}
	return nil
}

// List movimientos filtrados; por defecto más recientes primero.
func (r *StockMovementRepo) List(ctx context.Context, f repository.MovementFilter) ([]*entity.StockMovement, error) {
	query := `
		SELECT id, product_id, type, quantity, reason, reference, user_id, shop_id, owner_id, previous_stock, new_stock, created_at
		FROM stock_movements WHERE TRUE`
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		query += fmt.Sprintf(" AND "+cond, len(args))
	}
	if f.OwnerID != nil {
		add("owner_id = $%d", *f.OwnerID)
	}
	if f.ProductID != "" {
		add("product_id = $%d", f.ProductID)
	}
	if f.ShopID != "" {
		add("shop_id = $%d", f.ShopID)
	}
	if f.Type != "" {
		add("type = $%d", f.Type)
	}
	if f.Reference != "" {
		add("reference = $%d", f.Reference)
	}
	if f.From != nil {
		add("created_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("created_at <= $%d", *f.To)
	}
	order := "DESC"
	if f.Ascending {
		order = "ASC"
	}
	limit := f.Limit
	if limit <= 0 {
		limit = repository.DefaultMovementLimit
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY created_at %s, seq %s LIMIT $%d", order, order, len(args))

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		var (
			m                          entity.StockMovement
			reference, shopID, ownerID *string
		)
		if err := rows.Scan(&m.ID, &m.ProductID, &m.Type, &m.Quantity, &m.Reason, &reference, &m.UserID,
			&shopID, &ownerID, &m.PreviousStock, &m.NewStock, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan stock movement: %w", err)
		}
		m.Reference = derefString(reference)
		m.ShopID = derefString(shopID)
		m.OwnerID = derefString(ownerID)
		list = append(list, &m)
	}
	return list, rows.Err()
}
