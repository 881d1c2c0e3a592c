package memory

import (
	"context"

	"github.com/jhoicas/pos-stock-api/internal/domain/entity"
	"github.com/jhoicas/pos-stock-api/internal/domain/repository"
)

// StockMovementRepo libro de movimientos en memoria (solo inserción).
type StockMovementRepo struct {
	a *access
}

func (r *StockMovementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	c := *m
	return r.a.write(func(st *state) error {
		st.movements = append(st.movements, &c)
		return nil
	})
}

// List recorre en orden de inserción (o inverso) aplicando el filtro.
func (r *StockMovementRepo) List(_ context.Context, f repository.MovementFilter) ([]*entity.StockMovement, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = repository.DefaultMovementLimit
	}
	out := make([]*entity.StockMovement, 0)
	err := r.a.read(func(st *state) error {
		n := len(st.movements)
		for i := 0; i < n && len(out) < limit; i++ {
			idx := n - 1 - i
			if f.Ascending {
				idx = i
			}
			m := st.movements[idx]
			if !matches(m, f) {
				continue
			}
			c := *m
			out = append(out, &c)
		}
		return nil
	})
	return out, err
}

func matches(m *entity.StockMovement, f repository.MovementFilter) bool {
	switch {
	case f.OwnerID != nil && m.OwnerID != *f.OwnerID:
		return false
	case f.ProductID != "" && m.ProductID != f.ProductID:
		return false
	case f.ShopID != "" && m.ShopID != f.ShopID:
		return false
	case f.Type != "" && m.Type != f.Type:
		return false
	case f.Reference != "" && m.Reference != f.Reference:
		return false
	case f.From != nil && m.CreatedAt.Before(*f.From):
		return false
	case f.To != nil && m.CreatedAt.After(*f.To):
		return false
	}
	return true
}
