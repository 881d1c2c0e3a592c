package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/jhoicas/pos-stock-api/internal/domain"
	"github.com/jhoicas/pos-stock-api/internal/domain/entity"
)

// SaleRepo ventas en memoria.
type SaleRepo struct {
	a *access
}

func (r *SaleRepo) Create(_ context.Context, s *entity.Sale) error {
	return r.a.write(func(st *state) error {
		for _, existing := range st.sales {
			if existing.SaleNumber == s.SaleNumber {
				return fmt.Errorf("%w: venta %s", domain.ErrDuplicate, s.SaleNumber)
			}
		}
		st.sales[s.ID] = cloneSale(s)
		return nil
	})
}

func (r *SaleRepo) GetByID(_ context.Context, id string) (*entity.Sale, error) {
	var out *entity.Sale
	err := r.a.read(func(st *state) error {
		out = cloneSale(st.sales[id])
		return nil
	})
	return out, err
}

func (r *SaleRepo) GetForUpdate(ctx context.Context, id string) (*entity.Sale, error) {
	return r.GetByID(ctx, id)
}

func (r *SaleRepo) UpdateStatus(_ context.Context, s *entity.Sale) error {
	return r.a.write(func(st *state) error {
		current, ok := st.sales[s.ID]
		if !ok {
			return fmt.Errorf("%w: venta %s", domain.ErrNotFound, s.ID)
		}
		current.Status = s.Status
		if s.RefundedAt != nil {
			t := *s.RefundedAt
			current.RefundedAt = &t
		}
		return nil
	})
}

// List shopID vacío = todas las tiendas; más recientes primero.
func (r *SaleRepo) List(_ context.Context, shopID string, limit, offset int) ([]*entity.Sale, error) {
	var out []*entity.Sale
	err := r.a.read(func(st *state) error {
		for _, s := range st.sales {
			if shopID != "" && s.ShopID != shopID {
				continue
			}
			out = append(out, cloneSale(s))
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].SaleNumber > out[j].SaleNumber
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return window(out, limit, offset), err
}
