package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/jhoicas/pos-stock-api/internal/domain"
	"github.com/jhoicas/pos-stock-api/internal/domain/entity"
)

// SupplierRepo proveedores en memoria.
type SupplierRepo struct {
	a *access
}

func (r *SupplierRepo) Create(_ context.Context, s *entity.Supplier) error {
	c := *s
	return r.a.write(func(st *state) error {
		st.suppliers[s.ID] = &c
		return nil
	})
}

func (r *SupplierRepo) GetByID(_ context.Context, id string) (*entity.Supplier, error) {
	var out *entity.Supplier
	err := r.a.read(func(st *state) error {
		if s, ok := st.suppliers[id]; ok {
			c := *s
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *SupplierRepo) ListByOwner(_ context.Context, ownerID *string, limit, offset int) ([]*entity.Supplier, error) {
	var out []*entity.Supplier
	err := r.a.read(func(st *state) error {
		for _, s := range st.suppliers {
			if !s.Active || (ownerID != nil && !sameOwner(s.OwnerID, ownerID)) {
				continue
			}
			c := *s
			out = append(out, &c)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return window(out, limit, offset), err
}

func (r *SupplierRepo) Update(_ context.Context, s *entity.Supplier) error {
	c := *s
	return r.a.write(func(st *state) error {
		if _, ok := st.suppliers[s.ID]; !ok {
			return fmt.Errorf("%w: proveedor %s", domain.ErrNotFound, s.ID)
		}
		st.suppliers[s.ID] = &c
		return nil
	})
}
