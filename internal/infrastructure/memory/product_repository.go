package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/jhoicas/pos-stock-api/internal/domain"
	"github.com/jhoicas/pos-stock-api/internal/domain/entity"
)

// ProductRepo implementación en memoria de ProductRepository.
type ProductRepo struct {
	a *access
}

// Create inserta el producto; SKU único por propietario.
func (r *ProductRepo) Create(_ context.Context, p *entity.Product) error {
	return r.a.write(func(st *state) error {
		if _, ok := st.products[p.ID]; ok {
			return fmt.Errorf("%w: producto %s", domain.ErrDuplicate, p.ID)
		}
		for _, existing := range st.products {
			if existing.SKU == p.SKU && sameOwner(existing.OwnerID, p.OwnerID) {
				return fmt.Errorf("%w: sku %s", domain.ErrDuplicate, p.SKU)
			}
		}
		st.products[p.ID] = cloneProduct(p)
		return nil
	})
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.a.read(func(st *state) error {
		out = cloneProduct(st.products[id])
		return nil
	})
	return out, err
}

// GetForUpdate en memoria la exclusión la da el candado de la transacción.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *ProductRepo) GetByOwnerAndSKU(_ context.Context, ownerID *string, sku string) (*entity.Product, error) {
	var out *entity.Product
	err := r.a.read(func(st *state) error {
		for _, p := range st.products {
			if p.SKU == sku && sameOwner(p.OwnerID, ownerID) {
				out = cloneProduct(p)
				return nil
			}
		}
		return nil
	})
	return out, err
}

// Update datos de catálogo y fichas; conserva stock, mínimos y costo guardados.
func (r *ProductRepo) Update(_ context.Context, p *entity.Product) error {
	return r.a.write(func(st *state) error {
		current, ok := st.products[p.ID]
		if !ok {
			return fmt.Errorf("%w: producto %s", domain.ErrNotFound, p.ID)
		}
		next := cloneProduct(p)
		next.Stock = current.Stock
		next.MinStock = current.MinStock
		next.LowStock = current.LowStock
		next.MainStock = current.MainStock
		next.Cost = current.Cost
		next.CreatedAt = current.CreatedAt
		st.products[p.ID] = next
		return nil
	})
}

func (r *ProductRepo) SaveStock(_ context.Context, p *entity.Product) error {
	return r.a.write(func(st *state) error {
		current, ok := st.products[p.ID]
		if !ok {
			return fmt.Errorf("%w: producto %s", domain.ErrNotFound, p.ID)
		}
		next := cloneProduct(current)
		next.Stock = p.Stock
		next.MinStock = p.MinStock
		next.LowStock = p.LowStock
		next.MainStock = p.MainStock
		next.Cost = p.Cost
		next.Shops = cloneProduct(p).Shops
		next.UpdatedAt = p.UpdatedAt
		st.products[p.ID] = next
		return nil
	})
}

// List ownerID nil = todos los productos.
func (r *ProductRepo) List(_ context.Context, ownerID *string, limit, offset int) ([]*entity.Product, error) {
	var out []*entity.Product
	err := r.a.read(func(st *state) error {
		for _, p := range st.products {
			if ownerID != nil && !sameOwner(p.OwnerID, ownerID) {
				continue
			}
			out = append(out, cloneProduct(p))
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].ID < out[j].ID
		}
		return out[i].Name < out[j].Name
	})
	return window(out, limit, offset), err
}
