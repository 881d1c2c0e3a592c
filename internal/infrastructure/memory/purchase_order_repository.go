package memory

import (
	"context"
	"fmt"

	"github.com/jhoicas/pos-stock-api/internal/domain"
	"github.com/jhoicas/pos-stock-api/internal/domain/entity"
)

// PurchaseOrderRepo órdenes de compra en memoria.
type PurchaseOrderRepo struct {
	a *access
}

func (r *PurchaseOrderRepo) Create(_ context.Context, po *entity.PurchaseOrder) error {
	return r.a.write(func(st *state) error {
		for _, existing := range st.orders {
			if existing.PONumber == po.PONumber {
				return fmt.Errorf("%w: orden %s", domain.ErrDuplicate, po.PONumber)
			}
		}
		st.orders[po.ID] = clonePurchaseOrder(po)
		return nil
	})
}

func (r *PurchaseOrderRepo) GetByID(_ context.Context, id string) (*entity.PurchaseOrder, error) {
	var out *entity.PurchaseOrder
	err := r.a.read(func(st *state) error {
		out = clonePurchaseOrder(st.orders[id])
		return nil
	})
	return out, err
}

func (r *PurchaseOrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	return r.GetByID(ctx, id)
}

func (r *PurchaseOrderRepo) UpdateStatus(_ context.Context, po *entity.PurchaseOrder) error {
	return r.a.write(func(st *state) error {
		current, ok := st.orders[po.ID]
		if !ok {
			return fmt.Errorf("%w: orden %s", domain.ErrNotFound, po.ID)
		}
		if current.Status != entity.POStatusPending && current.Status != entity.POStatusOrdered {
			return fmt.Errorf("%w: la orden %s ya no admite cambios de estado", domain.ErrConflict, current.PONumber)
		}
		current.Status = po.Status
		current.UpdatedAt = po.UpdatedAt
		if po.ReceivedDate != nil {
			t := *po.ReceivedDate
			current.ReceivedDate = &t
		}
		return nil
	})
}
