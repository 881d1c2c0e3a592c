package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/pos-stock-api/internal/domain"
	"github.com/jhoicas/pos-stock-api/internal/domain/entity"
	"github.com/jhoicas/pos-stock-api/internal/domain/repository"
)

var _ repository.PurchaseOrderRepository = (*PurchaseOrderRepo)(nil)

const purchaseOrderColumns = `id, po_number, supplier_id, items, subtotal, tax, total, status, owner_id, shop_id,
	ordered_by, order_date, received_date, notes, created_at, updated_at`

// PurchaseOrderRepo órdenes de compra sobre PostgreSQL.
type PurchaseOrderRepo struct {
	q Querier
}

func NewPurchaseOrderRepository(q Querier) *PurchaseOrderRepo {
	return &PurchaseOrderRepo{q: q}
}

func (r *PurchaseOrderRepo) Create(ctx context.Context, po *entity.PurchaseOrder) error {
	items, err := marshalJSON(po.Items)
	if err != nil {
		return err
	}
	_, err = r.q.Exec(ctx, `
		INSERT INTO purchase_orders (`+purchaseOrderColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		po.ID, po.PONumber, po.SupplierID, items, po.Subtotal, po.Tax, po.Total, po.Status, po.OwnerID, po.ShopID,
		po.OrderedBy, po.OrderDate, po.ReceivedDate, po.Notes, po.CreatedAt, po.UpdatedAt,
	)
	if err != nil {
		return writeErr("insert purchase order", err)
	}
	return nil
}

func (r *PurchaseOrderRepo) GetByID(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	return r.getOne(ctx, `SELECT `+purchaseOrderColumns+` FROM purchase_orders WHERE id = $1`, id)
}

func (r *PurchaseOrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	return r.getOne(ctx, `SELECT `+purchaseOrderColumns+` FROM purchase_orders WHERE id = $1 FOR UPDATE`, id)
}

func (r *PurchaseOrderRepo) UpdateStatus(ctx context.Context, po *entity.PurchaseOrder) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE purchase_orders SET status = $2, received_date = $3, updated_at = $4
		WHERE id = $1 AND status IN ('pending', 'ordered')`,
		po.ID, po.Status, po.ReceivedDate, po.UpdatedAt)
	if err != nil {
		return writeErr("update purchase order status", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: la orden %s ya no admite cambios de estado", domain.ErrConflict, po.PONumber)
	}
	return nil
}

func (r *PurchaseOrderRepo) getOne(ctx context.Context, query string, args ...any) (*entity.PurchaseOrder, error) {
	var (
		po    entity.PurchaseOrder
		items []byte
	)
	err := r.q.QueryRow(ctx, query, args...).Scan(&po.ID, &po.PONumber, &po.SupplierID, &items, &po.Subtotal, &po.Tax,
		&po.Total, &po.Status, &po.OwnerID, &po.ShopID, &po.OrderedBy, &po.OrderDate, &po.ReceivedDate, &po.Notes,
		&po.CreatedAt, &po.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get purchase order: %w", err)
	}
	if err := unmarshalJSON(items, &po.Items); err != nil {
		return nil, err
	}
	return &po, nil
}
