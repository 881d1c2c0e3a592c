package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/pos-stock-api/internal/domain/entity"
	"github.com/jhoicas/pos-stock-api/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

const saleColumns = `id, sale_number, cashier_id, shop_id, items, subtotal, tax, discount, total,
	payment_method, amount_paid, change_amount, status, created_at, refunded_at`

// SaleRepo ventas sobre PostgreSQL; las líneas se guardan como JSONB.
type SaleRepo struct {
	q Querier
}

func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

// Create inserta la venta. sale_number repetido devuelve domain.ErrDuplicate.
func (r *SaleRepo) Create(ctx context.Context, s *entity.Sale) error {
	items, err := marshalJSON(s.Items)
	if err != nil {
		return err
	}
	_, err = r.q.Exec(ctx, `
		INSERT INTO sales (`+saleColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		s.ID, s.SaleNumber, s.CashierID, nullString(s.ShopID), items, s.Subtotal, s.Tax, s.Discount, s.Total,
		s.PaymentMethod, s.AmountPaid, s.Change, s.Status, s.CreatedAt, s.RefundedAt,
	)
	if err != nil {
		return writeErr("insert sale", err)
	}
	return nil
}

func (r *SaleRepo) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	return r.getOne(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1`, id)
}

func (r *SaleRepo) GetForUpdate(ctx context.Context, id string) (*entity.Sale, error) {
	return r.getOne(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1 FOR UPDATE`, id)
}

func (r *SaleRepo) UpdateStatus(ctx context.Context, s *entity.Sale) error {
	_, err := r.q.Exec(ctx, `UPDATE sales SET status = $2, refunded_at = $3 WHERE id = $1`, s.ID, s.Status, s.RefundedAt)
	if err != nil {
		return writeErr("update sale status", err)
	}
	return nil
}

func (r *SaleRepo) List(ctx context.Context, shopID string, limit, offset int) ([]*entity.Sale, error) {
	rows, err := r.q.Query(ctx, `SELECT `+saleColumns+` FROM sales
		WHERE ($1::text IS NULL OR shop_id = $1)
		ORDER BY created_at DESC, sale_number DESC LIMIT $2 OFFSET $3`,
		nullString(shopID), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()
	var list []*entity.Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

func (r *SaleRepo) getOne(ctx context.Context, query string, args ...any) (*entity.Sale, error) {
	s, err := scanSale(r.q.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return s, err
}

func scanSale(row rowScanner) (*entity.Sale, error) {
	var (
		s      entity.Sale
		shopID *string
		items  []byte
	)
	err := row.Scan(&s.ID, &s.SaleNumber, &s.CashierID, &shopID, &items, &s.Subtotal, &s.Tax, &s.Discount, &s.Total,
		&s.PaymentMethod, &s.AmountPaid, &s.Change, &s.Status, &s.CreatedAt, &s.RefundedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan sale: %w", err)
	}
	s.ShopID = derefString(shopID)
	if err := unmarshalJSON(items, &s.Items); err != nil {
		return nil, err
	}
	return &s, nil
}
