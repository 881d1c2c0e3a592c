package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/jhoicas/pos-stock-api/internal/domain/entity"
	"github.com/jhoicas/pos-stock-api/internal/domain/repository"
)

type saleDoc struct {
	ID            string               `bson:"_id"`
	SaleNumber    string               `bson:"saleNumber"`
	CashierID     string               `bson:"cashier"`
	ShopID        string               `bson:"shop,omitempty"`
	Items         []saleItemDoc        `bson:"items"`
	Subtotal      primitive.Decimal128 `bson:"subtotal"`
	Tax           primitive.Decimal128 `bson:"tax"`
	Discount      primitive.Decimal128 `bson:"discount"`
	Total         primitive.Decimal128 `bson:"total"`
	PaymentMethod string               `bson:"paymentMethod"`
	AmountPaid    primitive.Decimal128 `bson:"amountPaid"`
	Change        primitive.Decimal128 `bson:"change"`
	Status        string               `bson:"status"`
	CreatedAt     time.Time            `bson:"createdAt"`
	RefundedAt    *time.Time           `bson:"refundedAt,omitempty"`
}

type saleItemDoc struct {
	ProductID string               `bson:"product"`
	Name      string               `bson:"name"`
	Price     primitive.Decimal128 `bson:"price"`
	Quantity  int                  `bson:"quantity"`
	Total     primitive.Decimal128 `bson:"total"`
}

func newSaleDoc(s *entity.Sale) saleDoc {
	items := make([]saleItemDoc, 0, len(s.Items))
	for _, it := range s.Items {
		items = append(items, saleItemDoc{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     toDecimal128(it.Price),
			Quantity:  it.Quantity,
			Total:     toDecimal128(it.Total),
		})
	}
	return saleDoc{
		ID:            s.ID,
		SaleNumber:    s.SaleNumber,
		CashierID:     s.CashierID,
		ShopID:        s.ShopID,
		Items:         items,
		Subtotal:      toDecimal128(s.Subtotal),
		Tax:           toDecimal128(s.Tax),
		Discount:      toDecimal128(s.Discount),
		Total:         toDecimal128(s.Total),
		PaymentMethod: s.PaymentMethod,
		AmountPaid:    toDecimal128(s.AmountPaid),
		Change:        toDecimal128(s.Change),
		Status:        s.Status,
		CreatedAt:     s.CreatedAt,
		RefundedAt:    s.RefundedAt,
	}
}

func (d saleDoc) entity() *entity.Sale {
	s := &entity.Sale{
		ID:            d.ID,
		SaleNumber:    d.SaleNumber,
		CashierID:     d.CashierID,
		ShopID:        d.ShopID,
		Subtotal:      fromDecimal128(d.Subtotal),
		Tax:           fromDecimal128(d.Tax),
		Discount:      fromDecimal128(d.Discount),
		Total:         fromDecimal128(d.Total),
		PaymentMethod: d.PaymentMethod,
		AmountPaid:    fromDecimal128(d.AmountPaid),
		Change:        fromDecimal128(d.Change),
		Status:        d.Status,
		CreatedAt:     d.CreatedAt.UTC(),
	}
	if d.RefundedAt != nil {
		t := d.RefundedAt.UTC()
		s.RefundedAt = &t
	}
	for _, it := range d.Items {
		s.Items = append(s.Items, entity.SaleItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     fromDecimal128(it.Price),
			Quantity:  it.Quantity,
			Total:     fromDecimal128(it.Total),
		})
	}
	return s
}

// SaleRepo implementa repository.SaleRepository sobre la colección sales.
type SaleRepo struct {
	col *mongo.Collection
	b   binder
}

var _ repository.SaleRepository = (*SaleRepo)(nil)

func (r *SaleRepo) Create(ctx context.Context, s *entity.Sale) error {
	_, err := r.col.InsertOne(r.b.ctx(ctx), newSaleDoc(s))
	return writeErr("crear venta", err)
}

func (r *SaleRepo) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	var doc saleDoc
	ok, err := findOne(r.col.FindOne(r.b.ctx(ctx), bson.M{"_id": id}), &doc)
	if err != nil || !ok {
		return nil, writeErr("leer venta", err)
	}
	return doc.entity(), nil
}

// GetForUpdate dentro de la transacción, la escritura posterior de estado detecta reembolsos concurrentes.
func (r *SaleRepo) GetForUpdate(ctx context.Context, id string) (*entity.Sale, error) {
	return r.GetByID(ctx, id)
}

func (r *SaleRepo) UpdateStatus(ctx context.Context, s *entity.Sale) error {
	_, err := r.col.UpdateByID(r.b.ctx(ctx), s.ID, bson.M{"$set": bson.M{
		"status":     s.Status,
		"refundedAt": s.RefundedAt,
	}})
	return writeErr("actualizar venta", err)
}

func (r *SaleRepo) List(ctx context.Context, shopID string, limit, offset int) ([]*entity.Sale, error) {
	filter := bson.M{}
	if shopID != "" {
		filter["shop"] = shopID
	}
	opts := findOptsPage(limit, offset).SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}})
	cur, err := r.col.Find(r.b.ctx(ctx), filter, opts)
	if err != nil {
		return nil, writeErr("listar ventas", err)
	}
	var docs []saleDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, writeErr("leer ventas", err)
	}
	out := make([]*entity.Sale, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.entity())
	}
	return out, nil
}
