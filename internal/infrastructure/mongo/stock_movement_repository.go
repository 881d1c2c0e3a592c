package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jhoicas/pos-stock-api/internal/domain/entity"
	"github.com/jhoicas/pos-stock-api/internal/domain/repository"
)

type movementDoc struct {
	ID            string             `bson:"_id"`
	Seq           primitive.ObjectID `bson:"seq"`
	ProductID     string             `bson:"product"`
	Type          string             `bson:"type"`
	Quantity      int                `bson:"quantity"`
	Reason        string             `bson:"reason"`
	Reference     string             `bson:"reference,omitempty"`
	UserID        string             `bson:"user"`
	ShopID        string             `bson:"shop,omitempty"`
	OwnerID       string             `bson:"owner,omitempty"`
	PreviousStock int                `bson:"previousStock"`
	NewStock      int                `bson:"newStock"`
	CreatedAt     time.Time          `bson:"createdAt"`
}

// StockMovementRepo libro de movimientos; solo inserta. seq (ObjectID creciente) ordena
// los movimientos de una misma unidad, que comparten createdAt.
type StockMovementRepo struct {
	col *mongo.Collection
	b   binder
}

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	_, err := r.col.InsertOne(r.b.ctx(ctx), movementDoc{
		ID:            m.ID,
		Seq:           primitive.NewObjectID(),
		ProductID:     m.ProductID,
		Type:          m.Type,
		Quantity:      m.Quantity,
		Reason:        m.Reason,
		Reference:     m.Reference,
		UserID:        m.UserID,
		ShopID:        m.ShopID,
		OwnerID:       m.OwnerID,
		PreviousStock: m.PreviousStock,
		NewStock:      m.NewStock,
		CreatedAt:     m.CreatedAt,
	})
	return writeErr("registrar movimiento", err)
}

func (r *StockMovementRepo) List(ctx context.Context, f repository.MovementFilter) ([]*entity.StockMovement, error) {
	filter := movementFilter(f)
	dir := -1
	if f.Ascending {
		dir = 1
	}
	limit := f.Limit
	if limit <= 0 {
		limit = repository.DefaultMovementLimit
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: dir}, {Key: "seq", Value: dir}}).
		SetLimit(int64(limit))

	cur, err := r.col.Find(r.b.ctx(ctx), filter, opts)
	if err != nil {
		return nil, writeErr("listar movimientos", err)
	}
	var docs []movementDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, writeErr("leer movimientos", err)
	}
	out := make([]*entity.StockMovement, 0, len(docs))
	for _, d := range docs {
		out = append(out, &entity.StockMovement{
			ID:            d.ID,
			ProductID:     d.ProductID,
			Type:          d.Type,
			Quantity:      d.Quantity,
			Reason:        d.Reason,
			Reference:     d.Reference,
			UserID:        d.UserID,
			ShopID:        d.ShopID,
			OwnerID:       d.OwnerID,
			PreviousStock: d.PreviousStock,
			NewStock:      d.NewStock,
			CreatedAt:     d.CreatedAt.UTC(),
		})
	}
	return out, nil
}

func movementFilter(f repository.MovementFilter) bson.M {
	filter := bson.M{}
	if f.OwnerID != nil {
		filter["owner"] = *f.OwnerID
	}
	if f.ProductID != "" {
		filter["product"] = f.ProductID
	}
	if f.ShopID != "" {
		filter["shop"] = f.ShopID
	}
	if f.Type != "" {
		filter["type"] = f.Type
	}
	if f.Reference != "" {
		filter["reference"] = f.Reference
	}
	if f.From != nil || f.To != nil {
		rng := bson.M{}
		if f.From != nil {
			rng["$gte"] = *f.From
		}
		if f.To != nil {
			rng["$lte"] = *f.To
		}
		filter["createdAt"] = rng
	}
	return filter
}
