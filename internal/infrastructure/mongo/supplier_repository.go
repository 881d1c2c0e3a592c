package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/jhoicas/pos-stock-api/internal/domain"
	"github.com/jhoicas/pos-stock-api/internal/domain/entity"
	"github.com/jhoicas/pos-stock-api/internal/domain/repository"
)

type supplierDoc struct {
	ID            string    `bson:"_id"`
	Name          string    `bson:"name"`
	ContactPerson string    `bson:"contactPerson,omitempty"`
	Email         string    `bson:"email,omitempty"`
	Phone         string    `bson:"phone,omitempty"`
	Address       string    `bson:"address,omitempty"`
	Active        bool      `bson:"isActive"`
	OwnerID       *string   `bson:"owner"`
	ShopID        *string   `bson:"shop"`
	CreatedAt     time.Time `bson:"createdAt"`
	UpdatedAt     time.Time `bson:"updatedAt"`
}

// SupplierRepo implementa repository.SupplierRepository.
type SupplierRepo struct {
	col *mongo.Collection
	b   binder
}

var _ repository.SupplierRepository = (*SupplierRepo)(nil)

func (r *SupplierRepo) Create(ctx context.Context, s *entity.Supplier) error {
	_, err := r.col.InsertOne(r.b.ctx(ctx), supplierDoc(*s))
	return writeErr("crear proveedor", err)
}

func (r *SupplierRepo) GetByID(ctx context.Context, id string) (*entity.Supplier, error) {
	var doc supplierDoc
	ok, err := findOne(r.col.FindOne(r.b.ctx(ctx), bson.M{"_id": id}), &doc)
	if err != nil || !ok {
		return nil, writeErr("leer proveedor", err)
	}
	s := entity.Supplier(doc)
	return &s, nil
}

// ListByOwner activos; ownerID nil = todos.
func (r *SupplierRepo) ListByOwner(ctx context.Context, ownerID *string, limit, offset int) ([]*entity.Supplier, error) {
	filter := bson.M{"isActive": true}
	if ownerID != nil {
		filter["owner"] = *ownerID
	}
	opts := findOptsPage(limit, offset).SetSort(bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.col.Find(r.b.ctx(ctx), filter, opts)
	if err != nil {
		return nil, writeErr("listar proveedores", err)
	}
	var docs []supplierDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, writeErr("leer proveedores", err)
	}
	out := make([]*entity.Supplier, 0, len(docs))
	for _, d := range docs {
		s := entity.Supplier(d)
		out = append(out, &s)
	}
	return out, nil
}

func (r *SupplierRepo) Update(ctx context.Context, s *entity.Supplier) error {
	res, err := r.col.UpdateByID(r.b.ctx(ctx), s.ID, bson.M{"$set": bson.M{
		"name":          s.Name,
		"contactPerson": s.ContactPerson,
		"email":         s.Email,
		"phone":         s.Phone,
		"address":       s.Address,
		"isActive":      s.Active,
		"shop":          s.ShopID,
		"updatedAt":     s.UpdatedAt,
	}})
	if err != nil {
		return writeErr("actualizar proveedor", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: proveedor %s", domain.ErrNotFound, s.ID)
	}
	return nil
}
