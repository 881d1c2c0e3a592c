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

type productDoc struct {
	ID          string               `bson:"_id"`
	OwnerID     *string              `bson:"owner"`
	SKU         string               `bson:"sku"`
	Name        string               `bson:"name"`
	Description string               `bson:"description,omitempty"`
	Category    string               `bson:"category,omitempty"`
	Price       primitive.Decimal128 `bson:"price"`
	Cost        primitive.Decimal128 `bson:"cost"`
	Stock       int                  `bson:"stock"`
	MinStock    int                  `bson:"minStock"`
	LowStock    bool                 `bson:"lowStock"`
	MainStock   mainStockDoc         `bson:"mainStock"`
	Shops       []listingDoc         `bson:"shops"`
	Active      bool                 `bson:"isActive"`
	Version     int64                `bson:"version"`
	CreatedAt   time.Time            `bson:"createdAt"`
	UpdatedAt   time.Time            `bson:"updatedAt"`
}

type mainStockDoc struct {
	Quantity int  `bson:"quantity"`
	MinStock int  `bson:"minStock"`
	LowStock bool `bson:"lowStock"`
}

type listingDoc struct {
	ShopID      string                `bson:"shop"`
	IsVisible   bool                  `bson:"isVisible"`
	CustomPrice *primitive.Decimal128 `bson:"customPrice,omitempty"`
	Stock       *int                  `bson:"stock,omitempty"`
	MinStock    *int                  `bson:"minStock,omitempty"`
	LowStock    *bool                 `bson:"lowStock,omitempty"`
	CreatedAt   time.Time             `bson:"createdAt"`
	UpdatedAt   time.Time             `bson:"updatedAt"`
}

func newProductDoc(p *entity.Product) productDoc {
	return productDoc{
		ID:          p.ID,
		OwnerID:     p.OwnerID,
		SKU:         p.SKU,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Price:       toDecimal128(p.Price),
		Cost:        toDecimal128(p.Cost),
		Stock:       p.Stock,
		MinStock:    p.MinStock,
		LowStock:    p.LowStock,
		MainStock:   mainStockDoc(p.MainStock),
		Shops:       newListingDocs(p.Shops),
		Active:      p.Active,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func newListingDocs(shops []entity.ShopListing) []listingDoc {
	out := make([]listingDoc, 0, len(shops))
	for _, l := range shops {
		out = append(out, listingDoc{
			ShopID:      l.ShopID,
			IsVisible:   l.IsVisible,
			CustomPrice: toDecimal128Ptr(l.CustomPrice),
			Stock:       l.Stock,
			MinStock:    l.MinStock,
			LowStock:    l.LowStock,
			CreatedAt:   l.CreatedAt,
			UpdatedAt:   l.UpdatedAt,
		})
	}
	return out
}

func (d productDoc) entity() *entity.Product {
	p := &entity.Product{
		ID:          d.ID,
		OwnerID:     d.OwnerID,
		SKU:         d.SKU,
		Name:        d.Name,
		Description: d.Description,
		Category:    d.Category,
		Price:       fromDecimal128(d.Price),
		Cost:        fromDecimal128(d.Cost),
		Stock:       d.Stock,
		MinStock:    d.MinStock,
		LowStock:    d.LowStock,
		MainStock:   entity.MainStock(d.MainStock),
		Active:      d.Active,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
	for _, l := range d.Shops {
		p.Shops = append(p.Shops, entity.ShopListing{
			ShopID:      l.ShopID,
			IsVisible:   l.IsVisible,
			CustomPrice: fromDecimal128Ptr(l.CustomPrice),
			Stock:       l.Stock,
			MinStock:    l.MinStock,
			LowStock:    l.LowStock,
			CreatedAt:   l.CreatedAt.UTC(),
			UpdatedAt:   l.UpdatedAt.UTC(),
		})
	}
	return p
}

// ProductRepo implementa repository.ProductRepository sobre la colección products.
type ProductRepo struct {
	col *mongo.Collection
	b   binder
}

var _ repository.ProductRepository = (*ProductRepo)(nil)

func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	_, err := r.col.InsertOne(r.b.ctx(ctx), newProductDoc(p))
	return writeErr("crear producto", err)
}

func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	return r.findOne(r.b.ctx(ctx), bson.M{"_id": id})
}

// GetForUpdate incrementa version dentro de la transacción: otra transacción que toque el
// mismo documento falla con conflicto de escritura hasta que esta termine.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	res := r.col.FindOneAndUpdate(r.b.ctx(ctx),
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"version": 1}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var doc productDoc
	ok, err := findOne(res, &doc)
	if err != nil || !ok {
		return nil, writeErr("bloquear producto", err)
	}
	return doc.entity(), nil
}

func (r *ProductRepo) GetByOwnerAndSKU(ctx context.Context, ownerID *string, sku string) (*entity.Product, error) {
	return r.findOne(r.b.ctx(ctx), bson.M{"owner": ownerID, "sku": sku})
}

func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	_, err := r.col.UpdateByID(r.b.ctx(ctx), p.ID, bson.M{"$set": bson.M{
		"name":        p.Name,
		"description": p.Description,
		"category":    p.Category,
		"price":       toDecimal128(p.Price),
		"shops":       newListingDocs(p.Shops),
		"isActive":    p.Active,
		"updatedAt":   p.UpdatedAt,
	}})
	return writeErr("actualizar producto", err)
}

func (r *ProductRepo) SaveStock(ctx context.Context, p *entity.Product) error {
	_, err := r.col.UpdateByID(r.b.ctx(ctx), p.ID, bson.M{"$set": bson.M{
		"stock":     p.Stock,
		"minStock":  p.MinStock,
		"lowStock":  p.LowStock,
		"mainStock": mainStockDoc(p.MainStock),
		"shops":     newListingDocs(p.Shops),
		"cost":      toDecimal128(p.Cost),
		"updatedAt": p.UpdatedAt,
	}})
	return writeErr("guardar stock", err)
}

func (r *ProductRepo) List(ctx context.Context, ownerID *string, limit, offset int) ([]*entity.Product, error) {
	filter := bson.M{}
	if ownerID != nil {
		filter["owner"] = *ownerID
	}
	opts := findOptsPage(limit, offset).SetSort(bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.col.Find(r.b.ctx(ctx), filter, opts)
	if err != nil {
		return nil, writeErr("listar productos", err)
	}
	var docs []productDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, writeErr("leer productos", err)
	}
	out := make([]*entity.Product, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.entity())
	}
	return out, nil
}

func (r *ProductRepo) findOne(ctx context.Context, filter bson.M) (*entity.Product, error) {
	var doc productDoc
	ok, err := findOne(r.col.FindOne(ctx, filter), &doc)
	if err != nil || !ok {
		return nil, writeErr("leer producto", err)
	}
	return doc.entity(), nil
}
