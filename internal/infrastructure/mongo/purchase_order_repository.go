package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jhoicas/pos-stock-api/internal/domain"
	"github.com/jhoicas/pos-stock-api/internal/domain/entity"
	"github.com/jhoicas/pos-stock-api/internal/domain/repository"
)

type purchaseOrderDoc struct {
	ID           string               `bson:"_id"`
	PONumber     string               `bson:"poNumber"`
	SupplierID   string               `bson:"supplier"`
	Items        []poItemDoc          `bson:"items"`
	Subtotal     primitive.Decimal128 `bson:"subtotal"`
	Tax          primitive.Decimal128 `bson:"tax"`
	Total        primitive.Decimal128 `bson:"total"`
	Status       string               `bson:"status"`
	OwnerID      *string              `bson:"owner"`
	ShopID       *string              `bson:"shop"`
	OrderedBy    string               `bson:"orderedBy"`
	OrderDate    time.Time            `bson:"orderDate"`
	ReceivedDate *time.Time           `bson:"receivedDate,omitempty"`
	Notes        string               `bson:"notes,omitempty"`
	CreatedAt    time.Time            `bson:"createdAt"`
	UpdatedAt    time.Time            `bson:"updatedAt"`
}

type poItemDoc struct {
	ProductID string               `bson:"product"`
	Name      string               `bson:"name"`
	Quantity  int                  `bson:"quantity"`
	UnitCost  primitive.Decimal128 `bson:"unitCost"`
	Total     primitive.Decimal128 `bson:"total"`
}

func newPurchaseOrderDoc(po *entity.PurchaseOrder) purchaseOrderDoc {
	items := make([]poItemDoc, 0, len(po.Items))
	for _, it := range po.Items {
		items = append(items, poItemDoc{
			ProductID: it.ProductID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitCost:  toDecimal128(it.UnitCost),
			Total:     toDecimal128(it.Total),
		})
	}
	return purchaseOrderDoc{
		ID:           po.ID,
		PONumber:     po.PONumber,
		SupplierID:   po.SupplierID,
		Items:        items,
		Subtotal:     toDecimal128(po.Subtotal),
		Tax:          toDecimal128(po.Tax),
		Total:        toDecimal128(po.Total),
		Status:       po.Status,
		OwnerID:      po.OwnerID,
		ShopID:       po.ShopID,
		OrderedBy:    po.OrderedBy,
		OrderDate:    po.OrderDate,
		ReceivedDate: po.ReceivedDate,
		Notes:        po.Notes,
		CreatedAt:    po.CreatedAt,
		UpdatedAt:    po.UpdatedAt,
	}
}

func (d purchaseOrderDoc) entity() *entity.PurchaseOrder {
	po := &entity.PurchaseOrder{
		ID:         d.ID,
		PONumber:   d.PONumber,
		SupplierID: d.SupplierID,
		Subtotal:   fromDecimal128(d.Subtotal),
		Tax:        fromDecimal128(d.Tax),
		Total:      fromDecimal128(d.Total),
		Status:     d.Status,
		OwnerID:    d.OwnerID,
		ShopID:     d.ShopID,
		OrderedBy:  d.OrderedBy,
		OrderDate:  d.OrderDate.UTC(),
		Notes:      d.Notes,
		CreatedAt:  d.CreatedAt.UTC(),
		UpdatedAt:  d.UpdatedAt.UTC(),
	}
	if d.ReceivedDate != nil {
		t := d.ReceivedDate.UTC()
		po.ReceivedDate = &t
	}
	for _, it := range d.Items {
		po.Items = append(po.Items, entity.PurchaseOrderItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitCost:  fromDecimal128(it.UnitCost),
			Total:     fromDecimal128(it.Total),
		})
	}
	return po
}

var openPOStatuses = bson.A{entity.POStatusPending, entity.POStatusOrdered}

// PurchaseOrderRepo implementa repository.PurchaseOrderRepository.
type PurchaseOrderRepo struct {
	col *mongo.Collection
	b   binder
}

var _ repository.PurchaseOrderRepository = (*PurchaseOrderRepo)(nil)

func (r *PurchaseOrderRepo) Create(ctx context.Context, po *entity.PurchaseOrder) error {
	_, err := r.col.InsertOne(r.b.ctx(ctx), newPurchaseOrderDoc(po))
	return writeErr("crear orden de compra", err)
}

func (r *PurchaseOrderRepo) GetByID(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	var doc purchaseOrderDoc
	ok, err := findOne(r.col.FindOne(r.b.ctx(ctx), bson.M{"_id": id}), &doc)
	if err != nil || !ok {
		return nil, writeErr("leer orden de compra", err)
	}
	return doc.entity(), nil
}

// GetForUpdate igual que en productos: el $inc de version hace que otra transacción sobre la
// misma orden falle con conflicto de escritura.
func (r *PurchaseOrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	res := r.col.FindOneAndUpdate(r.b.ctx(ctx),
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"version": 1}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var doc purchaseOrderDoc
	ok, err := findOne(res, &doc)
	if err != nil || !ok {
		return nil, writeErr("bloquear orden de compra", err)
	}
	return doc.entity(), nil
}

func (r *PurchaseOrderRepo) UpdateStatus(ctx context.Context, po *entity.PurchaseOrder) error {
	res, err := r.col.UpdateOne(r.b.ctx(ctx),
		bson.M{"_id": po.ID, "status": bson.M{"$in": openPOStatuses}},
		bson.M{"$set": bson.M{
			"status":       po.Status,
			"receivedDate": po.ReceivedDate,
			"updatedAt":    po.UpdatedAt,
		}})
	if err != nil {
		return writeErr("actualizar orden de compra", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: la orden %s ya no admite cambios de estado", domain.ErrConflict, po.PONumber)
	}
	return nil
}
