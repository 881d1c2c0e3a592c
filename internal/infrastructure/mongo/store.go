package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/jhoicas/pos-stock-api/internal/domain"
	"github.com/jhoicas/pos-stock-api/internal/domain/repository"
	"github.com/jhoicas/pos-stock-api/pkg/config"
)

// Colecciones.
const (
	colProducts       = "products"
	colMovements      = "stock_movements"
	colSales          = "sales"
	colPurchaseOrders = "purchase_orders"
	colSuppliers      = "suppliers"
)

// Connect abre el cliente y verifica el primario. Las transacciones requieren replica set.
func Connect(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("mongo: conectar: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo: ping: %w", err)
	}
	return client, nil
}

// Store adaptador de persistencia sobre MongoDB.
// Run implementa inventory.TxRunner con una transacción multi-documento por sesión.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewStore usa la base dbName del cliente.
func NewStore(client *mongo.Client, dbName string) *Store {
	return &Store{client: client, db: client.Database(dbName)}
}

// EnsureIndexes crea los índices únicos y de consulta. Idempotente.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	specs := map[string][]mongo.IndexModel{
		colProducts: {
			{Keys: bson.D{{Key: "owner", Value: 1}, {Key: "sku", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "name", Value: 1}}},
		},
		colMovements: {
			{Keys: bson.D{{Key: "product", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "shop", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "reference", Value: 1}}},
		},
		colSales: {
			{Keys: bson.D{{Key: "saleNumber", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "shop", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		colPurchaseOrders: {
			{Keys: bson.D{{Key: "poNumber", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		colSuppliers: {
			{Keys: bson.D{{Key: "owner", Value: 1}, {Key: "name", Value: 1}}},
		},
	}
	for col, models := range specs {
		if _, err := s.db.Collection(col).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("mongo: índices de %s: %w", col, err)
		}
	}
	return nil
}

// Repositories repositorios fuera de transacción (lecturas).
func (s *Store) Repositories() repository.Repositories {
	return s.repositories(nil)
}

// Run ejecuta fn dentro de una transacción. Ante errores transitorios el driver puede
// reintentar fn completa, por lo que fn no debe tener efectos fuera de los repositorios.
func (s *Store) Run(ctx context.Context, fn func(repos repository.Repositories) error) error {
	sess, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("mongo: iniciar sesión: %w", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(s.repositories(sess))
	})
	return err
}

func (s *Store) repositories(sess mongo.Session) repository.Repositories {
	b := binder{sess: sess}
	return repository.Repositories{
		Products:       &ProductRepo{col: s.db.Collection(colProducts), b: b},
		Movements:      &StockMovementRepo{col: s.db.Collection(colMovements), b: b},
		Sales:          &SaleRepo{col: s.db.Collection(colSales), b: b},
		PurchaseOrders: &PurchaseOrderRepo{col: s.db.Collection(colPurchaseOrders), b: b},
		Suppliers:      &SupplierRepo{col: s.db.Collection(colSuppliers), b: b},
	}
}

// binder asocia el contexto de cada operación a la sesión de la transacción, si la hay.
type binder struct {
	sess mongo.Session
}

func (b binder) ctx(ctx context.Context) context.Context {
	if b.sess == nil {
		return ctx
	}
	return mongo.NewSessionContext(ctx, b.sess)
}

func findOptsPage(limit, offset int) *options.FindOptions {
	opts := options.Find()
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	if offset > 0 {
		opts.SetSkip(int64(offset))
	}
	return opts
}

// writeErr traduce errores del driver a errores de dominio.
func writeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %s", domain.ErrDuplicate, op)
	}
	return fmt.Errorf("mongo: %s: %w", op, err)
}

// findOne decodifica un documento; (false, nil) si no existe.
func findOne(res *mongo.SingleResult, out any) (bool, error) {
	if err := res.Decode(out); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
