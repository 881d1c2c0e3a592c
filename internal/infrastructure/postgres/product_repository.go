package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/pos-stock-api/internal/domain/entity"
	"github.com/jhoicas/pos-stock-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `id, owner_id, sku, name, description, category, price, cost,
	stock, min_stock, low_stock, main_stock, shops, active, created_at, updated_at`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create persiste un nuevo producto.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	mainStock, shops, err := encodeStock(p)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err = r.q.Exec(ctx, query,
		p.ID, p.OwnerID, p.SKU, p.Name, p.Description, p.Category, p.Price, p.Cost,
		p.Stock, p.MinStock, p.LowStock, mainStock, shops, p.Active, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return writeErr("insert product", err)
	}
	return nil
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
}

// GetForUpdate bloquea la fila hasta el fin de la transacción.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1 FOR UPDATE`, id)
}

// GetByOwnerAndSKU ownerID nil = catálogo global.
func (r *ProductRepo) GetByOwnerAndSKU(ctx context.Context, ownerID *string, sku string) (*entity.Product, error) {
	return r.getOne(ctx,
		`SELECT `+productColumns+` FROM products WHERE COALESCE(owner_id, '') = COALESCE($1, '') AND sku = $2`,
		ownerID, sku)
}

// Update actualiza datos de catálogo y fichas de tienda. No toca stock, mínimos ni costo.
func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	shops, err := marshalJSON(listings(p))
	if err != nil {
		return err
	}
	_, err = r.q.Exec(ctx, `
		UPDATE products SET name = $2, description = $3, category = $4, price = $5, shops = $6, active = $7, updated_at = $8
		WHERE id = $1`,
		p.ID, p.Name, p.Description, p.Category, p.Price, shops, p.Active, p.UpdatedAt,
	)
	if err != nil {
		return writeErr("update product", err)
	}
	return nil
}

// SaveStock guarda los campos que mueve el motor de inventario.
func (r *ProductRepo) SaveStock(ctx context.Context, p *entity.Product) error {
	mainStock, shops, err := encodeStock(p)
	if err != nil {
		return err
	}
	cmd, err := r.q.Exec(ctx, `
		UPDATE products SET stock = $2, min_stock = $3, low_stock = $4, main_stock = $5, shops = $6, cost = $7, updated_at = $8
		WHERE id = $1`,
		p.ID, p.Stock, p.MinStock, p.LowStock, mainStock, shops, p.Cost, p.UpdatedAt,
	)
	if err != nil {
		return writeErr("save product stock", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("save product stock: producto %s no existe", p.ID)
	}
	return nil
}

// List ownerID nil = todos los productos.
func (r *ProductRepo) List(ctx context.Context, ownerID *string, limit, offset int) ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE ($1::text IS NULL OR owner_id = $1)
		ORDER BY name, id LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, ownerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func (r *ProductRepo) getOne(ctx context.Context, query string, args ...any) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

func scanProduct(row rowScanner) (*entity.Product, error) {
	var (
		p         entity.Product
		mainStock []byte
		shops     []byte
	)
	err := row.Scan(&p.ID, &p.OwnerID, &p.SKU, &p.Name, &p.Description, &p.Category, &p.Price, &p.Cost,
		&p.Stock, &p.MinStock, &p.LowStock, &mainStock, &shops, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan product: %w", err)
	}
	if err := unmarshalJSON(mainStock, &p.MainStock); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(shops, &p.Shops); err != nil {
		return nil, err
	}
	return &p, nil
}

func encodeStock(p *entity.Product) (mainStock, shops []byte, err error) {
	if mainStock, err = marshalJSON(p.MainStock); err != nil {
		return nil, nil, err
	}
	if shops, err = marshalJSON(listings(p)); err != nil {
		return nil, nil, err
	}
	return mainStock, shops, nil
}

func listings(p *entity.Product) []entity.ShopListing {
	if p.Shops == nil {
		return []entity.ShopListing{}
	}
	return p.Shops
}
