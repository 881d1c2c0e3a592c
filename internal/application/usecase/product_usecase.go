package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/pos-stock-api/internal/application/dto"
	"github.com/jhoicas/pos-stock-api/internal/application/inventory"
	"github.com/jhoicas/pos-stock-api/internal/domain"
	"github.com/jhoicas/pos-stock-api/internal/domain/entity"
	domaininv "github.com/jhoicas/pos-stock-api/internal/domain/inventory"
	"github.com/jhoicas/pos-stock-api/internal/domain/repository"
)

// DefaultMinStock mínimo global cuando la petición no lo indica.
const DefaultMinStock = 10

// ProductUseCase alta y edición de productos. El stock solo cambia a través del motor de inventario.
type ProductUseCase struct {
	repo   repository.ProductRepository
	ledger *inventory.Ledger
}

// NewProductUseCase repo se usa para lecturas fuera de transacción.
func NewProductUseCase(repo repository.ProductRepository, ledger *inventory.Ledger) *ProductUseCase {
	return &ProductUseCase{repo: repo, ledger: ledger}
}

// Create crea un producto. ownerID nil = catálogo global. El stock inicial entra como
// movimiento "Initial stock" en la misma unidad de trabajo.
func (uc *ProductUseCase) Create(ctx context.Context, actorID string, ownerID *string, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if err := validateCreate(in); err != nil {
		return nil, err
	}
	existing, err := uc.repo.GetByOwnerAndSKU(ctx, ownerID, in.SKU)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: sku %s", domain.ErrDuplicate, in.SKU)
	}

	product := newProduct(ownerID, in)
	err = uc.ledger.Run(ctx, []string{product.ID}, func(u *inventory.Unit) error {
		product.CreatedAt = u.Now()
		product.UpdatedAt = u.Now()
		if err := u.Repos().Products.Create(ctx, product); err != nil {
			return err
		}
		if in.InitialStock == 0 {
			return nil
		}
		p, _, err := u.Apply(inventory.StockChange{
			ProductID: product.ID,
			Delta:     in.InitialStock,
			Type:      entity.MovementTypeIn,
			Reason:    entity.ReasonInitialStock,
			ActorID:   actorID,
		})
		if err != nil {
			return err
		}
		product = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto.NewProductResponse(product), nil
}

// CreateForShop crea el producto del propietario (o reutiliza el existente con el mismo SKU)
// y lo publica en la tienda. InitialStock se registra en el stock propio de la tienda.
func (uc *ProductUseCase) CreateForShop(ctx context.Context, actorID string, ownerID *string, shopID string, in dto.CreateProductForShopRequest) (*dto.ProductResponse, error) {
	if shopID == "" {
		return nil, fmt.Errorf("%w: tienda requerida", domain.ErrInvalidInput)
	}
	if err := validateCreate(in.CreateProductRequest); err != nil {
		return nil, err
	}
	if in.CustomPrice != nil && in.CustomPrice.IsNegative() {
		return nil, fmt.Errorf("%w: precio de tienda negativo", domain.ErrInvalidInput)
	}
	existing, err := uc.repo.GetByOwnerAndSKU(ctx, ownerID, in.SKU)
	if err != nil {
		return nil, err
	}

	listingMin := 0
	if in.MinStock != nil {
		listingMin = *in.MinStock
	}
	price := in.Price
	if in.CustomPrice != nil {
		price = *in.CustomPrice
	}

	var productID string
	if existing != nil {
		productID = existing.ID
	} else {
		productID = uuid.New().String()
	}

	var product *entity.Product
	err = uc.ledger.Run(ctx, []string{productID}, func(u *inventory.Unit) error {
		now := u.Now()
		current := 0
		if existing == nil {
			p := newProduct(ownerID, in.CreateProductRequest)
			p.ID = productID
			p.CreatedAt = now
			p.UpdatedAt = now
			if err := u.Repos().Products.Create(ctx, p); err != nil {
				return err
			}
			product = p
		} else {
			p, err := u.Repos().Products.GetForUpdate(ctx, productID)
			if err != nil {
				return err
			}
			if p == nil {
				return fmt.Errorf("%w: producto %s", domain.ErrNotFound, productID)
			}
			product = p
		}

		listing := product.Listing(shopID)
		if listing == nil {
			product.Shops = append(product.Shops, entity.ShopListing{ShopID: shopID, CreatedAt: now})
			listing = &product.Shops[len(product.Shops)-1]
		} else if listing.Stock != nil {
			current = *listing.Stock
		}
		listing.IsVisible = true
		listing.CustomPrice = &price
		listing.MinStock = &listingMin
		domaininv.SetListingStock(listing, current, now)
		product.UpdatedAt = now
		if err := u.Repos().Products.Update(ctx, product); err != nil {
			return err
		}

		delta := in.InitialStock - current
		if delta == 0 {
			return nil
		}
		p, _, err := u.Apply(inventory.StockChange{
			ProductID:  productID,
			Delta:      delta,
			Type:       domaininv.MovementTypeFor(delta),
			Reason:     entity.ReasonInitialShopStock,
			ActorID:    actorID,
			ShopID:     shopID,
			ShopScoped: true,
		})
		if err != nil {
			return err
		}
		product = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto.NewProductResponse(product), nil
}

// UpdateForShop actualiza datos del producto y su ficha en la tienda. Si Stock cambia, el motor
// registra la diferencia sobre el stock global ("Stock update", tienda anotada en el movimiento).
// Un propietario solo puede editar sus productos; ownerID nil = administrador.
func (uc *ProductUseCase) UpdateForShop(ctx context.Context, actorID string, ownerID *string, shopID, productID string, in dto.UpdateProductForShopRequest) (*dto.ProductResponse, error) {
	if shopID == "" || productID == "" {
		return nil, fmt.Errorf("%w: tienda y producto requeridos", domain.ErrInvalidInput)
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return nil, fmt.Errorf("%w: nombre vacío", domain.ErrInvalidInput)
	}
	if (in.Price != nil && in.Price.IsNegative()) || (in.CustomPrice != nil && in.CustomPrice.IsNegative()) {
		return nil, fmt.Errorf("%w: precio negativo", domain.ErrInvalidInput)
	}
	if (in.Stock != nil && *in.Stock < 0) || (in.MinStock != nil && *in.MinStock < 0) {
		return nil, fmt.Errorf("%w: stock y mínimo no pueden ser negativos", domain.ErrInvalidInput)
	}

	var product *entity.Product
	err := uc.ledger.Run(ctx, []string{productID}, func(u *inventory.Unit) error {
		p, err := u.Repos().Products.GetForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		if p == nil || (ownerID != nil && (p.OwnerID == nil || *p.OwnerID != *ownerID)) {
			return fmt.Errorf("%w: producto %s", domain.ErrNotFound, productID)
		}
		now := u.Now()
		applyProductEdits(p, in)

		listing := p.Listing(shopID)
		if listing == nil {
			p.Shops = append(p.Shops, entity.ShopListing{ShopID: shopID, IsVisible: true, CreatedAt: now})
			listing = &p.Shops[len(p.Shops)-1]
		}
		if in.IsVisible != nil {
			listing.IsVisible = *in.IsVisible
		}
		switch {
		case in.CustomPrice != nil:
			cp := *in.CustomPrice
			listing.CustomPrice = &cp
		case in.Price != nil:
			cp := *in.Price
			listing.CustomPrice = &cp
		}
		listing.UpdatedAt = now
		p.UpdatedAt = now
		if err := u.Repos().Products.Update(ctx, p); err != nil {
			return err
		}
		if in.MinStock != nil && *in.MinStock != p.MinStock {
			p.MinStock = *in.MinStock
			domaininv.RefreshFlags(p)
			if err := u.Repos().Products.SaveStock(ctx, p); err != nil {
				return err
			}
		}
		product = p

		if in.Stock == nil || *in.Stock == p.Stock {
			return nil
		}
		delta := *in.Stock - p.Stock
		updated, _, err := u.Apply(inventory.StockChange{
			ProductID: productID,
			Delta:     delta,
			Type:      domaininv.MovementTypeFor(delta),
			Reason:    entity.ReasonStockUpdate,
			ActorID:   actorID,
			ShopID:    shopID,
		})
		if err != nil {
			return err
		}
		product = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto.NewProductResponse(product), nil
}

// GetByID obtiene un producto por ID.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, id)
	}
	return dto.NewProductResponse(product), nil
}

// List lista productos con paginación. ownerID nil = todos.
func (uc *ProductUseCase) List(ctx context.Context, ownerID *string, page dto.PageRequest) (*dto.ProductListResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.List(ctx, ownerID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *dto.NewProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  page.Response(len(items)),
	}, nil
}

func validateCreate(in dto.CreateProductRequest) error {
	if strings.TrimSpace(in.SKU) == "" || strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: sku y nombre son obligatorios", domain.ErrInvalidInput)
	}
	if in.Price.IsNegative() || in.Cost.IsNegative() {
		return fmt.Errorf("%w: precio y costo no pueden ser negativos", domain.ErrInvalidInput)
	}
	if in.InitialStock < 0 || (in.MinStock != nil && *in.MinStock < 0) {
		return fmt.Errorf("%w: stock inicial y mínimo no pueden ser negativos", domain.ErrInvalidInput)
	}
	return nil
}

// newProduct producto con stock 0; el stock inicial lo aplica el motor.
func newProduct(ownerID *string, in dto.CreateProductRequest) *entity.Product {
	minStock := DefaultMinStock
	if in.MinStock != nil {
		minStock = *in.MinStock
	}
	now := time.Now().UTC()
	p := &entity.Product{
		ID:          uuid.New().String(),
		OwnerID:     ownerID,
		SKU:         strings.TrimSpace(in.SKU),
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Category:    in.Category,
		Price:       in.Price,
		Cost:        in.Cost,
		MinStock:    minStock,
		Shops:       []entity.ShopListing{},
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	domaininv.RefreshFlags(p)
	return p
}

func applyProductEdits(p *entity.Product, in dto.UpdateProductForShopRequest) {
	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Category != nil {
		p.Category = *in.Category
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Active != nil {
		p.Active = *in.Active
	}
}
