package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto.
type CreateProductRequest struct {
	SKU          string          `json:"sku" validate:"required,min=1,max=100"`
	Name         string          `json:"name" validate:"required,min=1,max=200"`
	Description  string          `json:"description"`
	Category     string          `json:"category"`
	Price        decimal.Decimal `json:"price"`
	Cost         decimal.Decimal `json:"cost"`
	InitialStock int             `json:"initial_stock"`
	MinStock     *int            `json:"min_stock"` // nil = 10
}

// CreateProductForShopRequest crea el producto (o reutiliza el existente por SKU) y lo publica en una tienda.
type CreateProductForShopRequest struct {
	CreateProductRequest
	CustomPrice *decimal.Decimal `json:"custom_price"`
}

// UpdateProductForShopRequest actualización parcial de un producto y su ficha en la tienda.
type UpdateProductForShopRequest struct {
	Name        *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string          `json:"description"`
	Category    *string          `json:"category"`
	Price       *decimal.Decimal `json:"price"`
	MinStock    *int             `json:"min_stock"`
	Active      *bool            `json:"active"`
	IsVisible   *bool            `json:"is_visible"`
	CustomPrice *decimal.Decimal `json:"custom_price"`
	Stock       *int             `json:"stock"` // stock global absoluto; genera movimiento si cambia
}

// MainStockResponse réplica de stock global.
type MainStockResponse struct {
	Quantity int  `json:"quantity"`
	MinStock int  `json:"min_stock"`
	LowStock bool `json:"low_stock"`
}

// ShopListingResponse ficha del producto en una tienda.
type ShopListingResponse struct {
	ShopID      string           `json:"shop_id"`
	IsVisible   bool             `json:"is_visible"`
	CustomPrice *decimal.Decimal `json:"custom_price,omitempty"`
	Stock       *int             `json:"stock,omitempty"`
	MinStock    *int             `json:"min_stock,omitempty"`
	LowStock    *bool            `json:"low_stock,omitempty"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID          string                `json:"id"`
	OwnerID     *string               `json:"owner_id,omitempty"`
	SKU         string                `json:"sku"`
	Name        string                `json:"name"`
	Description string                `json:"description"`
	Category    string                `json:"category,omitempty"`
	Price       decimal.Decimal       `json:"price"`
	Cost        decimal.Decimal       `json:"cost"`
	Stock       int                   `json:"stock"`
	MinStock    int                   `json:"min_stock"`
	LowStock    bool                  `json:"low_stock"`
	MainStock   MainStockResponse     `json:"main_stock"`
	Shops       []ShopListingResponse `json:"shops"`
	Active      bool                  `json:"active"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
