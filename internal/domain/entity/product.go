package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto vendible en una o varias tiendas.
// OwnerID nil = producto global (administrador). Stock es la existencia global;
// MainStock la replica y debe coincidir con Stock después de cada movimiento.
type Product struct {
	ID          string
	OwnerID     *string
	SKU         string // único por propietario
	Name        string
	Description string
	Category    string
	Price       decimal.Decimal
	Cost        decimal.Decimal // costo promedio ponderado
	Stock       int
	MinStock    int
	LowStock    bool
	MainStock   MainStock
	Shops       []ShopListing
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// MainStock copia persistida de {Stock, MinStock, LowStock}.
type MainStock struct {
	Quantity int  `json:"quantity"`
	MinStock int  `json:"min_stock"`
	LowStock bool `json:"low_stock"`
}

// ShopListing visibilidad, precio y (opcionalmente) stock propio de un producto en una tienda.
type ShopListing struct {
	ShopID      string           `json:"shop_id"`
	IsVisible   bool             `json:"is_visible"`
	CustomPrice *decimal.Decimal `json:"custom_price,omitempty"`
	Stock       *int             `json:"stock,omitempty"`
	MinStock    *int             `json:"min_stock,omitempty"`
	LowStock    *bool            `json:"low_stock,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// Listing devuelve la ficha de la tienda indicada o nil.
func (p *Product) Listing(shopID string) *ShopListing {
	for i := range p.Shops {
		if p.Shops[i].ShopID == shopID {
			return &p.Shops[i]
		}
	}
	return nil
}
