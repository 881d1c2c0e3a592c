package inventory_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-stock-api/internal/domain"
	"github.com/jhoicas/pos-stock-api/internal/domain/entity"
	"github.com/jhoicas/pos-stock-api/internal/domain/inventory"
)

func TestNextStock(t *testing.T) {
	next, err := inventory.NextStock(10, -4)
	require.NoError(t, err)
	assert.Equal(t, 6, next)

	next, err = inventory.NextStock(3, -5)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 3, next, "en error se conserva el stock previo")

	next, err = inventory.NextStock(3, -3)
	require.NoError(t, err)
	assert.Equal(t, 0, next)
}

func TestValidateDelta(t *testing.T) {
	cases := []struct {
		name    string
		typ     string
		delta   int
		wantErr bool
	}{
		{"in positivo", entity.MovementTypeIn, 5, false},
		{"in negativo", entity.MovementTypeIn, -5, true},
		{"out negativo", entity.MovementTypeOut, -2, false},
		{"out positivo", entity.MovementTypeOut, 2, true},
		{"ajuste positivo", entity.MovementTypeAdjustment, 7, false},
		{"ajuste negativo", entity.MovementTypeAdjustment, -7, false},
		{"delta cero", entity.MovementTypeAdjustment, 0, true},
		{"tipo desconocido", "transfer", 1, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := inventory.ValidateDelta(tc.typ, tc.delta)
			if tc.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidInput)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestSetStock_SincronizaMainStock(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	p := &entity.Product{Stock: 20, MinStock: 5}

	inventory.SetStock(p, 5, now)

	assert.Equal(t, 5, p.Stock)
	assert.True(t, p.LowStock)
	assert.Equal(t, entity.MainStock{Quantity: 5, MinStock: 5, LowStock: true}, p.MainStock)
	assert.Equal(t, now, p.UpdatedAt)

	p.MinStock = 2
	inventory.RefreshFlags(p)
	assert.False(t, p.LowStock)
	assert.False(t, p.MainStock.LowStock)
}

func TestSetListingStock_MinimoPorDefecto(t *testing.T) {
	l := &entity.ShopListing{ShopID: "shop-1"}

	inventory.SetListingStock(l, 0, time.Now())

	require.NotNil(t, l.Stock)
	require.NotNil(t, l.MinStock)
	require.NotNil(t, l.LowStock)
	assert.Equal(t, 0, *l.Stock)
	assert.Equal(t, 0, *l.MinStock)
	assert.True(t, *l.LowStock)
}

func TestCostCalculator(t *testing.T) {
	// 10 u a 100 + 10 u a 200 => 150
	got := inventory.CostCalculator(10, decimal.NewFromInt(100), 10, decimal.NewFromInt(200))
	assert.True(t, got.Equal(decimal.NewFromInt(150)), got.String())

	// sin stock previo manda el costo de entrada
	got = inventory.CostCalculator(-3, decimal.NewFromInt(100), 4, decimal.RequireFromString("12.5"))
	assert.True(t, got.Equal(decimal.RequireFromString("12.5")), got.String())

	got = inventory.CostCalculator(0, decimal.Zero, 0, decimal.NewFromInt(9))
	assert.True(t, got.IsZero())
}
