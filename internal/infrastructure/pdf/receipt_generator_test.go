package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-stock-api/internal/domain/entity"
)

func sampleSale() *entity.Sale {
	return &entity.Sale{
		ID:         "s-1",
		SaleNumber: "SALE-00012345",
		CashierID:  "cajero-1",
		Items: []entity.SaleItem{
			{ProductID: "p-1", Name: "Café", Price: decimal.NewFromInt(1000), Quantity: 2, Total: decimal.NewFromInt(2000)},
			{ProductID: "p-2", Name: "Pan", Price: decimal.NewFromInt(400), Quantity: 2, Total: decimal.NewFromInt(800)},
		},
		Subtotal:      decimal.NewFromInt(2800),
		Tax:           decimal.NewFromInt(280),
		Discount:      decimal.NewFromInt(80),
		Total:         decimal.NewFromInt(3000),
		PaymentMethod: entity.PaymentMethodCash,
		AmountPaid:    decimal.NewFromInt(5000),
		Change:        decimal.NewFromInt(2000),
		Status:        entity.SaleStatusCompleted,
		CreatedAt:     time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC),
	}
}

func TestGenerateReceipt(t *testing.T) {
	g := NewReceiptGenerator("Tienda Centro", "es")

	doc, err := g.GenerateReceipt(context.Background(), sampleSale())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc, []byte("%PDF")))
}

func TestGenerateReceipt_Reembolsada(t *testing.T) {
	g := NewReceiptGenerator("Tienda Centro", "es")
	sale := sampleSale()
	sale.Status = entity.SaleStatusRefunded

	doc, err := g.GenerateReceipt(context.Background(), sale)
	require.NoError(t, err)
	assert.NotEmpty(t, doc)
}

func TestGenerateReceipt_Nula(t *testing.T) {
	_, err := NewReceiptGenerator("x", "es").GenerateReceipt(context.Background(), nil)
	assert.Error(t, err)
}

func TestMoney(t *testing.T) {
	en := NewReceiptGenerator("x", "en-US")
	assert.Equal(t, "$1,234,567.50", en.money(decimal.RequireFromString("1234567.5")))

	bad := NewReceiptGenerator("x", "???")
	assert.NotEmpty(t, bad.money(decimal.NewFromInt(10)))
}
