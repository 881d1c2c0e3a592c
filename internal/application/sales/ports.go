package sales

import (
	"context"

	"github.com/jhoicas/pos-stock-api/internal/domain/entity"
)

// NumberGenerator genera números de venta legibles.
type NumberGenerator interface {
	Next(prefix string) string
}

// ReceiptGenerator representa gráficamente (PDF) una venta.
type ReceiptGenerator interface {
	GenerateReceipt(ctx context.Context, sale *entity.Sale) ([]byte, error)
}
