// Package pdf genera el comprobante de venta en PDF.
//
// Layout (ancho A4, comprobante de caja):
//
//	┌───────────────────────────────────────────────┐
//	│  Tienda                     │  SALE-xxxxxxxx  │
//	│  Fecha · Cajero · Medio de pago               │
//	│  ───────────────────────────────────────────  │
//	│  Cant | Producto | P.Unit | Total             │
//	│  ───────────────────────────────────────────  │
//	│  Subtotal / Impuesto / Descuento / TOTAL      │
//	│  Pagado / Cambio                              │
//	│  QR con el número de venta                    │
//	└───────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jhoicas/pos-stock-api/internal/application/sales"
	"github.com/jhoicas/pos-stock-api/internal/domain/entity"
)

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorRed     = &props.Color{Red: 170, Green: 30, Blue: 30}
)

var paymentLabels = map[string]string{
	entity.PaymentMethodCash: "Efectivo",
	entity.PaymentMethodCard: "Tarjeta",
	entity.PaymentMethodQR:   "QR",
}

// ReceiptGenerator implementa sales.ReceiptGenerator con Maroto v2.
type ReceiptGenerator struct {
	storeName string
	printer   *message.Printer
}

var _ sales.ReceiptGenerator = (*ReceiptGenerator)(nil)

// NewReceiptGenerator locale: etiqueta BCP 47 para el formato de importes ("es", "en-US"...).
func NewReceiptGenerator(storeName, locale string) *ReceiptGenerator {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.Spanish
	}
	return &ReceiptGenerator{storeName: storeName, printer: message.NewPrinter(tag)}
}

// GenerateReceipt genera el PDF y devuelve sus bytes.
func (g *ReceiptGenerator) GenerateReceipt(_ context.Context, sale *entity.Sale) ([]byte, error) {
	if sale == nil {
		return nil, fmt.Errorf("pdf: venta nula")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Comprobante "+sale.SaleNumber, true).
		WithAuthor(g.storeName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(g.headerRow(sale))
	m.AddRows(g.infoRow(sale))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(tableHeaderRow())
	m.AddRows(g.itemRows(sale.Items)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(g.totalRows(sale)...)

	m.AddRows(line.NewRow(3))
	m.AddRows(row.New(40).Add(
		col.New(4).Add(code.NewQr(sale.SaleNumber, props.Rect{Percent: 90, Center: true})),
		col.New(8).Add(text.New("Conserve este comprobante para cambios o devoluciones.", props.Text{
			Size: 8, Top: 15, Left: 3, Color: colorGray,
		})),
	))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar comprobante: %w", err)
	}
	return doc.GetBytes(), nil
}

func (g *ReceiptGenerator) headerRow(sale *entity.Sale) core.Row {
	right := []core.Component{
		text.New("COMPROBANTE DE VENTA", props.Text{
			Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
		}),
		text.New(sale.SaleNumber, props.Text{
			Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
		}),
	}
	if sale.Status == entity.SaleStatusRefunded {
		right = append(right, text.New("REEMBOLSADA", props.Text{
			Style: fontstyle.Bold, Size: 9, Align: align.Right, Color: colorRed, Top: 13,
		}))
	}
	return row.New(18).Add(
		col.New(7).Add(text.New(g.storeName, props.Text{
			Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
		})),
		col.New(5).Add(right...),
	)
}

func (g *ReceiptGenerator) infoRow(sale *entity.Sale) core.Row {
	method := paymentLabels[sale.PaymentMethod]
	if method == "" {
		method = sale.PaymentMethod
	}
	return row.New(8).Add(col.New(12).Add(text.New(
		fmt.Sprintf("Fecha: %s   |   Cajero: %s   |   Pago: %s",
			sale.CreatedAt.Format("02/01/2006 15:04"), sale.CashierID, method),
		props.Text{Size: 8, Top: 2, Color: colorGray},
	)))
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Cant.", 1, align.Center),
		h("Producto", 6, align.Left),
		h("Precio Unit.", 2, align.Right),
		h("Total", 3, align.Right),
	)
}

func (g *ReceiptGenerator) itemRows(items []entity.SaleItem) []core.Row {
	rows := make([]core.Row, 0, len(items))
	for _, it := range items {
		rows = append(rows, row.New(7).Add(
			col.New(1).Add(text.New(fmt.Sprint(it.Quantity), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(6).Add(text.New(it.Name, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(g.money(it.Price), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(3).Add(text.New(g.money(it.Total), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return rows
}

func (g *ReceiptGenerator) totalRows(sale *entity.Sale) []core.Row {
	total := func(label, value string, grand bool) core.Row {
		style := props.Text{Size: 9, Align: align.Right, Right: 1}
		if grand {
			style = props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Right: 1, Color: colorPrimary}
		}
		labelStyle := style
		labelStyle.Style = fontstyle.Bold
		return row.New(6).Add(
			col.New(6),
			col.New(3).Add(text.New(label, labelStyle)),
			col.New(3).Add(text.New(value, style)),
		)
	}
	rows := []core.Row{
		total("Subtotal:", g.money(sale.Subtotal), false),
		total("Impuesto:", g.money(sale.Tax), false),
	}
	if sale.Discount.IsPositive() {
		rows = append(rows, total("Descuento:", "-"+g.money(sale.Discount), false))
	}
	rows = append(rows,
		total("TOTAL:", g.money(sale.Total), true),
		total("Pagado:", g.money(sale.AmountPaid), false),
		total("Cambio:", g.money(sale.Change), false),
	)
	return rows
}

// money formatea con separadores de miles y dos decimales según el locale.
func (g *ReceiptGenerator) money(d decimal.Decimal) string {
	return g.printer.Sprintf("$%.2f", d.Round(2).InexactFloat64())
}
