package sales

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-stock-api/internal/application/dto"
	"github.com/jhoicas/pos-stock-api/internal/application/inventory"
	"github.com/jhoicas/pos-stock-api/internal/application/numbering"
	"github.com/jhoicas/pos-stock-api/internal/domain"
	"github.com/jhoicas/pos-stock-api/internal/domain/entity"
	"github.com/jhoicas/pos-stock-api/internal/domain/repository"
)

// maxNumberAttempts reintentos si el número de venta ya existe.
const maxNumberAttempts = 3

var hundred = decimal.NewFromInt(100)

// UseCase registra y reembolsa ventas descontando o devolviendo stock en una sola unidad de trabajo.
type UseCase struct {
	ledger   *inventory.Ledger
	sales    repository.SaleRepository
	numbers  NumberGenerator
	receipts ReceiptGenerator
	log      zerolog.Logger
}

// NewUseCase construye el caso de uso. sales se usa solo para lecturas fuera de transacción.
func NewUseCase(
	ledger *inventory.Ledger,
	sales repository.SaleRepository,
	numbers NumberGenerator,
	receipts ReceiptGenerator,
	log zerolog.Logger,
) *UseCase {
	return &UseCase{
		ledger:   ledger,
		sales:    sales,
		numbers:  numbers,
		receipts: receipts,
		log:      log,
	}
}

// CreateSale crea la venta en estado completed y registra una salida (Sale) por línea.
// Si alguna línea falla no queda nada escrito.
func (uc *UseCase) CreateSale(ctx context.Context, cashierID string, in dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	if err := validateSale(in); err != nil {
		return nil, err
	}
	method := in.PaymentMethod
	if method == "" {
		method = entity.PaymentMethodCash
	}

	productIDs := make([]string, 0, len(in.Items))
	for _, item := range in.Items {
		productIDs = append(productIDs, item.ProductID)
	}

	var sale *entity.Sale
	var err error
	for attempt := 1; attempt <= maxNumberAttempts; attempt++ {
		sale, err = uc.createOnce(ctx, cashierID, method, productIDs, in)
		if err == nil || !errors.Is(err, domain.ErrDuplicate) {
			break
		}
		uc.log.Warn().Int("attempt", attempt).Msg("número de venta repetido, reintentando")
	}
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("sale_number", sale.SaleNumber).
		Str("cashier_id", cashierID).
		Str("total", sale.Total.StringFixed(2)).
		Msg("venta registrada")
	return dto.NewSaleResponse(sale), nil
}

func (uc *UseCase) createOnce(ctx context.Context, cashierID, method string, productIDs []string, in dto.CreateSaleRequest) (*entity.Sale, error) {
	var sale *entity.Sale
	err := uc.ledger.Run(ctx, productIDs, func(u *inventory.Unit) error {
		number := uc.numbers.Next(numbering.PrefixSale)
		items := make([]entity.SaleItem, 0, len(in.Items))
		subtotal := decimal.Zero
		for _, line := range in.Items {
			product, _, err := u.Apply(inventory.StockChange{
				ProductID: line.ProductID,
				Delta:     -line.Quantity,
				Type:      entity.MovementTypeOut,
				Reason:    entity.ReasonSale,
				ActorID:   cashierID,
				ShopID:    in.ShopID,
				Reference: number,
			})
			if err != nil {
				return err
			}
			if !product.Active {
				return fmt.Errorf("%w: el producto %s no está activo", domain.ErrInvalidInput, product.Name)
			}
			price := unitPrice(product, in.ShopID, line.Price)
			total := price.Mul(decimal.NewFromInt(int64(line.Quantity)))
			subtotal = subtotal.Add(total)
			items = append(items, entity.SaleItem{
				ProductID: product.ID,
				Name:      product.Name,
				Price:     price,
				Quantity:  line.Quantity,
				Total:     total,
			})
		}

		tax := subtotal.Mul(in.TaxRate).Div(hundred).Round(2)
		gross := subtotal.Add(tax)
		if in.Discount.GreaterThan(gross) {
			return fmt.Errorf("%w: el descuento supera el total", domain.ErrInvalidInput)
		}
		total := gross.Sub(in.Discount)
		paid := total
		if in.AmountPaid != nil {
			paid = *in.AmountPaid
		}
		if paid.LessThan(total) {
			return fmt.Errorf("%w: monto pagado %s menor al total %s", domain.ErrInvalidInput, paid.StringFixed(2), total.StringFixed(2))
		}

		sale = &entity.Sale{
			ID:            uuid.New().String(),
			SaleNumber:    number,
			CashierID:     cashierID,
			ShopID:        in.ShopID,
			Items:         items,
			Subtotal:      subtotal,
			Tax:           tax,
			Discount:      in.Discount,
			Total:         total,
			PaymentMethod: method,
			AmountPaid:    paid,
			Change:        paid.Sub(total),
			Status:        entity.SaleStatusCompleted,
			CreatedAt:     u.Now(),
		}
		return u.Repos().Sales.Create(ctx, sale)
	})
	return sale, err
}

// RefundSale marca la venta como refunded y devuelve al stock cada línea (Refund).
func (uc *UseCase) RefundSale(ctx context.Context, saleID, actorID string) (*dto.SaleResponse, error) {
	current, err := uc.sales.GetByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, fmt.Errorf("%w: venta %s", domain.ErrNotFound, saleID)
	}
	if current.Status == entity.SaleStatusRefunded {
		return nil, domain.ErrAlreadyRefunded
	}

	productIDs := make([]string, 0, len(current.Items))
	for _, item := range current.Items {
		productIDs = append(productIDs, item.ProductID)
	}

	var sale *entity.Sale
	err = uc.ledger.Run(ctx, productIDs, func(u *inventory.Unit) error {
		// Releer bajo bloqueo: otro reembolso pudo confirmarse entre tanto.
		s, err := u.Repos().Sales.GetForUpdate(ctx, saleID)
		if err != nil {
			return err
		}
		if s == nil {
			return fmt.Errorf("%w: venta %s", domain.ErrNotFound, saleID)
		}
		if s.Status == entity.SaleStatusRefunded {
			return domain.ErrAlreadyRefunded
		}
		for _, item := range s.Items {
			if _, _, err := u.Apply(inventory.StockChange{
				ProductID: item.ProductID,
				Delta:     item.Quantity,
				Type:      entity.MovementTypeIn,
				Reason:    entity.ReasonRefund,
				ActorID:   actorID,
				ShopID:    s.ShopID,
				Reference: s.SaleNumber,
			}); err != nil {
				return err
			}
		}
		now := u.Now()
		s.Status = entity.SaleStatusRefunded
		s.RefundedAt = &now
		if err := u.Repos().Sales.UpdateStatus(ctx, s); err != nil {
			return err
		}
		sale = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("sale_number", sale.SaleNumber).Str("actor_id", actorID).Msg("venta reembolsada")
	return dto.NewSaleResponse(sale), nil
}

// GetSale obtiene una venta por ID.
func (uc *UseCase) GetSale(ctx context.Context, saleID string) (*dto.SaleResponse, error) {
	sale, err := uc.sales.GetByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, fmt.Errorf("%w: venta %s", domain.ErrNotFound, saleID)
	}
	return dto.NewSaleResponse(sale), nil
}

// ListSales ventas de una tienda (o todas si shopID es vacío), más recientes primero.
func (uc *UseCase) ListSales(ctx context.Context, shopID string, page dto.PageRequest) (*dto.SaleListResponse, error) {
	page.DefaultPage()
	list, err := uc.sales.List(ctx, shopID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.SaleResponse, 0, len(list))
	for _, s := range list {
		items = append(items, *dto.NewSaleResponse(s))
	}
	return &dto.SaleListResponse{
		Items: items,
		Page:  page.Response(len(items)),
	}, nil
}

// Receipt genera el comprobante PDF. Retorna bytes y nombre de archivo sugerido.
func (uc *UseCase) Receipt(ctx context.Context, saleID string) ([]byte, string, error) {
	sale, err := uc.sales.GetByID(ctx, saleID)
	if err != nil {
		return nil, "", err
	}
	if sale == nil {
		return nil, "", fmt.Errorf("%w: venta %s", domain.ErrNotFound, saleID)
	}
	if uc.receipts == nil {
		return nil, "", errors.New("generador de comprobantes no configurado")
	}
	pdf, err := uc.receipts.GenerateReceipt(ctx, sale)
	if err != nil {
		return nil, "", fmt.Errorf("receipt: generar pdf: %w", err)
	}
	return pdf, sale.SaleNumber + ".pdf", nil
}

func validateSale(in dto.CreateSaleRequest) error {
	if len(in.Items) == 0 {
		return fmt.Errorf("%w: la venta no tiene líneas", domain.ErrInvalidInput)
	}
	for _, item := range in.Items {
		if item.ProductID == "" || item.Quantity <= 0 {
			return fmt.Errorf("%w: cada línea requiere producto y cantidad positiva", domain.ErrInvalidInput)
		}
		if item.Price != nil && item.Price.IsNegative() {
			return fmt.Errorf("%w: precio negativo", domain.ErrInvalidInput)
		}
	}
	if in.TaxRate.IsNegative() || in.Discount.IsNegative() {
		return fmt.Errorf("%w: impuesto y descuento no pueden ser negativos", domain.ErrInvalidInput)
	}
	if in.AmountPaid != nil && in.AmountPaid.IsNegative() {
		return fmt.Errorf("%w: monto pagado negativo", domain.ErrInvalidInput)
	}
	switch in.PaymentMethod {
	case "", entity.PaymentMethodCash, entity.PaymentMethodCard, entity.PaymentMethodQR:
	default:
		return fmt.Errorf("%w: método de pago %q", domain.ErrInvalidInput, in.PaymentMethod)
	}
	return nil
}

// unitPrice precio explícito de la línea, si no el de la tienda, si no el del producto.
func unitPrice(p *entity.Product, shopID string, explicit *decimal.Decimal) decimal.Decimal {
	if explicit != nil {
		return *explicit
	}
	if shopID != "" {
		if l := p.Listing(shopID); l != nil && l.CustomPrice != nil {
			return *l.CustomPrice
		}
	}
	return p.Price
}
