package purchasing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-stock-api/internal/application/dto"
	"github.com/jhoicas/pos-stock-api/internal/application/inventory"
	"github.com/jhoicas/pos-stock-api/internal/application/numbering"
	"github.com/jhoicas/pos-stock-api/internal/domain"
	"github.com/jhoicas/pos-stock-api/internal/domain/entity"
	domaininv "github.com/jhoicas/pos-stock-api/internal/domain/inventory"
	"github.com/jhoicas/pos-stock-api/internal/domain/repository"
)

const maxNumberAttempts = 3

var hundred = decimal.NewFromInt(100)

// NumberGenerator genera números de orden legibles.
type NumberGenerator interface {
	Next(prefix string) string
}

// UseCase órdenes de compra: creación, cambios de estado y recepción de mercancía.
type UseCase struct {
	ledger  *inventory.Ledger
	repos   repository.Repositories
	numbers NumberGenerator
	log     zerolog.Logger
}

// NewUseCase repos son repositorios fuera de transacción (lecturas y escrituras simples).
func NewUseCase(ledger *inventory.Ledger, repos repository.Repositories, numbers NumberGenerator, log zerolog.Logger) *UseCase {
	return &UseCase{ledger: ledger, repos: repos, numbers: numbers, log: log}
}

// CreatePurchaseOrder crea la orden en estado pending. No mueve stock.
func (uc *UseCase) CreatePurchaseOrder(ctx context.Context, actorID string, ownerID *string, in dto.CreatePurchaseOrderRequest) (*dto.PurchaseOrderResponse, error) {
	if in.SupplierID == "" || len(in.Items) == 0 {
		return nil, fmt.Errorf("%w: proveedor y líneas son obligatorios", domain.ErrInvalidInput)
	}
	if in.TaxRate.IsNegative() {
		return nil, fmt.Errorf("%w: impuesto negativo", domain.ErrInvalidInput)
	}
	supplier, err := uc.repos.Suppliers.GetByID(ctx, in.SupplierID)
	if err != nil {
		return nil, err
	}
	if supplier == nil {
		return nil, fmt.Errorf("%w: proveedor %s", domain.ErrNotFound, in.SupplierID)
	}
	if !supplier.Active {
		return nil, fmt.Errorf("%w: el proveedor %s está dado de baja", domain.ErrConflict, supplier.Name)
	}

	items := make([]entity.PurchaseOrderItem, 0, len(in.Items))
	subtotal := decimal.Zero
	for _, line := range in.Items {
		if line.ProductID == "" || line.Quantity <= 0 || line.UnitCost.IsNegative() {
			return nil, fmt.Errorf("%w: cada línea requiere producto, cantidad positiva y costo no negativo", domain.ErrInvalidInput)
		}
		product, err := uc.repos.Products.GetByID(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, line.ProductID)
		}
		total := line.UnitCost.Mul(decimal.NewFromInt(int64(line.Quantity)))
		subtotal = subtotal.Add(total)
		items = append(items, entity.PurchaseOrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Quantity:  line.Quantity,
			UnitCost:  line.UnitCost,
			Total:     total,
		})
	}
	tax := subtotal.Mul(in.TaxRate).Div(hundred).Round(2)

	now := time.Now().UTC()
	po := &entity.PurchaseOrder{
		ID:         uuid.New().String(),
		SupplierID: supplier.ID,
		Items:      items,
		Subtotal:   subtotal,
		Tax:        tax,
		Total:      subtotal.Add(tax),
		Status:     entity.POStatusPending,
		OwnerID:    ownerID,
		OrderedBy:  actorID,
		OrderDate:  now,
		Notes:      in.Notes,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if in.ShopID != "" {
		shopID := in.ShopID
		po.ShopID = &shopID
	}
	for attempt := 1; attempt <= maxNumberAttempts; attempt++ {
		po.PONumber = uc.numbers.Next(numbering.PrefixPurchaseOrder)
		err = uc.repos.PurchaseOrders.Create(ctx, po)
		if err == nil || !errors.Is(err, domain.ErrDuplicate) {
			break
		}
	}
	if err != nil {
		return nil, err
	}
	return dto.NewPurchaseOrderResponse(po), nil
}

// GetPurchaseOrder obtiene una orden por ID.
func (uc *UseCase) GetPurchaseOrder(ctx context.Context, poID string) (*dto.PurchaseOrderResponse, error) {
	po, err := uc.repos.PurchaseOrders.GetByID(ctx, poID)
	if err != nil {
		return nil, err
	}
	if po == nil {
		return nil, fmt.Errorf("%w: orden %s", domain.ErrNotFound, poID)
	}
	return dto.NewPurchaseOrderResponse(po), nil
}

// UpdateStatus cambia entre pending, ordered y cancelled. received solo vía ReceivePurchaseOrder;
// órdenes recibidas o canceladas no cambian más. Corre en la misma unidad de trabajo que una
// recepción (bloqueo de los productos de la orden + lectura FOR UPDATE), así una recepción
// confirmada entre la lectura y la escritura no se pisa.
func (uc *UseCase) UpdateStatus(ctx context.Context, poID, status string) (*dto.PurchaseOrderResponse, error) {
	switch status {
	case entity.POStatusPending, entity.POStatusOrdered, entity.POStatusCancelled:
	case entity.POStatusReceived:
		return nil, fmt.Errorf("%w: use la recepción de la orden para marcarla como recibida", domain.ErrInvalidInput)
	default:
		return nil, fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, status)
	}
	current, err := uc.repos.PurchaseOrders.GetByID(ctx, poID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, fmt.Errorf("%w: orden %s", domain.ErrNotFound, poID)
	}
	if err := receivable(current); err != nil {
		return nil, err
	}

	var po *entity.PurchaseOrder
	err = uc.ledger.Run(ctx, orderProductIDs(current), func(u *inventory.Unit) error {
		o, err := u.Repos().PurchaseOrders.GetForUpdate(ctx, poID)
		if err != nil {
			return err
		}
		if o == nil {
			return fmt.Errorf("%w: orden %s", domain.ErrNotFound, poID)
		}
		if err := receivable(o); err != nil {
			return err
		}
		o.Status = status
		o.UpdatedAt = u.Now()
		if err := u.Repos().PurchaseOrders.UpdateStatus(ctx, o); err != nil {
			return err
		}
		po = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("po_number", po.PONumber).Str("status", status).Msg("estado de orden de compra actualizado")
	return dto.NewPurchaseOrderResponse(po), nil
}

// ReceivePurchaseOrder registra una entrada (Purchase Order) por línea, recalcula el costo
// promedio ponderado de cada producto y marca la orden como recibida, todo en una unidad.
func (uc *UseCase) ReceivePurchaseOrder(ctx context.Context, poID, actorID, shopID string) (*dto.PurchaseOrderResponse, error) {
	current, err := uc.repos.PurchaseOrders.GetByID(ctx, poID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, fmt.Errorf("%w: orden %s", domain.ErrNotFound, poID)
	}
	if err := receivable(current); err != nil {
		return nil, err
	}
	if shopID == "" && current.ShopID != nil {
		shopID = *current.ShopID
	}

	var po *entity.PurchaseOrder
	err = uc.ledger.Run(ctx, orderProductIDs(current), func(u *inventory.Unit) error {
		o, err := u.Repos().PurchaseOrders.GetForUpdate(ctx, poID)
		if err != nil {
			return err
		}
		if o == nil {
			return fmt.Errorf("%w: orden %s", domain.ErrNotFound, poID)
		}
		if err := receivable(o); err != nil {
			return err
		}
		for _, item := range o.Items {
			product, _, err := u.Apply(inventory.StockChange{
				ProductID: item.ProductID,
				Delta:     item.Quantity,
				Type:      entity.MovementTypeIn,
				Reason:    entity.ReasonPurchaseOrder,
				ActorID:   actorID,
				ShopID:    shopID,
				Reference: o.PONumber,
			})
			if err != nil {
				return err
			}
			product.Cost = domaininv.CostCalculator(product.Stock-item.Quantity, product.Cost, item.Quantity, item.UnitCost)
			if err := u.Repos().Products.SaveStock(ctx, product); err != nil {
				return err
			}
		}
		now := u.Now()
		o.Status = entity.POStatusReceived
		o.ReceivedDate = &now
		o.UpdatedAt = now
		if err := u.Repos().PurchaseOrders.UpdateStatus(ctx, o); err != nil {
			return err
		}
		po = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("po_number", po.PONumber).Str("actor_id", actorID).Msg("orden de compra recibida")
	return dto.NewPurchaseOrderResponse(po), nil
}

func orderProductIDs(po *entity.PurchaseOrder) []string {
	ids := make([]string, 0, len(po.Items))
	for _, item := range po.Items {
		ids = append(ids, item.ProductID)
	}
	return ids
}

// receivable la orden sigue abierta (pending u ordered).
func receivable(po *entity.PurchaseOrder) error {
	switch po.Status {
	case entity.POStatusReceived:
		return domain.ErrAlreadyReceived
	case entity.POStatusCancelled:
		return fmt.Errorf("%w: la orden está cancelada", domain.ErrConflict)
	}
	return nil
}
