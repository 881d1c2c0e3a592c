package inventory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/jhoicas/pos-stock-api/internal/domain"
	"github.com/jhoicas/pos-stock-api/internal/domain/entity"
	domaininv "github.com/jhoicas/pos-stock-api/internal/domain/inventory"
	"github.com/jhoicas/pos-stock-api/internal/domain/repository"
)

var tracer = otel.Tracer("github.com/jhoicas/pos-stock-api/internal/application/inventory")

// StockChange solicitud de cambio de stock sobre un producto.
// ShopScoped: el cambio se aplica al stock propio de la tienda ShopID (la ficha debe existir).
// Si no, ShopID solo queda registrado en el movimiento.
type StockChange struct {
	ProductID  string
	Delta      int
	Type       string
	Reason     string
	ActorID    string
	ShopID     string
	Reference  string
	ShopScoped bool
	// OwnerID no nil exige que el producto pertenezca a ese dueño.
	OwnerID *string
}

// Ledger motor de stock: único punto de mutación de existencias.
// Cada unidad de trabajo bloquea los productos involucrados, abre una transacción,
// aplica los cambios y registra un movimiento por cada uno.
type Ledger struct {
	txRunner  TxRunner
	locker    Locker
	publisher EventPublisher
	metrics   Metrics
	log       zerolog.Logger
	now       func() time.Time
}

// NewLedger publisher y metrics pueden ser nil.
func NewLedger(txRunner TxRunner, locker Locker, publisher EventPublisher, metrics Metrics, log zerolog.Logger) *Ledger {
	if publisher == nil {
		publisher = noopPublisher{}
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &Ledger{
		txRunner:  txRunner,
		locker:    locker,
		publisher: publisher,
		metrics:   metrics,
		log:       log,
		now:       time.Now,
	}
}

// applied cambio confirmable, con lo necesario para eventos posteriores al commit.
type applied struct {
	movement *entity.StockMovement
	sku      string
	name     string
	minStock int
	wasLow   bool
	isLow    bool
}

// Unit unidad de trabajo abierta por Run. Solo es válida dentro de fn.
type Unit struct {
	ctx     context.Context
	repos   repository.Repositories
	ledger  *Ledger
	locked  map[string]struct{}
	applied []applied
	now     time.Time
}

// Repos repositorios atados a la transacción de la unidad.
func (u *Unit) Repos() repository.Repositories { return u.repos }

// Now instante común a todas las escrituras de la unidad.
func (u *Unit) Now() time.Time { return u.now }

// Movements movimientos registrados hasta ahora en la unidad.
func (u *Unit) Movements() []*entity.StockMovement {
	out := make([]*entity.StockMovement, 0, len(u.applied))
	for _, a := range u.applied {
		out = append(out, a.movement)
	}
	return out
}

// Apply lee el producto (bloqueado), calcula el nuevo stock, lo guarda y agrega el movimiento.
// Devuelve el producto actualizado y el movimiento registrado.
func (u *Unit) Apply(ch StockChange) (*entity.Product, *entity.StockMovement, error) {
	if ch.ProductID == "" {
		return nil, nil, fmt.Errorf("%w: producto requerido", domain.ErrInvalidInput)
	}
	if ch.ActorID == "" {
		return nil, nil, fmt.Errorf("%w: usuario requerido", domain.ErrInvalidInput)
	}
	if ch.Reason == "" {
		return nil, nil, fmt.Errorf("%w: motivo requerido", domain.ErrInvalidInput)
	}
	if err := domaininv.ValidateDelta(ch.Type, ch.Delta); err != nil {
		return nil, nil, err
	}
	if _, ok := u.locked[ch.ProductID]; !ok {
		return nil, nil, fmt.Errorf("%w: producto %s fuera de la unidad de trabajo", domain.ErrConflict, ch.ProductID)
	}

	product, err := u.repos.Products.GetForUpdate(u.ctx, ch.ProductID)
	if err != nil {
		return nil, nil, persistenceErr("leer producto", err)
	}
	if product == nil || !ownedBy(product, ch.OwnerID) {
		return nil, nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, ch.ProductID)
	}

	var (
		listing  *entity.ShopListing
		previous int
		minStock int
		wasLow   bool
	)
	if ch.ShopScoped && ch.ShopID != "" {
		listing = product.Listing(ch.ShopID)
		if listing == nil {
			return nil, nil, fmt.Errorf("%w: el producto %s no está asociado a la tienda %s", domain.ErrNotFound, ch.ProductID, ch.ShopID)
		}
		if listing.Stock != nil {
			previous = *listing.Stock
		}
		if listing.MinStock != nil {
			minStock = *listing.MinStock
		}
		wasLow = listing.Stock != nil && domaininv.IsLowStock(previous, minStock)
	} else {
		previous = product.Stock
		minStock = product.MinStock
		wasLow = domaininv.IsLowStock(previous, minStock)
	}

	next, err := domaininv.NextStock(previous, ch.Delta)
	if err != nil {
		u.ledger.metrics.ChangeRejected(ch.Reason)
		u.ledger.log.Warn().
			Str("product_id", ch.ProductID).
			Str("shop_id", ch.ShopID).
			Int("stock", previous).
			Int("delta", ch.Delta).
			Str("reason", ch.Reason).
			Msg("cambio de stock rechazado")
		return nil, nil, fmt.Errorf("producto %s (%s): %w", product.Name, product.SKU, err)
	}

	if listing != nil {
		domaininv.SetListingStock(listing, next, u.now)
		product.UpdatedAt = u.now
	} else {
		domaininv.SetStock(product, next, u.now)
	}
	if err := u.repos.Products.SaveStock(u.ctx, product); err != nil {
		return nil, nil, persistenceErr("guardar stock", err)
	}

	movement := &entity.StockMovement{
		ID:            uuid.New().String(),
		ProductID:     product.ID,
		Type:          ch.Type,
		Quantity:      abs(ch.Delta),
		Reason:        ch.Reason,
		Reference:     ch.Reference,
		UserID:        ch.ActorID,
		ShopID:        ch.ShopID,
		PreviousStock: previous,
		NewStock:      next,
		CreatedAt:     u.now,
	}
	if product.OwnerID != nil {
		movement.OwnerID = *product.OwnerID
	}
	if err := u.repos.Movements.Create(u.ctx, movement); err != nil {
		return nil, nil, persistenceErr("registrar movimiento", err)
	}

	u.applied = append(u.applied, applied{
		movement: movement,
		sku:      product.SKU,
		name:     product.Name,
		minStock: minStock,
		wasLow:   wasLow,
		isLow:    domaininv.IsLowStock(next, minStock),
	})
	u.ledger.log.Debug().
		Str("product_id", product.ID).
		Str("type", ch.Type).
		Int("previous", previous).
		Int("new", next).
		Str("reason", ch.Reason).
		Msg("movimiento de stock aplicado")
	return product, movement, nil
}

// Run bloquea productIDs (ordenados y sin duplicados, para evitar interbloqueos), abre una
// transacción y ejecuta fn. Si fn falla nada se confirma: ni stock, ni movimientos, ni
// documentos escritos con u.Repos(). Los eventos se publican solo tras el commit.
func (l *Ledger) Run(ctx context.Context, productIDs []string, fn func(u *Unit) error) error {
	keys := uniqueSorted(productIDs)
	ctx, span := tracer.Start(ctx, "inventory.Ledger.Run")
	defer span.End()
	span.SetAttributes(attribute.Int("inventory.products", len(keys)))
	start := time.Now()

	unlocks := make([]func(), 0, len(keys))
	defer func() {
		for i := len(unlocks) - 1; i >= 0; i-- {
			unlocks[i]()
		}
	}()
	locked := make(map[string]struct{}, len(keys))
	for _, id := range keys {
		unlock, err := l.locker.Lock(ctx, LockKey(id))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "lock")
			l.metrics.UnitCompleted("lock_error", time.Since(start))
			return l.lockErr(id, err)
		}
		unlocks = append(unlocks, unlock)
		locked[id] = struct{}{}
	}

	var unit *Unit
	err := l.txRunner.Run(ctx, func(repos repository.Repositories) error {
		unit = &Unit{
			ctx:    ctx,
			repos:  repos,
			ledger: l,
			locked: locked,
			now:    l.now().UTC(),
		}
		return fn(unit)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "rollback")
		if !isDomainError(err) {
			l.log.Error().Err(err).
				Strs("product_ids", keys).
				Msg("unidad de inventario revertida por fallo de persistencia; verificar stock de los productos")
			l.metrics.UnitCompleted("error", time.Since(start))
			if !errors.Is(err, domain.ErrPersistence) {
				err = persistenceErr("transacción", err)
			}
			return err
		}
		l.metrics.UnitCompleted("rejected", time.Since(start))
		return err
	}

	l.afterCommit(ctx, unit.applied)
	l.metrics.UnitCompleted("committed", time.Since(start))
	return nil
}

// ApplyStockChange aplica un único cambio en su propia unidad de trabajo.
func (l *Ledger) ApplyStockChange(ctx context.Context, ch StockChange) (*entity.Product, error) {
	var product *entity.Product
	err := l.Run(ctx, []string{ch.ProductID}, func(u *Unit) error {
		p, _, err := u.Apply(ch)
		product = p
		return err
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (l *Ledger) afterCommit(ctx context.Context, changes []applied) {
	for _, a := range changes {
		m := a.movement
		l.metrics.MovementRecorded(m.Type, m.Reason)
		evt := StockMovementRecorded{
			EventType:     EventStockMovementRecorded,
			MovementID:    m.ID,
			ProductID:     m.ProductID,
			Type:          m.Type,
			Quantity:      m.Quantity,
			PreviousStock: m.PreviousStock,
			NewStock:      m.NewStock,
			Reason:        m.Reason,
			Reference:     m.Reference,
			UserID:        m.UserID,
			ShopID:        m.ShopID,
			OccurredAt:    m.CreatedAt,
		}
		if err := l.publisher.Publish(ctx, m.ProductID, evt); err != nil {
			l.log.Warn().Err(err).Str("movement_id", m.ID).Msg("no se pudo publicar el movimiento")
		}
		if a.isLow && !a.wasLow {
			low := LowStockDetected{
				EventType:  EventLowStockDetected,
				ProductID:  m.ProductID,
				SKU:        a.sku,
				Name:       a.name,
				ShopID:     m.ShopID,
				Stock:      m.NewStock,
				MinStock:   a.minStock,
				OccurredAt: m.CreatedAt,
			}
			if err := l.publisher.Publish(ctx, m.ProductID, low); err != nil {
				l.log.Warn().Err(err).Str("product_id", m.ProductID).Msg("no se pudo publicar alerta de stock bajo")
			}
		}
	}
}

// LockKey clave de bloqueo de un producto.
func LockKey(productID string) string {
	return "stock:product:" + productID
}

func uniqueSorted(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// lockErr la espera agotada es un conflicto reintentable para el cliente; cualquier otro fallo
// del backend de bloqueo es interno. El detalle (claves, direcciones) solo va al log.
func (l *Ledger) lockErr(productID string, err error) error {
	switch {
	case errors.Is(err, ErrLockTimeout):
		l.log.Warn().Err(err).Str("product_id", productID).Msg("producto ocupado por otra operación")
		return fmt.Errorf("%w: el producto está siendo modificado por otra operación, reintente", domain.ErrConflict)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	}
	l.log.Error().Err(err).Str("product_id", productID).Msg("fallo del backend de bloqueo")
	return persistenceErr("bloqueo", err)
}

func persistenceErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrPersistence, op, err)
}

// isDomainError errores de negocio (se devuelven tal cual, sin registrar como fallo).
func isDomainError(err error) bool {
	for _, target := range []error{
		domain.ErrNotFound,
		domain.ErrInvalidInput,
		domain.ErrDuplicate,
		domain.ErrForbidden,
		domain.ErrConflict,
		domain.ErrInsufficientStock,
		domain.ErrAlreadyRefunded,
		domain.ErrAlreadyReceived,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func ownedBy(p *entity.Product, ownerID *string) bool {
	return ownerID == nil || (p.OwnerID != nil && *p.OwnerID == *ownerID)
}
