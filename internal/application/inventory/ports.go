package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/jhoicas/pos-stock-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza atomicidad para el motor de inventario: si fn retorna error se hace Rollback.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos repository.Repositories) error) error
}

// ErrLockTimeout el bloqueo de un producto no se obtuvo dentro de la espera configurada.
// Los Locker lo envuelven con %w para que el motor lo distinga de una caída del backend.
var ErrLockTimeout = errors.New("tiempo de espera agotado al bloquear")

// Locker exclusión mutua por clave (una clave por producto).
// unlock debe llamarse exactamente una vez.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// EventPublisher publica eventos de inventario una vez confirmada la transacción.
type EventPublisher interface {
	Publish(ctx context.Context, key string, event any) error
}

// Metrics contadores del motor de inventario.
type Metrics interface {
	MovementRecorded(movementType, reason string)
	ChangeRejected(reason string)
	UnitCompleted(outcome string, elapsed time.Duration)
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, string, any) error { return nil }

type noopMetrics struct{}

func (noopMetrics) MovementRecorded(string, string)     {}
func (noopMetrics) ChangeRejected(string)               {}
func (noopMetrics) UnitCompleted(string, time.Duration) {}
