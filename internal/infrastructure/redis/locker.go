package redis

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/jhoicas/pos-stock-api/internal/application/inventory"
	"github.com/jhoicas/pos-stock-api/pkg/config"
)

//go:embed release.lua
var releaseSource string

var releaseScript = goredis.NewScript(releaseSource)

// ErrLockTimeout el bloqueo no se obtuvo dentro del tiempo de espera.
var ErrLockTimeout = inventory.ErrLockTimeout

const (
	keyPrefix    = "lock:"
	retryBackoff = 50 * time.Millisecond
)

// NewClient abre el cliente y verifica la conexión.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", cfg.Addr, err)
	}
	return rdb, nil
}

// Locker bloqueo distribuido por clave (SET NX PX con token propio).
// Permite correr varias réplicas del servicio sobre la misma base.
type Locker struct {
	rdb  goredis.UniversalClient
	ttl  time.Duration
	wait time.Duration
	log  zerolog.Logger
}

var _ inventory.Locker = (*Locker)(nil)

// NewLocker ttl: vida máxima del bloqueo si el proceso muere; wait: espera máxima para obtenerlo.
func NewLocker(rdb goredis.UniversalClient, ttl, wait time.Duration, log zerolog.Logger) *Locker {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	if wait <= 0 {
		wait = 5 * time.Second
	}
	return &Locker{rdb: rdb, ttl: ttl, wait: wait, log: log}
}

// Lock reintenta SET NX hasta obtener la clave, agotar la espera o cancelarse ctx.
func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	key = keyPrefix + key
	token := uuid.NewString()

	ctx, cancel := context.WithTimeout(ctx, l.wait)
	defer cancel()

	ticker := time.NewTicker(retryBackoff)
	defer ticker.Stop()

	for {
		ok, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil && ctx.Err() == nil {
			return nil, fmt.Errorf("redis: set nx %s: %w", key, err)
		}
		if ok {
			return l.unlockFunc(key, token), nil
		}
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, fmt.Errorf("%w: %s", ErrLockTimeout, key)
			}
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (l *Locker) unlockFunc(key, token string) func() {
	var once sync.Once
	return func() { once.Do(func() { l.release(key, token) }) }
}

func (l *Locker) release(key, token string) {
	// contexto propio: el de la petición puede estar cancelado al liberar
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	n, err := releaseScript.Run(ctx, l.rdb, []string{key}, token).Int()
	if err != nil {
		l.log.Error().Err(err).Str("key", key).Msg("no se pudo liberar el bloqueo; expirará por TTL")
		return
	}
	if n == 0 {
		l.log.Warn().Str("key", key).Msg("bloqueo expirado antes de liberarse")
	}
}
