package numbering

import (
	"fmt"
	"sync"
	"time"
)

// Prefijos de numeración.
const (
	PrefixSale          = "SALE"
	PrefixPurchaseOrder = "PO"
)

// Generator números legibles PREFIJO-<8 dígitos> a partir de un reloj en milisegundos.
// El reloj es monótono dentro del proceso: dos llamadas nunca usan el mismo milisegundo.
// La unicidad entre procesos la garantiza el índice único del almacenamiento.
type Generator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewGenerator crea un generador sobre time.Now.
func NewGenerator() *Generator {
	return &Generator{now: time.Now}
}

// Next devuelve el siguiente número con el prefijo indicado (ej. SALE-12345678).
func (g *Generator) Next(prefix string) string {
	g.mu.Lock()
	ms := g.now().UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms
	g.mu.Unlock()
	return fmt.Sprintf("%s-%08d", prefix, ms%100_000_000)
}
