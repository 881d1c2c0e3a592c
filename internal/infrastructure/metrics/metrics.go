package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/pos-stock-api/internal/application/inventory"
)

// Metrics métricas Prometheus del servicio: motor de stock y peticiones HTTP.
type Metrics struct {
	registry *prometheus.Registry

	movementsTotal   *prometheus.CounterVec
	rejectionsTotal  *prometheus.CounterVec
	unitDuration     *prometheus.HistogramVec
	httpDuration     *prometheus.HistogramVec
	httpRequestTotal *prometheus.CounterVec
}

var _ inventory.Metrics = (*Metrics)(nil)

// New registra las métricas en un registro propio (más los colectores de proceso y runtime).
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		movementsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "stock_movements_total",
			Help: "Movimientos de stock confirmados",
		}, []string{"type", "reason"}),
		rejectionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "stock_changes_rejected_total",
			Help: "Cambios de stock rechazados por stock insuficiente",
		}, []string{"reason"}),
		unitDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "stock_unit_duration_seconds",
			Help:    "Duración de las unidades de trabajo del motor de stock",
			Buckets: prometheus.DefBuckets,
		}, []string{"outcome"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Latencia de las peticiones HTTP",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		httpRequestTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Peticiones HTTP atendidas",
		}, []string{"method", "path", "status"}),
	}
}

func (m *Metrics) MovementRecorded(movementType, reason string) {
	m.movementsTotal.WithLabelValues(movementType, reason).Inc()
}

func (m *Metrics) ChangeRejected(reason string) {
	m.rejectionsTotal.WithLabelValues(reason).Inc()
}

func (m *Metrics) UnitCompleted(outcome string, elapsed time.Duration) {
	m.unitDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

// ObserveHTTP path debe ser la ruta registrada (/api/sales/:id), no la URL, para acotar la cardinalidad.
func (m *Metrics) ObserveHTTP(method, path string, status int, elapsed time.Duration) {
	code := strconv.Itoa(status)
	m.httpDuration.WithLabelValues(method, path, code).Observe(elapsed.Seconds())
	m.httpRequestTotal.WithLabelValues(method, path, code).Inc()
}

// Handler exposición en formato Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry para tests y colectores adicionales.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
