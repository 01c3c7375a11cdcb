// Package metrics expone los colectores Prometheus del servicio: movimientos del ledger,
// cambios de estado de pedidos y peticiones HTTP.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/application/ordering"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

const namespace = "stock_ledger"

var (
	_ inventory.StockObserver = (*Metrics)(nil)
	_ ordering.StatusObserver = (*Metrics)(nil)
)

// Metrics agrupa los colectores. Un *Metrics nil no registra nada.
type Metrics struct {
	registry      *prometheus.Registry
	movements     *prometheus.CounterVec
	movementUnits *prometheus.CounterVec
	statusChanges *prometheus.CounterVec
	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
}

// New crea un registro propio con los colectores del proceso y los del servicio.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := &Metrics{
		registry: reg,
		movements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "movements_total",
			Help:      "Movimientos de stock confirmados por tipo.",
		}, []string{"type"}),
		movementUnits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "movement_units_total",
			Help:      "Unidades movidas por tipo de movimiento.",
		}, []string{"type"}),
		statusChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_status_changes_total",
			Help:      "Cambios de estado de pedidos confirmados.",
		}, []string{"order_type", "from", "to"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Peticiones HTTP atendidas.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Latencia de las peticiones HTTP.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	reg.MustRegister(m.movements, m.movementUnits, m.statusChanges, m.httpRequests, m.httpDuration)
	return m
}

// MovementCommitted cuenta el movimiento y sus unidades.
func (m *Metrics) MovementCommitted(_ context.Context, mov *entity.StockMovement) {
	if m == nil || mov == nil {
		return
	}
	t := mov.Type.String()
	m.movements.WithLabelValues(t).Inc()
	m.movementUnits.WithLabelValues(t).Add(float64(mov.Quantity))
}

// StatusChanged cuenta la transición.
func (m *Metrics) StatusChanged(_ context.Context, order *entity.Order, from entity.OrderStatus) {
	if m == nil || order == nil {
		return
	}
	m.statusChanges.WithLabelValues(order.Type.String(), from.String(), order.Status.String()).Inc()
}

// ObserveRequest registra una petición HTTP. route es el patrón de la ruta, no la URL.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Registry registro subyacente (tests, colectores adicionales).
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler endpoint de exposición en formato Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
