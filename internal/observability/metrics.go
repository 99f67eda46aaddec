package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service collectors. All methods are safe on a nil receiver.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	httpErrors        *prometheus.CounterVec
	ticketTransitions *prometheus.CounterVec
	notifications     *prometheus.CounterVec
	breakerState      *prometheus.GaugeVec
	slaAlerts         *prometheus.CounterVec
	poolTasks         *prometheus.CounterVec
}

// NewMetrics registers collectors on a fresh registry, plus the Go and process collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return NewMetricsWith(reg)
}

// NewMetricsWith registers collectors on reg.
func NewMetricsWith(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "complaint_service_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "complaint_service_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		httpErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "complaint_service_http_errors_total",
			Help: "Error responses by method, route and error code.",
		}, []string{"method", "route", "code"}),
		ticketTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "complaint_service_ticket_transitions_total",
			Help: "Ticket status transitions by action.",
		}, []string{"action"}),
		notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "complaint_service_notifications_total",
			Help: "Notification deliveries by channel and outcome.",
		}, []string{"channel", "outcome"}),
		breakerState: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "complaint_service_circuit_breaker_state",
			Help: "Circuit breaker state (0 closed, 1 half-open, 2 open).",
		}, []string{"name"}),
		slaAlerts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "complaint_service_sla_alerts_total",
			Help: "SLA alerts by kind and outcome.",
		}, []string{"kind", "outcome"}),
		poolTasks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "complaint_service_worker_tasks_total",
			Help: "Background tasks by outcome.",
		}, []string{"outcome"}),
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordRequest observes a finished HTTP request.
func (m *Metrics) RecordRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordError counts an error response.
func (m *Metrics) RecordError(route, method, code string) {
	if m == nil {
		return
	}
	m.httpErrors.WithLabelValues(method, route, code).Inc()
}

// RecordTransition counts a ticket status change.
func (m *Metrics) RecordTransition(action string) {
	if m == nil {
		return
	}
	m.ticketTransitions.WithLabelValues(action).Inc()
}

// RecordNotification counts a delivery attempt outcome (sent, failed, rejected).
func (m *Metrics) RecordNotification(channel, outcome string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(channel, outcome).Inc()
}

// SetBreakerState publishes the numeric breaker state.
func (m *Metrics) SetBreakerState(name string, state float64) {
	if m == nil {
		return
	}
	m.breakerState.WithLabelValues(name).Set(state)
}

// RecordSLAAlert counts an SLA alert outcome (sent, suppressed).
func (m *Metrics) RecordSLAAlert(kind, outcome string) {
	if m == nil {
		return
	}
	m.slaAlerts.WithLabelValues(kind, outcome).Inc()
}

// RecordPoolTask counts a background task outcome (submitted, dropped, panicked).
func (m *Metrics) RecordPoolTask(outcome string) {
	if m == nil {
		return
	}
	m.poolTasks.WithLabelValues(outcome).Inc()
}
