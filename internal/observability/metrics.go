package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exposes the portal's Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal      *prometheus.CounterVec
	requestDuration    *prometheus.HistogramVec
	errorsTotal        *prometheus.CounterVec
	ticketsByStatus    *prometheus.GaugeVec
	deliveriesTotal    *prometheus.CounterVec
	confirmationsTotal *prometheus.CounterVec
}

// NewMetrics registers all collectors on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ssu_http_requests_total",
			Help: "HTTP requests by path, method and status.",
		}, []string{"path", "method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ssu_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"path", "method"}),
		errorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ssu_http_errors_total",
			Help: "Handled request errors by code.",
		}, []string{"path", "method", "code"}),
		ticketsByStatus: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ssu_tickets",
			Help: "Tickets held in the store by status.",
		}, []string{"status"}),
		deliveriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ssu_webhook_deliveries_total",
			Help: "Webhook delivery batches by result.",
		}, []string{"result"}),
		confirmationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ssu_webhook_confirmations_total",
			Help: "Callback confirmations by status.",
		}, []string{"status"}),
	}

	registry.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.errorsTotal,
		m.ticketsByStatus,
		m.deliveriesTotal,
		m.confirmationsTotal,
	)
	return m
}

// Handler serves the registry for scraping.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordRequest increments request counters.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(path, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.errorsTotal.WithLabelValues(path, method, code).Inc()
}

// SetTicketCount sets the per-status ticket gauge.
func (m *Metrics) SetTicketCount(status string, count int) {
	if m == nil {
		return
	}
	m.ticketsByStatus.WithLabelValues(status).Set(float64(count))
}

// RecordDelivery counts a finished delivery batch.
func (m *Metrics) RecordDelivery(success bool) {
	if m == nil {
		return
	}
	result := "success"
	if !success {
		result = "failure"
	}
	m.deliveriesTotal.WithLabelValues(result).Inc()
}

// RecordConfirmation counts an inbound callback confirmation.
func (m *Metrics) RecordConfirmation(status string) {
	if m == nil {
		return
	}
	m.confirmationsTotal.WithLabelValues(status).Inc()
}
