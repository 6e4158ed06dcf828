package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exposes Prometheus collectors for HTTP traffic and workflow
// activity.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	httpErrors   *prometheus.CounterVec

	ticketsCreated  *prometheus.CounterVec
	ticketTransfers prometheus.Counter
	requestsCreated *prometheus.CounterVec
	requestActions  *prometheus.CounterVec
}

// NewMetrics registers all collectors on a private registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by path, method and status.",
		}, []string{"path", "method", "status"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"path", "method"}),
		httpErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_errors_total",
			Help: "Application errors by path, method and error code.",
		}, []string{"path", "method", "code"}),
		ticketsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "workflow_tickets_created_total",
			Help: "Tickets created, by priority.",
		}, []string{"priority"}),
		ticketTransfers: factory.NewCounter(prometheus.CounterOpts{
			Name: "workflow_ticket_transfers_total",
			Help: "Department transfers performed.",
		}),
		requestsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "workflow_change_requests_created_total",
			Help: "Change requests created, by change type.",
		}, []string{"change_type"}),
		requestActions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "workflow_change_request_actions_total",
			Help: "Change-request workflow actions, by action.",
		}, []string{"action"}),
	}
}

// Registry exposes the underlying registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(path, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.httpErrors.WithLabelValues(path, method, code).Inc()
}

// RecordTicketCreated counts a new ticket.
func (m *Metrics) RecordTicketCreated(priority string) {
	if m == nil {
		return
	}
	m.ticketsCreated.WithLabelValues(priority).Inc()
}

// RecordTicketTransfer counts a department transfer.
func (m *Metrics) RecordTicketTransfer() {
	if m == nil {
		return
	}
	m.ticketTransfers.Inc()
}

// RecordRequestCreated counts a new change request.
func (m *Metrics) RecordRequestCreated(changeType string) {
	if m == nil {
		return
	}
	m.requestsCreated.WithLabelValues(changeType).Inc()
}

// RecordRequestAction counts a workflow action on a change request.
func (m *Metrics) RecordRequestAction(action string) {
	if m == nil {
		return
	}
	m.requestActions.WithLabelValues(action).Inc()
}
