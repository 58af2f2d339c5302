package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var durationBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1}

// Metrics provides observability for the access request module.
// Tracks lifecycle counts, notification health and the open backlog by urgency.
type Metrics struct {
	Created              prometheus.Counter
	StatusTransitions    *prometheus.CounterVec
	SystemToggles        *prometheus.CounterVec
	NotificationFailures prometheus.Counter
	NumberCollisions     prometheus.Counter
	OpenByUrgency        *prometheus.GaugeVec
	OperationDuration    *prometheus.HistogramVec
}

// New registers the access request metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Created: factory.NewCounter(prometheus.CounterOpts{
			Name: "avg_access_requests_created_total",
			Help: "Total number of access requests registered",
		}),
		StatusTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "avg_access_request_status_transitions_total",
			Help: "Status changes by target status",
		}, []string{"status"}),
		SystemToggles: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "avg_access_request_system_toggles_total",
			Help: "Checklist toggles by direction (checked, unchecked)",
		}, []string{"direction"}),
		NotificationFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "avg_access_request_notification_failures_total",
			Help: "Status-change notifications that could not be delivered",
		}),
		NumberCollisions: factory.NewCounter(prometheus.CounterOpts{
			Name: "avg_access_request_number_collisions_total",
			Help: "Request number draws that hit an existing number",
		}),
		OpenByUrgency: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "avg_open_access_requests",
			Help: "Open access requests by urgency tier, refreshed by the reminder job",
		}, []string{"urgency"}),
		OperationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "avg_access_request_operation_duration_seconds",
			Help:    "Duration of access request service operations",
			Buckets: durationBuckets,
		}, []string{"operation"}),
	}
}

func (m *Metrics) IncrementCreated() {
	m.Created.Inc()
}

func (m *Metrics) IncrementStatusTransition(status string) {
	m.StatusTransitions.WithLabelValues(status).Inc()
}

// IncrementToggle records a checklist toggle; checked is the new state.
func (m *Metrics) IncrementToggle(checked bool) {
	direction := "unchecked"
	if checked {
		direction = "checked"
	}
	m.SystemToggles.WithLabelValues(direction).Inc()
}

func (m *Metrics) IncrementNotificationFailure() {
	m.NotificationFailures.Inc()
}

func (m *Metrics) IncrementNumberCollision() {
	m.NumberCollisions.Inc()
}

// SetOpenByUrgency replaces the gauge values. Tiers missing from counts
// are reset to zero.
func (m *Metrics) SetOpenByUrgency(tiers []string, counts map[string]int) {
	for _, tier := range tiers {
		m.OpenByUrgency.WithLabelValues(tier).Set(float64(counts[tier]))
	}
}

// ObserveOperation records the duration of a service operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveOperation(operation string, start time.Time) {
	m.OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
