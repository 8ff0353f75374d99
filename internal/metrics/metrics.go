package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Tracks outbound venue API calls by endpoint, method, and HTTP status.
	VenueRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coinbuy_venue_requests_total",
			Help: "Total number of venue API requests made.",
		},
		[]string{"endpoint", "method", "status"},
	)

	// Counts settlement poll iterations by observed order status.
	SettlementPollsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coinbuy_settlement_polls_total",
			Help: "Total number of settlement poll fetches by order status.",
		},
		[]string{"status"},
	)

	// Tracks workflow errors by component and reason.
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coinbuy_errors_total",
			Help: "Count of workflow errors by component.",
		},
		[]string{"component", "reason"},
	)

	// Gauges the last successful settlement poll (seconds since epoch).
	LastPollTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "coinbuy_last_poll_timestamp",
			Help: "Timestamp (unix seconds) of the last successful settlement poll.",
		},
	)

	// Measures the full workflow duration from precondition checks to settlement.
	WorkflowDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "coinbuy_workflow_duration_seconds",
			Help:    "Duration of one order workflow in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12), // 100ms → ~7m
		},
	)
)

func IncVenueRequest(endpoint, method, status string) {
	VenueRequestsTotal.WithLabelValues(endpoint, method, status).Inc()
}

func IncSettlementPoll(status string) {
	SettlementPollsTotal.WithLabelValues(status).Inc()
	LastPollTimestamp.Set(float64(time.Now().Unix()))
}

func IncError(component, reason string) {
	ErrorsTotal.WithLabelValues(component, reason).Inc()
}

func ObserveWorkflow(start time.Time) {
	WorkflowDuration.Observe(time.Since(start).Seconds())
}
