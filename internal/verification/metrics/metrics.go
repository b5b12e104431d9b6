package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"bridgeid/internal/verification/models"
)

// Metrics holds Prometheus collectors for the verification protocol.
type Metrics struct {
	RequestsCreated        prometheus.Counter
	RequestsFulfilled      *prometheus.CounterVec
	FulfillmentRejections  *prometheus.CounterVec
	DispatchFailures       *prometheus.CounterVec
	DispatchDurationMs     prometheus.Histogram
	FulfillmentLatencySecs prometheus.Histogram
	ConfigChanges          *prometheus.CounterVec
	EventPublishFailures   *prometheus.CounterVec
	PendingStaleRequests   prometheus.Gauge
	ResponderCircuitOpen   prometheus.Gauge
}

// New registers the collectors on reg. Pass prometheus.DefaultRegisterer in main
// and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RequestsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "bridgeid_verification_requests_total",
			Help: "Total number of verification requests accepted",
		}),
		RequestsFulfilled: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bridgeid_verification_fulfillments_total",
			Help: "Total number of fulfilled verification requests by result and path",
		}, []string{"result", "path"}),
		FulfillmentRejections: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bridgeid_verification_fulfillment_rejections_total",
			Help: "Fulfillment attempts rejected, by reason",
		}, []string{"reason"}),
		DispatchFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bridgeid_dispatch_failures_total",
			Help: "Responder dispatch failures by category",
		}, []string{"category"}),
		DispatchDurationMs: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "bridgeid_dispatch_duration_ms",
			Help:    "Duration of responder dispatch calls in milliseconds",
			Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		}),
		FulfillmentLatencySecs: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "bridgeid_fulfillment_latency_seconds",
			Help:    "Time from request creation to fulfillment",
			Buckets: []float64{1, 5, 15, 30, 60, 300, 900, 3600, 21600},
		}),
		ConfigChanges: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bridgeid_config_changes_total",
			Help: "Owner configuration changes by setting",
		}, []string{"setting"}),
		EventPublishFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bridgeid_event_publish_failures_total",
			Help: "Events a sink failed to accept",
		}, []string{"sink", "kind"}),
		PendingStaleRequests: f.NewGauge(prometheus.GaugeOpts{
			Name: "bridgeid_pending_stale_requests",
			Help: "Pending requests older than the stale threshold",
		}),
		ResponderCircuitOpen: f.NewGauge(prometheus.GaugeOpts{
			Name: "bridgeid_responder_circuit_open",
			Help: "1 while the responder circuit breaker is open",
		}),
	}
}

func (m *Metrics) IncrementRequestsCreated() {
	m.RequestsCreated.Inc()
}

func (m *Metrics) IncrementFulfilled(result models.ResultCode, mock bool) {
	path := "responder"
	if mock {
		path = "mock"
	}
	m.RequestsFulfilled.WithLabelValues(result.String(), path).Inc()
}

func (m *Metrics) IncrementFulfillmentRejected(reason string) {
	m.FulfillmentRejections.WithLabelValues(reason).Inc()
}

func (m *Metrics) IncrementDispatchFailure(category string) {
	m.DispatchFailures.WithLabelValues(category).Inc()
}

func (m *Metrics) ObserveDispatchDuration(ms float64) {
	m.DispatchDurationMs.Observe(ms)
}

func (m *Metrics) ObserveFulfillmentLatency(seconds float64) {
	m.FulfillmentLatencySecs.Observe(seconds)
}

func (m *Metrics) IncrementConfigChange(setting string) {
	m.ConfigChanges.WithLabelValues(setting).Inc()
}

func (m *Metrics) IncrementPublishFailure(sink string, kind models.EventKind) {
	m.EventPublishFailures.WithLabelValues(sink, string(kind)).Inc()
}

func (m *Metrics) SetPendingStale(n int) {
	m.PendingStaleRequests.Set(float64(n))
}

func (m *Metrics) SetCircuitOpen(open bool) {
	if open {
		m.ResponderCircuitOpen.Set(1)
		return
	}
	m.ResponderCircuitOpen.Set(0)
}
