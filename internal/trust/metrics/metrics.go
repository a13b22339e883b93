package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Endorsement outcomes.
const (
	EndorsementApplied  = "applied"  // appended to a registered subject and rescored
	EndorsementOrphaned = "orphaned" // indexed only; subject unregistered
)

// Verification routes.
const (
	VerifiedViaPath     = "path"
	VerifiedViaVerifier = "verifier"
	VerifiedViaNone     = "none"
)

// Metrics holds Prometheus collectors for trust registry operations.
type Metrics struct {
	RecordsRegistered prometheus.Counter
	AnchorsSeeded     prometheus.Counter
	Endorsements      *prometheus.CounterVec
	Revocations       *prometheus.CounterVec
	Verifications     *prometheus.CounterVec
	TrustScores       prometheus.Histogram
	RegisteredRecords prometheus.Gauge

	// Performance metrics
	OperationLatency *prometheus.HistogramVec
}

// New registers trust metrics on reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		RecordsRegistered: factory.NewCounter(prometheus.CounterOpts{
			Name: "trustgraph_records_registered_total",
			Help: "Total number of trust records registered or re-registered",
		}),
		AnchorsSeeded: factory.NewCounter(prometheus.CounterOpts{
			Name: "trustgraph_anchors_seeded_total",
			Help: "Total number of trust anchors written at startup",
		}),
		Endorsements: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "trustgraph_endorsements_total",
			Help: "Total number of endorsements recorded, labeled by outcome",
		}, []string{"outcome"}),
		Revocations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "trustgraph_revocations_total",
			Help: "Total number of revocation attempts, labeled by decision",
		}, []string{"decision"}),
		Verifications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "trustgraph_verifications_total",
			Help: "Total number of verifications, labeled by result and route",
		}, []string{"result", "via"}),
		TrustScores: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "trustgraph_trust_score",
			Help:    "Distribution of recomputed trust scores",
			Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		}),
		RegisteredRecords: factory.NewGauge(prometheus.GaugeOpts{
			Name: "trustgraph_registered_records",
			Help: "Current number of trust records in the store",
		}),
		OperationLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "trustgraph_operation_latency_seconds",
			Help:    "Latency of trust registry operations in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"operation"}),
	}
}

func (m *Metrics) IncrementRecordsRegistered() {
	m.RecordsRegistered.Inc()
}

func (m *Metrics) AddAnchorsSeeded(n int) {
	m.AnchorsSeeded.Add(float64(n))
}

func (m *Metrics) IncrementEndorsements(outcome string) {
	m.Endorsements.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncrementRevocations(decision string) {
	m.Revocations.WithLabelValues(decision).Inc()
}

func (m *Metrics) IncrementVerifications(verified bool, via string) {
	result := "rejected"
	if verified {
		result = "verified"
	}
	m.Verifications.WithLabelValues(result, via).Inc()
}

func (m *Metrics) ObserveTrustScore(score int) {
	m.TrustScores.Observe(float64(score))
}

func (m *Metrics) SetRegisteredRecords(n int) {
	m.RegisteredRecords.Set(float64(n))
}

func (m *Metrics) ObserveOperationLatency(operation string, seconds float64) {
	m.OperationLatency.WithLabelValues(operation).Observe(seconds)
}
