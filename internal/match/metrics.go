package match

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metric names as constants for consistency.
const (
	MetricScoresComputedTotal         = "match_scores_computed_total"
	MetricMatchesTotal                = "match_matches_total"
	MetricPipelineDurationSeconds     = "match_pipeline_duration_seconds"
	MetricRecommendationRequestsTotal = "match_recommendation_requests_total"
)

// Tier labels for the matches counter.
const (
	TierInApp       = "in_app"
	TierEmailDigest = "email_digest"
)

// Metrics contains Prometheus metrics for match engine operations.
// All operations are thread-safe. A nil *Metrics is a no-op, so the
// engine can run unmetered in tests.
type Metrics struct {
	scoresComputed         prometheus.Counter
	matches                *prometheus.CounterVec
	pipelineDuration       prometheus.Histogram
	recommendationRequests prometheus.Counter
}

// NewMetrics creates a Metrics instance with all collectors initialized.
// The metrics are not registered; call Register to register them.
func NewMetrics() *Metrics {
	return &Metrics{
		scoresComputed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: MetricScoresComputedTotal,
				Help: "Total number of (preferences, event) pairs scored",
			},
		),
		matches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricMatchesTotal,
				Help: "Total number of users admitted to a match partition by tier",
			},
			[]string{"tier"},
		),
		pipelineDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    MetricPipelineDurationSeconds,
				Help:    "Duration of matching pipeline runs in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
			},
		),
		recommendationRequests: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: MetricRecommendationRequestsTotal,
				Help: "Total number of recommendation ranking requests served",
			},
		),
	}
}

// Register registers all metrics with the given registry.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		m.scoresComputed,
		m.matches,
		m.pipelineDuration,
		m.recommendationRequests,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) incScoresComputed() {
	if m == nil {
		return
	}
	m.scoresComputed.Inc()
}

func (m *Metrics) incMatches(tier string) {
	if m == nil {
		return
	}
	m.matches.WithLabelValues(tier).Inc()
}

func (m *Metrics) observePipelineDuration(seconds float64) {
	if m == nil {
		return
	}
	m.pipelineDuration.Observe(seconds)
}

func (m *Metrics) incRecommendationRequests() {
	if m == nil {
		return
	}
	m.recommendationRequests.Inc()
}
