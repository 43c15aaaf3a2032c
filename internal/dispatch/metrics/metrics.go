package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	QueriesSubmitted prometheus.Counter
	QueriesRejected  *prometheus.CounterVec
	QueriesCompleted *prometheus.CounterVec
	ProviderLatency  *prometheus.HistogramVec
	ProviderFailures *prometheus.CounterVec
	CreditsDebited   prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		QueriesSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pickme_dispatch_queries_submitted_total",
			Help: "Total number of query submissions received",
		}),
		QueriesRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "pickme_dispatch_queries_rejected_total",
			Help: "Total number of rejected submissions by reason",
		}, []string{"reason"}),
		QueriesCompleted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "pickme_dispatch_queries_completed_total",
			Help: "Total number of completed query executions by status",
		}, []string{"status"}),
		ProviderLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pickme_dispatch_provider_latency_seconds",
			Help:    "Latency of provider lookups",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"provider"}),
		ProviderFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "pickme_dispatch_provider_failures_total",
			Help: "Total number of failed provider lookups by provider",
		}, []string{"provider"}),
		CreditsDebited: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pickme_dispatch_credits_debited_total",
			Help: "Total credits debited for confirmed paid queries",
		}),
	}
}

func (m *Metrics) IncrementSubmitted() { m.QueriesSubmitted.Inc() }

func (m *Metrics) IncrementRejected(reason string) {
	m.QueriesRejected.WithLabelValues(reason).Inc()
}
func (m *Metrics) IncrementCompleted(status string) {
	m.QueriesCompleted.WithLabelValues(status).Inc()
}

func (m *Metrics) ObserveProviderLatency(provider string, d time.Duration) {
	m.ProviderLatency.WithLabelValues(provider).Observe(d.Seconds())
}

func (m *Metrics) IncrementProviderFailures(provider string) {
	m.ProviderFailures.WithLabelValues(provider).Inc()
}

func (m *Metrics) AddCreditsDebited(amount int) {
	m.CreditsDebited.Add(float64(amount))
}
