package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	AdmissionsAllowed  prometheus.Counter
	AdmissionsRejected prometheus.Counter
	StoreFailures      prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		AdmissionsAllowed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pickme_ratelimit_admissions_allowed_total",
			Help: "Total number of queries admitted under the hourly limit",
		}),
		AdmissionsRejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pickme_ratelimit_admissions_rejected_total",
			Help: "Total number of queries rejected by the hourly limit",
		}),
		StoreFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pickme_ratelimit_store_failures_total",
			Help: "Total number of rate limit store errors (limiter fails open)",
		}),
	}
}

func (m *Metrics) IncrementAllowed()       { m.AdmissionsAllowed.Inc() }
func (m *Metrics) IncrementRejected()      { m.AdmissionsRejected.Inc() }
func (m *Metrics) IncrementStoreFailures() { m.StoreFailures.Inc() }
