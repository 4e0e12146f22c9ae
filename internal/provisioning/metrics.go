package provisioning

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the provisioning collectors. A nil *Metrics records nothing.
type Metrics struct {
	reconcileTotal    *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	verifyTotal       *prometheus.CounterVec
	verifyHits        *prometheus.GaugeVec
	retriesTotal      *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		reconcileTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "esprov",
				Subsystem: "reconcile",
				Name:      "results_total",
				Help:      "Total number of reconciled resources by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		operationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "esprov",
				Subsystem: "reconcile",
				Name:      "duration_seconds",
				Help:      "Duration of reconcile operations in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
			},
			[]string{"kind"},
		),
		verifyTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "esprov",
				Subsystem: "verify",
				Name:      "queries_total",
				Help:      "Total number of verification queries by name and status",
			},
			[]string{"query", "status"},
		),
		verifyHits: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "esprov",
				Subsystem: "verify",
				Name:      "hits",
				Help:      "Hit count of the last run of each verification query",
			},
			[]string{"index", "query"},
		),
		retriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "esprov",
				Subsystem: "cluster",
				Name:      "retries_total",
				Help:      "Total number of retried cluster calls by operation",
			},
			[]string{"operation"},
		),
	}

	reg.MustRegister(
		m.reconcileTotal,
		m.operationDuration,
		m.verifyTotal,
		m.verifyHits,
		m.retriesTotal,
	)
	return m
}

// recordResult records a reconcile result and its duration.
func (m *Metrics) recordResult(r ReconcileResult, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.reconcileTotal.WithLabelValues(string(r.Kind), r.Outcome.String()).Inc()
	m.operationDuration.WithLabelValues(string(r.Kind)).Observe(elapsed.Seconds())
}

// recordVerification records one verification outcome.
func (m *Metrics) recordVerification(index string, v VerificationOutcome) {
	if m == nil {
		return
	}
	status := "ok"
	switch {
	case v.Skipped:
		status = "skipped"
	case v.Err != nil:
		status = "failed"
	default:
		m.verifyHits.WithLabelValues(index, v.Name).Set(float64(v.HitCount))
	}
	m.verifyTotal.WithLabelValues(v.Name, status).Inc()
}

// RecordRetry counts a retried cluster call.
func (m *Metrics) RecordRetry(op string) {
	if m == nil {
		return
	}
	m.retriesTotal.WithLabelValues(op).Inc()
}
