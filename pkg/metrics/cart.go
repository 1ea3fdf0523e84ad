package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CartMetrics records cart mutation, reconciliation, and snapshot outcomes.
type CartMetrics struct {
	mutations        *prometheus.CounterVec
	syncDuration     prometheus.Histogram
	syncFailures     prometheus.Counter
	snapshotFailures prometheus.Counter
}

// NewCartMetrics registers the cart engine metrics on the provided registerer.
func NewCartMetrics(reg prometheus.Registerer) *CartMetrics {
	if reg == nil {
		return &CartMetrics{}
	}
	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_mutations_total",
		Help: "Cart mutations by operation and outcome.",
	}, []string{"op", "status"})
	syncDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cart_sync_duration_seconds",
		Help:    "Duration of authoritative cart refreshes in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	syncFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cart_sync_failures_total",
		Help: "Failed authoritative cart refreshes.",
	})
	snapshotFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cart_snapshot_failures_total",
		Help: "Failed snapshot writes after confirmed mutations.",
	})
	reg.MustRegister(mutations, syncDuration, syncFailures, snapshotFailures)
	return &CartMetrics{
		mutations:        mutations,
		syncDuration:     syncDuration,
		syncFailures:     syncFailures,
		snapshotFailures: snapshotFailures,
	}
}

// ObserveMutation records the outcome of a named cart operation.
func (c *CartMetrics) ObserveMutation(op string, ok bool) {
	if c == nil || c.mutations == nil {
		return
	}
	status := "ok"
	if !ok {
		status = "error"
	}
	c.mutations.WithLabelValues(normalizeLabel(op), status).Inc()
}

// ObserveSyncDuration records the duration of one full remote refresh.
func (c *CartMetrics) ObserveSyncDuration(duration time.Duration) {
	if c == nil || c.syncDuration == nil {
		return
	}
	c.syncDuration.Observe(duration.Seconds())
}

// IncSyncFailure increments the refresh failure counter.
func (c *CartMetrics) IncSyncFailure() {
	if c == nil || c.syncFailures == nil {
		return
	}
	c.syncFailures.Inc()
}

// IncSnapshotFailure increments the snapshot write failure counter.
func (c *CartMetrics) IncSnapshotFailure() {
	if c == nil || c.snapshotFailures == nil {
		return
	}
	c.snapshotFailures.Inc()
}

func normalizeLabel(label string) string {
	if label == "" {
		return "unknown"
	}
	return label
}
