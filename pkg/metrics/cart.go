package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CartMetrics records cart mutations and persistence health.
type CartMetrics struct {
	mutations     *prometheus.CounterVec
	failures      *prometheus.CounterVec
	flushDuration prometheus.Histogram
	ordersPlaced  prometheus.Counter
}

// NewCartMetrics registers the cart metrics on the provided registerer. A nil
// registerer yields a no-op recorder.
func NewCartMetrics(reg prometheus.Registerer) *CartMetrics {
	if reg == nil {
		return &CartMetrics{}
	}
	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_mutations_total",
		Help: "Cart mutations applied, by operation.",
	}, []string{"op"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_persistence_failures_total",
		Help: "Slot reads or writes that fell back to in-memory state, by operation.",
	}, []string{"op"})
	flushDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cart_flush_duration_seconds",
		Help:    "Duration of write-through snapshot flushes.",
		Buckets: prometheus.DefBuckets,
	})
	ordersPlaced := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_placed_total",
		Help: "Orders recorded from checked-out carts.",
	})
	reg.MustRegister(mutations, failures, flushDuration, ordersPlaced)
	return &CartMetrics{
		mutations:     mutations,
		failures:      failures,
		flushDuration: flushDuration,
		ordersPlaced:  ordersPlaced,
	}
}

// IncMutation counts an applied cart operation.
func (c *CartMetrics) IncMutation(op string) {
	if c == nil || c.mutations == nil {
		return
	}
	c.mutations.WithLabelValues(normalizeLabel(op)).Inc()
}

// IncPersistenceFailure counts a degraded load or save.
func (c *CartMetrics) IncPersistenceFailure(op string) {
	if c == nil || c.failures == nil {
		return
	}
	c.failures.WithLabelValues(normalizeLabel(op)).Inc()
}

// ObserveFlush records how long a snapshot flush took.
func (c *CartMetrics) ObserveFlush(duration time.Duration) {
	if c == nil || c.flushDuration == nil {
		return
	}
	c.flushDuration.Observe(duration.Seconds())
}

func (c *CartMetrics) IncOrderPlaced() {
	if c == nil || c.ordersPlaced == nil {
		return
	}
	c.ordersPlaced.Inc()
}

func normalizeLabel(op string) string {
	if op == "" {
		return "unknown"
	}
	return op
}
