package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DispatchMetrics records dispatch activity per channel plus the guard
// outcomes that blocked sends.
type DispatchMetrics struct {
	dispatched   *prometheus.CounterVec
	blocked      *prometheus.CounterVec
	deriveTime   *prometheus.HistogramVec
	sendAllBatch prometheus.Histogram
}

// NewDispatchMetrics registers the dispatch metrics on the provided registerer.
func NewDispatchMetrics(reg prometheus.Registerer) *DispatchMetrics {
	if reg == nil {
		return &DispatchMetrics{}
	}
	dispatched := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dispatch_total",
		Help: "Supplier order dispatches by channel.",
	}, []string{"channel"})
	blocked := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dispatch_blocked_total",
		Help: "Dispatch attempts blocked by readiness guards.",
	}, []string{"reason"})
	deriveTime := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_derive_duration_seconds",
		Help:    "Duration of checkout view derivations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	sendAllBatch := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "send_all_batch_size",
		Help:    "Number of supplier sections dispatched per send-all run.",
		Buckets: []float64{1, 2, 3, 5, 8, 13, 21},
	})
	reg.MustRegister(dispatched, blocked, deriveTime, sendAllBatch)
	return &DispatchMetrics{
		dispatched:   dispatched,
		blocked:      blocked,
		deriveTime:   deriveTime,
		sendAllBatch: sendAllBatch,
	}
}

// IncDispatched increments the dispatch counter for the given channel.
func (m *DispatchMetrics) IncDispatched(channel string) {
	if m == nil || m.dispatched == nil {
		return
	}
	m.dispatched.WithLabelValues(normalizeLabel(channel)).Inc()
}

// IncBlocked increments the blocked counter for the given guard reason.
func (m *DispatchMetrics) IncBlocked(reason string) {
	if m == nil || m.blocked == nil {
		return
	}
	m.blocked.WithLabelValues(normalizeLabel(reason)).Inc()
}

// ObserveDerivation records how long a checkout derivation took.
func (m *DispatchMetrics) ObserveDerivation(operation string, duration time.Duration) {
	if m == nil || m.deriveTime == nil {
		return
	}
	m.deriveTime.WithLabelValues(normalizeLabel(operation)).Observe(duration.Seconds())
}

// ObserveSendAllBatch records the section count of a send-all run.
func (m *DispatchMetrics) ObserveSendAllBatch(count int) {
	if m == nil || m.sendAllBatch == nil {
		return
	}
	m.sendAllBatch.Observe(float64(count))
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
