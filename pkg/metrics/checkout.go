package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeSuccess    = "success"
	OutcomeFailure    = "failure"
	OutcomeRejected   = "rejected"
	OutcomeNoop       = "noop"
	OutcomeUnrecorded = "unrecorded"
)

// CheckoutMetrics counts each phase of the checkout saga.
type CheckoutMetrics struct {
	intents       *prometheus.CounterVec
	intentLatency prometheus.Histogram
	records       *prometheus.CounterVec
	transitions   *prometheus.CounterVec
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	intents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payments_intents_total",
		Help: "Payment intent creation attempts by outcome.",
	}, []string{"outcome"})
	intentLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "payments_intent_duration_seconds",
		Help:    "Latency of the provider intent creation call.",
		Buckets: prometheus.DefBuckets,
	})
	records := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payments_records_total",
		Help: "Payment record persistence attempts by outcome.",
	}, []string{"outcome"})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payments_transitions_total",
		Help: "Pending to paid transitions by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(intents, intentLatency, records, transitions)
	return &CheckoutMetrics{
		intents:       intents,
		intentLatency: intentLatency,
		records:       records,
		transitions:   transitions,
	}
}

// ObserveIntent records one provider call and its latency.
func (c *CheckoutMetrics) ObserveIntent(outcome string, duration time.Duration) {
	if c == nil || c.intents == nil {
		return
	}
	c.intents.WithLabelValues(normalizeLabel(outcome)).Inc()
	c.intentLatency.Observe(duration.Seconds())
}

func (c *CheckoutMetrics) IncRecord(outcome string) {
	if c == nil || c.records == nil {
		return
	}
	c.records.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func (c *CheckoutMetrics) IncTransition(outcome string) {
	if c == nil || c.transitions == nil {
		return
	}
	c.transitions.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
