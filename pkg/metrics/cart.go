package metrics

import "github.com/prometheus/client_golang/prometheus"

// CartMetrics counts quantity adjustments.
type CartMetrics struct {
	adjustments *prometheus.CounterVec
}

func NewCartMetrics(reg prometheus.Registerer) *CartMetrics {
	if reg == nil {
		return &CartMetrics{}
	}
	adjustments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_adjustments_total",
		Help: "Cart quantity adjustments by direction and outcome.",
	}, []string{"direction", "outcome"})
	reg.MustRegister(adjustments)
	return &CartMetrics{adjustments: adjustments}
}

func (c *CartMetrics) IncAdjustment(direction, outcome string) {
	if c == nil || c.adjustments == nil {
		return
	}
	c.adjustments.WithLabelValues(normalizeLabel(direction), normalizeLabel(outcome)).Inc()
}
