package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckoutMetricsExportsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCheckoutMetrics(reg)
	m.ObserveIntent(OutcomeSuccess, 120*time.Millisecond)
	m.ObserveIntent(OutcomeFailure, 80*time.Millisecond)
	m.IncRecord(OutcomeUnrecorded)
	m.IncTransition(OutcomeSuccess)
	m.IncTransition(OutcomeNoop)
	m.IncTransition(OutcomeNoop)

	mfs, err := reg.Gather()
	require.NoError(t, err)

	got, err := fetchCounterValue(mfs, "payments_intents_total", map[string]string{"outcome": OutcomeSuccess})
	require.NoError(t, err)
	assert.Equal(t, float64(1), got)

	got, err = fetchCounterValue(mfs, "payments_records_total", map[string]string{"outcome": OutcomeUnrecorded})
	require.NoError(t, err)
	assert.Equal(t, float64(1), got)

	got, err = fetchCounterValue(mfs, "payments_transitions_total", map[string]string{"outcome": OutcomeNoop})
	require.NoError(t, err)
	assert.Equal(t, float64(2), got)

	mf := findMetricFamily(mfs, "payments_intent_duration_seconds")
	require.NotNil(t, mf)
	assert.Equal(t, uint64(2), mf.GetMetric()[0].GetHistogram().GetSampleCount())
}

func TestCartAndOutboxMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	cart := NewCartMetrics(reg)
	out := NewOutboxMetrics(reg)
	cart.IncAdjustment("decrease", OutcomeNoop)
	out.IncPublish("payment_paid", OutcomeSuccess)
	out.IncPublish("", OutcomeFailure)

	mfs, err := reg.Gather()
	require.NoError(t, err)

	got, err := fetchCounterValue(mfs, "cart_adjustments_total", map[string]string{"direction": "decrease", "outcome": OutcomeNoop})
	require.NoError(t, err)
	assert.Equal(t, float64(1), got)

	got, err = fetchCounterValue(mfs, "outbox_publish_total", map[string]string{"event_type": "unknown", "outcome": OutcomeFailure})
	require.NoError(t, err)
	assert.Equal(t, float64(1), got)
}

func TestHTTPMetricsUsesRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)
	m.Observe("PATCH", "/cart/{id}/increase", 200, 5*time.Millisecond)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	got, err := fetchCounterValue(mfs, "http_requests_total", map[string]string{"route": "/cart/{id}/increase", "status": "200"})
	require.NoError(t, err)
	assert.Equal(t, float64(1), got)
}

func TestNilRegistererIsNoop(t *testing.T) {
	NewCheckoutMetrics(nil).ObserveIntent(OutcomeSuccess, time.Second)
	NewCartMetrics(nil).IncAdjustment("increase", OutcomeSuccess)
	NewOutboxMetrics(nil).IncPublish("x", OutcomeSuccess)
	NewHTTPMetrics(nil).Observe("GET", "/", 200, time.Millisecond)

	var m *CheckoutMetrics
	m.IncRecord(OutcomeSuccess)
}

func fetchCounterValue(mfs []*dto.MetricFamily, name string, labels map[string]string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabels(metric.GetLabel(), labels) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing labels %v", name, labels)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabels(pairs []*dto.LabelPair, want map[string]string) bool {
	matched := 0
	for _, pair := range pairs {
		if v, ok := want[pair.GetName()]; ok && v == pair.GetValue() {
			matched++
		}
	}
	return matched == len(want)
}
