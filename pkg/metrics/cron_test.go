package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCronJobMetricsObserveRun(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCronJobMetrics(reg)

	before := float64(time.Now().Unix())
	m.ObserveRun("invoice_overdue", 250*time.Millisecond, nil)
	m.ObserveRun("invoice_overdue", time.Second, nil)
	m.ObserveRun("low_stock", time.Second, errors.New("db down"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.runs.WithLabelValues("invoice_overdue", ResultSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("low_stock", ResultFailure)))
	assert.GreaterOrEqual(t, testutil.ToFloat64(m.lastSuccess.WithLabelValues("invoice_overdue")), before)

	// a failing job never gets a last-success sample
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != "atelier_cron_job_last_success_timestamp_seconds" {
			continue
		}
		assert.Len(t, mf.GetMetric(), 1)
	}
	assert.Equal(t, 2, testutil.CollectAndCount(m.duration))
}

func TestWebhookMetricsByTypeAndOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWebhookMetrics(reg)
	m.Observe("invoice.paid", OutcomeProcessed)
	m.Observe("invoice.paid", OutcomeProcessed)
	m.Observe("", OutcomeRejected)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.events.WithLabelValues("invoice.paid", OutcomeProcessed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.events.WithLabelValues("unknown", OutcomeRejected)),
		"rejected deliveries have no trusted type")
}

func TestHTTPMetricsLabels(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)
	m.Observe("GET", "/api/v1/quotes/{id}", 200, 10*time.Millisecond)
	m.Observe("GET", "", 404, time.Millisecond)

	count, err := testutil.GatherAndCount(reg, "atelier_http_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestNilRegistererIsNoop(t *testing.T) {
	NewCronJobMetrics(nil).ObserveRun("x", time.Second, nil)
	NewWebhookMetrics(nil).Observe("x", OutcomeFailed)
	NewHTTPMetrics(nil).Observe("GET", "/", 200, time.Millisecond)
	var m *WebhookMetrics
	m.Observe("x", OutcomeIgnored)
	var c *CronJobMetrics
	c.ObserveRun("x", 0, errors.New("boom"))
}
