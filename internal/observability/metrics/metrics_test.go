package metrics

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/dental-clinic-desk/internal/encounter"
)

func TestEncounterMetricsPublish(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewEncounterMetrics(reg)

	require.NoError(t, m.Publish(context.Background(), encounter.Outcome{Stage: encounter.StageNone, Total: decimal.NewFromInt(800)}))
	require.NoError(t, m.Publish(context.Background(), encounter.Outcome{Stage: encounter.StagePayment, Total: decimal.NewFromInt(500)}))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.commits.WithLabelValues("none")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.commits.WithLabelValues("payment")))
	assert.Equal(t, 800.0, testutil.ToFloat64(m.collected))
}

func TestEncounterMetricsGauges(t *testing.T) {
	m := NewEncounterMetrics(prometheus.NewRegistry())
	m.SetOpenSessions(3)
	m.ObserveEvicted(2)
	m.ObserveEvicted(0)
	m.ObserveRecommendation("adult", "toothache")

	assert.Equal(t, 3.0, testutil.ToFloat64(m.openSessions))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.evicted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.recommendations.WithLabelValues("adult", "toothache")))
}

func TestEncounterMetricsNilSafe(t *testing.T) {
	var m *EncounterMetrics
	assert.NoError(t, m.Publish(context.Background(), encounter.Outcome{}))
	m.SetOpenSessions(1)
	m.ObserveEvicted(1)
	m.ObserveRecommendation("child", "other")
}
