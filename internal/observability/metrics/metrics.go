package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/iliyamo/dental-clinic-desk/internal/encounter"
)

// EncounterMetrics exposes counters for the front-desk workflow.
type EncounterMetrics struct {
	commits         *prometheus.CounterVec
	collected       prometheus.Counter
	openSessions    prometheus.Gauge
	evicted         prometheus.Counter
	recommendations *prometheus.CounterVec
}

func NewEncounterMetrics(reg prometheus.Registerer) *EncounterMetrics {
	m := &EncounterMetrics{
		commits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "encounter",
			Name:      "commits_total",
			Help:      "Commit attempts by failure stage (none on success)",
		}, []string{"stage"}),
		collected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "encounter",
			Name:      "collected_amount_total",
			Help:      "Sum of billed totals for committed encounters",
		}),
		openSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "clinic",
			Subsystem: "encounter",
			Name:      "open_sessions",
			Help:      "Encounter sessions currently held in memory",
		}),
		evicted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "encounter",
			Name:      "evicted_sessions_total",
			Help:      "Idle sessions evicted by the sweeper",
		}),
		recommendations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "recommend",
			Name:      "requests_total",
			Help:      "Treatment recommendations served",
		}, []string{"age_group", "reason"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.commits, m.collected, m.openSessions, m.evicted, m.recommendations)
	return m
}

// Publish implements encounter.Sink.
func (m *EncounterMetrics) Publish(_ context.Context, o encounter.Outcome) error {
	if m == nil {
		return nil
	}
	m.commits.WithLabelValues(string(o.Stage)).Inc()
	if o.Success() {
		m.collected.Add(o.Total.InexactFloat64())
	}
	return nil
}

func (m *EncounterMetrics) SetOpenSessions(n int) {
	if m == nil {
		return
	}
	m.openSessions.Set(float64(n))
}

func (m *EncounterMetrics) ObserveEvicted(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.evicted.Add(float64(n))
}

func (m *EncounterMetrics) ObserveRecommendation(ageGroup, reason string) {
	if m == nil {
		return
	}
	m.recommendations.WithLabelValues(ageGroup, reason).Inc()
}
