package assessment

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/brigade/fieldops/internal/triage"
)

// Metrics holds Prometheus metrics for assessments.
type Metrics struct {
	AssessmentsStarted prometheus.Counter
	EventsTotal        *prometheus.CounterVec
	EventDuration      prometheus.Histogram
	AlertsTotal        *prometheus.CounterVec
	HardStopsTotal     *prometheus.CounterVec
	OverridesTotal     *prometheus.CounterVec
}

// NewMetrics registers and returns assessment metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		AssessmentsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fieldops_assessments_started_total",
			Help: "Total victim assessments started.",
		}),
		EventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fieldops_assessment_events_total",
			Help: "Answer events applied, by event type and result.",
		}, []string{"type", "result"}),
		EventDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "fieldops_assessment_event_duration_seconds",
			Help:    "Time to load, apply and store one answer event.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms .. ~2s
		}),
		AlertsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fieldops_critical_alerts_total",
			Help: "Critical alerts raised, by step and severity.",
		}, []string{"step", "severity"}),
		HardStopsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fieldops_hard_stops_total",
			Help: "Assessments blocked by a hard stop, by step.",
		}, []string{"step"}),
		OverridesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fieldops_hard_stop_overrides_total",
			Help: "Hard stops cleared by an operator override, by step.",
		}, []string{"step"}),
	}

	reg.MustRegister(
		m.AssessmentsStarted,
		m.EventsTotal,
		m.EventDuration,
		m.AlertsTotal,
		m.HardStopsTotal,
		m.OverridesTotal,
	)

	return m
}

// Hooks returns engine hooks that increment the corresponding metrics.
func (m *Metrics) Hooks() triage.Hooks {
	return triage.Hooks{
		OnAlert: func(step triage.Step, c triage.Classification) {
			m.AlertsTotal.WithLabelValues(string(step), string(c.Severity)).Inc()
		},
		OnHardStop: func(step triage.Step, _ string) {
			m.HardStopsTotal.WithLabelValues(string(step)).Inc()
		},
		OnOverride: func(step triage.Step, _ string) {
			m.OverridesTotal.WithLabelValues(string(step)).Inc()
		},
	}
}
