// Package metrics counts what the engine does. Everything registers on
// a private registry so tests and multiple engines never collide, and
// every method tolerates a nil receiver so callers can run without
// metrics wired at all.
package metrics

import (
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
)

type Metrics struct {
	reg *prometheus.Registry

	notes            prometheus.Counter
	noteSeconds      prometheus.Histogram
	classifyFailures prometheus.Counter
	actions          *prometheus.CounterVec
	remindersFired   prometheus.Counter
	summaries        prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		reg: reg,
		notes: factory.NewCounter(prometheus.CounterOpts{
			Name: "ideario_notes_total",
			Help: "Notes submitted for processing.",
		}),
		noteSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "ideario_note_seconds",
			Help:    "End-to-end processing time per note.",
			Buckets: prometheus.DefBuckets,
		}),
		classifyFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "ideario_classification_failures_total",
			Help: "Notes whose classification produced no usable intent.",
		}),
		actions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ideario_actions_total",
			Help: "Applied actions by kind, ignores included.",
		}, []string{"kind"}),
		remindersFired: factory.NewCounter(prometheus.CounterOpts{
			Name: "ideario_reminders_fired_total",
			Help: "Reminders delivered by the scheduler.",
		}),
		summaries: factory.NewCounter(prometheus.CounterOpts{
			Name: "ideario_summaries_total",
			Help: "Summaries generated and installed.",
		}),
	}
}

// ObserveNote records one processed note and how long it took.
func (m *Metrics) ObserveNote(d time.Duration) {
	if m == nil {
		return
	}
	m.notes.Inc()
	m.noteSeconds.Observe(d.Seconds())
}

// ClassificationFailure records a note that yielded no usable intent.
func (m *Metrics) ClassificationFailure() {
	if m == nil {
		return
	}
	m.classifyFailures.Inc()
}

// ActionApplied records one applied action by its kind name.
func (m *Metrics) ActionApplied(kind string) {
	if m == nil {
		return
	}
	m.actions.WithLabelValues(kind).Inc()
}

// ReminderFired records one delivered reminder.
func (m *Metrics) ReminderFired() {
	if m == nil {
		return
	}
	m.remindersFired.Inc()
}

// SummariesInstalled records n freshly generated summaries.
func (m *Metrics) SummariesInstalled(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.summaries.Add(float64(n))
}

// Registry exposes the private registry for exposition and tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.reg
}

// Dump writes every metric in the text exposition format. The console
// uses it in place of a scrape endpoint.
func (m *Metrics) Dump(w io.Writer) error {
	if m == nil {
		return nil
	}
	families, err := m.reg.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("encode metrics: %w", err)
		}
	}
	return nil
}
