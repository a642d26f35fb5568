package observability

import (
	"context"
	"errors"

	"github.com/aretw0/missions/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Rejection reasons used as the "reason" label.
const (
	ReasonIllegal        = "illegal_transition"
	ReasonUnknownTrigger = "unknown_trigger"
	ReasonNotFound       = "not_found"
	ReasonOther          = "other"
)

// Metrics holds the Prometheus collectors fed by mission lifecycle events.
type Metrics struct {
	created     prometheus.Counter
	transitions *prometheus.CounterVec
	rejections  *prometheus.CounterVec
	byState     *prometheus.GaugeVec
}

// NewMetrics creates the collectors and registers them on reg.
// It panics if the collectors are already registered, like prometheus.MustRegister.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		created: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "missions_created_total",
			Help: "Total number of missions created",
		}),
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "missions_transitions_total",
				Help: "Total number of applied transitions",
			},
			[]string{"trigger", "from", "to"},
		),
		rejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "missions_transition_rejections_total",
				Help: "Total number of rejected transition requests",
			},
			[]string{"trigger", "reason"},
		),
		byState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "missions_by_state",
				Help: "Number of missions currently in each state",
			},
			[]string{"state"},
		),
	}
	reg.MustRegister(m.created, m.transitions, m.rejections, m.byState)
	return m
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnCreate: func(_ context.Context, _ *domain.CreatedEvent) {
			m.created.Inc()
			m.byState.WithLabelValues(domain.StateCreated.String()).Inc()
		},
		OnTransition: func(_ context.Context, e *domain.TransitionEvent) {
			m.transitions.WithLabelValues(e.Trigger.String(), e.From.String(), e.To.String()).Inc()
			m.byState.WithLabelValues(e.From.String()).Dec()
			m.byState.WithLabelValues(e.To.String()).Inc()
		},
		OnReject: func(_ context.Context, e *domain.RejectionEvent) {
			m.rejections.WithLabelValues(triggerLabel(e.Trigger), RejectionReason(e.Err)).Inc()
		},
	}
}

// RejectionReason classifies a transition error into a low-cardinality label.
func RejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrIllegalTransition):
		return ReasonIllegal
	case errors.Is(err, domain.ErrUnknownTrigger):
		return ReasonUnknownTrigger
	case errors.Is(err, domain.ErrMissionNotFound):
		return ReasonNotFound
	default:
		return ReasonOther
	}
}

// triggerLabel keeps arbitrary client input out of the label space.
func triggerLabel(raw string) string {
	if t, err := domain.ParseTrigger(raw); err == nil {
		return t.String()
	}
	return "unknown"
}

// Created exposes the creation counter.
func (m *Metrics) Created() prometheus.Counter { return m.created }

// Transitions exposes the applied transitions counter.
func (m *Metrics) Transitions() *prometheus.CounterVec { return m.transitions }

// Rejections exposes the rejected transitions counter.
func (m *Metrics) Rejections() *prometheus.CounterVec { return m.rejections }

// ByState exposes the per-state gauge.
func (m *Metrics) ByState() *prometheus.GaugeVec { return m.byState }
