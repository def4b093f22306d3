package prometheus

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/obrahub/obra/internal/metrics"
	"github.com/obrahub/obra/internal/model"
)

const prefix = "obra"

type recorder struct {
	transitions         *prometheus.CounterVec
	rejections          *prometheus.CounterVec
	gateDecisions       *prometheus.CounterVec
	persistenceWarnings *prometheus.CounterVec
}

// NewRecorder returns a Prometheus metrics recorder registered on reg.
func NewRecorder(reg prometheus.Registerer) metrics.Recorder {
	factory := promauto.With(reg)

	return recorder{
		transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: prefix,
			Name:      "status_transitions_total",
			Help:      "Total number of committed task status transitions.",
		}, []string{"from", "to"}),

		rejections: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: prefix,
			Name:      "rejections_total",
			Help:      "Total number of task changes rejected by validation or permission checks.",
		}, []string{"operation", "reason"}),

		gateDecisions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: prefix,
			Name:      "gate_decisions_total",
			Help:      "Total number of quality gate decisions.",
		}, []string{"decision"}),

		persistenceWarnings: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: prefix,
			Name:      "persistence_warnings_total",
			Help:      "Total number of failed durable store operations.",
		}, []string{"op"}),
	}
}

func (r recorder) ObserveTransition(_ context.Context, from, to model.Status) {
	r.transitions.WithLabelValues(from.Slug(), to.Slug()).Inc()
}

func (r recorder) IncRejection(_ context.Context, operation, reason string) {
	r.rejections.WithLabelValues(operation, reason).Inc()
}

func (r recorder) IncGateDecision(_ context.Context, decision model.GateStatus) {
	r.gateDecisions.WithLabelValues(decision.Slug()).Inc()
}

func (r recorder) IncPersistenceWarning(_ context.Context, op string) {
	r.persistenceWarnings.WithLabelValues(op).Inc()
}
