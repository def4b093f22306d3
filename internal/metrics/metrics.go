package metrics

import (
	"context"
	"errors"

	"github.com/obrahub/obra/internal/model"
)

// Recorder knows how to record the domain metrics.
type Recorder interface {
	// ObserveTransition records a committed status change.
	ObserveTransition(ctx context.Context, from, to model.Status)
	// IncRejection records a change rejected by a validation or a permission check.
	IncRejection(ctx context.Context, operation, reason string)
	// IncGateDecision records a quality gate decision.
	IncGateDecision(ctx context.Context, decision model.GateStatus)
	// IncPersistenceWarning records a failed load or save on the durable store.
	IncPersistenceWarning(ctx context.Context, op string)
}

// Noop recorder doesn't record anything.
const Noop = noop(0)

type noop int

func (noop) ObserveTransition(context.Context, model.Status, model.Status) {}
func (noop) IncRejection(context.Context, string, string) {}
func (noop) IncGateDecision(context.Context, model.GateStatus) {}
func (noop) IncPersistenceWarning(context.Context, string) {}

// RejectionReason returns the reason label of a rejected change error.
func RejectionReason(err error) string {
	if kind, ok := model.ValidationKindOf(err); ok {
		return string(kind)
	}
	switch {
	case errors.Is(err, model.ErrNotAllowed):
		return "not-allowed"
	case errors.Is(err, model.ErrNotFound):
		return "not-found"
	case errors.Is(err, model.ErrNotValid):
		return "not-valid"
	}
	return "unknown"
}
