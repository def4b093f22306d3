package workflow

import (
	"strings"

	"github.com/obrahub/obra/internal/model"
)

// DecideGate records the approver decision on an executed task. Only the
// latest decision is kept.
func (e *Engine) DecideGate(task model.Task, decision model.GateStatus, approver model.User) (model.Task, error) {
	if err := approver.Authorize(model.ActionDecideGate); err != nil {
		return task, err
	}
	if task.Status != model.StatusExecuted {
		return task, model.NewValidationError(model.ValidationKindGateNotReachable, "task %s is %q, only executed tasks have a quality gate", task.ID, task.Status)
	}
	if !decision.IsDecision() {
		return task, model.NewValidationError(model.ValidationKindInvalidValue, "%q is not a gate decision", decision)
	}

	now := e.clock.Now()
	updated := task.Clone()
	updated.Gate.Status = decision
	updated.Gate.CheckedBy = approver.Name
	updated.Gate.Date = &now
	updated.UpdatedAt = now

	e.logger.Debugf("task %s: gate %s by %s", task.ID, decision, approver.ID)
	return updated, nil
}

// UpdateGateNotes replaces the gate notes of an executed task.
func (e *Engine) UpdateGateNotes(task model.Task, notes string, actor model.User) (model.Task, error) {
	if err := actor.Authorize(model.ActionEditGate); err != nil {
		return task, err
	}
	if task.Status != model.StatusExecuted {
		return task, model.NewValidationError(model.ValidationKindGateNotReachable, "task %s is %q, only executed tasks have a quality gate", task.ID, task.Status)
	}

	updated := task.Clone()
	updated.Gate.Notes = notes
	updated.UpdatedAt = e.clock.Now()
	return updated, nil
}

// UpdateBlockReason replaces the reason of a blocked task. It doesn't record history.
func (e *Engine) UpdateBlockReason(task model.Task, reason string, actor model.User) (model.Task, error) {
	if err := actor.Authorize(model.ActionChangeStatus); err != nil {
		return task, err
	}
	if task.Status != model.StatusBlocked {
		return task, model.NewValidationError(model.ValidationKindNotBlocked, "task %s is not blocked", task.ID)
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return task, model.NewValidationError(model.ValidationKindBlockReasonRequired, "a reason is required to block task %s", task.ID)
	}

	updated := task.Clone()
	updated.BlockedReason = reason
	updated.UpdatedAt = e.clock.Now()
	return updated, nil
}
