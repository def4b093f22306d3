// Package workflow is the task status transition engine and the quality gate
// workflow. Every operation takes a task value and returns the updated copy,
// the caller is in charge of committing it.
package workflow

import (
	"fmt"
	"strings"

	"github.com/oklog/ulid/v2"

	"github.com/obrahub/obra/internal/clock"
	"github.com/obrahub/obra/internal/log"
	"github.com/obrahub/obra/internal/model"
)

// DefaultSwipeThreshold is the swipe offset that triggers a status change.
const DefaultSwipeThreshold = 100

// EngineConfig is the configuration for the engine.
type EngineConfig struct {
	Clock          clock.Clock
	IDGenerator    func() string
	SwipeThreshold float64
	Logger         log.Logger
}

func (c *EngineConfig) defaults() error {
	if c.Clock == nil {
		c.Clock = clock.Real{}
	}
	if c.IDGenerator == nil {
		c.IDGenerator = func() string { return ulid.Make().String() }
	}
	if c.SwipeThreshold < 0 {
		return fmt.Errorf("swipe threshold can't be negative")
	}
	if c.SwipeThreshold == 0 {
		c.SwipeThreshold = DefaultSwipeThreshold
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "workflow.Engine"})
	return nil
}

// Engine applies status transitions and gate decisions on tasks.
type Engine struct {
	clock          clock.Clock
	newID          func() string
	swipeThreshold float64
	logger         log.Logger
}

// NewEngine returns a new workflow engine.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Engine{
		clock:          cfg.Clock,
		newID:          cfg.IDGenerator,
		swipeThreshold: cfg.SwipeThreshold,
		logger:         cfg.Logger,
	}, nil
}

// TransitionContext is who requests a status change and the extra data it needs.
type TransitionContext struct {
	Actor model.User
	// BlockReason is required when the target status is blocked.
	BlockReason string
}

// Transition is the outcome of a status change request.
type Transition struct {
	// Task is the updated task, or the unchanged one when nothing changed.
	Task model.Task
	// Previous is the status before the request.
	Previous model.Status
	// Attempted is the status the request tried to reach, set even on rejection.
	Attempted model.Status
	// Entry is the audit record of the change, nil when nothing changed.
	Entry *model.HistoryEntry
	// NotifyManager is true when the task entered the blocked status.
	NotifyManager bool
	Changed       bool
}

// ApplyStatus sets the task status explicitly.
func (e *Engine) ApplyStatus(task model.Task, status model.Status, tctx TransitionContext) (Transition, error) {
	return e.Apply(task, SetEvent(status), tctx)
}

// Place moves the task card to a board column.
func (e *Engine) Place(task model.Task, column Column, tctx TransitionContext) (Transition, error) {
	return e.Apply(task, BoardEvent(column), tctx)
}

// Swipe maps a swipe offset to a status change. Offsets under the threshold
// return an unchanged transition.
func (e *Engine) Swipe(task model.Task, offset float64, tctx TransitionContext) (Transition, error) {
	dir, ok := DirectionOf(offset, e.swipeThreshold)
	if !ok {
		return Transition{Task: task, Previous: task.Status, Attempted: task.Status}, nil
	}
	return e.Apply(task, SwipeEvent(dir), tctx)
}

// Apply resolves the event with the transition table and applies the result.
func (e *Engine) Apply(task model.Task, ev Event, tctx TransitionContext) (Transition, error) {
	res := Transition{Task: task, Previous: task.Status, Attempted: task.Status}

	to, err := Target(task.Status, ev)
	if err != nil {
		if ev.Kind == EventSet {
			res.Attempted = model.Status(ev.Arg)
		}
		return res, err
	}
	res.Attempted = to

	if to == task.Status {
		return res, nil
	}

	if err := tctx.Actor.Authorize(model.ActionChangeStatus); err != nil {
		return res, err
	}

	reason := strings.TrimSpace(tctx.BlockReason)
	if to == model.StatusBlocked && reason == "" {
		return res, model.NewValidationError(model.ValidationKindBlockReasonRequired, "a reason is required to block task %s", task.ID)
	}
	if to == model.StatusExecuted && task.System.RequiresPhotos() && len(task.Photos) == 0 {
		return res, model.NewValidationError(model.ValidationKindPhotosRequired, "%s task %s requires at least one photo to be executed", task.System, task.ID)
	}

	now := e.clock.Now()
	updated := task.Clone()
	updated.Status = to
	updated.UpdatedAt = now
	updated.BlockedReason = ""
	if to == model.StatusBlocked {
		updated.BlockedReason = reason
	}
	if (task.Status == model.StatusExecuted) != (to == model.StatusExecuted) {
		updated.Gate = model.PendingGate()
	}

	res.Task = updated
	res.Changed = true
	res.NotifyManager = to == model.StatusBlocked
	res.Entry = &model.HistoryEntry{
		ID:             e.newID(),
		TaskID:         task.ID,
		PreviousStatus: task.Status,
		NewStatus:      to,
		Timestamp:      now,
		UserID:         tctx.Actor.ID,
		UserName:       tctx.Actor.Name,
		UserRole:       tctx.Actor.Role,
	}

	e.logger.Debugf("task %s: %s -> %s by %s (%s)", task.ID, task.Status, to, tctx.Actor.ID, ev)
	return res, nil
}
