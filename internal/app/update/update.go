package update

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/obrahub/obra/internal/clock"
	"github.com/obrahub/obra/internal/log"
	"github.com/obrahub/obra/internal/metrics"
	"github.com/obrahub/obra/internal/model"
	"github.com/obrahub/obra/internal/storage"
	"github.com/obrahub/obra/internal/workflow"
)

// Field is an editable task field.
type Field string

const (
	FieldTitle           Field = "title"
	FieldDescription     Field = "description"
	FieldStage           Field = "stage"
	FieldSystem          Field = "system"
	FieldSpecialist      Field = "specialist"
	FieldExecutor        Field = "executor"
	FieldStartExpected   Field = "start"
	FieldEndExpected     Field = "end"
	FieldTransitionPoint Field = "transition-point"
	FieldTransitionTag   Field = "transition-tag"
	// FieldBlockReason edits the reason of a blocked task.
	FieldBlockReason Field = "block-reason"
)

// Fields are all the editable fields.
var Fields = []Field{
	FieldTitle,
	FieldDescription,
	FieldStage,
	FieldSystem,
	FieldSpecialist,
	FieldExecutor,
	FieldStartExpected,
	FieldEndExpected,
	FieldTransitionPoint,
	FieldTransitionTag,
	FieldBlockReason,
}

// ServiceConfig is the configuration for the update service.
type ServiceConfig struct {
	Engine     *workflow.Engine
	Repository storage.Repository
	Clock      clock.Clock
	Metrics    metrics.Recorder
	Logger     log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Engine == nil {
		return fmt.Errorf("engine is required")
	}
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}
	if c.Clock == nil {
		c.Clock = clock.Real{}
	}
	if c.Metrics == nil {
		c.Metrics = metrics.Noop
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Update"})
	return nil
}

// Service edits task fields.
type Service struct {
	engine  *workflow.Engine
	repo    storage.Repository
	clock   clock.Clock
	metrics metrics.Recorder
	logger  log.Logger
}

// NewService creates a new update service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		engine:  cfg.Engine,
		repo:    cfg.Repository,
		clock:   cfg.Clock,
		metrics: cfg.Metrics,
		logger:  cfg.Logger,
	}, nil
}

// Request is a single field edit. Value is the text form of the new value.
type Request struct {
	TaskID string
	Actor  model.User
	Field  Field
	Value  string
}

// Run sets the field on the task. Status, gate, photos and subtasks have
// their own operations and are not editable here.
func (s *Service) Run(ctx context.Context, req Request) (*model.Task, error) {
	var rejected bool
	updated, err := s.repo.MutateTask(ctx, req.TaskID, func(t *model.Task) (*model.HistoryEntry, error) {
		u, err := s.apply(*t, req)
		if err != nil {
			rejected = true
			return nil, err
		}
		*t = u
		return nil, nil
	})
	if err != nil {
		if rejected {
			s.metrics.IncRejection(ctx, "update", metrics.RejectionReason(err))
			return nil, fmt.Errorf("could not update %s of task %s: %w", req.Field, req.TaskID, err)
		}
		return nil, fmt.Errorf("could not update task: %w", err)
	}

	s.logger.Debugf("Task %s field %s updated by %s", updated.ID, req.Field, req.Actor.ID)
	return updated, nil
}

// apply sets a single field. Rules spanning several fields belong to the
// lifecycle operations, not here.
func (s *Service) apply(task model.Task, req Request) (model.Task, error) {
	if req.Field == FieldBlockReason {
		return s.engine.UpdateBlockReason(task, req.Value, req.Actor)
	}

	if err := req.Actor.Authorize(model.ActionEditTask); err != nil {
		return task, err
	}

	updated := task.Clone()
	value := strings.TrimSpace(req.Value)
	switch req.Field {
	case FieldTitle:
		updated.Title = value
	case FieldDescription:
		updated.Description = req.Value
	case FieldStage:
		stage, err := model.ParseStage(value)
		if err != nil {
			return task, err
		}
		updated.Stage = stage
	case FieldSystem:
		system, err := model.ParseSystem(value)
		if err != nil {
			return task, err
		}
		updated.System = system
	case FieldSpecialist:
		updated.Specialist = value
	case FieldExecutor:
		updated.Executor = value
	case FieldStartExpected, FieldEndExpected:
		d, err := model.ParseDate(value)
		if err != nil {
			return task, model.NewValidationError(model.ValidationKindInvalidValue, "invalid date %q", value)
		}
		if req.Field == FieldStartExpected {
			updated.StartExpected = d
		} else {
			updated.EndExpected = d
		}
	case FieldTransitionPoint:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return task, model.NewValidationError(model.ValidationKindInvalidValue, "invalid boolean %q", value)
		}
		updated.IsTransitionPoint = b
	case FieldTransitionTag:
		updated.TransitionTag = value
	default:
		return task, model.NewValidationError(model.ValidationKindInvalidValue, "unknown field %q", req.Field)
	}

	updated.UpdatedAt = s.clock.Now()
	return updated, nil
}
