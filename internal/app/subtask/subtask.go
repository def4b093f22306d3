package subtask

import (
	"context"
	"fmt"
	"strings"

	"github.com/oklog/ulid/v2"

	"github.com/obrahub/obra/internal/clock"
	"github.com/obrahub/obra/internal/log"
	"github.com/obrahub/obra/internal/model"
	"github.com/obrahub/obra/internal/storage"
)

// ServiceConfig is the configuration for the subtask service.
type ServiceConfig struct {
	Repository  storage.Repository
	Clock       clock.Clock
	IDGenerator func() string
	Logger      log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}
	if c.Clock == nil {
		c.Clock = clock.Real{}
	}
	if c.IDGenerator == nil {
		c.IDGenerator = func() string { return ulid.Make().String() }
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Subtask"})
	return nil
}

// Service manages the task checklists.
type Service struct {
	repo   storage.Repository
	clock  clock.Clock
	newID  func() string
	logger log.Logger
}

// NewService creates a new subtask service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		clock:  cfg.Clock,
		newID:  cfg.IDGenerator,
		logger: cfg.Logger,
	}, nil
}

// AddRequest appends a checklist item.
type AddRequest struct {
	TaskID string
	Actor  model.User
	Title  string
}

// Add appends a new uncompleted subtask.
func (s *Service) Add(ctx context.Context, req AddRequest) (*model.Task, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, model.NewValidationError(model.ValidationKindInvalidValue, "subtask title is required")
	}

	return s.mutate(ctx, req.TaskID, req.Actor, func(t *model.Task) error {
		t.Subtasks = append(t.Subtasks, model.Subtask{ID: s.newID(), Title: title})
		return nil
	})
}

// ToggleRequest flips the completion of a checklist item.
type ToggleRequest struct {
	TaskID    string
	Actor     model.User
	SubtaskID string
}

// Toggle flips the subtask completed flag.
func (s *Service) Toggle(ctx context.Context, req ToggleRequest) (*model.Task, error) {
	return s.mutate(ctx, req.TaskID, req.Actor, func(t *model.Task) error {
		for i := range t.Subtasks {
			if t.Subtasks[i].ID == req.SubtaskID {
				t.Subtasks[i].Completed = !t.Subtasks[i].Completed
				return nil
			}
		}
		return fmt.Errorf("subtask %s of task %s: %w", req.SubtaskID, t.ID, model.ErrNotFound)
	})
}

// RemoveRequest removes a checklist item. Removal must be confirmed.
type RemoveRequest struct {
	TaskID    string
	Actor     model.User
	SubtaskID string
	Confirmed bool
}

// Remove deletes the subtask. Without confirmation nothing changes and the
// task is returned as is.
func (s *Service) Remove(ctx context.Context, req RemoveRequest) (*model.Task, error) {
	if !req.Confirmed {
		if err := req.Actor.Authorize(model.ActionManageChecks); err != nil {
			return nil, err
		}
		task, err := s.repo.GetTask(ctx, req.TaskID)
		if err != nil {
			return nil, fmt.Errorf("could not get task: %w", err)
		}
		s.logger.Debugf("Removal of subtask %s not confirmed, ignoring", req.SubtaskID)
		return task, nil
	}

	return s.mutate(ctx, req.TaskID, req.Actor, func(t *model.Task) error {
		for i, st := range t.Subtasks {
			if st.ID == req.SubtaskID {
				t.Subtasks = append(t.Subtasks[:i], t.Subtasks[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("subtask %s of task %s: %w", req.SubtaskID, t.ID, model.ErrNotFound)
	})
}

func (s *Service) mutate(ctx context.Context, taskID string, actor model.User, f func(t *model.Task) error) (*model.Task, error) {
	if err := actor.Authorize(model.ActionManageChecks); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	updated, err := s.repo.MutateTask(ctx, taskID, func(t *model.Task) (*model.HistoryEntry, error) {
		if err := f(t); err != nil {
			return nil, err
		}
		t.UpdatedAt = now
		return nil, nil
	})
	if err != nil {
		return nil, fmt.Errorf("could not update checklist: %w", err)
	}

	s.logger.Debugf("Task %s checklist updated: %d/%d done", updated.ID, completed(updated.Subtasks), len(updated.Subtasks))
	return updated, nil
}

func completed(sts []model.Subtask) int {
	n := 0
	for _, st := range sts {
		if st.Completed {
			n++
		}
	}
	return n
}
