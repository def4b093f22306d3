package create

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

// ServiceConfig is the configuration for the create service.
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
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Create"})
	return nil
}

// Service handles task creation.
type Service struct {
	repo   storage.Repository
	clock  clock.Clock
	newID  func() string
	logger log.Logger
}

// NewService creates a new create service.
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

// Request is the task draft. Title, executor, stage, system and both expected
// dates are required. Subtasks are the initial checklist titles.
type Request struct {
	Actor             model.User
	Title             string
	Description       string
	Stage             model.Stage
	System            model.System
	Specialist        string
	Executor          string
	StartExpected     model.Date
	EndExpected       model.Date
	IsTransitionPoint bool
	TransitionTag     string
	Subtasks          []string
}

// Run creates a new task waiting to be started.
func (s *Service) Run(ctx context.Context, req Request) (*model.Task, error) {
	if err := req.Actor.Authorize(model.ActionCreateTask); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, model.NewValidationError(model.ValidationKindInvalidValue, "task title is required")
	}
	executor := strings.TrimSpace(req.Executor)
	if executor == "" {
		return nil, model.NewValidationError(model.ValidationKindInvalidValue, "task executor is required")
	}
	if req.Stage == "" {
		return nil, model.NewValidationError(model.ValidationKindInvalidValue, "task stage is required")
	}
	if req.System == "" {
		return nil, model.NewValidationError(model.ValidationKindInvalidValue, "task system is required")
	}
	if req.StartExpected.IsZero() || req.EndExpected.IsZero() {
		return nil, model.NewValidationError(model.ValidationKindInvalidValue, "task expected start and end dates are required")
	}
	if req.EndExpected.Before(req.StartExpected) {
		return nil, model.NewValidationError(model.ValidationKindInvalidValue, "expected end %s is before expected start %s", req.EndExpected, req.StartExpected)
	}

	now := s.clock.Now()
	task := model.Task{
		ID:                s.newID(),
		Title:             title,
		Description:       req.Description,
		Stage:             req.Stage,
		System:            req.System,
		Specialist:        strings.TrimSpace(req.Specialist),
		Executor:          executor,
		StartExpected:     req.StartExpected,
		EndExpected:       req.EndExpected,
		Status:            model.StatusAwaitingStart,
		Gate:              model.PendingGate(),
		IsTransitionPoint: req.IsTransitionPoint,
		TransitionTag:     strings.TrimSpace(req.TransitionTag),
		Photos:            []model.Photo{},
		Subtasks:          make([]model.Subtask, 0, len(req.Subtasks)),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	for _, st := range req.Subtasks {
		st = strings.TrimSpace(st)
		if st == "" {
			return nil, model.NewValidationError(model.ValidationKindInvalidValue, "subtask title is required")
		}
		task.Subtasks = append(task.Subtasks, model.Subtask{ID: s.newID(), Title: st})
	}

	if err := task.Validate(); err != nil {
		return nil, fmt.Errorf("invalid task: %w", err)
	}

	if err := s.repo.CreateTask(ctx, task); err != nil {
		return nil, fmt.Errorf("could not save task: %w", err)
	}

	s.logger.Infof("Created task: %s (%s)", task.Title, task.ID)

	return &task, nil
}
