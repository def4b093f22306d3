package gate

import (
	"context"
	"fmt"

	"github.com/obrahub/obra/internal/log"
	"github.com/obrahub/obra/internal/metrics"
	"github.com/obrahub/obra/internal/model"
	"github.com/obrahub/obra/internal/storage"
	"github.com/obrahub/obra/internal/workflow"
)

// ServiceConfig is the configuration for the gate service.
type ServiceConfig struct {
	Engine     *workflow.Engine
	Repository storage.Repository
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
	if c.Metrics == nil {
		c.Metrics = metrics.Noop
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Gate"})
	return nil
}

// Service handles the quality gate of executed tasks.
type Service struct {
	engine  *workflow.Engine
	repo    storage.Repository
	metrics metrics.Recorder
	logger  log.Logger
}

// NewService creates a new gate service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		engine:  cfg.Engine,
		repo:    cfg.Repository,
		metrics: cfg.Metrics,
		logger:  cfg.Logger,
	}, nil
}

// Request is a gate decision, a gate notes edit or both.
type Request struct {
	TaskID   string
	Actor    model.User
	Decision model.GateStatus
	// Notes replaces the gate notes when set.
	Notes *string
}

// Run applies the decision and the notes on the task quality gate.
func (s *Service) Run(ctx context.Context, req Request) (*model.Task, error) {
	if req.Decision == "" && req.Notes == nil {
		return nil, fmt.Errorf("a decision or notes are required: %w", model.ErrNotValid)
	}

	var rejection string
	updated, err := s.repo.MutateTask(ctx, req.TaskID, func(t *model.Task) (*model.HistoryEntry, error) {
		u := *t
		var err error
		if req.Decision != "" {
			u, err = s.engine.DecideGate(u, req.Decision, req.Actor)
			if err != nil {
				rejection = "gate"
				return nil, fmt.Errorf("could not decide gate of task %s: %w", t.ID, err)
			}
		}
		if req.Notes != nil {
			u, err = s.engine.UpdateGateNotes(u, *req.Notes, req.Actor)
			if err != nil {
				rejection = "gate-notes"
				return nil, fmt.Errorf("could not update gate notes of task %s: %w", t.ID, err)
			}
		}
		*t = u
		return nil, nil
	})
	if err != nil {
		if rejection != "" {
			s.metrics.IncRejection(ctx, rejection, metrics.RejectionReason(err))
			return nil, err
		}
		return nil, fmt.Errorf("could not update task: %w", err)
	}

	if req.Decision != "" {
		s.metrics.IncGateDecision(ctx, req.Decision)
		s.logger.Infof("Task %s gate %q by %s", updated.ID, req.Decision, req.Actor.Name)
	}

	return updated, nil
}
