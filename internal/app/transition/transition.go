package transition

import (
	"context"
	"fmt"

	"github.com/obrahub/obra/internal/log"
	"github.com/obrahub/obra/internal/metrics"
	"github.com/obrahub/obra/internal/model"
	"github.com/obrahub/obra/internal/notify"
	"github.com/obrahub/obra/internal/storage"
	"github.com/obrahub/obra/internal/workflow"
)

// ServiceConfig is the configuration for the transition service.
type ServiceConfig struct {
	Engine     *workflow.Engine
	Repository storage.Repository
	Notifier   notify.Notifier
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
	if c.Notifier == nil {
		c.Notifier = notify.Noop
	}
	if c.Metrics == nil {
		c.Metrics = metrics.Noop
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Transition"})
	return nil
}

// Service changes the status of tasks.
type Service struct {
	engine   *workflow.Engine
	repo     storage.Repository
	notifier notify.Notifier
	metrics  metrics.Recorder
	logger   log.Logger
}

// NewService creates a new transition service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		engine:   cfg.Engine,
		repo:     cfg.Repository,
		notifier: cfg.Notifier,
		metrics:  cfg.Metrics,
		logger:   cfg.Logger,
	}, nil
}

// Request is a status change request. Exactly one of Status, Column or
// SwipeOffset must be set.
type Request struct {
	TaskID      string
	Actor       model.User
	BlockReason string
	Status      model.Status
	Column      workflow.Column
	SwipeOffset *float64
}

func (r Request) validate() error {
	set := 0
	if r.Status != "" {
		set++
	}
	if r.Column != "" {
		set++
	}
	if r.SwipeOffset != nil {
		set++
	}
	if set != 1 {
		return fmt.Errorf("exactly one of status, column or swipe offset is required: %w", model.ErrNotValid)
	}
	return nil
}

// Run applies the status change and commits it with its history entry. On a
// rejected change the returned transition is still set so the caller knows
// the attempted status.
func (s *Service) Run(ctx context.Context, req Request) (*workflow.Transition, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	tctx := workflow.TransitionContext{Actor: req.Actor, BlockReason: req.BlockReason}
	var (
		tr       workflow.Transition
		rejected bool
	)
	_, err := s.repo.MutateTask(ctx, req.TaskID, func(t *model.Task) (*model.HistoryEntry, error) {
		var err error
		switch {
		case req.Status != "":
			tr, err = s.engine.ApplyStatus(*t, req.Status, tctx)
		case req.Column != "":
			tr, err = s.engine.Place(*t, req.Column, tctx)
		default:
			tr, err = s.engine.Swipe(*t, *req.SwipeOffset, tctx)
		}
		if err != nil {
			rejected = true
			return nil, err
		}
		if !tr.Changed {
			return nil, nil
		}

		*t = tr.Task
		return tr.Entry, nil
	})
	if err != nil {
		if rejected {
			s.metrics.IncRejection(ctx, "status", metrics.RejectionReason(err))
			return &tr, fmt.Errorf("could not change task %s status to %q: %w", req.TaskID, tr.Attempted, err)
		}
		return nil, fmt.Errorf("could not commit transition: %w", err)
	}

	if !tr.Changed {
		s.logger.Debugf("task %s already %q, nothing to change", tr.Task.ID, tr.Task.Status)
		return &tr, nil
	}

	s.metrics.ObserveTransition(ctx, tr.Previous, tr.Task.Status)
	s.logger.Infof("Task %s: %q -> %q by %s", tr.Task.ID, tr.Previous, tr.Task.Status, req.Actor.Name)

	if tr.NotifyManager {
		err := s.notifier.NotifyTaskBlocked(ctx, notify.TaskBlocked{
			TaskID:    tr.Task.ID,
			TaskTitle: tr.Task.Title,
			Executor:  tr.Task.Executor,
			Reason:    tr.Task.BlockedReason,
			BlockedBy: req.Actor.Name,
			At:        tr.Entry.Timestamp,
		})
		if err != nil {
			s.logger.Warningf("Could not notify manager about blocked task %s: %s", tr.Task.ID, err)
		}
	}

	return &tr, nil
}
