package list

import (
	"context"
	"fmt"

	"github.com/obrahub/obra/internal/log"
	"github.com/obrahub/obra/internal/model"
	"github.com/obrahub/obra/internal/storage"
)

// ServiceConfig is the configuration for the list service.
type ServiceConfig struct {
	Repository storage.Repository
	Logger     log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.List"})

	return nil
}

// Service lists tasks with optional filtering.
type Service struct {
	repo   storage.Repository
	logger log.Logger
}

// NewService creates a new list service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}, nil
}

// Request represents the list request parameters.
type Request struct {
	// Filter is a conjunction of the optional system, stage, executor and status filters.
	Filter model.TaskFilter
}

// Run lists all tasks in creation order, filtered.
func (s *Service) Run(ctx context.Context, req Request) ([]model.Task, error) {
	tasks, err := s.repo.ListTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list tasks: %w", err)
	}

	filtered := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if req.Filter.Match(t) {
			filtered = append(filtered, t)
		}
	}

	s.logger.Debugf("found %d of %d tasks", len(filtered), len(tasks))
	return filtered, nil
}
