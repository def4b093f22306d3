package report

import (
	"context"
	"fmt"

	"github.com/obrahub/obra/internal/analytics"
	"github.com/obrahub/obra/internal/clock"
	"github.com/obrahub/obra/internal/log"
	"github.com/obrahub/obra/internal/model"
	"github.com/obrahub/obra/internal/storage"
)

// ServiceConfig is the configuration for the report service.
type ServiceConfig struct {
	Repository storage.Repository
	Clock      clock.Clock
	Logger     log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}
	if c.Clock == nil {
		c.Clock = clock.Real{}
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Report"})
	return nil
}

// Service computes the progress analytics.
type Service struct {
	repo   storage.Repository
	clock  clock.Clock
	logger log.Logger
}

// NewService creates a new report service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		clock:  cfg.Clock,
		logger: cfg.Logger,
	}, nil
}

// Request represents the report request parameters.
type Request struct {
	Filter model.TaskFilter
}

// Run computes the report over the filtered tasks as of today.
func (s *Service) Run(ctx context.Context, req Request) (*analytics.Report, error) {
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

	today := model.DateOf(s.clock.Now())
	report := analytics.Compute(filtered, today)
	if report.Series == nil {
		s.logger.Debugf("no date window for %d tasks, series is empty", len(filtered))
	}

	return &report, nil
}
