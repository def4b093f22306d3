package history

import (
	"context"
	"fmt"

	"github.com/obrahub/obra/internal/log"
	"github.com/obrahub/obra/internal/model"
	"github.com/obrahub/obra/internal/storage"
)

// ServiceConfig is the configuration for the history service.
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
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.History"})

	return nil
}

// Service reads the status change audit log of tasks.
type Service struct {
	repo   storage.Repository
	logger log.Logger
}

// NewService creates a new history service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}, nil
}

// Request represents the history request parameters.
type Request struct {
	TaskID string
}

// Run returns the full task history, newest first.
func (s *Service) Run(ctx context.Context, req Request) ([]model.HistoryEntry, error) {
	entries, err := s.repo.ListHistory(ctx, req.TaskID)
	if err != nil {
		return nil, fmt.Errorf("could not get history: %w", err)
	}

	s.logger.Debugf("task %s has %d history entries", req.TaskID, len(entries))
	return entries, nil
}
