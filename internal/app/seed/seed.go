package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/obrahub/obra/internal/clock"
	"github.com/obrahub/obra/internal/log"
	"github.com/obrahub/obra/internal/model"
	"github.com/obrahub/obra/internal/storage"
	storageio "github.com/obrahub/obra/internal/storage/io"
)

// SeedRepository loads seed data sets.
type SeedRepository interface {
	GetSeed(ctx context.Context, path string) (*storageio.Seed, error)
}

// ServiceConfig is the configuration for the seed service.
type ServiceConfig struct {
	SeedRepository SeedRepository
	Repository     storage.Repository
	Clock          clock.Clock
	IDGenerator    func() string
	Logger         log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.SeedRepository == nil {
		return fmt.Errorf("seed repository is required")
	}
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
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Seed"})
	return nil
}

// Service imports initial task sets.
type Service struct {
	seeds  SeedRepository
	repo   storage.Repository
	clock  clock.Clock
	newID  func() string
	logger log.Logger
}

// NewService creates a new seed service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		seeds:  cfg.SeedRepository,
		repo:   cfg.Repository,
		clock:  cfg.Clock,
		newID:  cfg.IDGenerator,
		logger: cfg.Logger,
	}, nil
}

// Request represents the seed request parameters.
type Request struct {
	Actor model.User
	Path  string
	// SkipExisting ignores the tasks whose ID already exists instead of failing.
	SkipExisting bool
}

// Result is the outcome of a seed import.
type Result struct {
	Created []string
	Skipped []string
	Users   []model.User
}

// Run loads the seed file and creates its tasks in file order.
func (s *Service) Run(ctx context.Context, req Request) (*Result, error) {
	if err := req.Actor.Authorize(model.ActionCreateTask); err != nil {
		return nil, err
	}

	seed, err := s.seeds.GetSeed(ctx, req.Path)
	if err != nil {
		return nil, fmt.Errorf("could not load seed: %w", err)
	}

	res := &Result{Created: []string{}, Skipped: []string{}, Users: seed.Users}
	now := s.clock.Now()
	for _, t := range seed.Tasks {
		s.complete(&t, now)

		err := s.repo.CreateTask(ctx, t)
		switch {
		case err == nil:
			res.Created = append(res.Created, t.ID)
		case req.SkipExisting && errors.Is(err, model.ErrAlreadyExists):
			s.logger.Debugf("task %s already exists, skipping", t.ID)
			res.Skipped = append(res.Skipped, t.ID)
		default:
			return res, fmt.Errorf("could not create task %s: %w", t.ID, err)
		}
	}

	s.logger.Infof("Seeded %d tasks (%d skipped) from %s", len(res.Created), len(res.Skipped), req.Path)
	return res, nil
}

// complete fills the ids and timestamps the seed file left out.
func (s *Service) complete(t *model.Task, now time.Time) {
	if t.ID == "" {
		t.ID = s.newID()
	}
	for i := range t.Subtasks {
		if t.Subtasks[i].ID == "" {
			t.Subtasks[i].ID = s.newID()
		}
	}
	for i := range t.Photos {
		if t.Photos[i].ID == "" {
			t.Photos[i].ID = s.newID()
		}
		if t.Photos[i].Timestamp.IsZero() {
			t.Photos[i].Timestamp = now
		}
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = now
	}
}
