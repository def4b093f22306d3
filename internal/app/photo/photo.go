package photo

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

// ServiceConfig is the configuration for the photo service.
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
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Photo"})
	return nil
}

// Service manages the photo evidence of tasks.
type Service struct {
	repo   storage.Repository
	clock  clock.Clock
	newID  func() string
	logger log.Logger
}

// NewService creates a new photo service.
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

// AddRequest attaches a photo. URL is the payload reference, usually a data URI.
type AddRequest struct {
	TaskID      string
	Actor       model.User
	URL         string
	Description string
}

// Add prepends the photo to the task photos, newest first.
func (s *Service) Add(ctx context.Context, req AddRequest) (*model.Task, error) {
	if err := req.Actor.Authorize(model.ActionManagePhotos); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.URL) == "" {
		return nil, model.NewValidationError(model.ValidationKindInvalidValue, "photo url is required")
	}

	now := s.clock.Now()
	p := model.Photo{
		ID:          s.newID(),
		URL:         req.URL,
		Timestamp:   now,
		Description: strings.TrimSpace(req.Description),
	}

	updated, err := s.repo.MutateTask(ctx, req.TaskID, func(t *model.Task) (*model.HistoryEntry, error) {
		t.Photos = append([]model.Photo{p}, t.Photos...)
		t.UpdatedAt = now
		return nil, nil
	})
	if err != nil {
		return nil, fmt.Errorf("could not add photo: %w", err)
	}

	s.logger.Infof("Photo %s added to task %s", p.ID, updated.ID)
	return updated, nil
}

// RemoveRequest removes a photo.
type RemoveRequest struct {
	TaskID  string
	Actor   model.User
	PhotoID string
}

// Remove deletes the photo from the task. The last photo of an executed task
// that requires photos can't be removed.
func (s *Service) Remove(ctx context.Context, req RemoveRequest) (*model.Task, error) {
	if err := req.Actor.Authorize(model.ActionManagePhotos); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	updated, err := s.repo.MutateTask(ctx, req.TaskID, func(t *model.Task) (*model.HistoryEntry, error) {
		photos := make([]model.Photo, 0, len(t.Photos))
		for _, p := range t.Photos {
			if p.ID != req.PhotoID {
				photos = append(photos, p)
			}
		}
		if len(photos) == len(t.Photos) {
			return nil, fmt.Errorf("photo %s of task %s: %w", req.PhotoID, t.ID, model.ErrNotFound)
		}
		if len(photos) == 0 && t.Status == model.StatusExecuted && t.System.RequiresPhotos() {
			return nil, model.NewValidationError(model.ValidationKindPhotosRequired, "executed %s task %s needs at least one photo", t.System, t.ID)
		}

		t.Photos = photos
		t.UpdatedAt = now
		return nil, nil
	})
	if err != nil {
		return nil, fmt.Errorf("could not remove photo: %w", err)
	}

	s.logger.Infof("Photo %s removed from task %s", req.PhotoID, updated.ID)
	return updated, nil
}
