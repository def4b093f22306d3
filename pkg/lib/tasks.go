package lib

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/obrahub/obra/internal/app/create"
	"github.com/obrahub/obra/internal/app/export"
	"github.com/obrahub/obra/internal/app/gate"
	"github.com/obrahub/obra/internal/app/history"
	"github.com/obrahub/obra/internal/app/list"
	"github.com/obrahub/obra/internal/app/photo"
	"github.com/obrahub/obra/internal/app/report"
	"github.com/obrahub/obra/internal/app/seed"
	"github.com/obrahub/obra/internal/app/status"
	"github.com/obrahub/obra/internal/app/subtask"
	"github.com/obrahub/obra/internal/app/transition"
	"github.com/obrahub/obra/internal/app/update"
	storageio "github.com/obrahub/obra/internal/storage/io"
)

// ListTasks returns the tasks that match the filter, in creation order.
func (c *Client) ListTasks(ctx context.Context, filter TaskFilter) ([]Task, error) {
	return c.services.List.Run(ctx, list.Request{Filter: filter})
}

// GetTask returns a task by ID.
func (c *Client) GetTask(ctx context.Context, id string) (*Task, error) {
	return c.services.Status.Run(ctx, status.Request{TaskID: id})
}

// CreateTask creates a new task waiting to be started.
func (c *Client) CreateTask(ctx context.Context, actor User, draft TaskDraft) (*Task, error) {
	return c.services.Create.Run(ctx, create.Request{
		Actor:             actor,
		Title:             draft.Title,
		Description:       draft.Description,
		Stage:             draft.Stage,
		System:            draft.System,
		Specialist:        draft.Specialist,
		Executor:          draft.Executor,
		StartExpected:     draft.StartExpected,
		EndExpected:       draft.EndExpected,
		IsTransitionPoint: draft.IsTransitionPoint,
		TransitionTag:     draft.TransitionTag,
		Subtasks:          draft.Subtasks,
	})
}

// ApplyStatus sets the task status. The reason is required to block a task.
//
// On a rejected change the returned transition is not nil and holds the
// attempted status, so callers can revert an optimistic UI.
func (c *Client) ApplyStatus(ctx context.Context, actor User, id string, st Status, reason string) (*Transition, error) {
	return c.services.Transition.Run(ctx, transition.Request{TaskID: id, Actor: actor, Status: st, BlockReason: reason})
}

// MoveTask places the task on a board column.
func (c *Client) MoveTask(ctx context.Context, actor User, id string, column Column, reason string) (*Transition, error) {
	return c.services.Transition.Run(ctx, transition.Request{TaskID: id, Actor: actor, Column: column, BlockReason: reason})
}

// SwipeTask applies a horizontal swipe gesture on the task card.
func (c *Client) SwipeTask(ctx context.Context, actor User, id string, offset float64, reason string) (*Transition, error) {
	return c.services.Transition.Run(ctx, transition.Request{TaskID: id, Actor: actor, SwipeOffset: &offset, BlockReason: reason})
}

// DecideGate records the quality gate decision of an executed task. Notes
// replace the gate notes when not nil.
func (c *Client) DecideGate(ctx context.Context, actor User, id string, decision GateStatus, notes *string) (*Task, error) {
	return c.services.Gate.Run(ctx, gate.Request{TaskID: id, Actor: actor, Decision: decision, Notes: notes})
}

// UpdateGateNotes replaces the quality gate notes of an executed task.
func (c *Client) UpdateGateNotes(ctx context.Context, actor User, id, notes string) (*Task, error) {
	return c.services.Gate.Run(ctx, gate.Request{TaskID: id, Actor: actor, Notes: &notes})
}

// UpdateField sets a single task field from its text value.
func (c *Client) UpdateField(ctx context.Context, actor User, id string, field Field, value string) (*Task, error) {
	return c.services.Update.Run(ctx, update.Request{TaskID: id, Actor: actor, Field: field, Value: value})
}

// AddPhoto prepends a photo to the task.
func (c *Client) AddPhoto(ctx context.Context, actor User, id, url, description string) (*Task, error) {
	return c.services.Photo.Add(ctx, photo.AddRequest{TaskID: id, Actor: actor, URL: url, Description: description})
}

// RemovePhoto removes a photo from the task.
func (c *Client) RemovePhoto(ctx context.Context, actor User, id, photoID string) (*Task, error) {
	return c.services.Photo.Remove(ctx, photo.RemoveRequest{TaskID: id, Actor: actor, PhotoID: photoID})
}

// AddSubtask appends a checklist item to the task.
func (c *Client) AddSubtask(ctx context.Context, actor User, id, title string) (*Task, error) {
	return c.services.Subtask.Add(ctx, subtask.AddRequest{TaskID: id, Actor: actor, Title: title})
}

// ToggleSubtask flips the completion of a checklist item.
func (c *Client) ToggleSubtask(ctx context.Context, actor User, id, subtaskID string) (*Task, error) {
	return c.services.Subtask.Toggle(ctx, subtask.ToggleRequest{TaskID: id, Actor: actor, SubtaskID: subtaskID})
}

// RemoveSubtask removes a checklist item, nothing changes unless confirmed.
func (c *Client) RemoveSubtask(ctx context.Context, actor User, id, subtaskID string, confirmed bool) (*Task, error) {
	return c.services.Subtask.Remove(ctx, subtask.RemoveRequest{TaskID: id, Actor: actor, SubtaskID: subtaskID, Confirmed: confirmed})
}

// History returns the status change history of the task, newest first.
func (c *Client) History(ctx context.Context, id string) ([]HistoryEntry, error) {
	return c.services.History.Run(ctx, history.Request{TaskID: id})
}

// Report returns the progress analytics of the tasks that match the filter.
func (c *Client) Report(ctx context.Context, filter TaskFilter) (*Report, error) {
	return c.services.Report.Run(ctx, report.Request{Filter: filter})
}

// Export returns a plain text summary of the task.
func (c *Client) Export(ctx context.Context, id string) (string, error) {
	return c.services.Export.Run(ctx, export.Request{TaskID: id})
}

// Seed imports the tasks of a YAML seed file. With skipExisting the tasks
// whose ID already exists are ignored instead of failing the import.
func (c *Client) Seed(ctx context.Context, actor User, path string, skipExisting bool) (*SeedResult, error) {
	svc, name, err := c.newSeedService(path)
	if err != nil {
		return nil, err
	}

	res, err := svc.Run(ctx, seed.Request{Actor: actor, Path: name, SkipExisting: skipExisting})
	if err != nil {
		return nil, err
	}

	return &SeedResult{Created: res.Created, Skipped: res.Skipped, Users: res.Users}, nil
}

// LoadUsers reads the user directory of a YAML seed file.
func LoadUsers(ctx context.Context, path string) ([]User, error) {
	dir, name, err := splitPath(path)
	if err != nil {
		return nil, err
	}
	return storageio.NewSeedYAMLRepository(os.DirFS(dir)).GetUsers(ctx, name)
}

func (c *Client) newSeedService(path string) (*seed.Service, string, error) {
	dir, name, err := splitPath(path)
	if err != nil {
		return nil, "", err
	}

	svc, err := seed.NewService(seed.ServiceConfig{
		SeedRepository: storageio.NewSeedYAMLRepository(os.DirFS(dir)),
		Repository:     c.repo,
		Clock:          c.clock,
		IDGenerator:    c.newID,
		Logger:         c.logger,
	})
	if err != nil {
		return nil, "", fmt.Errorf("could not create service: %w", err)
	}

	return svc, name, nil
}

// splitPath returns the directory and the file name of a seed path, fs.FS
// paths can't be rooted.
func splitPath(path string) (dir, name string, err error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", "", fmt.Errorf("invalid path %q: %w", path, err)
	}
	return filepath.Dir(abs), filepath.Base(abs), nil
}
