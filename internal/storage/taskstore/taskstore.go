// Package taskstore is the in-memory source of truth of tasks and their
// history. It loads its state from a storage.KV on creation and writes every
// mutation through to it. Write failures are warnings, the in-memory state is
// kept.
package taskstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/obrahub/obra/internal/log"
	"github.com/obrahub/obra/internal/metrics"
	"github.com/obrahub/obra/internal/model"
	"github.com/obrahub/obra/internal/storage"
)

// RepositoryConfig is the configuration for the task store.
type RepositoryConfig struct {
	KV      storage.KV
	Metrics metrics.Recorder
	Logger  log.Logger
}

func (c *RepositoryConfig) defaults() error {
	if c.KV == nil {
		return fmt.Errorf("kv is required")
	}
	if c.Metrics == nil {
		c.Metrics = metrics.Noop
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.TaskStore"})
	return nil
}

// Repository is the task store, it implements storage.Repository.
type Repository struct {
	kv      storage.KV
	metrics metrics.Recorder
	logger  log.Logger

	mu      sync.RWMutex
	tasks   []model.Task
	index   map[string]int
	history map[string][]model.HistoryEntry
}

// NewRepository creates the task store and loads the persisted state. Missing
// or corrupt data is replaced by an empty state.
func NewRepository(ctx context.Context, cfg RepositoryConfig) (*Repository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	r := &Repository{
		kv:      cfg.KV,
		metrics: cfg.Metrics,
		logger:  cfg.Logger,
		tasks:   []model.Task{},
		index:   map[string]int{},
		history: map[string][]model.HistoryEntry{},
	}
	r.load(ctx)

	return r, nil
}

func (r *Repository) load(ctx context.Context) {
	var tasks []model.Task
	if !r.loadDoc(ctx, storage.TasksKey, &tasks) {
		return
	}

	for _, t := range tasks {
		if _, ok := r.index[t.ID]; ok || t.ID == "" {
			r.logger.Warningf("Ignoring stored task with missing or duplicated id %q", t.ID)
			r.metrics.IncPersistenceWarning(ctx, "load")
			continue
		}
		if err := t.Validate(); err != nil {
			r.logger.Warningf("Stored task %s is not valid: %s", t.ID, err)
		}

		r.index[t.ID] = len(r.tasks)
		r.tasks = append(r.tasks, t.Clone())

		var entries []model.HistoryEntry
		if r.loadDoc(ctx, storage.HistoryKey(t.ID), &entries) && entries != nil {
			r.history[t.ID] = entries
		} else {
			r.history[t.ID] = []model.HistoryEntry{}
		}
	}

	r.logger.Debugf("Loaded %d tasks", len(r.tasks))
}

// loadDoc returns false when the document is missing or unusable.
func (r *Repository) loadDoc(ctx context.Context, key string, dst any) bool {
	data, err := r.kv.Load(ctx, key)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return false
		}
		r.logger.Warningf("Could not load %s, starting empty: %s", key, err)
		r.metrics.IncPersistenceWarning(ctx, "load")
		return false
	}

	if err := json.Unmarshal(data, dst); err != nil {
		r.logger.Warningf("Corrupt data on %s, starting empty: %s", key, err)
		r.metrics.IncPersistenceWarning(ctx, "load")
		return false
	}

	return true
}

// CreateTask adds a new task.
func (r *Repository) CreateTask(ctx context.Context, t model.Task) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("invalid task: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.index[t.ID]; ok {
		return fmt.Errorf("task %s: %w", t.ID, model.ErrAlreadyExists)
	}

	r.index[t.ID] = len(r.tasks)
	r.tasks = append(r.tasks, t.Clone())
	r.history[t.ID] = []model.HistoryEntry{}

	r.saveTasks(ctx)
	r.logger.Debugf("Created task in store: %s", t.ID)

	return nil
}

// GetTask returns a copy of the task.
func (r *Repository) GetTask(ctx context.Context, id string) (*model.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.index[id]
	if !ok {
		return nil, fmt.Errorf("task %s: %w", id, model.ErrNotFound)
	}

	t := r.tasks[i].Clone()
	return &t, nil
}

// ListTasks returns a copy of all the tasks in creation order.
func (r *Repository) ListTasks(ctx context.Context) ([]model.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tasks := make([]model.Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		tasks = append(tasks, t.Clone())
	}

	return tasks, nil
}

// MutateTask applies f to a copy of the task under the store lock and commits
// the result with the optional history entry. A task left unchanged without an
// entry is not written.
func (r *Repository) MutateTask(ctx context.Context, id string, f storage.MutateFunc) (*model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i, ok := r.index[id]
	if !ok {
		return nil, fmt.Errorf("task %s: %w", id, model.ErrNotFound)
	}

	current := r.tasks[i].Clone()
	t := current.Clone()
	entry, err := f(&t)
	if err != nil {
		return nil, err
	}

	if t.ID != id {
		return nil, fmt.Errorf("task id can't change from %s to %s: %w", id, t.ID, model.ErrNotValid)
	}
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("invalid task: %w", err)
	}
	if entry != nil {
		if entry.TaskID != id {
			return nil, fmt.Errorf("history entry belongs to task %s, not %s: %w", entry.TaskID, id, model.ErrNotValid)
		}
		if err := entry.Validate(); err != nil {
			return nil, fmt.Errorf("invalid history entry: %w", err)
		}
	}

	if entry == nil && reflect.DeepEqual(current, t) {
		return &t, nil
	}

	r.tasks[i] = t.Clone()
	r.saveTasks(ctx)

	if entry != nil {
		history := make([]model.HistoryEntry, 0, len(r.history[id])+1)
		history = append(history, *entry)
		history = append(history, r.history[id]...)
		r.history[id] = history
		r.saveHistory(ctx, id)
		r.logger.Debugf("Committed transition on task %s: %s -> %s", id, entry.PreviousStatus, entry.NewStatus)
	} else {
		r.logger.Debugf("Updated task in store: %s", id)
	}

	return &t, nil
}

// ListHistory returns the task history, newest first.
func (r *Repository) ListHistory(ctx context.Context, taskID string) ([]model.HistoryEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.index[taskID]; !ok {
		return nil, fmt.Errorf("task %s: %w", taskID, model.ErrNotFound)
	}

	h := r.history[taskID]
	entries := make([]model.HistoryEntry, len(h))
	copy(entries, h)

	return entries, nil
}

// saveTasks must be called with the lock held.
func (r *Repository) saveTasks(ctx context.Context) {
	r.save(ctx, storage.TasksKey, r.tasks)
}

// saveHistory must be called with the lock held.
func (r *Repository) saveHistory(ctx context.Context, taskID string) {
	r.save(ctx, storage.HistoryKey(taskID), r.history[taskID])
}

func (r *Repository) save(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		r.logger.Warningf("Could not encode %s, keeping the change in memory only: %s", key, err)
		r.metrics.IncPersistenceWarning(ctx, "save")
		return
	}

	if err := r.kv.Save(ctx, key, data); err != nil {
		r.logger.Warningf("Could not save %s, keeping the change in memory only: %s", key, err)
		r.metrics.IncPersistenceWarning(ctx, "save")
	}
}

var _ storage.Repository = &Repository{}
