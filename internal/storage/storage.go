package storage

//go:generate mockery --case underscore --output storagemock --outpkg storagemock --name Repository
//go:generate mockery --case underscore --output storagemock --outpkg storagemock --name KV

import (
	"context"

	"github.com/obrahub/obra/internal/model"
)

// MutateFunc changes the task in place. A returned history entry is prepended
// to the task history in the same write. Returning an error discards the change.
type MutateFunc func(t *model.Task) (*model.HistoryEntry, error)

// Repository is the interface for task and history persistence.
type Repository interface {
	CreateTask(ctx context.Context, t model.Task) error
	GetTask(ctx context.Context, id string) (*model.Task, error)
	ListTasks(ctx context.Context) ([]model.Task, error)
	// MutateTask reads the task, applies f and stores the result as a single
	// operation, mutations of the same task never interleave. f must not call
	// the repository. It returns the stored task.
	MutateTask(ctx context.Context, id string, f MutateFunc) (*model.Task, error)
	// ListHistory returns the task history, newest first.
	ListHistory(ctx context.Context, taskID string) ([]model.HistoryEntry, error)
}

// KV is the durable persistence port: raw documents stored by key.
// Load returns model.ErrNotFound when the key doesn't exist.
type KV interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
}

// TasksKey is the key of the full task collection document.
const TasksKey = "app_tasks"

// HistoryKey returns the key of the history document of a task.
func HistoryKey(taskID string) string { return "history_" + taskID }
