package storagemock

import (
	"context"

	"github.com/obrahub/obra/internal/model"
	"github.com/obrahub/obra/internal/storage"
)

// MutateOver returns a MutateTask implementation that applies the mutation to
// a copy of task, the way a real repository does. Use it as the return of a
// MutateTask expectation.
func MutateOver(task model.Task) func(context.Context, string, storage.MutateFunc) (*model.Task, error) {
	return func(_ context.Context, _ string, f storage.MutateFunc) (*model.Task, error) {
		t := task.Clone()
		if _, err := f(&t); err != nil {
			return nil, err
		}
		return &t, nil
	}
}

// MutateOverEntry is like MutateOver but also returns the history entry the
// mutation produced through entry.
func MutateOverEntry(task model.Task, entry **model.HistoryEntry) func(context.Context, string, storage.MutateFunc) (*model.Task, error) {
	return func(_ context.Context, _ string, f storage.MutateFunc) (*model.Task, error) {
		t := task.Clone()
		e, err := f(&t)
		if err != nil {
			return nil, err
		}
		*entry = e
		return &t, nil
	}
}
