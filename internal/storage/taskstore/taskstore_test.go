package taskstore_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/obrahub/obra/internal/model"
	"github.com/obrahub/obra/internal/storage"
	"github.com/obrahub/obra/internal/storage/memory"
	"github.com/obrahub/obra/internal/storage/storagemock"
	"github.com/obrahub/obra/internal/storage/taskstore"
)

var testNow = time.Date(2023, 10, 16, 9, 0, 0, 0, time.UTC)

type countingRecorder struct {
	mu       sync.Mutex
	warnings map[string]int
}

func (c *countingRecorder) ObserveTransition(context.Context, model.Status, model.Status) {}
func (c *countingRecorder) IncRejection(context.Context, string, string) {}
func (c *countingRecorder) IncGateDecision(context.Context, model.GateStatus) {}
func (c *countingRecorder) IncPersistenceWarning(_ context.Context, op string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.warnings == nil {
		c.warnings = map[string]int{}
	}
	c.warnings[op]++
}

func taskFixture(id string) model.Task {
	return model.Task{
		ID:            id,
		Title:         "Task " + id,
		Stage:         model.StagePreliminary,
		System:        model.SystemMasonry,
		Executor:      "Equipe A",
		StartExpected: model.NewDate(2023, 10, 1),
		EndExpected:   model.NewDate(2023, 10, 5),
		Status:        model.StatusAwaitingStart,
		Gate:          model.PendingGate(),
		Photos:        []model.Photo{},
		Subtasks:      []model.Subtask{},
		CreatedAt:     testNow,
		UpdatedAt:     testNow,
	}
}

func entryFixture(id, taskID string, from, to model.Status) model.HistoryEntry {
	return model.HistoryEntry{
		ID:             id,
		TaskID:         taskID,
		PreviousStatus: from,
		NewStatus:      to,
		Timestamp:      testNow,
		UserID:         "u2",
		UserName:       "Mestre João (Executor)",
		UserRole:       model.RoleFieldExecutor,
	}
}

// commit replaces the stored task with task and records the entry.
func commit(ctx context.Context, repo *taskstore.Repository, task model.Task, entry model.HistoryEntry) error {
	_, err := repo.MutateTask(ctx, task.ID, func(t *model.Task) (*model.HistoryEntry, error) {
		*t = task
		return &entry, nil
	})
	return err
}

func newMemoryKV(t *testing.T) *memory.KV {
	kv, err := memory.NewKV(memory.KVConfig{})
	require.NoError(t, err)
	return kv
}

func TestNewRepository(t *testing.T) {
	_, err := taskstore.NewRepository(context.Background(), taskstore.RepositoryConfig{})
	assert.Error(t, err)
}

func TestRepositoryOperations(t *testing.T) {
	tests := map[string]struct {
		actions func(ctx context.Context, t *testing.T, repo *taskstore.Repository)
	}{
		"Creating a task should make it available": {
			actions: func(ctx context.Context, t *testing.T, repo *taskstore.Repository) {
				require.NoError(t, repo.CreateTask(ctx, taskFixture("t1")))

				got, err := repo.GetTask(ctx, "t1")
				require.NoError(t, err)
				assert.Equal(t, taskFixture("t1"), *got)

				history, err := repo.ListHistory(ctx, "t1")
				require.NoError(t, err)
				assert.Empty(t, history)
			},
		},

		"Creating a duplicated task should fail": {
			actions: func(ctx context.Context, t *testing.T, repo *taskstore.Repository) {
				require.NoError(t, repo.CreateTask(ctx, taskFixture("t1")))

				err := repo.CreateTask(ctx, taskFixture("t1"))
				assert.True(t, errors.Is(err, model.ErrAlreadyExists))
			},
		},

		"Creating an invalid task should fail": {
			actions: func(ctx context.Context, t *testing.T, repo *taskstore.Repository) {
				task := taskFixture("t1")
				task.Status = model.StatusBlocked

				err := repo.CreateTask(ctx, task)
				assert.True(t, errors.Is(err, model.ErrNotValid))
			},
		},

		"Getting a missing task should fail": {
			actions: func(ctx context.Context, t *testing.T, repo *taskstore.Repository) {
				_, err := repo.GetTask(ctx, "missing")
				assert.True(t, errors.Is(err, model.ErrNotFound))

				_, err = repo.ListHistory(ctx, "missing")
				assert.True(t, errors.Is(err, model.ErrNotFound))
			},
		},

		"Listing should keep creation order": {
			actions: func(ctx context.Context, t *testing.T, repo *taskstore.Repository) {
				for _, id := range []string{"t3", "t1", "t2"} {
					require.NoError(t, repo.CreateTask(ctx, taskFixture(id)))
				}

				tasks, err := repo.ListTasks(ctx)
				require.NoError(t, err)
				require.Len(t, tasks, 3)
				assert.Equal(t, "t3", tasks[0].ID)
				assert.Equal(t, "t1", tasks[1].ID)
				assert.Equal(t, "t2", tasks[2].ID)
			},
		},

		"Returned tasks should be copies": {
			actions: func(ctx context.Context, t *testing.T, repo *taskstore.Repository) {
				require.NoError(t, repo.CreateTask(ctx, taskFixture("t1")))

				got, err := repo.GetTask(ctx, "t1")
				require.NoError(t, err)
				got.Title = "changed"
				got.Subtasks = append(got.Subtasks, model.Subtask{ID: "s1"})

				got, err = repo.GetTask(ctx, "t1")
				require.NoError(t, err)
				assert.Equal(t, "Task t1", got.Title)
				assert.Empty(t, got.Subtasks)
			},
		},

		"Mutating a missing task should fail": {
			actions: func(ctx context.Context, t *testing.T, repo *taskstore.Repository) {
				_, err := repo.MutateTask(ctx, "t1", func(t *model.Task) (*model.HistoryEntry, error) { return nil, nil })
				assert.True(t, errors.Is(err, model.ErrNotFound))
			},
		},

		"Mutating a task should store and return the change": {
			actions: func(ctx context.Context, t *testing.T, repo *taskstore.Repository) {
				require.NoError(t, repo.CreateTask(ctx, taskFixture("t1")))

				updated, err := repo.MutateTask(ctx, "t1", func(t *model.Task) (*model.HistoryEntry, error) {
					t.Title = "Fundação"
					return nil, nil
				})
				require.NoError(t, err)
				assert.Equal(t, "Fundação", updated.Title)

				got, err := repo.GetTask(ctx, "t1")
				require.NoError(t, err)
				assert.Equal(t, "Fundação", got.Title)

				history, err := repo.ListHistory(ctx, "t1")
				require.NoError(t, err)
				assert.Empty(t, history)
			},
		},

		"A failing mutation should discard the change": {
			actions: func(ctx context.Context, t *testing.T, repo *taskstore.Repository) {
				require.NoError(t, repo.CreateTask(ctx, taskFixture("t1")))

				expErr := errors.New("rejected")
				_, err := repo.MutateTask(ctx, "t1", func(t *model.Task) (*model.HistoryEntry, error) {
					t.Title = "Fundação"
					return nil, expErr
				})
				assert.ErrorIs(t, err, expErr)

				got, err := repo.GetTask(ctx, "t1")
				require.NoError(t, err)
				assert.Equal(t, "Task t1", got.Title)
			},
		},

		"A mutation leaving the task invalid should fail": {
			actions: func(ctx context.Context, t *testing.T, repo *taskstore.Repository) {
				require.NoError(t, repo.CreateTask(ctx, taskFixture("t1")))

				_, err := repo.MutateTask(ctx, "t1", func(t *model.Task) (*model.HistoryEntry, error) {
					t.Status = model.StatusBlocked
					return nil, nil
				})
				assert.ErrorIs(t, err, model.ErrNotValid)

				_, err = repo.MutateTask(ctx, "t1", func(t *model.Task) (*model.HistoryEntry, error) {
					t.ID = "t2"
					return nil, nil
				})
				assert.ErrorIs(t, err, model.ErrNotValid)

				got, err := repo.GetTask(ctx, "t1")
				require.NoError(t, err)
				assert.Equal(t, model.StatusAwaitingStart, got.Status)
			},
		},

		"An executed task without photos should still be editable": {
			actions: func(ctx context.Context, t *testing.T, repo *taskstore.Repository) {
				task := taskFixture("t1")
				task.System = model.SystemLSF
				task.Status = model.StatusExecuted
				require.NoError(t, repo.CreateTask(ctx, task))

				updated, err := repo.MutateTask(ctx, "t1", func(t *model.Task) (*model.HistoryEntry, error) {
					t.Description = "Painéis conferidos"
					return nil, nil
				})
				require.NoError(t, err)
				assert.Equal(t, "Painéis conferidos", updated.Description)
			},
		},

		"Committed transitions should be listed newest first": {
			actions: func(ctx context.Context, t *testing.T, repo *taskstore.Repository) {
				require.NoError(t, repo.CreateTask(ctx, taskFixture("t1")))

				steps := []model.Status{model.StatusAwaitingStart, model.StatusStarted, model.StatusInProgress, model.StatusExecuted}
				for i := 1; i < len(steps); i++ {
					task := taskFixture("t1")
					task.Status = steps[i]
					entry := entryFixture(fmt.Sprintf("h%d", i), "t1", steps[i-1], steps[i])
					require.NoError(t, commit(ctx, repo, task, entry))
				}

				history, err := repo.ListHistory(ctx, "t1")
				require.NoError(t, err)
				require.Len(t, history, 3)
				assert.Equal(t, "h3", history[0].ID)
				assert.Equal(t, model.StatusInProgress, history[0].PreviousStatus)
				assert.Equal(t, model.StatusExecuted, history[0].NewStatus)
				assert.Equal(t, "h1", history[2].ID)

				got, err := repo.GetTask(ctx, "t1")
				require.NoError(t, err)
				assert.Equal(t, model.StatusExecuted, got.Status)
			},
		},

		"Committing an entry of another task should fail": {
			actions: func(ctx context.Context, t *testing.T, repo *taskstore.Repository) {
				require.NoError(t, repo.CreateTask(ctx, taskFixture("t1")))

				task := taskFixture("t1")
				task.Status = model.StatusStarted
				err := commit(ctx, repo, task, entryFixture("h1", "t2", model.StatusAwaitingStart, model.StatusStarted))
				assert.True(t, errors.Is(err, model.ErrNotValid))

				got, err := repo.GetTask(ctx, "t1")
				require.NoError(t, err)
				assert.Equal(t, model.StatusAwaitingStart, got.Status)

				history, err := repo.ListHistory(ctx, "t1")
				require.NoError(t, err)
				assert.Empty(t, history)
			},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo, err := taskstore.NewRepository(ctx, taskstore.RepositoryConfig{KV: newMemoryKV(t)})
			require.NoError(t, err)

			test.actions(ctx, t, repo)
		})
	}
}

func TestRepositoryWritesThrough(t *testing.T) {
	ctx := context.Background()
	kv := newMemoryKV(t)

	repo, err := taskstore.NewRepository(ctx, taskstore.RepositoryConfig{KV: kv})
	require.NoError(t, err)

	require.NoError(t, repo.CreateTask(ctx, taskFixture("t1")))
	task := taskFixture("t1")
	task.Status = model.StatusStarted
	require.NoError(t, commit(ctx, repo, task, entryFixture("h1", "t1", model.StatusAwaitingStart, model.StatusStarted)))

	data, err := kv.Load(ctx, storage.TasksKey)
	require.NoError(t, err)
	var stored []map[string]any
	require.NoError(t, json.Unmarshal(data, &stored))
	require.Len(t, stored, 1)
	assert.Equal(t, "Iniciado", stored[0]["status"])
	assert.Equal(t, "2023-10-05", stored[0]["dateEndExpected"])

	data, err = kv.Load(ctx, storage.HistoryKey("t1"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"newStatus":"Iniciado"`)

	// A new store on the same KV should see the same state.
	reloaded, err := taskstore.NewRepository(ctx, taskstore.RepositoryConfig{KV: kv})
	require.NoError(t, err)

	got, err := reloaded.GetTask(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, task, *got)

	history, err := reloaded.ListHistory(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, []model.HistoryEntry{entryFixture("h1", "t1", model.StatusAwaitingStart, model.StatusStarted)}, history)
}

func TestRepositoryLoadFallback(t *testing.T) {
	tests := map[string]struct {
		mock        func(m *storagemock.MockKV)
		expTasks    int
		expWarnings int
	}{
		"Missing data should start empty without warnings": {
			mock: func(m *storagemock.MockKV) {
				m.On("Load", mock.Anything, storage.TasksKey).Once().Return(nil, model.ErrNotFound)
			},
			expTasks:    0,
			expWarnings: 0,
		},

		"A broken store should start empty with a warning": {
			mock: func(m *storagemock.MockKV) {
				m.On("Load", mock.Anything, storage.TasksKey).Once().Return(nil, errors.New("disk error"))
			},
			expTasks:    0,
			expWarnings: 1,
		},

		"Corrupt data should start empty with a warning": {
			mock: func(m *storagemock.MockKV) {
				m.On("Load", mock.Anything, storage.TasksKey).Once().Return([]byte(`{not json`), nil)
			},
			expTasks:    0,
			expWarnings: 1,
		},

		"Corrupt history should keep the task with an empty history": {
			mock: func(m *storagemock.MockKV) {
				tasks, _ := json.Marshal([]model.Task{taskFixture("t1")})
				m.On("Load", mock.Anything, storage.TasksKey).Once().Return(tasks, nil)
				m.On("Load", mock.Anything, storage.HistoryKey("t1")).Once().Return([]byte(`[{`), nil)
			},
			expTasks:    1,
			expWarnings: 1,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			kv := &storagemock.MockKV{}
			test.mock(kv)
			rec := &countingRecorder{}

			repo, err := taskstore.NewRepository(ctx, taskstore.RepositoryConfig{KV: kv, Metrics: rec})
			require.NoError(t, err)

			tasks, err := repo.ListTasks(ctx)
			require.NoError(t, err)
			assert.Len(t, tasks, test.expTasks)
			for _, task := range tasks {
				history, err := repo.ListHistory(ctx, task.ID)
				require.NoError(t, err)
				assert.Empty(t, history)
			}
			assert.Equal(t, test.expWarnings, rec.warnings["load"])

			kv.AssertExpectations(t)
		})
	}
}

func TestRepositorySaveFailureKeepsChange(t *testing.T) {
	ctx := context.Background()
	kv := &storagemock.MockKV{}
	kv.On("Load", mock.Anything, storage.TasksKey).Once().Return(nil, model.ErrNotFound)
	kv.On("Save", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("disk full"))
	rec := &countingRecorder{}

	repo, err := taskstore.NewRepository(ctx, taskstore.RepositoryConfig{KV: kv, Metrics: rec})
	require.NoError(t, err)

	require.NoError(t, repo.CreateTask(ctx, taskFixture("t1")))
	task := taskFixture("t1")
	task.Status = model.StatusStarted
	require.NoError(t, commit(ctx, repo, task, entryFixture("h1", "t1", model.StatusAwaitingStart, model.StatusStarted)))

	got, err := repo.GetTask(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusStarted, got.Status)

	history, err := repo.ListHistory(ctx, "t1")
	require.NoError(t, err)
	assert.Len(t, history, 1)

	assert.Equal(t, 3, rec.warnings["save"])
	kv.AssertExpectations(t)
}

func TestRepositoryUnchangedMutationIsNotWritten(t *testing.T) {
	ctx := context.Background()
	kv := &storagemock.MockKV{}
	kv.On("Load", mock.Anything, storage.TasksKey).Once().Return(nil, model.ErrNotFound)
	kv.On("Save", mock.Anything, storage.TasksKey, mock.Anything).Once().Return(nil)

	repo, err := taskstore.NewRepository(ctx, taskstore.RepositoryConfig{KV: kv})
	require.NoError(t, err)
	require.NoError(t, repo.CreateTask(ctx, taskFixture("t1")))

	got, err := repo.MutateTask(ctx, "t1", func(t *model.Task) (*model.HistoryEntry, error) { return nil, nil })
	require.NoError(t, err)
	assert.Equal(t, taskFixture("t1"), *got)

	kv.AssertExpectations(t)
}

func TestRepositoryConcurrentMutationsAreNotLost(t *testing.T) {
	ctx := context.Background()
	repo, err := taskstore.NewRepository(ctx, taskstore.RepositoryConfig{KV: newMemoryKV(t)})
	require.NoError(t, err)
	require.NoError(t, repo.CreateTask(ctx, taskFixture("t1")))

	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repo.MutateTask(ctx, "t1", func(t *model.Task) (*model.HistoryEntry, error) {
				// Give the other writers a chance to interleave.
				time.Sleep(time.Millisecond)
				t.Subtasks = append(t.Subtasks, model.Subtask{ID: fmt.Sprintf("s%d", i), Title: "Conferir"})
				return nil, nil
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	got, err := repo.GetTask(ctx, "t1")
	require.NoError(t, err)
	assert.Len(t, got.Subtasks, workers)
}

func TestRepositoryLoadsOriginalAppRecords(t *testing.T) {
	// Records as written by the first version of the app: epoch millisecond
	// photo timestamps, plain day gate dates and no audit timestamps.
	const tasks = `[
  {
    "id": "t1",
    "title": "Avaliação Estrutural Térreo",
    "description": "Verificar capacidade de carga das vigas de alvenaria para receber o LSF.",
    "stage": "1. Preliminar",
    "system": "Alvenaria",
    "specialist": "Eng. Estrutural",
    "executor": "Equipe Civil",
    "dateStartExpected": "2023-10-01",
    "dateEndExpected": "2023-10-03",
    "status": "Executado",
    "gate": {"status": "Aprovado", "notes": "Liberado para carga.", "checkedBy": "u1", "date": "2023-10-04"},
    "isTransitionPoint": true,
    "transitionTag": "#VigaTransição",
    "photos": [],
    "subtasks": [
      {"id": "st1", "title": "Verificar trincas na viga V1", "completed": true},
      {"id": "st2", "title": "Medir nivelamento", "completed": true}
    ]
  },
  {
    "id": "t2",
    "title": "Montagem Sole Plate (Guia Inferior)",
    "description": "Fixação das guias inferiores com chumbadores químicos sobre a cinta de concreto.",
    "stage": "2. Estrutural",
    "system": "Híbrido",
    "specialist": "Proj. LSF",
    "executor": "Montadores LSF",
    "dateStartExpected": "2023-10-05",
    "dateEndExpected": "2023-10-07",
    "status": "Executado",
    "gate": {"status": "Pendente", "notes": ""},
    "isTransitionPoint": true,
    "transitionTag": "#Ancoragem",
    "photos": [
      {"id": "p1", "url": "https://picsum.photos/id/201/400/300", "timestamp": 1697446800000, "description": "Detalhe chumbador"}
    ],
    "subtasks": []
  }
]`

	ctx := context.Background()
	kv := newMemoryKV(t)
	require.NoError(t, kv.Save(ctx, storage.TasksKey, []byte(tasks)))
	rec := &countingRecorder{}

	repo, err := taskstore.NewRepository(ctx, taskstore.RepositoryConfig{KV: kv, Metrics: rec})
	require.NoError(t, err)

	got, err := repo.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 0, rec.warnings["load"])

	approved := got[0]
	assert.Equal(t, "t1", approved.ID)
	assert.Equal(t, model.GateStatusApproved, approved.Gate.Status)
	require.NotNil(t, approved.Gate.Date)
	assert.Equal(t, model.NewDate(2023, 10, 4), approved.CompletionDate())
	assert.Len(t, approved.Subtasks, 2)

	hybrid := got[1]
	assert.Equal(t, "t2", hybrid.ID)
	require.Len(t, hybrid.Photos, 1)
	assert.Equal(t, time.Date(2023, 10, 16, 9, 0, 0, 0, time.UTC), hybrid.Photos[0].Timestamp)

	// Writing the state back keeps the original formats.
	_, err = repo.MutateTask(ctx, "t2", func(t *model.Task) (*model.HistoryEntry, error) {
		t.Description = "Chumbadores conferidos"
		return nil, nil
	})
	require.NoError(t, err)

	data, err := kv.Load(ctx, storage.TasksKey)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"timestamp":1697446800000`)
}
