// Package lib provides a Go SDK to track construction tasks programmatically.
//
// It wires the task store, the status workflow engine and the quality gate
// so applications can drive the task lifecycle without shelling out to the
// obra CLI binary.
//
// # Quick Start
//
// Create a client, create a task and move it through its lifecycle:
//
//	client, err := lib.New(ctx, lib.Config{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	gp, _ := client.User("u1")
//	task, err := client.CreateTask(ctx, gp, lib.TaskDraft{
//	    Title:         "Fundação Radier",
//	    Stage:         lib.StagePreliminary,
//	    System:        lib.SystemMasonry,
//	    Executor:      "Equipe Alpha",
//	    StartExpected: lib.NewDate(2023, 10, 1),
//	    EndExpected:   lib.NewDate(2023, 10, 5),
//	})
//
//	client.ApplyStatus(ctx, gp, task.ID, lib.StatusStarted, "")
//	client.ApplyStatus(ctx, gp, task.ID, lib.StatusExecuted, "")
//	client.DecideGate(ctx, gp, task.ID, lib.GateStatusApproved, nil)
//
// # Stores
//
// Tasks and their history are kept in memory and written through to a
// durable store after every change:
//
//   - [StoreSQLite]: single SQLite database file (default, ~/.obra/obra.db).
//   - [StoreFile]: one JSON document per key on a directory.
//   - [StoreRedis]: string keys on a Redis server.
//   - [StoreMemory]: nothing is persisted, useful for tests.
//
// Persistence is best effort, a failed write is logged and the in memory
// change is kept.
//
// # Roles
//
// Every mutating method receives the acting [User]. Project managers can do
// everything, field executors can't decide quality gates and clients are
// read only. A rejected action returns an error matching [ErrNotAllowed].
//
// # Error Handling
//
// All methods return errors that can be inspected with [errors.Is]:
//
//   - [ErrNotFound]: the task, subtask or photo does not exist.
//   - [ErrAlreadyExists]: a task with the same ID already exists.
//   - [ErrNotValid]: the change breaks a task rule, use [ValidationKindOf]
//     to know which one.
//   - [ErrNotAllowed]: the user role can't perform the action.
//
// # Thread Safety
//
// A [Client] is safe for concurrent use from multiple goroutines.
package lib
