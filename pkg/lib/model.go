package lib

import (
	"time"

	"github.com/obrahub/obra/internal/analytics"
	"github.com/obrahub/obra/internal/app/update"
	"github.com/obrahub/obra/internal/clock"
	"github.com/obrahub/obra/internal/model"
	"github.com/obrahub/obra/internal/workflow"
)

type (
	// Task is a construction task.
	Task = model.Task
	// TaskFilter is a conjunction of optional task filters, nil fields match everything.
	TaskFilter = model.TaskFilter
	// HistoryEntry is an audit record of a status change.
	HistoryEntry = model.HistoryEntry
	// User is an actor of the system.
	User = model.User
	// Date is a calendar date without time.
	Date = model.Date
	// Status is the execution status of a task.
	Status = model.Status
	// System is the construction system of a task.
	System = model.System
	// Stage is the project stage of a task.
	Stage = model.Stage
	// GateStatus is the quality gate decision state.
	GateStatus = model.GateStatus
	// Column is a board column.
	Column = workflow.Column
	// Transition is the outcome of a status change request.
	Transition = workflow.Transition
	// Field is an editable task field.
	Field = update.Field
	// Report is the progress analytics of a task set.
	Report = analytics.Report
	// Clock is the time source of the client.
	Clock = clock.Clock
	// ValidationKind identifies the task rule a rejected change breaks.
	ValidationKind = model.ValidationErrorKind
)

const (
	StatusAwaitingStart = model.StatusAwaitingStart
	StatusStarted       = model.StatusStarted
	StatusInProgress    = model.StatusInProgress
	StatusBlocked       = model.StatusBlocked
	StatusExecuted      = model.StatusExecuted

	SystemMasonry      = model.SystemMasonry
	SystemLSF          = model.SystemLSF
	SystemHybrid       = model.SystemHybrid
	SystemInstallation = model.SystemInstallation

	StagePreliminary      = model.StagePreliminary
	StageStructural       = model.StageStructural
	StageSealingInfra     = model.StageSealingInfra
	StageRoofingFinishing = model.StageRoofingFinishing

	GateStatusPending                  = model.GateStatusPending
	GateStatusApproved                 = model.GateStatusApproved
	GateStatusApprovedWithReservations = model.GateStatusApprovedWithReservations
	GateStatusRejected                 = model.GateStatusRejected

	ColumnTodo       = workflow.ColumnTodo
	ColumnInProgress = workflow.ColumnInProgress
	ColumnDone       = workflow.ColumnDone

	ValidationKindBlockReasonRequired = model.ValidationKindBlockReasonRequired
	ValidationKindPhotosRequired      = model.ValidationKindPhotosRequired
	ValidationKindGateNotReachable    = model.ValidationKindGateNotReachable
	ValidationKindInvalidValue        = model.ValidationKindInvalidValue
	ValidationKindNotBlocked          = model.ValidationKindNotBlocked
)

var (
	// ErrNotFound is returned when a task, subtask or photo does not exist.
	ErrNotFound = model.ErrNotFound
	// ErrAlreadyExists is returned when a task with the same ID already exists.
	ErrAlreadyExists = model.ErrAlreadyExists
	// ErrNotValid is returned when a change breaks a task rule.
	ErrNotValid = model.ErrNotValid
	// ErrNotAllowed is returned when the user role can't perform the action.
	ErrNotAllowed = model.ErrNotAllowed
)

// ValidationKindOf returns the rule a rejected change breaks.
func ValidationKindOf(err error) (ValidationKind, bool) { return model.ValidationKindOf(err) }

// NewDate returns the calendar date.
func NewDate(year int, month time.Month, day int) Date {
	return model.NewDate(year, month, day)
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (Date, error) { return model.ParseDate(s) }

// TaskDraft is the data of a new task. Title, executor, stage, system and both
// expected dates are required.
type TaskDraft struct {
	Title             string
	Description       string
	Stage             Stage
	System            System
	Specialist        string
	Executor          string
	StartExpected     Date
	EndExpected       Date
	IsTransitionPoint bool
	TransitionTag     string
	// Subtasks are the initial checklist titles.
	Subtasks []string
}

// SeedResult is the outcome of a seed import.
type SeedResult struct {
	Created []string
	Skipped []string
	Users   []User
}
