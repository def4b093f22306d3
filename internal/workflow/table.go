package workflow

import (
	"fmt"

	"github.com/obrahub/obra/internal/model"
)

// EventKind is the kind of user gesture that requests a status change.
type EventKind string

const (
	// EventSet is an explicit status edit.
	EventSet EventKind = "set"
	// EventBoard is a card dropped on a board column.
	EventBoard EventKind = "board"
	// EventSwipe is a horizontal swipe on a task card.
	EventSwipe EventKind = "swipe"
)

// Column is a board column.
type Column string

const (
	ColumnTodo       Column = "todo"
	ColumnInProgress Column = "in-progress"
	ColumnDone       Column = "done"
)

// Columns are the board columns in display order.
var Columns = []Column{ColumnTodo, ColumnInProgress, ColumnDone}

// ParseColumn parses a board column.
func ParseColumn(s string) (Column, error) {
	for _, c := range Columns {
		if string(c) == s {
			return c, nil
		}
	}
	return "", model.NewValidationError(model.ValidationKindInvalidValue, "unknown board column %q", s)
}

// ColumnOf returns the board column a task in the status is shown on.
func ColumnOf(s model.Status) Column {
	switch s {
	case model.StatusAwaitingStart:
		return ColumnTodo
	case model.StatusExecuted:
		return ColumnDone
	default:
		return ColumnInProgress
	}
}

// Direction is a swipe direction.
type Direction string

const (
	// DirectionRight flags the task as blocked.
	DirectionRight Direction = "right"
	// DirectionLeft marks the task as executed.
	DirectionLeft Direction = "left"
)

// DirectionOf maps a horizontal swipe offset to a direction. Offsets within
// the threshold (inclusive) are not a swipe.
func DirectionOf(offset float64, threshold float64) (Direction, bool) {
	switch {
	case offset > threshold:
		return DirectionRight, true
	case offset < -threshold:
		return DirectionLeft, true
	}
	return "", false
}

// Event is a requested status change.
type Event struct {
	Kind EventKind
	Arg  string
}

func (e Event) String() string { return fmt.Sprintf("%s(%s)", e.Kind, e.Arg) }

// SetEvent returns the event for an explicit status edit.
func SetEvent(s model.Status) Event { return Event{Kind: EventSet, Arg: string(s)} }

// BoardEvent returns the event for a card dropped on a column.
func BoardEvent(c Column) Event { return Event{Kind: EventBoard, Arg: string(c)} }

// SwipeEvent returns the event for a swipe in a direction.
func SwipeEvent(d Direction) Event { return Event{Kind: EventSwipe, Arg: string(d)} }

// transitions is the single status transition table: from × event → to.
// A missing entry is a rejected event. An entry whose target equals the
// origin is a no-op.
var transitions = buildTransitions()

func buildTransitions() map[model.Status]map[Event]model.Status {
	table := make(map[model.Status]map[Event]model.Status, len(model.Statuses))
	for _, from := range model.Statuses {
		row := map[Event]model.Status{
			BoardEvent(ColumnTodo):       model.StatusAwaitingStart,
			BoardEvent(ColumnInProgress): model.StatusInProgress,
			BoardEvent(ColumnDone):       model.StatusExecuted,
			SwipeEvent(DirectionRight):   model.StatusBlocked,
			SwipeEvent(DirectionLeft):    model.StatusExecuted,
		}

		// Any status can be set explicitly from any other one, no state is terminal.
		for _, to := range model.Statuses {
			row[SetEvent(to)] = to
		}

		// Dropping an active or blocked card on its own column keeps it where it is.
		if from == model.StatusStarted || from == model.StatusInProgress || from == model.StatusBlocked {
			row[BoardEvent(ColumnInProgress)] = from
		}

		table[from] = row
	}
	return table
}

// Target returns the status the event leads to from the status.
func Target(from model.Status, ev Event) (model.Status, error) {
	row, ok := transitions[from]
	if !ok {
		return "", model.NewValidationError(model.ValidationKindInvalidValue, "unknown status %q", from)
	}
	to, ok := row[ev]
	if !ok {
		return "", model.NewValidationError(model.ValidationKindInvalidValue, "event %s is not valid from %q", ev, from)
	}
	return to, nil
}
