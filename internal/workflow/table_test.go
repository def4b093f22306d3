package workflow_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/obrahub/obra/internal/model"
	"github.com/obrahub/obra/internal/workflow"
)

func TestTarget(t *testing.T) {
	tests := map[string]struct {
		from      model.Status
		event     workflow.Event
		expStatus model.Status
		expErr    bool
	}{
		"Executed can be reverted to awaiting start": {
			from:      model.StatusExecuted,
			event:     workflow.SetEvent(model.StatusAwaitingStart),
			expStatus: model.StatusAwaitingStart,
		},
		"Blocked can go back to started": {
			from:      model.StatusBlocked,
			event:     workflow.SetEvent(model.StatusStarted),
			expStatus: model.StatusStarted,
		},
		"A right swipe leads to blocked": {
			from:      model.StatusStarted,
			event:     workflow.SwipeEvent(workflow.DirectionRight),
			expStatus: model.StatusBlocked,
		},
		"An unknown column is rejected": {
			from:   model.StatusStarted,
			event:  workflow.BoardEvent("archive"),
			expErr: true,
		},
		"An unknown origin is rejected": {
			from:   "Cancelado",
			event:  workflow.SetEvent(model.StatusStarted),
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := workflow.Target(test.from, test.event)

			if test.expErr {
				assert.Error(t, err)
			} else if assert.NoError(t, err) {
				assert.Equal(t, test.expStatus, got)
			}
		})
	}
}

func TestColumnOf(t *testing.T) {
	assert.Equal(t, workflow.ColumnTodo, workflow.ColumnOf(model.StatusAwaitingStart))
	assert.Equal(t, workflow.ColumnInProgress, workflow.ColumnOf(model.StatusStarted))
	assert.Equal(t, workflow.ColumnInProgress, workflow.ColumnOf(model.StatusBlocked))
	assert.Equal(t, workflow.ColumnDone, workflow.ColumnOf(model.StatusExecuted))
}

func TestDirectionOf(t *testing.T) {
	d, ok := workflow.DirectionOf(101, 100)
	assert.True(t, ok)
	assert.Equal(t, workflow.DirectionRight, d)

	d, ok = workflow.DirectionOf(-101, 100)
	assert.True(t, ok)
	assert.Equal(t, workflow.DirectionLeft, d)

	_, ok = workflow.DirectionOf(-100, 100)
	assert.False(t, ok)
}

func TestParseColumn(t *testing.T) {
	c, err := workflow.ParseColumn("done")
	assert.NoError(t, err)
	assert.Equal(t, workflow.ColumnDone, c)

	_, err = workflow.ParseColumn("Done!")
	assert.Error(t, err)
}
