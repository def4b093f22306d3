package analytics_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obrahub/obra/internal/analytics"
	"github.com/obrahub/obra/internal/model"
)

func task(id string, system model.System, status model.Status, start, end string) model.Task {
	t := model.Task{
		ID:            id,
		Title:         id,
		Stage:         model.StageStructural,
		System:        system,
		Executor:      "Equipe " + id,
		StartExpected: model.MustParseDate(start),
		EndExpected:   model.MustParseDate(end),
		Status:        status,
		Gate:          model.PendingGate(),
	}
	if status == model.StatusBlocked {
		t.BlockedReason = "Chuva"
	}
	return t
}

func TestWindow(t *testing.T) {
	gateAt := time.Date(2023, 10, 25, 15, 0, 0, 0, time.UTC)
	approved := task("t2", model.SystemMasonry, model.StatusExecuted, "2023-10-05", "2023-10-10")
	approved.Gate = model.Gate{Status: model.GateStatusApproved, Date: &gateAt}

	tests := map[string]struct {
		tasks   []model.Task
		expFrom model.Date
		expTo   model.Date
		expOK   bool
	}{
		"No tasks should not have a window": {
			tasks: nil,
			expOK: false,
		},
		"The window should be padded by two days": {
			tasks: []model.Task{
				task("t1", model.SystemLSF, model.StatusStarted, "2023-10-01", "2023-10-03"),
			},
			expFrom: model.NewDate(2023, 9, 29),
			expTo:   model.NewDate(2023, 10, 5),
			expOK:   true,
		},
		"Gate dates should extend the window": {
			tasks: []model.Task{
				task("t1", model.SystemLSF, model.StatusStarted, "2023-10-01", "2023-10-03"),
				approved,
			},
			expFrom: model.NewDate(2023, 9, 29),
			expTo:   model.NewDate(2023, 10, 27),
			expOK:   true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			from, to, ok := analytics.Window(test.tasks)

			assert.Equal(t, test.expOK, ok)
			assert.Equal(t, test.expFrom, from)
			assert.Equal(t, test.expTo, to)
		})
	}
}

func TestSeriesSinglePendingTask(t *testing.T) {
	tasks := []model.Task{task("t1", model.SystemMasonry, model.StatusInProgress, "2023-10-01", "2023-10-05")}
	end := model.NewDate(2023, 10, 5)

	series := analytics.Series(tasks)
	require.Len(t, series, 9)

	for _, p := range series {
		if p.Date.Before(end) {
			assert.Equal(t, 0.0, p.Planned, p.Date.String())
		} else {
			assert.Equal(t, 100.0, p.Planned, p.Date.String())
		}
		assert.Equal(t, 0.0, p.Actual, p.Date.String())
		assert.Empty(t, p.Executors)
	}
}

func TestSeriesActualProgress(t *testing.T) {
	gateAt := time.Date(2023, 10, 4, 18, 0, 0, 0, time.UTC)

	withGate := task("a", model.SystemLSF, model.StatusExecuted, "2023-10-01", "2023-10-06")
	withGate.Photos = []model.Photo{{ID: "p1"}}
	withGate.Gate = model.Gate{Status: model.GateStatusApproved, Date: &gateAt}

	withoutGate := task("b", model.SystemMasonry, model.StatusExecuted, "2023-10-01", "2023-10-04")
	pending := task("c", model.SystemMasonry, model.StatusStarted, "2023-10-01", "2023-10-04")
	pending2 := task("d", model.SystemHybrid, model.StatusAwaitingStart, "2023-10-02", "2023-10-08")

	series := analytics.Series([]model.Task{withGate, withoutGate, pending, pending2})
	require.NotNil(t, series)

	byDate := map[string]analytics.Point{}
	for _, p := range series {
		byDate[p.Date.String()] = p
	}

	day3 := byDate["2023-10-03"]
	assert.Equal(t, 0.0, day3.Planned)
	assert.Equal(t, 0.0, day3.Actual)

	day4 := byDate["2023-10-04"]
	assert.Equal(t, 50.0, day4.Planned)
	assert.Equal(t, 50.0, day4.Actual)
	assert.Equal(t, []string{"Equipe a", "Equipe b"}, day4.Executors)

	day8 := byDate["2023-10-08"]
	assert.Equal(t, 100.0, day8.Planned)
	assert.Equal(t, 50.0, day8.Actual)
	assert.Empty(t, day8.Executors)
}

func TestSeriesExecutorsAreDeduplicated(t *testing.T) {
	walls := task("a", model.SystemMasonry, model.StatusExecuted, "2023-10-01", "2023-10-04")
	walls.Executor = "Equipe Civil"
	beams := task("b", model.SystemMasonry, model.StatusExecuted, "2023-10-02", "2023-10-04")
	beams.Executor = "Equipe Civil"
	other := task("c", model.SystemHybrid, model.StatusExecuted, "2023-10-02", "2023-10-05")

	series := analytics.Series([]model.Task{walls, beams, other})

	byDate := map[string]analytics.Point{}
	for _, p := range series {
		byDate[p.Date.String()] = p
	}
	day4 := byDate["2023-10-04"]
	assert.Equal(t, []string{"Equipe Civil"}, day4.Executors)
	assert.InDelta(t, 66.67, day4.Actual, 0.01)
	assert.Equal(t, []string{"Equipe c"}, byDate["2023-10-05"].Executors)
}

func TestSeriesEmpty(t *testing.T) {
	assert.Nil(t, analytics.Series(nil))
	assert.Nil(t, analytics.Series([]model.Task{}))
}

func TestComputeIsIdempotent(t *testing.T) {
	tasks := []model.Task{
		task("t1", model.SystemLSF, model.StatusStarted, "2023-10-01", "2023-10-03"),
		task("t2", model.SystemMasonry, model.StatusExecuted, "2023-10-02", "2023-10-09"),
		task("t3", model.SystemInstallation, model.StatusBlocked, "2023-10-04", "2023-10-12"),
	}
	today := model.NewDate(2023, 10, 10)

	r1 := analytics.Compute(tasks, today)
	r2 := analytics.Compute(tasks, today)

	assert.Equal(t, r1, r2)
}

func TestSummarize(t *testing.T) {
	today := model.NewDate(2023, 10, 16)
	yesterday := "2023-10-15"

	tests := map[string]struct {
		tasks      []model.Task
		expSummary analytics.Summary
	}{
		"No tasks should have zero progress": {
			tasks: nil,
			expSummary: analytics.Summary{
				OverdueTaskIDs: []string{},
				BySystem: map[model.System]int{
					model.SystemMasonry: 0, model.SystemLSF: 0, model.SystemHybrid: 0, model.SystemInstallation: 0,
				},
			},
		},

		"An in progress task ending yesterday should be overdue": {
			tasks: []model.Task{
				task("t1", model.SystemMasonry, model.StatusInProgress, "2023-10-01", yesterday),
			},
			expSummary: analytics.Summary{
				Total:          1,
				Overdue:        1,
				OverdueTaskIDs: []string{"t1"},
				BySystem: map[model.System]int{
					model.SystemMasonry: 1, model.SystemLSF: 0, model.SystemHybrid: 0, model.SystemInstallation: 0,
				},
				ByStatus: analytics.StatusCounts{Active: 1},
			},
		},

		"An executed task ending yesterday should never be overdue": {
			tasks: []model.Task{
				task("t1", model.SystemMasonry, model.StatusExecuted, "2023-10-01", yesterday),
			},
			expSummary: analytics.Summary{
				Total:          1,
				Executed:       1,
				Progress:       100,
				PendingGates:   1,
				OverdueTaskIDs: []string{},
				BySystem: map[model.System]int{
					model.SystemMasonry: 1, model.SystemLSF: 0, model.SystemHybrid: 0, model.SystemInstallation: 0,
				},
				ByStatus: analytics.StatusCounts{Done: 1},
			},
		},

		"Mixed tasks should be counted by bucket and rounded": {
			tasks: []model.Task{
				task("t1", model.SystemLSF, model.StatusAwaitingStart, "2023-10-20", "2023-10-25"),
				task("t2", model.SystemLSF, model.StatusBlocked, "2023-10-01", "2023-10-30"),
				task("t3", model.SystemHybrid, model.StatusExecuted, "2023-10-01", "2023-10-02"),
			},
			expSummary: analytics.Summary{
				Total:          3,
				Executed:       1,
				Progress:       33,
				PendingGates:   1,
				Blocked:        1,
				OverdueTaskIDs: []string{},
				BySystem: map[model.System]int{
					model.SystemMasonry: 0, model.SystemLSF: 2, model.SystemHybrid: 1, model.SystemInstallation: 0,
				},
				ByStatus: analytics.StatusCounts{Waiting: 1, Blocked: 1, Done: 1},
			},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			got := analytics.Summarize(test.tasks, today)
			assert.Equal(t, test.expSummary, got)
		})
	}
}
