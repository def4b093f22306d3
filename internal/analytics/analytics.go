// Package analytics computes planned versus actual progress series and the
// summary counters of a set of tasks. Everything here is a pure function of
// its inputs.
package analytics

import (
	"math"
	"sort"

	"github.com/obrahub/obra/internal/model"
)

// WindowPadding is the number of days added on both sides of the task dates.
const WindowPadding = 2

// Point is the progress of one calendar day.
type Point struct {
	Date model.Date `json:"date"`
	// Planned is the percentage of tasks expected to be finished by this day.
	Planned float64 `json:"planned"`
	// Actual is the percentage of tasks executed by this day.
	Actual float64 `json:"actual"`
	// Executors are the teams that completed a task on this exact day, sorted.
	Executors []string `json:"executors"`
}

// StatusCounts groups the statuses in the board buckets.
type StatusCounts struct {
	Waiting int `json:"wait"`
	Active  int `json:"active"`
	Blocked int `json:"blocked"`
	Done    int `json:"done"`
}

// Summary are the aggregated counters of a task set.
type Summary struct {
	Total          int                  `json:"total"`
	Executed       int                  `json:"executed"`
	Progress       int                  `json:"progress"`
	PendingGates   int                  `json:"pendingGates"`
	Blocked        int                  `json:"blocked"`
	Overdue        int                  `json:"overdue"`
	OverdueTaskIDs []string             `json:"overdueTaskIds"`
	BySystem       map[model.System]int `json:"bySystem"`
	ByStatus       StatusCounts         `json:"byStatus"`
}

// Report is the analytics of a task set. Series is nil when there is no
// meaningful date window.
type Report struct {
	Series  []Point `json:"series"`
	Summary Summary `json:"summary"`
}

// Compute returns the full report of the tasks as of today.
func Compute(tasks []model.Task, today model.Date) Report {
	return Report{
		Series:  Series(tasks),
		Summary: Summarize(tasks, today),
	}
}

// Window returns the padded day range covered by the tasks dates and gate
// decisions. It returns false when there are no tasks or the range is empty.
func Window(tasks []model.Task) (from, to model.Date, ok bool) {
	for _, t := range tasks {
		dates := []model.Date{t.StartExpected, t.EndExpected}
		if t.Gate.Date != nil {
			dates = append(dates, model.DateOf(t.Gate.Date.UTC()))
		}
		for _, d := range dates {
			if d.IsZero() {
				continue
			}
			if from.IsZero() || d.Before(from) {
				from = d
			}
			if to.IsZero() || d.After(to) {
				to = d
			}
		}
	}
	if from.IsZero() {
		return model.Date{}, model.Date{}, false
	}

	from, to = from.AddDays(-WindowPadding), to.AddDays(WindowPadding)
	if !from.Before(to) {
		return model.Date{}, model.Date{}, false
	}
	return from, to, true
}

// Series returns one point per day of the tasks window, nil when undefined.
func Series(tasks []model.Task) []Point {
	from, to, ok := Window(tasks)
	if !ok {
		return nil
	}

	total := float64(len(tasks))
	points := make([]Point, 0, from.DaysUntil(to)+1)
	for d := from; !d.After(to); d = d.AddDays(1) {
		planned, actual := 0, 0
		executors := map[string]struct{}{}
		for _, t := range tasks {
			if !t.EndExpected.IsZero() && !t.EndExpected.After(d) {
				planned++
			}
			if t.Status != model.StatusExecuted {
				continue
			}
			done := t.CompletionDate()
			if done.IsZero() {
				continue
			}
			if !done.After(d) {
				actual++
			}
			if done.Equal(d) {
				executors[t.Executor] = struct{}{}
			}
		}

		names := make([]string, 0, len(executors))
		for name := range executors {
			names = append(names, name)
		}
		sort.Strings(names)

		points = append(points, Point{
			Date:      d,
			Planned:   float64(planned) / total * 100,
			Actual:    float64(actual) / total * 100,
			Executors: names,
		})
	}

	return points
}

// Summarize returns the counters of the tasks as of today.
func Summarize(tasks []model.Task, today model.Date) Summary {
	s := Summary{
		Total:          len(tasks),
		OverdueTaskIDs: []string{},
		BySystem:       make(map[model.System]int, len(model.Systems)),
	}
	for _, sys := range model.Systems {
		s.BySystem[sys] = 0
	}

	for _, t := range tasks {
		s.BySystem[t.System]++

		switch t.Status {
		case model.StatusAwaitingStart:
			s.ByStatus.Waiting++
		case model.StatusStarted, model.StatusInProgress:
			s.ByStatus.Active++
		case model.StatusBlocked:
			s.ByStatus.Blocked++
			s.Blocked++
		case model.StatusExecuted:
			s.ByStatus.Done++
			s.Executed++
			if t.Gate.Status == model.GateStatusPending {
				s.PendingGates++
			}
		}

		if t.IsOverdue(today) {
			s.Overdue++
			s.OverdueTaskIDs = append(s.OverdueTaskIDs, t.ID)
		}
	}

	if s.Total > 0 {
		s.Progress = int(math.Round(float64(s.Executed) / float64(s.Total) * 100))
	}

	return s
}
