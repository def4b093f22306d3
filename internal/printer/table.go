package printer

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/obrahub/obra/internal/analytics"
	"github.com/obrahub/obra/internal/model"
)

// TablePrinter prints task information in a table format.
type TablePrinter struct {
	writer io.Writer
}

// NewTablePrinter creates a new table printer.
func NewTablePrinter(w io.Writer) *TablePrinter {
	return &TablePrinter{writer: w}
}

// PrintList prints tasks in a table format.
func (t *TablePrinter) PrintList(tasks []model.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "ID\tTITLE\tSYSTEM\tSTAGE\tEXECUTOR\tSTATUS\tGATE\tEND\tCHECKLIST")

	for _, task := range tasks {
		gate := "-"
		if task.Status == model.StatusExecuted {
			gate = string(task.Gate.Status)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			task.ID,
			task.Title,
			task.System,
			task.Stage,
			task.Executor,
			task.Status,
			gate,
			orDash(task.EndExpected.String()),
			checklist(task),
		)
	}

	return nil
}

// PrintTask prints the task details.
func (t *TablePrinter) PrintTask(task model.Task) error {
	fmt.Fprintf(t.writer, "ID:          %s\n", task.ID)
	fmt.Fprintf(t.writer, "Title:       %s\n", task.Title)
	if task.Description != "" {
		fmt.Fprintf(t.writer, "Description: %s\n", task.Description)
	}
	fmt.Fprintf(t.writer, "System:      %s\n", task.System)
	fmt.Fprintf(t.writer, "Stage:       %s\n", task.Stage)
	if task.IsTransitionPoint {
		fmt.Fprintf(t.writer, "Transition:  %s\n", orDash(task.TransitionTag))
	}
	fmt.Fprintf(t.writer, "Specialist:  %s\n", orDash(task.Specialist))
	fmt.Fprintf(t.writer, "Executor:    %s\n", task.Executor)
	fmt.Fprintf(t.writer, "Planned:     %s -> %s\n", orDash(task.StartExpected.String()), orDash(task.EndExpected.String()))
	fmt.Fprintf(t.writer, "Status:      %s\n", task.Status)
	if task.Status == model.StatusBlocked {
		fmt.Fprintf(t.writer, "Reason:      %s\n", task.BlockedReason)
	}

	if task.Status == model.StatusExecuted {
		fmt.Fprintf(t.writer, "Gate:        %s\n", task.Gate.Status)
		if task.Gate.CheckedBy != "" {
			fmt.Fprintf(t.writer, "Checked by:  %s\n", task.Gate.CheckedBy)
		}
		if task.Gate.Date != nil {
			fmt.Fprintf(t.writer, "Checked at:  %s\n", FormatTimestamp(*task.Gate.Date))
		}
		if task.Gate.Notes != "" {
			fmt.Fprintf(t.writer, "Gate notes:  %s\n", task.Gate.Notes)
		}
	}

	if len(task.Subtasks) > 0 {
		fmt.Fprintf(t.writer, "Checklist:   %s %s\n", checklist(task), ProgressBar(task.SubtaskProgress(), 20))
		for _, st := range task.Subtasks {
			mark := " "
			if st.Completed {
				mark = "x"
			}
			fmt.Fprintf(t.writer, "  [%s] %s (%s)\n", mark, st.Title, st.ID)
		}
	}

	fmt.Fprintf(t.writer, "Photos:      %d\n", len(task.Photos))
	for _, p := range task.Photos {
		fmt.Fprintf(t.writer, "  %s  %s  %s\n", p.ID, FormatTimestamp(p.Timestamp), orDash(p.Description))
	}
	fmt.Fprintf(t.writer, "Updated:     %s\n", FormatTimestamp(task.UpdatedAt))

	return nil
}

// PrintHistory prints the status changes, newest first.
func (t *TablePrinter) PrintHistory(entries []model.HistoryEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "WHEN\tFROM\tTO\tUSER\tROLE")

	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			FormatTimestamp(e.Timestamp),
			e.PreviousStatus,
			e.NewStatus,
			e.UserName,
			e.UserRole,
		)
	}

	return nil
}

// PrintReport prints the summary counters and the progress series.
func (t *TablePrinter) PrintReport(report analytics.Report) error {
	s := report.Summary
	fmt.Fprintf(t.writer, "Tasks:         %d\n", s.Total)
	fmt.Fprintf(t.writer, "Progress:      %d%% %s\n", s.Progress, ProgressBar(s.Progress, 20))
	fmt.Fprintf(t.writer, "Executed:      %d\n", s.Executed)
	fmt.Fprintf(t.writer, "Pending gates: %d\n", s.PendingGates)
	fmt.Fprintf(t.writer, "Blocked:       %d\n", s.Blocked)
	fmt.Fprintf(t.writer, "Overdue:       %d\n", s.Overdue)
	if len(s.OverdueTaskIDs) > 0 {
		fmt.Fprintf(t.writer, "  %s\n", strings.Join(s.OverdueTaskIDs, ", "))
	}
	fmt.Fprintf(t.writer, "Board:         wait %d, active %d, blocked %d, done %d\n",
		s.ByStatus.Waiting, s.ByStatus.Active, s.ByStatus.Blocked, s.ByStatus.Done)

	systems := make([]string, 0, len(model.Systems))
	for _, sys := range model.Systems {
		systems = append(systems, fmt.Sprintf("%s %d", sys, s.BySystem[sys]))
	}
	fmt.Fprintf(t.writer, "Systems:       %s\n", strings.Join(systems, ", "))

	if report.Series == nil {
		return nil
	}

	fmt.Fprintln(t.writer)
	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "DATE\tPLANNED\tACTUAL\tEXECUTORS")
	for _, p := range report.Series {
		fmt.Fprintf(tw, "%s\t%.0f%%\t%.0f%%\t%s\n", p.Date, p.Planned, p.Actual, orDash(strings.Join(p.Executors, ", ")))
	}

	return nil
}

// PrintMessage prints a simple text message.
func (t *TablePrinter) PrintMessage(msg string) error {
	fmt.Fprintln(t.writer, msg)
	return nil
}

func checklist(task model.Task) string {
	if len(task.Subtasks) == 0 {
		return "-"
	}
	done := 0
	for _, st := range task.Subtasks {
		if st.Completed {
			done++
		}
	}
	return fmt.Sprintf("%d/%d", done, len(task.Subtasks))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
