package printer

import (
	"encoding/json"
	"io"

	"github.com/obrahub/obra/internal/analytics"
	"github.com/obrahub/obra/internal/model"
)

// JSONPrinter prints task information in JSON format, using the same field
// names as the persisted documents.
type JSONPrinter struct {
	writer io.Writer
}

// NewJSONPrinter creates a new JSON printer.
func NewJSONPrinter(w io.Writer) *JSONPrinter {
	return &JSONPrinter{writer: w}
}

// messageOutput represents a simple message output.
type messageOutput struct {
	Message string `json:"message"`
}

// PrintList prints the tasks as a JSON array, empty lists included.
func (j *JSONPrinter) PrintList(tasks []model.Task) error {
	if tasks == nil {
		tasks = []model.Task{}
	}
	return j.encode(tasks)
}

// PrintTask prints a single task.
func (j *JSONPrinter) PrintTask(task model.Task) error {
	return j.encode(task)
}

// PrintHistory prints the history entries, newest first.
func (j *JSONPrinter) PrintHistory(entries []model.HistoryEntry) error {
	if entries == nil {
		entries = []model.HistoryEntry{}
	}
	return j.encode(entries)
}

// PrintReport prints the analytics report. An undefined series is null.
func (j *JSONPrinter) PrintReport(report analytics.Report) error {
	return j.encode(report)
}

// PrintMessage prints a simple message in JSON format.
func (j *JSONPrinter) PrintMessage(msg string) error {
	return j.encode(messageOutput{Message: msg})
}

func (j *JSONPrinter) encode(v any) error {
	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
