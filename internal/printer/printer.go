package printer

import (
	"github.com/obrahub/obra/internal/analytics"
	"github.com/obrahub/obra/internal/model"
)

// Printer knows how to print task information in different formats.
type Printer interface {
	PrintList(tasks []model.Task) error
	PrintTask(task model.Task) error
	PrintHistory(entries []model.HistoryEntry) error
	PrintReport(report analytics.Report) error
	PrintMessage(msg string) error
}

var (
	_ Printer = &TablePrinter{}
	_ Printer = &JSONPrinter{}
)
