package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/obrahub/obra/pkg/lib"
)

type ReportCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	filters filterFlags
	format  string
}

// NewReportCommand returns the report command.
func NewReportCommand(rootCmd *RootCommand, app *kingpin.Application) *ReportCommand {
	c := &ReportCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("report", "Show the planned vs actual progress of the tasks.")
	c.filters.register(c.Cmd)
	formatFlag(c.Cmd, &c.format)

	return c
}

func (c ReportCommand) Name() string { return c.Cmd.FullCommand() }

func (c ReportCommand) Run(ctx context.Context) error {
	filter, err := c.filters.filter()
	if err != nil {
		return fmt.Errorf("invalid filter: %w", err)
	}

	return c.rootCmd.withClient(ctx, func(client *lib.Client, _ lib.User) error {
		rep, err := client.Report(ctx, filter)
		if err != nil {
			return fmt.Errorf("could not compute report: %w", err)
		}
		return c.rootCmd.printer(c.format).PrintReport(*rep)
	})
}
