package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/obrahub/obra/pkg/lib"
)

type ExportCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	taskID string
}

// NewExportCommand returns the export command.
func NewExportCommand(rootCmd *RootCommand, app *kingpin.Application) *ExportCommand {
	c := &ExportCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("export", "Print a plain text summary of a task to share.")
	c.Cmd.Arg("task-id", "Task ID.").Required().StringVar(&c.taskID)

	return c
}

func (c ExportCommand) Name() string { return c.Cmd.FullCommand() }

func (c ExportCommand) Run(ctx context.Context) error {
	return c.rootCmd.withClient(ctx, func(client *lib.Client, _ lib.User) error {
		text, err := client.Export(ctx, c.taskID)
		if err != nil {
			return fmt.Errorf("could not export task: %w", err)
		}
		_, err = fmt.Fprint(c.rootCmd.Stdout, text)
		return err
	})
}
