package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/obrahub/obra/pkg/lib"
)

type GetCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	taskID string
	format string
}

// NewGetCommand returns the get command.
func NewGetCommand(rootCmd *RootCommand, app *kingpin.Application) *GetCommand {
	c := &GetCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("get", "Get the details of a task.")
	c.Cmd.Arg("task-id", "Task ID.").Required().StringVar(&c.taskID)
	formatFlag(c.Cmd, &c.format)

	return c
}

func (c GetCommand) Name() string { return c.Cmd.FullCommand() }

func (c GetCommand) Run(ctx context.Context) error {
	return c.rootCmd.withClient(ctx, func(client *lib.Client, _ lib.User) error {
		task, err := client.GetTask(ctx, c.taskID)
		if err != nil {
			return fmt.Errorf("could not get task: %w", err)
		}

		return c.rootCmd.printer(c.format).PrintTask(*task)
	})
}
