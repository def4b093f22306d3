package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/obrahub/obra/internal/workflow"
	"github.com/obrahub/obra/pkg/lib"
)

type MoveCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	taskID string
	column string
	reason string
	format string
}

// NewMoveCommand returns the move command.
func NewMoveCommand(rootCmd *RootCommand, app *kingpin.Application) *MoveCommand {
	c := &MoveCommand{rootCmd: rootCmd}

	columns := make([]string, 0, len(workflow.Columns))
	for _, col := range workflow.Columns {
		columns = append(columns, string(col))
	}

	c.Cmd = app.Command("move", "Move a task card to a board column.")
	c.Cmd.Arg("task-id", "Task ID.").Required().StringVar(&c.taskID)
	c.Cmd.Arg("column", "Board column.").Required().EnumVar(&c.column, columns...)
	c.Cmd.Flag("reason", "Reason, required when the move blocks the task.").StringVar(&c.reason)
	formatFlag(c.Cmd, &c.format)

	return c
}

func (c MoveCommand) Name() string { return c.Cmd.FullCommand() }

func (c MoveCommand) Run(ctx context.Context) error {
	return c.rootCmd.withClient(ctx, func(client *lib.Client, actor lib.User) error {
		tr, err := client.MoveTask(ctx, actor, c.taskID, lib.Column(c.column), c.reason)
		if err != nil {
			return fmt.Errorf("could not move task: %w", err)
		}
		return c.rootCmd.printTransition(c.format, tr)
	})
}
