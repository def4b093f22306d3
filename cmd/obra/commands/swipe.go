package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/obrahub/obra/pkg/lib"
)

type SwipeCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	taskID string
	offset float64
	reason string
	format string
}

// NewSwipeCommand returns the swipe command.
func NewSwipeCommand(rootCmd *RootCommand, app *kingpin.Application) *SwipeCommand {
	c := &SwipeCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("swipe", "Swipe a task card, right blocks it and left executes it.")
	c.Cmd.Arg("task-id", "Task ID.").Required().StringVar(&c.taskID)
	c.Cmd.Flag("offset", "Horizontal swipe offset, negative is left.").Required().Float64Var(&c.offset)
	c.Cmd.Flag("reason", "Reason, required when the swipe blocks the task.").StringVar(&c.reason)
	formatFlag(c.Cmd, &c.format)

	return c
}

func (c SwipeCommand) Name() string { return c.Cmd.FullCommand() }

func (c SwipeCommand) Run(ctx context.Context) error {
	return c.rootCmd.withClient(ctx, func(client *lib.Client, actor lib.User) error {
		tr, err := client.SwipeTask(ctx, actor, c.taskID, c.offset, c.reason)
		if err != nil {
			return fmt.Errorf("could not swipe task: %w", err)
		}
		return c.rootCmd.printTransition(c.format, tr)
	})
}
