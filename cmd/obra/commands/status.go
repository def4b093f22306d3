package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/obrahub/obra/internal/model"
	"github.com/obrahub/obra/pkg/lib"
)

type StatusCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	taskID string
	status string
	reason string
	format string
}

// NewStatusCommand returns the status command.
func NewStatusCommand(rootCmd *RootCommand, app *kingpin.Application) *StatusCommand {
	c := &StatusCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("status", "Set the status of a task.")
	c.Cmd.Arg("task-id", "Task ID.").Required().StringVar(&c.taskID)
	c.Cmd.Arg("status", "New status (awaiting-start, started, in-progress, blocked, executed).").Required().StringVar(&c.status)
	c.Cmd.Flag("reason", "Reason, required to block a task.").StringVar(&c.reason)
	formatFlag(c.Cmd, &c.format)

	return c
}

func (c StatusCommand) Name() string { return c.Cmd.FullCommand() }

func (c StatusCommand) Run(ctx context.Context) error {
	st, err := model.ParseStatus(c.status)
	if err != nil {
		return err
	}

	return c.rootCmd.withClient(ctx, func(client *lib.Client, actor lib.User) error {
		tr, err := client.ApplyStatus(ctx, actor, c.taskID, st, c.reason)
		if err != nil {
			return fmt.Errorf("could not change status: %w", err)
		}
		return c.rootCmd.printTransition(c.format, tr)
	})
}

// printTransition prints the task after a status change request.
func (r RootCommand) printTransition(format string, tr *lib.Transition) error {
	p := r.printer(format)
	if format == formatJSON {
		return p.PrintTask(tr.Task)
	}

	if !tr.Changed {
		return p.PrintMessage(fmt.Sprintf("Task %s stays %s", tr.Task.ID, tr.Task.Status))
	}
	if err := p.PrintMessage(fmt.Sprintf("Task %s: %s -> %s", tr.Task.ID, tr.Previous, tr.Task.Status)); err != nil {
		return err
	}
	if tr.NotifyManager {
		return p.PrintMessage(fmt.Sprintf("Manager notified: %s", tr.Task.BlockedReason))
	}
	return nil
}
