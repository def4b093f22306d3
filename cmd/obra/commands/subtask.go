package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/obrahub/obra/pkg/lib"
)

// SubtaskAddCommand appends a checklist item.
type SubtaskAddCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	taskID string
	title  string
	format string
}

// NewSubtaskAddCommand returns the subtask add command.
func NewSubtaskAddCommand(rootCmd *RootCommand, subtaskCmd *kingpin.CmdClause) *SubtaskAddCommand {
	c := &SubtaskAddCommand{rootCmd: rootCmd}

	c.Cmd = subtaskCmd.Command("add", "Add a checklist item to a task.")
	c.Cmd.Arg("task-id", "Task ID.").Required().StringVar(&c.taskID)
	c.Cmd.Arg("title", "Checklist item title.").Required().StringVar(&c.title)
	formatFlag(c.Cmd, &c.format)

	return c
}

func (c SubtaskAddCommand) Name() string { return c.Cmd.FullCommand() }

func (c SubtaskAddCommand) Run(ctx context.Context) error {
	return c.rootCmd.withClient(ctx, func(client *lib.Client, actor lib.User) error {
		task, err := client.AddSubtask(ctx, actor, c.taskID, c.title)
		if err != nil {
			return fmt.Errorf("could not add subtask: %w", err)
		}
		return c.rootCmd.printer(c.format).PrintTask(*task)
	})
}

// SubtaskToggleCommand flips a checklist item.
type SubtaskToggleCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	taskID    string
	subtaskID string
	format    string
}

// NewSubtaskToggleCommand returns the subtask toggle command.
func NewSubtaskToggleCommand(rootCmd *RootCommand, subtaskCmd *kingpin.CmdClause) *SubtaskToggleCommand {
	c := &SubtaskToggleCommand{rootCmd: rootCmd}

	c.Cmd = subtaskCmd.Command("toggle", "Toggle the completion of a checklist item.")
	c.Cmd.Arg("task-id", "Task ID.").Required().StringVar(&c.taskID)
	c.Cmd.Arg("subtask-id", "Subtask ID.").Required().StringVar(&c.subtaskID)
	formatFlag(c.Cmd, &c.format)

	return c
}

func (c SubtaskToggleCommand) Name() string { return c.Cmd.FullCommand() }

func (c SubtaskToggleCommand) Run(ctx context.Context) error {
	return c.rootCmd.withClient(ctx, func(client *lib.Client, actor lib.User) error {
		task, err := client.ToggleSubtask(ctx, actor, c.taskID, c.subtaskID)
		if err != nil {
			return fmt.Errorf("could not toggle subtask: %w", err)
		}
		return c.rootCmd.printer(c.format).PrintTask(*task)
	})
}

// SubtaskRmCommand removes a checklist item.
type SubtaskRmCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	taskID    string
	subtaskID string
	yes       bool
	format    string
}

// NewSubtaskRmCommand returns the subtask rm command.
func NewSubtaskRmCommand(rootCmd *RootCommand, subtaskCmd *kingpin.CmdClause) *SubtaskRmCommand {
	c := &SubtaskRmCommand{rootCmd: rootCmd}

	c.Cmd = subtaskCmd.Command("rm", "Remove a checklist item, it needs confirmation.")
	c.Cmd.Arg("task-id", "Task ID.").Required().StringVar(&c.taskID)
	c.Cmd.Arg("subtask-id", "Subtask ID.").Required().StringVar(&c.subtaskID)
	c.Cmd.Flag("yes", "Confirm the removal.").Short('y').BoolVar(&c.yes)
	formatFlag(c.Cmd, &c.format)

	return c
}

func (c SubtaskRmCommand) Name() string { return c.Cmd.FullCommand() }

func (c SubtaskRmCommand) Run(ctx context.Context) error {
	return c.rootCmd.withClient(ctx, func(client *lib.Client, actor lib.User) error {
		task, err := client.RemoveSubtask(ctx, actor, c.taskID, c.subtaskID, c.yes)
		if err != nil {
			return fmt.Errorf("could not remove subtask: %w", err)
		}
		if !c.yes {
			c.rootCmd.Logger.Warningf("Subtask %s not removed, use --yes to confirm", c.subtaskID)
		}
		return c.rootCmd.printer(c.format).PrintTask(*task)
	})
}
