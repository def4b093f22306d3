package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/obrahub/obra/internal/app/update"
	"github.com/obrahub/obra/pkg/lib"
)

type UpdateCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	taskID string
	field  string
	value  string
	format string
}

// NewUpdateCommand returns the update command.
func NewUpdateCommand(rootCmd *RootCommand, app *kingpin.Application) *UpdateCommand {
	c := &UpdateCommand{rootCmd: rootCmd}

	fields := make([]string, 0, len(update.Fields))
	for _, f := range update.Fields {
		fields = append(fields, string(f))
	}

	c.Cmd = app.Command("update", "Edit a single field of a task.")
	c.Cmd.Arg("task-id", "Task ID.").Required().StringVar(&c.taskID)
	c.Cmd.Arg("field", "Field to edit.").Required().EnumVar(&c.field, fields...)
	c.Cmd.Arg("value", "New value, dates use YYYY-MM-DD and flags true/false.").StringVar(&c.value)
	formatFlag(c.Cmd, &c.format)

	return c
}

func (c UpdateCommand) Name() string { return c.Cmd.FullCommand() }

func (c UpdateCommand) Run(ctx context.Context) error {
	return c.rootCmd.withClient(ctx, func(client *lib.Client, actor lib.User) error {
		task, err := client.UpdateField(ctx, actor, c.taskID, lib.Field(c.field), c.value)
		if err != nil {
			return fmt.Errorf("could not update task: %w", err)
		}
		return c.rootCmd.printer(c.format).PrintTask(*task)
	})
}
