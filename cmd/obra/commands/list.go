package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/obrahub/obra/internal/model"
	"github.com/obrahub/obra/pkg/lib"
)

// filterFlags are the task filter flags shared by the list and report commands.
type filterFlags struct {
	system   string
	stage    string
	executor string
	status   string
}

func (f *filterFlags) register(cmd *kingpin.CmdClause) {
	cmd.Flag("system", "Filter by construction system.").StringVar(&f.system)
	cmd.Flag("stage", "Filter by project stage.").StringVar(&f.stage)
	cmd.Flag("executor", "Filter by executor team.").StringVar(&f.executor)
	cmd.Flag("status", "Filter by status.").StringVar(&f.status)
}

func (f filterFlags) filter() (model.TaskFilter, error) {
	var tf model.TaskFilter
	if f.system != "" {
		s, err := model.ParseSystem(f.system)
		if err != nil {
			return tf, err
		}
		tf.System = &s
	}
	if f.stage != "" {
		s, err := model.ParseStage(f.stage)
		if err != nil {
			return tf, err
		}
		tf.Stage = &s
	}
	if f.executor != "" {
		e := f.executor
		tf.Executor = &e
	}
	if f.status != "" {
		s, err := model.ParseStatus(f.status)
		if err != nil {
			return tf, err
		}
		tf.Status = &s
	}
	return tf, nil
}

type ListCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	filters filterFlags
	format  string
}

// NewListCommand returns the list command.
func NewListCommand(rootCmd *RootCommand, app *kingpin.Application) *ListCommand {
	c := &ListCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("list", "List tasks.")
	c.filters.register(c.Cmd)
	formatFlag(c.Cmd, &c.format)

	return c
}

func (c ListCommand) Name() string { return c.Cmd.FullCommand() }

func (c ListCommand) Run(ctx context.Context) error {
	filter, err := c.filters.filter()
	if err != nil {
		return fmt.Errorf("invalid filter: %w", err)
	}

	return c.rootCmd.withClient(ctx, func(client *lib.Client, _ lib.User) error {
		tasks, err := client.ListTasks(ctx, filter)
		if err != nil {
			return fmt.Errorf("could not list tasks: %w", err)
		}

		return c.rootCmd.printer(c.format).PrintList(tasks)
	})
}
