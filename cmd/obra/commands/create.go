package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/obrahub/obra/internal/model"
	"github.com/obrahub/obra/pkg/lib"
)

type CreateCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	title             string
	description       string
	stage             string
	system            string
	specialist        string
	executor          string
	start             string
	end               string
	isTransitionPoint bool
	transitionTag     string
	subtasks          []string
	format            string
}

// NewCreateCommand returns the create command.
func NewCreateCommand(rootCmd *RootCommand, app *kingpin.Application) *CreateCommand {
	c := &CreateCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("create", "Create a new task.")
	c.Cmd.Arg("title", "Task title.").Required().StringVar(&c.title)
	c.Cmd.Flag("description", "Task description.").StringVar(&c.description)
	c.Cmd.Flag("stage", "Project stage (preliminary, structural, sealing-infra, roofing-finishing or 1-4).").Required().StringVar(&c.stage)
	c.Cmd.Flag("system", "Construction system (masonry, lsf, hybrid, installation).").Required().StringVar(&c.system)
	c.Cmd.Flag("specialist", "Responsible specialist.").StringVar(&c.specialist)
	c.Cmd.Flag("executor", "Executor team.").Required().StringVar(&c.executor)
	c.Cmd.Flag("start", "Expected start date (YYYY-MM-DD).").Required().StringVar(&c.start)
	c.Cmd.Flag("end", "Expected end date (YYYY-MM-DD).").Required().StringVar(&c.end)
	c.Cmd.Flag("transition-point", "Mark the task as a system transition point.").BoolVar(&c.isTransitionPoint)
	c.Cmd.Flag("transition-tag", "Transition point tag.").StringVar(&c.transitionTag)
	c.Cmd.Flag("subtask", "Checklist item title (repeatable).").StringsVar(&c.subtasks)
	formatFlag(c.Cmd, &c.format)

	return c
}

func (c CreateCommand) Name() string { return c.Cmd.FullCommand() }

func (c CreateCommand) Run(ctx context.Context) error {
	stage, err := model.ParseStage(c.stage)
	if err != nil {
		return err
	}
	system, err := model.ParseSystem(c.system)
	if err != nil {
		return err
	}
	start, err := model.ParseDate(c.start)
	if err != nil {
		return fmt.Errorf("invalid start: %w", err)
	}
	end, err := model.ParseDate(c.end)
	if err != nil {
		return fmt.Errorf("invalid end: %w", err)
	}

	return c.rootCmd.withClient(ctx, func(client *lib.Client, actor lib.User) error {
		task, err := client.CreateTask(ctx, actor, lib.TaskDraft{
			Title:             c.title,
			Description:       c.description,
			Stage:             stage,
			System:            system,
			Specialist:        c.specialist,
			Executor:          c.executor,
			StartExpected:     start,
			EndExpected:       end,
			IsTransitionPoint: c.isTransitionPoint,
			TransitionTag:     c.transitionTag,
			Subtasks:          c.subtasks,
		})
		if err != nil {
			return fmt.Errorf("could not create task: %w", err)
		}

		return c.rootCmd.printer(c.format).PrintTask(*task)
	})
}
