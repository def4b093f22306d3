package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/obrahub/obra/internal/model"
	"github.com/obrahub/obra/pkg/lib"
)

// GateDecideCommand records a quality gate decision.
type GateDecideCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	taskID   string
	decision string
	notes    string
	format   string
}

// NewGateDecideCommand returns the gate decide command.
func NewGateDecideCommand(rootCmd *RootCommand, gateCmd *kingpin.CmdClause) *GateDecideCommand {
	c := &GateDecideCommand{rootCmd: rootCmd}

	c.Cmd = gateCmd.Command("decide", "Decide the quality gate of an executed task.")
	c.Cmd.Arg("task-id", "Task ID.").Required().StringVar(&c.taskID)
	c.Cmd.Arg("decision", "Gate decision (approved, approved-with-reservations, rejected).").Required().StringVar(&c.decision)
	c.Cmd.Flag("notes", "Gate notes, they replace the current ones.").StringVar(&c.notes)
	formatFlag(c.Cmd, &c.format)

	return c
}

func (c GateDecideCommand) Name() string { return c.Cmd.FullCommand() }

func (c GateDecideCommand) Run(ctx context.Context) error {
	decision, err := model.ParseGateStatus(c.decision)
	if err != nil {
		return err
	}

	var notes *string
	if c.notes != "" {
		notes = &c.notes
	}

	return c.rootCmd.withClient(ctx, func(client *lib.Client, actor lib.User) error {
		task, err := client.DecideGate(ctx, actor, c.taskID, decision, notes)
		if err != nil {
			return fmt.Errorf("could not decide gate: %w", err)
		}
		return c.rootCmd.printer(c.format).PrintTask(*task)
	})
}

// GateNotesCommand edits the quality gate notes.
type GateNotesCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	taskID string
	notes  string
	format string
}

// NewGateNotesCommand returns the gate notes command.
func NewGateNotesCommand(rootCmd *RootCommand, gateCmd *kingpin.CmdClause) *GateNotesCommand {
	c := &GateNotesCommand{rootCmd: rootCmd}

	c.Cmd = gateCmd.Command("notes", "Replace the quality gate notes of an executed task.")
	c.Cmd.Arg("task-id", "Task ID.").Required().StringVar(&c.taskID)
	c.Cmd.Arg("notes", "Gate notes.").Required().StringVar(&c.notes)
	formatFlag(c.Cmd, &c.format)

	return c
}

func (c GateNotesCommand) Name() string { return c.Cmd.FullCommand() }

func (c GateNotesCommand) Run(ctx context.Context) error {
	return c.rootCmd.withClient(ctx, func(client *lib.Client, actor lib.User) error {
		task, err := client.UpdateGateNotes(ctx, actor, c.taskID, c.notes)
		if err != nil {
			return fmt.Errorf("could not update gate notes: %w", err)
		}
		return c.rootCmd.printer(c.format).PrintTask(*task)
	})
}
