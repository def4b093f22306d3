package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/obrahub/obra/pkg/lib"
)

// PhotoAddCommand attaches a photo to a task.
type PhotoAddCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	taskID      string
	url         string
	description string
	format      string
}

// NewPhotoAddCommand returns the photo add command.
func NewPhotoAddCommand(rootCmd *RootCommand, photoCmd *kingpin.CmdClause) *PhotoAddCommand {
	c := &PhotoAddCommand{rootCmd: rootCmd}

	c.Cmd = photoCmd.Command("add", "Attach a photo to a task.")
	c.Cmd.Arg("task-id", "Task ID.").Required().StringVar(&c.taskID)
	c.Cmd.Arg("url", "Photo URL or data URI.").Required().StringVar(&c.url)
	c.Cmd.Flag("description", "Photo description.").StringVar(&c.description)
	formatFlag(c.Cmd, &c.format)

	return c
}

func (c PhotoAddCommand) Name() string { return c.Cmd.FullCommand() }

func (c PhotoAddCommand) Run(ctx context.Context) error {
	return c.rootCmd.withClient(ctx, func(client *lib.Client, actor lib.User) error {
		task, err := client.AddPhoto(ctx, actor, c.taskID, c.url, c.description)
		if err != nil {
			return fmt.Errorf("could not add photo: %w", err)
		}
		return c.rootCmd.printer(c.format).PrintTask(*task)
	})
}

// PhotoRmCommand removes a photo from a task.
type PhotoRmCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	taskID  string
	photoID string
	format  string
}

// NewPhotoRmCommand returns the photo rm command.
func NewPhotoRmCommand(rootCmd *RootCommand, photoCmd *kingpin.CmdClause) *PhotoRmCommand {
	c := &PhotoRmCommand{rootCmd: rootCmd}

	c.Cmd = photoCmd.Command("rm", "Remove a photo from a task.")
	c.Cmd.Arg("task-id", "Task ID.").Required().StringVar(&c.taskID)
	c.Cmd.Arg("photo-id", "Photo ID.").Required().StringVar(&c.photoID)
	formatFlag(c.Cmd, &c.format)

	return c
}

func (c PhotoRmCommand) Name() string { return c.Cmd.FullCommand() }

func (c PhotoRmCommand) Run(ctx context.Context) error {
	return c.rootCmd.withClient(ctx, func(client *lib.Client, actor lib.User) error {
		task, err := client.RemovePhoto(ctx, actor, c.taskID, c.photoID)
		if err != nil {
			return fmt.Errorf("could not remove photo: %w", err)
		}
		return c.rootCmd.printer(c.format).PrintTask(*task)
	})
}
