package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/obrahub/obra/pkg/lib"
)

type SeedCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	file         string
	skipExisting bool
}

// NewSeedCommand returns the seed command.
func NewSeedCommand(rootCmd *RootCommand, app *kingpin.Application) *SeedCommand {
	c := &SeedCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("seed", "Import the tasks of a YAML seed file.")
	c.Cmd.Flag("file", "Seed file path.").Short('f').Required().StringVar(&c.file)
	c.Cmd.Flag("skip-existing", "Ignore the tasks whose ID already exists.").BoolVar(&c.skipExisting)

	return c
}

func (c SeedCommand) Name() string { return c.Cmd.FullCommand() }

func (c SeedCommand) Run(ctx context.Context) error {
	return c.rootCmd.withClient(ctx, func(client *lib.Client, actor lib.User) error {
		res, err := client.Seed(ctx, actor, c.file, c.skipExisting)
		if err != nil {
			return fmt.Errorf("could not seed tasks: %w", err)
		}

		msg := fmt.Sprintf("Seeded %d tasks", len(res.Created))
		if len(res.Skipped) > 0 {
			msg += fmt.Sprintf(", %d skipped", len(res.Skipped))
		}
		return c.rootCmd.printer(formatTable).PrintMessage(msg)
	})
}
