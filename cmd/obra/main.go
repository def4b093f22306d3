package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/oklog/run"
	"github.com/sirupsen/logrus"

	"github.com/obrahub/obra/cmd/obra/commands"
	"github.com/obrahub/obra/internal/log"
	loglogrus "github.com/obrahub/obra/internal/log/logrus"
)

const (
	// Version is the application version (set via ldflags).
	Version = "dev"
)

// Run runs the main application.
func Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) (err error) {
	app := kingpin.New("obra", "Construction task lifecycle and quality gate tool.")
	app.DefaultEnvars()
	rootCmd := commands.NewRootCommand(app)

	// Setup commands (registers flags).
	createCmd := commands.NewCreateCommand(rootCmd, app)
	listCmd := commands.NewListCommand(rootCmd, app)
	getCmd := commands.NewGetCommand(rootCmd, app)
	statusCmd := commands.NewStatusCommand(rootCmd, app)
	moveCmd := commands.NewMoveCommand(rootCmd, app)
	swipeCmd := commands.NewSwipeCommand(rootCmd, app)
	updateCmd := commands.NewUpdateCommand(rootCmd, app)
	historyCmd := commands.NewHistoryCommand(rootCmd, app)
	reportCmd := commands.NewReportCommand(rootCmd, app)
	exportCmd := commands.NewExportCommand(rootCmd, app)
	seedCmd := commands.NewSeedCommand(rootCmd, app)
	serveCmd := commands.NewServeCommand(rootCmd, app)

	gateCmd := app.Command("gate", "Manage the quality gate of executed tasks.")
	gateDecideCmd := commands.NewGateDecideCommand(rootCmd, gateCmd)
	gateNotesCmd := commands.NewGateNotesCommand(rootCmd, gateCmd)

	photoCmd := app.Command("photo", "Manage the task photos.")
	photoAddCmd := commands.NewPhotoAddCommand(rootCmd, photoCmd)
	photoRmCmd := commands.NewPhotoRmCommand(rootCmd, photoCmd)

	subtaskCmd := app.Command("subtask", "Manage the task checklist.")
	subtaskAddCmd := commands.NewSubtaskAddCommand(rootCmd, subtaskCmd)
	subtaskToggleCmd := commands.NewSubtaskToggleCommand(rootCmd, subtaskCmd)
	subtaskRmCmd := commands.NewSubtaskRmCommand(rootCmd, subtaskCmd)

	cmds := map[string]commands.Command{
		createCmd.Name():        createCmd,
		listCmd.Name():          listCmd,
		getCmd.Name():           getCmd,
		statusCmd.Name():        statusCmd,
		moveCmd.Name():          moveCmd,
		swipeCmd.Name():         swipeCmd,
		updateCmd.Name():        updateCmd,
		historyCmd.Name():       historyCmd,
		reportCmd.Name():        reportCmd,
		exportCmd.Name():        exportCmd,
		seedCmd.Name():          seedCmd,
		serveCmd.Name():         serveCmd,
		gateDecideCmd.Name():    gateDecideCmd,
		gateNotesCmd.Name():     gateNotesCmd,
		photoAddCmd.Name():      photoAddCmd,
		photoRmCmd.Name():       photoRmCmd,
		subtaskAddCmd.Name():    subtaskAddCmd,
		subtaskToggleCmd.Name(): subtaskToggleCmd,
		subtaskRmCmd.Name():     subtaskRmCmd,
	}

	// Parse command.
	cmdName, err := app.Parse(args[1:])
	if err != nil {
		return fmt.Errorf("invalid command configuration: %w", err)
	}

	// Set standard input/output.
	rootCmd.Stdin = stdin
	rootCmd.Stdout = stdout
	rootCmd.Stderr = stderr

	// Commands that only print data don't log unless --debug is set.
	printerCommands := map[string]bool{
		"list":    true,
		"get":     true,
		"history": true,
		"report":  true,
		"export":  true,
	}
	if printerCommands[cmdName] && !rootCmd.Debug {
		rootCmd.NoLog = true
	}

	// Set logger.
	rootCmd.Logger = getLogger(*rootCmd)

	var g run.Group

	// OS signals.
	{
		signalCtx, signalCancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
		defer signalCancel()

		g.Add(
			func() error {
				<-signalCtx.Done()
				rootCmd.Logger.Debugf("Termination signal received")
				return nil
			},
			func(_ error) {
				signalCancel()
			},
		)
	}

	// Execute command.
	{
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		g.Add(
			func() error {
				err := cmds[cmdName].Run(ctx)
				if err != nil {
					return fmt.Errorf("%q command failed: %w", cmdName, err)
				}
				return nil
			},
			func(_ error) {
				cancel()
			},
		)
	}

	return g.Run()
}

// getLogger returns the application logger.
func getLogger(config commands.RootCommand) log.Logger {
	if config.NoLog {
		return log.Noop
	}

	logrusLog := logrus.New()
	logrusLog.Out = config.Stderr // Stdout is kept for the command output.
	logrusLogEntry := logrus.NewEntry(logrusLog)

	if config.Debug {
		logrusLogEntry.Logger.SetLevel(logrus.DebugLevel)
	}

	switch config.LoggerType {
	case commands.LoggerTypeDefault:
		logrusLogEntry.Logger.SetFormatter(&logrus.TextFormatter{
			ForceColors:   !config.NoColor,
			DisableColors: config.NoColor,
		})
	case commands.LoggerTypeJSON:
		logrusLogEntry.Logger.SetFormatter(&logrus.JSONFormatter{})
	}

	logger := loglogrus.NewLogrus(logrusLogEntry).WithValues(log.Kv{
		"version": Version,
	})

	logger.Debugf("Debug level is enabled")

	return logger
}

func main() {
	ctx := context.Background()
	err := Run(ctx, os.Args, os.Stdin, os.Stdout, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
