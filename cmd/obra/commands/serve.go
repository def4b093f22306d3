package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/oklog/run"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/obrahub/obra/internal/conventions"
)

type ServeCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	listenAddress   string
	shutdownTimeout time.Duration
}

// NewServeCommand returns the serve command.
func NewServeCommand(rootCmd *RootCommand, app *kingpin.Application) *ServeCommand {
	c := &ServeCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("serve", "Serve the JSON HTTP API.")
	c.Cmd.Flag("listen-address", "Address the HTTP API listens on.").Default(conventions.DefaultListenAddress).StringVar(&c.listenAddress)
	c.Cmd.Flag("shutdown-timeout", "Time to drain the in flight requests on shutdown.").Default("5s").DurationVar(&c.shutdownTimeout)

	return c
}

func (c ServeCommand) Name() string { return c.Cmd.FullCommand() }

func (c ServeCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	client, err := c.rootCmd.newClient(ctx, reg)
	if err != nil {
		return err
	}
	defer client.Close()

	handler, err := client.Handler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	if err != nil {
		return fmt.Errorf("could not create HTTP handler: %w", err)
	}

	server := &http.Server{
		Addr:              c.listenAddress,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	var g run.Group

	// HTTP server.
	g.Add(
		func() error {
			logger.Infof("HTTP API listening on %s", c.listenAddress)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http server failed: %w", err)
			}
			return nil
		},
		func(_ error) {
			ctx, cancel := context.WithTimeout(context.Background(), c.shutdownTimeout)
			defer cancel()
			if err := server.Shutdown(ctx); err != nil {
				logger.Errorf("Could not shut down the HTTP server: %s", err)
			}
		},
	)

	// Parent context.
	{
		ctx, cancel := context.WithCancel(ctx)
		g.Add(
			func() error {
				<-ctx.Done()
				return nil
			},
			func(_ error) {
				cancel()
			},
		)
	}

	return g.Run()
}
