package commands

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/alecthomas/kingpin/v2"
	"github.com/prometheus/client_golang/prometheus"
	"k8s.io/client-go/util/homedir"

	"github.com/obrahub/obra/internal/conventions"
	"github.com/obrahub/obra/internal/log"
	"github.com/obrahub/obra/internal/printer"
	"github.com/obrahub/obra/pkg/lib"
)

const (
	// LoggerTypeDefault is the logger default type.
	LoggerTypeDefault = "default"
	// LoggerTypeJSON is the logger json type.
	LoggerTypeJSON = "json"
)

const (
	formatTable = "table"
	formatJSON  = "json"
)

// Command represents an application command, all commands that want to be executed
// should implement and setup on main.
type Command interface {
	Name() string
	Run(ctx context.Context) error
}

// RootCommand represents the root command configuration and global configuration
// for all the commands.
type RootCommand struct {
	// Global flags.
	Debug          bool
	NoLog          bool
	NoColor        bool
	LoggerType     string
	Store          string
	DataDir        string
	DBPath         string
	RedisAddr      string
	UsersFile      string
	UserID         string
	SwipeThreshold float64
	NotifyAMQPURL  string

	// Global instances.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger log.Logger
}

// NewRootCommand initializes the main root configuration.
func NewRootCommand(app *kingpin.Application) *RootCommand {
	c := &RootCommand{}

	app.Flag("debug", "Enable debug mode.").BoolVar(&c.Debug)
	app.Flag("no-log", "Disable logger.").BoolVar(&c.NoLog)
	app.Flag("no-color", "Disable logger color.").BoolVar(&c.NoColor)
	app.Flag("logger", "Selects the logger type.").Default(LoggerTypeDefault).EnumVar(&c.LoggerType, LoggerTypeDefault, LoggerTypeJSON)

	stores := make([]string, 0, len(lib.StoreTypes))
	for _, s := range lib.StoreTypes {
		stores = append(stores, string(s))
	}
	app.Flag("store", "Durable store backend.").Default(string(lib.StoreSQLite)).EnumVar(&c.Store, stores...)

	defaultDataDir := filepath.Join(homedir.HomeDir(), conventions.DefaultDataDir)
	app.Flag("data-dir", "Base directory for obra data, the file store writes under it.").Default(defaultDataDir).StringVar(&c.DataDir)
	app.Flag("db-path", "Path to the SQLite database file.").Default(conventions.DBPath(defaultDataDir)).StringVar(&c.DBPath)
	app.Flag("redis-addr", "Redis server address for the redis store.").Default("127.0.0.1:6379").StringVar(&c.RedisAddr)
	app.Flag("users-file", "YAML file with the user directory, the built-in users are used when missing.").StringVar(&c.UsersFile)
	app.Flag("user", "ID of the acting user.").Short('u').Default("u1").StringVar(&c.UserID)
	app.Flag("swipe-threshold", "Swipe offset that changes a task status.").Default("100").Float64Var(&c.SwipeThreshold)
	app.Flag("notify-amqp-url", "RabbitMQ URL to publish blocked task notifications.").StringVar(&c.NotifyAMQPURL)

	return c
}

// newClient returns the SDK client configured from the global flags.
func (r RootCommand) newClient(ctx context.Context, reg prometheus.Registerer) (*lib.Client, error) {
	var users []lib.User
	if r.UsersFile != "" {
		us, err := lib.LoadUsers(ctx, r.UsersFile)
		if err != nil {
			return nil, fmt.Errorf("could not load users: %w", err)
		}
		users = us
	}

	client, err := lib.New(ctx, lib.Config{
		Store:             lib.StoreType(r.Store),
		DataDir:           r.DataDir,
		DBPath:            r.DBPath,
		RedisAddr:         r.RedisAddr,
		Users:             users,
		SwipeThreshold:    r.SwipeThreshold,
		NotifyAMQPURL:     r.NotifyAMQPURL,
		MetricsRegisterer: reg,
		Logger:            r.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create client: %w", err)
	}

	return client, nil
}

// actor returns the acting user.
func (r RootCommand) actor(client *lib.Client) (lib.User, error) {
	u, err := client.User(r.UserID)
	if err != nil {
		return lib.User{}, fmt.Errorf("unknown user: %w", err)
	}
	return u, nil
}

// withClient runs f with a client and the acting user, the client is closed after.
func (r RootCommand) withClient(ctx context.Context, f func(client *lib.Client, actor lib.User) error) error {
	client, err := r.newClient(ctx, nil)
	if err != nil {
		return err
	}
	defer client.Close()

	actor, err := r.actor(client)
	if err != nil {
		return err
	}

	return f(client, actor)
}

func (r RootCommand) printer(format string) printer.Printer {
	if format == formatJSON {
		return printer.NewJSONPrinter(r.Stdout)
	}
	return printer.NewTablePrinter(r.Stdout)
}

func formatFlag(cmd *kingpin.CmdClause, format *string) {
	cmd.Flag("format", "Output format (table, json).").Default(formatTable).EnumVar(format, formatTable, formatJSON)
}
