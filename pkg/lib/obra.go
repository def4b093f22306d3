package lib

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"k8s.io/client-go/util/homedir"

	"github.com/obrahub/obra/internal/api"
	"github.com/obrahub/obra/internal/app/create"
	"github.com/obrahub/obra/internal/app/export"
	"github.com/obrahub/obra/internal/app/gate"
	"github.com/obrahub/obra/internal/app/history"
	"github.com/obrahub/obra/internal/app/list"
	"github.com/obrahub/obra/internal/app/photo"
	"github.com/obrahub/obra/internal/app/report"
	"github.com/obrahub/obra/internal/app/status"
	"github.com/obrahub/obra/internal/app/subtask"
	"github.com/obrahub/obra/internal/app/transition"
	"github.com/obrahub/obra/internal/app/update"
	"github.com/obrahub/obra/internal/clock"
	"github.com/obrahub/obra/internal/conventions"
	"github.com/obrahub/obra/internal/log"
	"github.com/obrahub/obra/internal/metrics"
	metricsprometheus "github.com/obrahub/obra/internal/metrics/prometheus"
	"github.com/obrahub/obra/internal/model"
	"github.com/obrahub/obra/internal/notify"
	"github.com/obrahub/obra/internal/notify/amqp"
	"github.com/obrahub/obra/internal/storage"
	"github.com/obrahub/obra/internal/storage/file"
	"github.com/obrahub/obra/internal/storage/memory"
	"github.com/obrahub/obra/internal/storage/redis"
	"github.com/obrahub/obra/internal/storage/sqlite"
	"github.com/obrahub/obra/internal/storage/taskstore"
	"github.com/obrahub/obra/internal/workflow"
	liblog "github.com/obrahub/obra/pkg/lib/log"
)

// StoreType identifies the durable store backend.
type StoreType string

const (
	StoreSQLite StoreType = "sqlite"
	StoreFile   StoreType = "file"
	StoreRedis  StoreType = "redis"
	StoreMemory StoreType = "memory"
)

// StoreTypes are all the supported stores.
var StoreTypes = []StoreType{StoreSQLite, StoreFile, StoreRedis, StoreMemory}

// Config configures the SDK client.
//
// All fields are optional. An empty Config{} stores the data on
// ~/.obra/obra.db and uses the default user directory.
type Config struct {
	// Store is the durable store backend.
	// Default: sqlite.
	Store StoreType

	// DataDir is the base directory for obra data.
	// Default: ~/.obra.
	DataDir string

	// DBPath is the SQLite database path, used by the sqlite store.
	// Default: <DataDir>/obra.db.
	DBPath string

	// RedisAddr is the Redis server address, required by the redis store.
	RedisAddr string

	// Users is the user directory actors are resolved from.
	// Default: the built-in project manager, field executor and client.
	Users []User

	// SwipeThreshold is the swipe offset that changes a task status.
	// Default: 100.
	SwipeThreshold float64

	// NotifyAMQPURL publishes the blocked task notifications on a RabbitMQ
	// broker when set. They are always logged.
	NotifyAMQPURL string

	// MetricsRegisterer registers the domain Prometheus metrics when set.
	MetricsRegisterer prometheus.Registerer

	// Clock and IDGenerator are the time and the ID sources.
	// Default: system UTC time and ULIDs.
	Clock       Clock
	IDGenerator func() string

	// Logger receives structured log output from the SDK.
	// Default: noop (silent). See the log sub-package for the interface.
	Logger liblog.Logger
}

func (c *Config) defaults() error {
	if c.Store == "" {
		c.Store = StoreSQLite
	}

	if c.DataDir == "" {
		c.DataDir = filepath.Join(homedir.HomeDir(), conventions.DefaultDataDir)
	}

	if c.DBPath == "" {
		c.DBPath = conventions.DBPath(c.DataDir)
	}

	if c.Store == StoreRedis && c.RedisAddr == "" {
		return fmt.Errorf("redis address is required for the redis store")
	}

	if len(c.Users) == 0 {
		c.Users = model.DefaultUsers
	}
	for _, u := range c.Users {
		if err := u.Validate(); err != nil {
			return fmt.Errorf("invalid user %q: %w", u.ID, err)
		}
	}

	if c.Clock == nil {
		c.Clock = clock.Real{}
	}

	if c.Logger == nil {
		c.Logger = liblog.Noop
	}

	return nil
}

// Client is the main SDK entry point to manage construction tasks.
//
// Create a Client with [New] and release its resources with [Client.Close].
// A Client is safe for concurrent use.
type Client struct {
	users    []model.User
	repo     *taskstore.Repository
	services api.Services
	clock    clock.Clock
	newID    func() string
	logger   log.Logger
	closers  []func() error
}

// New creates a new SDK client, the persisted tasks are loaded from the store.
//
// The caller must call [Client.Close] when done to release the store and the
// notifier connections.
func New(ctx context.Context, cfg Config) (c *Client, err error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	c = &Client{users: cfg.Users, clock: cfg.Clock, newID: cfg.IDGenerator, logger: cfg.Logger}
	defer func() {
		if err != nil {
			_ = c.Close()
		}
	}()

	var rec metrics.Recorder = metrics.Noop
	if cfg.MetricsRegisterer != nil {
		rec = metricsprometheus.NewRecorder(cfg.MetricsRegisterer)
	}

	kv, err := c.newKV(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("could not create store: %w", err)
	}

	c.repo, err = taskstore.NewRepository(ctx, taskstore.RepositoryConfig{
		KV:      kv,
		Metrics: rec,
		Logger:  cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create repository: %w", err)
	}

	notifier, err := c.newNotifier(cfg)
	if err != nil {
		return nil, fmt.Errorf("could not create notifier: %w", err)
	}

	c.services, err = newServices(cfg, c.repo, notifier, rec)
	if err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Client) newKV(ctx context.Context, cfg Config) (storage.KV, error) {
	switch cfg.Store {
	case StoreMemory:
		return memory.NewKV(memory.KVConfig{Logger: cfg.Logger})
	case StoreFile:
		return file.NewKV(file.KVConfig{Dir: conventions.DocumentsPath(cfg.DataDir), Logger: cfg.Logger})
	case StoreSQLite:
		kv, err := sqlite.NewKV(ctx, sqlite.KVConfig{DBPath: cfg.DBPath, Clock: cfg.Clock, Logger: cfg.Logger})
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, kv.Close)
		return kv, nil
	case StoreRedis:
		kv, err := redis.NewKV(ctx, redis.KVConfig{Addr: cfg.RedisAddr, Logger: cfg.Logger})
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, kv.Close)
		return kv, nil
	}
	return nil, fmt.Errorf("unsupported store type %q: %w", cfg.Store, ErrNotValid)
}

func (c *Client) newNotifier(cfg Config) (notify.Notifier, error) {
	logNotifier, err := notify.NewLogNotifier(notify.LogNotifierConfig{Logger: cfg.Logger})
	if err != nil {
		return nil, err
	}
	if cfg.NotifyAMQPURL == "" {
		return logNotifier, nil
	}

	pub, err := amqp.NewPublisher(amqp.PublisherConfig{URL: cfg.NotifyAMQPURL, Logger: cfg.Logger})
	if err != nil {
		return nil, err
	}
	c.closers = append(c.closers, pub.Close)
	return notify.Multi(logNotifier, pub), nil
}

func newServices(cfg Config, repo storage.Repository, notifier notify.Notifier, rec metrics.Recorder) (api.Services, error) {
	var (
		s   api.Services
		err error
	)

	engine, err := workflow.NewEngine(workflow.EngineConfig{
		Clock:          cfg.Clock,
		IDGenerator:    cfg.IDGenerator,
		SwipeThreshold: cfg.SwipeThreshold,
		Logger:         cfg.Logger,
	})
	if err != nil {
		return s, fmt.Errorf("could not create workflow engine: %w", err)
	}

	if s.Create, err = create.NewService(create.ServiceConfig{Repository: repo, Clock: cfg.Clock, IDGenerator: cfg.IDGenerator, Logger: cfg.Logger}); err != nil {
		return s, fmt.Errorf("could not create service: %w", err)
	}
	if s.List, err = list.NewService(list.ServiceConfig{Repository: repo, Logger: cfg.Logger}); err != nil {
		return s, fmt.Errorf("could not create service: %w", err)
	}
	if s.Status, err = status.NewService(status.ServiceConfig{Repository: repo, Logger: cfg.Logger}); err != nil {
		return s, fmt.Errorf("could not create service: %w", err)
	}
	if s.Transition, err = transition.NewService(transition.ServiceConfig{Engine: engine, Repository: repo, Notifier: notifier, Metrics: rec, Logger: cfg.Logger}); err != nil {
		return s, fmt.Errorf("could not create service: %w", err)
	}
	if s.Gate, err = gate.NewService(gate.ServiceConfig{Engine: engine, Repository: repo, Metrics: rec, Logger: cfg.Logger}); err != nil {
		return s, fmt.Errorf("could not create service: %w", err)
	}
	if s.Update, err = update.NewService(update.ServiceConfig{Engine: engine, Repository: repo, Clock: cfg.Clock, Metrics: rec, Logger: cfg.Logger}); err != nil {
		return s, fmt.Errorf("could not create service: %w", err)
	}
	if s.Photo, err = photo.NewService(photo.ServiceConfig{Repository: repo, Clock: cfg.Clock, IDGenerator: cfg.IDGenerator, Logger: cfg.Logger}); err != nil {
		return s, fmt.Errorf("could not create service: %w", err)
	}
	if s.Subtask, err = subtask.NewService(subtask.ServiceConfig{Repository: repo, Clock: cfg.Clock, IDGenerator: cfg.IDGenerator, Logger: cfg.Logger}); err != nil {
		return s, fmt.Errorf("could not create service: %w", err)
	}
	if s.History, err = history.NewService(history.ServiceConfig{Repository: repo, Logger: cfg.Logger}); err != nil {
		return s, fmt.Errorf("could not create service: %w", err)
	}
	if s.Report, err = report.NewService(report.ServiceConfig{Repository: repo, Clock: cfg.Clock, Logger: cfg.Logger}); err != nil {
		return s, fmt.Errorf("could not create service: %w", err)
	}
	if s.Export, err = export.NewService(export.ServiceConfig{Repository: repo, Logger: cfg.Logger}); err != nil {
		return s, fmt.Errorf("could not create service: %w", err)
	}

	return s, nil
}

// Close releases the resources held by the client, including the store connection.
// After Close returns, the client must not be used.
func (c *Client) Close() error {
	var firstErr error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	c.closers = nil
	return firstErr
}

// Users returns the user directory.
func (c *Client) Users() []User {
	users := make([]User, len(c.users))
	copy(users, c.users)
	return users
}

// User returns the user with the ID from the user directory.
func (c *Client) User(id string) (User, error) {
	return model.FindUser(c.users, id)
}

// Handler returns the JSON HTTP API handler. When metrics is not nil it is
// served on /metrics.
func (c *Client) Handler(metrics http.Handler) (http.Handler, error) {
	return api.NewHandler(api.HandlerConfig{
		Services:       c.services,
		Users:          c.users,
		MetricsHandler: metrics,
		Logger:         c.logger,
	})
}
