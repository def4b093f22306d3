package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/obrahub/obra/internal/clock"
	"github.com/obrahub/obra/internal/log"
	"github.com/obrahub/obra/internal/model"
	"github.com/obrahub/obra/internal/storage"
	"github.com/obrahub/obra/internal/storage/sqlite/migrations"
)

// KVConfig is the configuration for the SQLite KV.
type KVConfig struct {
	DBPath string
	Clock  clock.Clock
	Logger log.Logger
}

func (c *KVConfig) defaults() error {
	if c.DBPath == "" {
		return fmt.Errorf("db path is required")
	}
	if c.Clock == nil {
		c.Clock = clock.Real{}
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.SQLite"})
	return nil
}

// KV is a SQLite implementation of storage.KV.
type KV struct {
	db     *sql.DB
	clock  clock.Clock
	logger log.Logger
}

// NewKV opens (or creates) the database and applies the pending migrations.
func NewKV(ctx context.Context, cfg KVConfig) (*KV, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	dir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("could not create db directory: %w", err)
	}

	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", cfg.DBPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}

	migrator, err := migrations.NewMigrator(migrations.MigratorConfig{DB: db, Logger: cfg.Logger})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("could not create migrator: %w", err)
	}
	if err := migrator.Up(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not run migrations: %w", err)
	}

	cfg.Logger.Debugf("SQLite store initialized at %s", cfg.DBPath)

	return &KV{db: db, clock: cfg.Clock, logger: cfg.Logger}, nil
}

// Close closes the database connection.
func (k *KV) Close() error { return k.db.Close() }

// Load returns the document stored on the key.
func (k *KV) Load(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := k.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("key %s: %w", key, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not query key: %w", err)
	}

	return data, nil
}

// Save inserts or replaces the document stored on the key.
func (k *KV) Save(ctx context.Context, key string, data []byte) error {
	query := `
		INSERT INTO kv (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`

	_, err := k.db.ExecContext(ctx, query, key, data, k.clock.Now().Unix())
	if err != nil {
		return fmt.Errorf("could not save key: %w", err)
	}

	k.logger.Debugf("Saved key: %s (%d bytes)", key, len(data))
	return nil
}

// UpdatedAt returns when the key was saved for the last time.
func (k *KV) UpdatedAt(ctx context.Context, key string) (time.Time, error) {
	var unix int64
	err := k.db.QueryRowContext(ctx, `SELECT updated_at FROM kv WHERE key = ?`, key).Scan(&unix)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, fmt.Errorf("key %s: %w", key, model.ErrNotFound)
		}
		return time.Time{}, fmt.Errorf("could not query key: %w", err)
	}

	return time.Unix(unix, 0).UTC(), nil
}

var _ storage.KV = &KV{}
