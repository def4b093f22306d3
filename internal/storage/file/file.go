package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"

	"github.com/obrahub/obra/internal/conventions"
	"github.com/obrahub/obra/internal/log"
	"github.com/obrahub/obra/internal/model"
	"github.com/obrahub/obra/internal/storage"
	utilsfile "github.com/obrahub/obra/internal/utils/file"
)

var keyRegexp = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// KVConfig is the configuration for the file KV.
type KVConfig struct {
	Dir    string
	Logger log.Logger
}

func (c *KVConfig) defaults() error {
	if c.Dir == "" {
		return fmt.Errorf("dir is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.File"})
	return nil
}

// KV is a storage.KV that stores every key as a JSON file on a directory.
type KV struct {
	dir    string
	logger log.Logger
}

// NewKV creates a new file KV, the directory is created if missing.
func NewKV(cfg KVConfig) (*KV, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("could not create data directory: %w", err)
	}

	cfg.Logger.Debugf("File store initialized at %s", cfg.Dir)

	return &KV{dir: cfg.Dir, logger: cfg.Logger}, nil
}

// Load reads the document of the key.
func (k *KV) Load(ctx context.Context, key string) ([]byte, error) {
	path, err := k.path(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("key %s: %w", key, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not read %s: %w", path, err)
	}

	return data, nil
}

// Save replaces the document of the key atomically.
func (k *KV) Save(ctx context.Context, key string, data []byte) error {
	path, err := k.path(key)
	if err != nil {
		return err
	}

	if err := utilsfile.WriteAtomic(path, data, 0o600); err != nil {
		return fmt.Errorf("could not write %s: %w", path, err)
	}

	k.logger.Debugf("Saved key: %s (%d bytes)", key, len(data))
	return nil
}

func (k *KV) path(key string) (string, error) {
	if !keyRegexp.MatchString(key) {
		return "", fmt.Errorf("invalid key %q: %w", key, model.ErrNotValid)
	}
	return conventions.DocumentPath(k.dir, key), nil
}

var _ storage.KV = &KV{}
