package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/obrahub/obra/internal/log"
	"github.com/obrahub/obra/internal/model"
	"github.com/obrahub/obra/internal/storage"
)

// KVConfig is the configuration for the memory KV.
type KVConfig struct {
	Logger log.Logger
}

func (c *KVConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.Memory"})
	return nil
}

// KV is an in-memory implementation of storage.KV. Data is lost when the
// process exits.
type KV struct {
	docs   map[string][]byte
	mu     sync.RWMutex
	logger log.Logger
}

// NewKV creates a new memory KV.
func NewKV(cfg KVConfig) (*KV, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &KV{
		docs:   make(map[string][]byte),
		logger: cfg.Logger,
	}, nil
}

// Load returns a copy of the document stored on the key.
func (k *KV) Load(ctx context.Context, key string) ([]byte, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	data, ok := k.docs[key]
	if !ok {
		return nil, fmt.Errorf("key %s: %w", key, model.ErrNotFound)
	}

	return append([]byte(nil), data...), nil
}

// Save stores a copy of the document on the key.
func (k *KV) Save(ctx context.Context, key string, data []byte) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	k.docs[key] = append([]byte(nil), data...)
	k.logger.Debugf("Saved key: %s (%d bytes)", key, len(data))

	return nil
}

var _ storage.KV = &KV{}
