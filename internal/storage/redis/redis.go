package redis

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/obrahub/obra/internal/log"
	"github.com/obrahub/obra/internal/model"
	"github.com/obrahub/obra/internal/storage"
)

// DefaultKeyPrefix namespaces the obra keys on a shared Redis.
const DefaultKeyPrefix = "obra:"

// KVConfig is the configuration for the Redis KV.
type KVConfig struct {
	// Client is the Redis client, if missing one is created from Addr.
	Client    goredis.UniversalClient
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
	Logger    log.Logger
}

func (c *KVConfig) defaults() error {
	if c.Client == nil {
		if c.Addr == "" {
			return fmt.Errorf("redis address is required")
		}
		c.Client = goredis.NewClient(&goredis.Options{
			Addr:     c.Addr,
			Password: c.Password,
			DB:       c.DB,
		})
	}
	if c.KeyPrefix == "" {
		c.KeyPrefix = DefaultKeyPrefix
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.Redis"})
	return nil
}

// KV is a Redis implementation of storage.KV, every document is a string key.
type KV struct {
	client goredis.UniversalClient
	prefix string
	logger log.Logger
}

// NewKV creates a new Redis KV and checks the server is reachable.
func NewKV(ctx context.Context, cfg KVConfig) (*KV, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if err := cfg.Client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("could not connect to redis: %w", err)
	}

	return &KV{
		client: cfg.Client,
		prefix: cfg.KeyPrefix,
		logger: cfg.Logger,
	}, nil
}

// Close closes the Redis client.
func (k *KV) Close() error { return k.client.Close() }

// Load returns the document stored on the key.
func (k *KV) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := k.client.Get(ctx, k.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, fmt.Errorf("key %s: %w", key, model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not get key: %w", err)
	}

	return data, nil
}

// Save stores the document on the key without expiration.
func (k *KV) Save(ctx context.Context, key string, data []byte) error {
	if err := k.client.Set(ctx, k.prefix+key, data, 0).Err(); err != nil {
		return fmt.Errorf("could not set key: %w", err)
	}

	k.logger.Debugf("Saved key: %s (%d bytes)", key, len(data))
	return nil
}

var _ storage.KV = &KV{}
