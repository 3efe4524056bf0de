package cache

import (
	"context"
	"time"

	"github.com/dgraph-io/ristretto"
	"golang.org/x/sync/singleflight"
)

// Cache stores encoded snapshots. Implementations may hand values back in a
// different Go type than they were given (Redis returns []byte), so callers
// store []byte and decode on read.
type Cache interface {
	Get(ctx context.Context, key string) (any, bool)
	Set(ctx context.Context, key string, value any, ttl time.Duration) bool
	Delete(ctx context.Context, key string)
	GetOrSet(ctx context.Context, key string, ttl time.Duration, loader func() (any, error)) (any, error)
	Keys(ctx context.Context, pattern string) ([]string, error)
}

var _ Cache = (*RistrettoCache)(nil)

type RistrettoCache struct {
	store       *ristretto.Cache
	singleGroup singleflight.Group
	config      *CacheConfig
}

type CacheConfig struct {
	// MaxCost is the budget in bytes; every entry costs its encoded length.
	MaxCost     int64
	NumCounters int64
	BufferItems int64
}

func DefaultConfig() *CacheConfig {
	return &CacheConfig{
		MaxCost:     64 << 20,
		NumCounters: 1e5,
		BufferItems: 64,
	}
}

func New(config *CacheConfig) (*RistrettoCache, error) {
	if config == nil {
		config = DefaultConfig()
	}

	store, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: config.NumCounters,
		MaxCost:     config.MaxCost,
		BufferItems: config.BufferItems,
	})
	if err != nil {
		return nil, err
	}

	return &RistrettoCache{
		store:  store,
		config: config,
	}, nil
}

func (c *RistrettoCache) Get(ctx context.Context, key string) (any, bool) {
	if ctx.Err() != nil {
		return nil, false
	}
	return c.store.Get(key)
}

// Set waits for the write to be applied so a Get right after sees it.
func (c *RistrettoCache) Set(ctx context.Context, key string, value any, ttl time.Duration) bool {
	if ctx.Err() != nil {
		return false
	}
	ok := c.store.SetWithTTL(key, value, cost(value), ttl)
	c.store.Wait()
	return ok
}

func (c *RistrettoCache) Delete(ctx context.Context, key string) {
	c.store.Del(key)
	c.store.Wait()
}

// GetOrSet loads a missing key once per concurrent burst of callers.
func (c *RistrettoCache) GetOrSet(ctx context.Context, key string, ttl time.Duration, loader func() (any, error)) (any, error) {
	if value, found := c.Get(ctx, key); found {
		return value, nil
	}

	value, err, _ := c.singleGroup.Do(key, func() (any, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if value, found := c.Get(ctx, key); found {
			return value, nil
		}

		value, err := loader()
		if err != nil {
			return nil, err
		}
		c.Set(ctx, key, value, ttl)
		return value, nil
	})

	return value, err
}

// Keys is not supported by ristretto and always returns an empty list.
func (c *RistrettoCache) Keys(ctx context.Context, _ string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return []string{}, nil
}

func (c *RistrettoCache) Close() {
	c.store.Close()
}

func cost(value any) int64 {
	switch v := value.(type) {
	case []byte:
		return int64(max(len(v), 1))
	case string:
		return int64(max(len(v), 1))
	default:
		return 1
	}
}
