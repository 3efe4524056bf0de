package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/sync/singleflight"
)

var _ Cache = (*RedisCache)(nil)

// RedisCache shares entries between instances. Byte slices are stored as is;
// anything else is msgpack encoded. Get always returns []byte.
type RedisCache struct {
	client      CacheClient
	config      *RedisConfig
	singleGroup singleflight.Group
}

type RedisConfig struct {
	Addr         string
	Password     string
	DB           int
	KeyPrefix    string
	PoolSize     int
	MinIdleConns int
	MaxRetries   int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolTimeout  time.Duration
}

func DefaultRedisConfig() *RedisConfig {
	return &RedisConfig{
		Addr:         "localhost:6379",
		KeyPrefix:    "loanportal:",
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolTimeout:  4 * time.Second,
	}
}

func NewRedisCache(config *RedisConfig) (*RedisCache, error) {
	if config == nil {
		config = DefaultRedisConfig()
	}

	client := redis.NewClient(&redis.Options{
		Addr:         config.Addr,
		Password:     config.Password,
		DB:           config.DB,
		PoolSize:     config.PoolSize,
		MinIdleConns: config.MinIdleConns,
		MaxRetries:   config.MaxRetries,
		DialTimeout:  config.DialTimeout,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		PoolTimeout:  config.PoolTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	slog.Info("redis cache initialized",
		slog.String("addr", config.Addr),
		slog.Int("db", config.DB))

	return NewRedisCacheWithClient(NewRedisClient(client), config), nil
}

func NewRedisCacheWithClient(client CacheClient, config *RedisConfig) *RedisCache {
	if config == nil {
		config = DefaultRedisConfig()
	}
	return &RedisCache{
		client: client,
		config: config,
	}
}

func (c *RedisCache) Get(ctx context.Context, key string) (any, bool) {
	result, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Error("reading from redis cache",
				slog.String("key", key),
				slog.String("error", err.Error()))
		}
		return nil, false
	}
	return result, true
}

func (c *RedisCache) Set(ctx context.Context, key string, value any, ttl time.Duration) bool {
	data, ok := value.([]byte)
	if !ok {
		var err error
		if data, err = msgpack.Marshal(value); err != nil {
			slog.Error("encoding value for redis cache",
				slog.String("key", key),
				slog.String("error", err.Error()))
			return false
		}
	}

	if err := c.client.Set(ctx, c.key(key), data, max(ttl, 0)).Err(); err != nil {
		slog.Error("writing to redis cache",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return false
	}
	return true
}

func (c *RedisCache) Delete(ctx context.Context, key string) {
	if err := c.client.Del(ctx, c.key(key)).Err(); err != nil {
		slog.Error("deleting from redis cache",
			slog.String("key", key),
			slog.String("error", err.Error()))
	}
}

func (c *RedisCache) GetOrSet(ctx context.Context, key string, ttl time.Duration, loader func() (any, error)) (any, error) {
	if value, found := c.Get(ctx, key); found {
		return value, nil
	}

	value, err, _ := c.singleGroup.Do(key, func() (any, error) {
		value, err := loader()
		if err != nil {
			return nil, err
		}
		c.Set(ctx, key, value, ttl)
		return value, nil
	})
	return value, err
}

// Keys returns the matching keys without the configured prefix.
func (c *RedisCache) Keys(ctx context.Context, pattern string) ([]string, error) {
	keys, err := c.client.Keys(ctx, c.key(pattern)).Result()
	if err != nil {
		return nil, err
	}
	prefix := len(c.config.KeyPrefix)
	for i, k := range keys {
		keys[i] = k[prefix:]
	}
	return keys, nil
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) key(key string) string {
	return c.config.KeyPrefix + key
}
