package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig holds Redis connection configuration for the shared cache
type RedisConfig struct {
	Addr         string
	Password     string
	DB           int
	PoolSize     int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Retry configuration
	MaxRetries    int
	RetryInterval time.Duration
}

// Connect creates a Redis client with retry logic
func Connect(ctx context.Context, cfg *RedisConfig) (*redis.Client, error) {
	maxRetries := cfg.MaxRetries
	if maxRetries == 0 {
		maxRetries = 3
	}
	retryInterval := cfg.RetryInterval
	if retryInterval == 0 {
		retryInterval = time.Second
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(retryInterval)
		}
		if lastErr = client.Ping(ctx).Err(); lastErr == nil {
			return client, nil
		}
	}

	client.Close()
	return nil, fmt.Errorf("failed to connect to redis after %d attempts: %w", maxRetries+1, lastErr)
}

// RedisStore is the shared backend for multi-instance deployments. The
// generation lives under its own key; payloads are stored under
// generation-qualified keys so a stale fill lands on a key no reader
// resolves anymore.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed list cache
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl == 0 {
		ttl = 5 * time.Minute
	}
	return &RedisStore{client: client, prefix: "listcache:", ttl: ttl}
}

func (r *RedisStore) genKey(kind Kind) string {
	return r.prefix + "gen:" + string(kind)
}

func (r *RedisStore) entryKey(key Key, gen uint64) string {
	return fmt.Sprintf("%s%s:%d:g%d", r.prefix, key.Kind, key.Page, gen)
}

func (r *RedisStore) Generation(ctx context.Context, kind Kind) (uint64, error) {
	val, err := r.client.Get(ctx, r.genKey(kind)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("cache generation: %w", err)
	}
	gen, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("cache generation parse: %w", err)
	}
	return gen, nil
}

func (r *RedisStore) Get(ctx context.Context, key Key) ([]byte, bool, error) {
	gen, err := r.Generation(ctx, key.Kind)
	if err != nil {
		return nil, false, err
	}

	data, err := r.client.Get(ctx, r.entryKey(key, gen)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get: %w", err)
	}
	return data, true, nil
}

func (r *RedisStore) Set(ctx context.Context, key Key, gen uint64, data []byte) error {
	// The generation is part of the key: a stale fill writes to a key
	// readers of the current generation never consult, and the TTL
	// reclaims it.
	if err := r.client.Set(ctx, r.entryKey(key, gen), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

func (r *RedisStore) Invalidate(ctx context.Context, kind Kind) error {
	if err := r.client.Incr(ctx, r.genKey(kind)).Err(); err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}
	return nil
}
