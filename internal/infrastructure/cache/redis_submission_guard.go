package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisSubmissionGuard implements a distributed single-flight lock backed by
// Redis SET NX. Acquire succeeds for exactly one caller per key until the TTL
// expires or Release is called.
type RedisSubmissionGuard struct {
	client    *redis.Client
	keyPrefix string
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisSubmissionGuard creates a guard with its own Redis connection.
func NewRedisSubmissionGuard(cfg RedisConfig, keyPrefix string) (*RedisSubmissionGuard, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewRedisSubmissionGuardWithClient(client, keyPrefix), nil
}

// NewRedisSubmissionGuardWithClient creates a guard using an existing client.
// Useful when the client lifecycle is managed elsewhere.
func NewRedisSubmissionGuardWithClient(client *redis.Client, keyPrefix string) *RedisSubmissionGuard {
	if keyPrefix == "" {
		keyPrefix = "guard:"
	}
	return &RedisSubmissionGuard{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Acquire attempts to take the lock for key. Returns true when this caller won
// the slot, false when another submission already holds it.
func (g *RedisSubmissionGuard) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := g.client.SetNX(ctx, g.keyPrefix+key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire submission guard: %w", err)
	}
	return ok, nil
}

// Release frees the lock so a later submission can proceed before the TTL.
func (g *RedisSubmissionGuard) Release(ctx context.Context, key string) error {
	if err := g.client.Del(ctx, g.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to release submission guard: %w", err)
	}
	return nil
}

// Close closes the underlying Redis connection.
func (g *RedisSubmissionGuard) Close() error {
	return g.client.Close()
}
