package persistence

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/workflow-service/internal/config"
)

// Redis wraps the go-redis client backing the department directory
// cache. The cache is optional: an empty REDIS_ADDR returns nil and
// every caller falls through to postgres.
type Redis struct {
	Client *redis.Client
}

// NewRedis connects to Redis, or returns nil when no address is
// configured. A failed ping is logged but not fatal; the directory
// cache degrades to read-through misses.
func NewRedis(cfg config.RedisConfig, logger *zap.Logger) *Redis {
	if cfg.Addr == "" {
		logger.Info("redis not configured, department cache disabled")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Warn("unable to reach redis", zap.Error(err))
	} else {
		logger.Info("connected to redis", zap.String("addr", cfg.Addr))
	}

	return &Redis{Client: client}
}

// CacheClient returns the underlying client, or nil when the cache is
// disabled. Nil is safe to hand to consumers that gate on it.
func (r *Redis) CacheClient() *redis.Client {
	if r == nil {
		return nil
	}
	return r.Client
}

// Close closes the client.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// Ping verifies Redis connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("redis client not configured")
	}
	return r.Client.Ping(ctx).Err()
}
