package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig locates the Redis instance that holds bearer credentials.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// DialTimeout bounds connecting and the startup ping; zero means 3s.
	DialTimeout time.Duration
}

// DefaultRedisConfig points at a local Redis.
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{Addr: "localhost:6379", DialTimeout: 3 * time.Second}
}

// NewRedisClient returns a client that has answered a PING. Credential reads
// are single-key lookups, so the pool is kept small.
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	timeout := cfg.DialTimeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		ClientName:  "dividis",
		DialTimeout: timeout,
		PoolSize:    4,
	})

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis %s unreachable: %w", cfg.Addr, err)
	}
	return client, nil
}
