package credential

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/satjeet/ClinePythonDividis/pkg/database"
)

const redisKeyPrefix = "dividis:credential:"

// RedisStore persists credentials in Redis. A positive ttl makes idle
// credentials expire together with the browser session that owns them.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

var (
	_ Store  = (*RedisStore)(nil)
	_ Pinger = (*RedisStore)(nil)
)

// NewRedisStore creates a Redis-backed credential store.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, key string) (value string, err error) {
	ctx, end := database.TraceQuery(ctx, database.SystemRedis, "GetCredential", "GET "+redisKeyPrefix+"*")
	defer func() { end(err) }()

	value, err = s.client.Get(ctx, redisKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("redis get credential: %w", err)
	}
	return value, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string) (err error) {
	if err := checkKey(key); err != nil {
		return err
	}
	ctx, end := database.TraceQuery(ctx, database.SystemRedis, "SetCredential", "SET "+redisKeyPrefix+"*")
	defer func() { end(err) }()

	if err = s.client.Set(ctx, redisKeyPrefix+key, value, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set credential: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) (err error) {
	ctx, end := database.TraceQuery(ctx, database.SystemRedis, "DeleteCredential", "DEL "+redisKeyPrefix+"*")
	defer func() { end(err) }()

	if err = s.client.Del(ctx, redisKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("redis del credential: %w", err)
	}
	return nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
