package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps tokens in Redis for multi-instance deployments of the web
// gate. Keys carry no TTL: tokens have no client-side expiry, they only go
// away on logout or on an upstream 401.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore connects to Redis and verifies the connection. An
// unreachable Redis is a fatal startup condition for the gate.
func NewRedisStore(ctx context.Context, addr string) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return &RedisStore{rdb: rdb}, nil
}

func (s *RedisStore) key(sid string, role Role) string {
	return fmt.Sprintf("halosani:sess:%s:%s", sid, role.StorageKey())
}

func (s *RedisStore) Set(ctx context.Context, sid string, role Role, value string) error {
	return s.rdb.Set(ctx, s.key(sid, role), value, 0).Err()
}

func (s *RedisStore) Get(ctx context.Context, sid string, role Role) (string, bool, error) {
	value, err := s.rdb.Get(ctx, s.key(sid, role)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

func (s *RedisStore) Clear(ctx context.Context, sid string, role Role) error {
	return s.rdb.Del(ctx, s.key(sid, role)).Err()
}

// Close releases the underlying Redis connection.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
