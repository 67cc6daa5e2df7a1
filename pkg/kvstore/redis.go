package kvstore

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisHashStore implements HashStore on Redis hashes
type RedisHashStore struct {
	rdb redis.UniversalClient
}

func NewRedisHashStore(rdb redis.UniversalClient) *RedisHashStore {
	return &RedisHashStore{rdb: rdb}
}

// NewRedisClient parses a redis:// URL, falling back to a bare address.
func NewRedisClient(url string) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		opt = &redis.Options{Addr: url}
	}
	return redis.NewClient(opt)
}

func (s *RedisHashStore) HashGet(ctx context.Context, key string) (map[string]string, error) {
	fields, err := s.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis HGETALL %s: %w", key, err)
	}
	return fields, nil
}

func (s *RedisHashStore) HashSet(ctx context.Context, key string, fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	values := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		values[k] = v
	}
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, values)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis HSET %s: %w", key, err)
	}
	return nil
}

func (s *RedisHashStore) HashIncrement(ctx context.Context, key, field string, delta int64) (int64, error) {
	n, err := s.rdb.HIncrBy(ctx, key, field, delta).Result()
	if err != nil {
		return 0, fmt.Errorf("redis HINCRBY %s %s: %w", key, field, err)
	}
	return n, nil
}

func (s *RedisHashStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}
