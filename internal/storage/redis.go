package storage

import (
	"context"
	"errors"
	"time"

	"github.com/angelmondragon/ecofinds-backend/pkg/redis"
)

// redisClient is the subset of pkg/redis.Client used by RedisSlot.
type redisClient interface {
	GetBytes(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	SlotKey(name string) string
	Ping(ctx context.Context) error
}

// RedisSlot stores documents in Redis under the namespaced slot prefix. Every
// write refreshes the ttl, so idle sessions expire.
type RedisSlot struct {
	client redisClient
	ttl    time.Duration
}

func NewRedisSlot(client redisClient, ttl time.Duration) *RedisSlot {
	return &RedisSlot{client: client, ttl: ttl}
}

func (r *RedisSlot) Read(ctx context.Context, key string) ([]byte, error) {
	raw, err := r.client.GetBytes(ctx, r.client.SlotKey(key))
	if errors.Is(err, redis.ErrNil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return raw, nil
}

func (r *RedisSlot) Write(ctx context.Context, key string, value []byte) error {
	return r.client.Set(ctx, r.client.SlotKey(key), value, r.ttl)
}

func (r *RedisSlot) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.client.SlotKey(key))
}

func (r *RedisSlot) Ping(ctx context.Context) error {
	return r.client.Ping(ctx)
}
