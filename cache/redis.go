package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a Cache shared by every server instance.
type Redis struct {
	client *redis.Client
}

// NewRedis connects lazily; the first command dials addr.
func NewRedis(addr string) *Redis {
	return NewRedisFromClient(redis.NewClient(&redis.Options{Addr: addr}))
}

func NewRedisFromClient(client *redis.Client) *Redis {
	return &Redis{client: client}
}

// Get treats redis.Nil as a miss rather than an error.
func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (r *Redis) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	return r.client.Close()
}
