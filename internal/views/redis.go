package views

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "views:"

// Redis keeps counts in Redis under views:<slug>.
type Redis struct {
	client *redis.Client
}

// NewRedis wraps an existing client.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

// DialRedis connects to addr and verifies the connection.
func DialRedis(ctx context.Context, addr, password string, db int) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("views: ping redis %s: %w", addr, err)
	}
	return NewRedis(client), nil
}

func (r *Redis) Get(ctx context.Context, slug string) (int64, error) {
	n, err := r.client.Get(ctx, keyPrefix+slug).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("views: get %s: %w", slug, err)
	}
	return n, nil
}

func (r *Redis) Increment(ctx context.Context, slug string) (int64, error) {
	n, err := r.client.Incr(ctx, keyPrefix+slug).Result()
	if err != nil {
		return 0, fmt.Errorf("views: incr %s: %w", slug, err)
	}
	return n, nil
}

// Close closes the Redis client.
func (r *Redis) Close() error {
	return r.client.Close()
}
