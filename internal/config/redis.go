package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig holds Redis connection settings for the key store.
type RedisConfig struct {
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"key_prefix"`
}

const defaultRedisPrefix = "politecaptcha:"

// RedisSource reads keys with GET <prefix><key>. Values are not cached.
type RedisSource struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisSource wraps an existing client.
func NewRedisSource(client *redis.Client, keyPrefix string) *RedisSource {
	if keyPrefix == "" {
		keyPrefix = defaultRedisPrefix
	}
	return &RedisSource{client: client, keyPrefix: keyPrefix}
}

// DialRedis connects to Redis and verifies the connection with PING.
func DialRedis(ctx context.Context, cfg RedisConfig) (*RedisSource, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}
	return NewRedisSource(client, cfg.KeyPrefix), nil
}

func (r *RedisSource) Value(ctx context.Context, key string) (string, bool, error) {
	v, err := r.client.Get(ctx, r.keyPrefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("redis get %q: %w", key, err)
	}
	return v, true, nil
}

// Close releases the underlying connection pool.
func (r *RedisSource) Close() error {
	return r.client.Close()
}
