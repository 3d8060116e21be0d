package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore persists snapshots in Redis so meetings survive a process
// restart and can be observed from other services.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// RedisConfig contains connection settings for the Redis snapshot store.
type RedisConfig struct {
	Addr      string        `json:"addr"`
	Username  string        `json:"username"`
	Password  string        `json:"password"`
	DB        int           `json:"db"`
	KeyPrefix string        `json:"key_prefix"`
	TTL       time.Duration `json:"ttl"`
}

// DefaultRedisConfig returns settings for a local single-instance Redis.
// Snapshots expire a day after the last update; a meeting that has been idle
// that long is over.
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:      "localhost:6379",
		KeyPrefix: "meetingagent:snapshot:",
		TTL:       24 * time.Hour,
	}
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(config RedisConfig) (*RedisStore, error) {
	if config.Addr == "" {
		config.Addr = "localhost:6379"
	}
	if config.KeyPrefix == "" {
		config.KeyPrefix = "meetingagent:snapshot:"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Username: config.Username,
		Password: config.Password,
		DB:       config.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{
		client: client,
		prefix: config.KeyPrefix,
		ttl:    config.TTL,
	}, nil
}

func (rs *RedisStore) Put(ctx context.Context, key string, data []byte) error {
	if err := rs.client.Set(ctx, rs.prefix+key, data, rs.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store snapshot in Redis: %w", err)
	}
	return nil
}

func (rs *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := rs.client.Get(ctx, rs.prefix+key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("snapshot not found: %s", key)
		}
		return nil, fmt.Errorf("failed to read snapshot from Redis: %w", err)
	}
	return data, nil
}

func (rs *RedisStore) Delete(ctx context.Context, key string) error {
	if err := rs.client.Del(ctx, rs.prefix+key).Err(); err != nil {
		return fmt.Errorf("failed to delete snapshot from Redis: %w", err)
	}
	return nil
}

func (rs *RedisStore) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	iter := rs.client.Scan(ctx, 0, rs.prefix+prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), rs.prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan Redis keys: %w", err)
	}

	sort.Strings(keys)
	return keys, nil
}

func (rs *RedisStore) Close() error {
	return rs.client.Close()
}
