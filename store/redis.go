package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis-backed log and register, for deployments where pollers run on
// other hosts and a shared file is not an option.

const redisOpTimeout = 5 * time.Second

// RedisLog is a ConversationLog stored as a Redis list.
type RedisLog struct {
	client *redis.Client
	key    string
}

func NewRedisLog(client *redis.Client, key string) *RedisLog {
	return &RedisLog{client: client, key: key}
}

func (l *RedisLog) Append(text string) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	if err := l.client.RPush(ctx, l.key, sanitizeEntry(text)).Err(); err != nil {
		return fmt.Errorf("store: rpush %q: %w", l.key, err)
	}
	return nil
}

func (l *RedisLog) ReadAll() ([]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	entries, err := l.client.LRange(ctx, l.key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("store: lrange %q: %w", l.key, err)
	}
	if entries == nil {
		entries = []string{}
	}
	return entries, nil
}

func (l *RedisLog) Clear() error {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	if err := l.client.Del(ctx, l.key).Err(); err != nil {
		return fmt.Errorf("store: del %q: %w", l.key, err)
	}
	return nil
}

// RedisStatus is a StatusRegister stored as a single Redis string.
type RedisStatus struct {
	client *redis.Client
	key    string
}

func NewRedisStatus(client *redis.Client, key string) *RedisStatus {
	return &RedisStatus{client: client, key: key}
}

func (s *RedisStatus) Set(status string) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	if err := s.client.Set(ctx, s.key, status, 0).Err(); err != nil {
		return fmt.Errorf("store: set %q: %w", s.key, err)
	}
	return nil
}

func (s *RedisStatus) Get() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	value, err := s.client.Get(ctx, s.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("store: get %q: %w", s.key, err)
	}
	return value, nil
}
