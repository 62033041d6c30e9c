package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces entity keys: "specsync:<kind>:<id>".
const DefaultRedisPrefix = "specsync:"

// maxUpdateRetries bounds optimistic-lock retries in Update.
const maxUpdateRetries = 5

// RedisStore stores each entity as a JSON string value.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects to redisURL and verifies the connection.
func NewRedisStore(ctx context.Context, redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewRedisStoreWithClient(client), nil
}

// NewRedisStoreWithClient creates a store from an existing Redis client.
func NewRedisStoreWithClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, prefix: DefaultRedisPrefix}
}

func (s *RedisStore) key(kind, id string) string {
	return s.prefix + kind + ":" + id
}

func (s *RedisStore) Load(ctx context.Context, kind, id string) (map[string]any, bool, error) {
	raw, err := s.client.Get(ctx, s.key(kind, id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load %s %q: %w", kind, id, err)
	}

	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, false, fmt.Errorf("decode %s %q: %w", kind, id, err)
	}
	return data, true, nil
}

func (s *RedisStore) Create(ctx context.Context, kind string, data map[string]any) (string, error) {
	id, err := entityID(data)
	if err != nil {
		return "", err
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("encode %s %q: %w", kind, id, err)
	}

	ok, err := s.client.SetNX(ctx, s.key(kind, id), raw, 0).Result()
	if err != nil {
		return "", fmt.Errorf("create %s %q: %w", kind, id, err)
	}
	if !ok {
		return "", existsError(kind, id)
	}
	return id, nil
}

// Update merges under WATCH so concurrent writers do not lose attributes.
func (s *RedisStore) Update(ctx context.Context, kind, id string, data map[string]any) error {
	key := s.key(kind, id)

	txf := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return notFoundError(kind, id)
		}
		if err != nil {
			return err
		}

		var existing map[string]any
		if err := json.Unmarshal(raw, &existing); err != nil {
			return fmt.Errorf("decode %s %q: %w", kind, id, err)
		}
		merged, err := json.Marshal(merge(existing, data, id))
		if err != nil {
			return fmt.Errorf("encode %s %q: %w", kind, id, err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, merged, 0)
			return nil
		})
		return err
	}

	for range maxUpdateRetries {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil && !errors.Is(err, ErrNotFound) {
			return fmt.Errorf("update %s %q: %w", kind, id, err)
		}
		return err
	}
	return fmt.Errorf("update %s %q: too many concurrent writers", kind, id)
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping checks if Redis is reachable.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
