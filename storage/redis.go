package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	authsync "github.com/mr-hec24/expo-supabase-auth-starter"
)

// DefaultRedisNamespace prefixes every key a Redis store writes, keeping
// the engine's entries separable from the rest of the database.
const DefaultRedisNamespace = "authsync:"

// Redis implements [authsync.LocalStorage] on a Redis database. All keys
// live under a namespace; GetAllKeys and MultiRemove operate on the
// logical, un-namespaced key names.
type Redis struct {
	client    redis.UniversalClient
	namespace string
}

var _ authsync.LocalStorage = (*Redis)(nil)

// NewRedis creates a Redis store on client. An empty namespace falls back
// to [DefaultRedisNamespace].
func NewRedis(client redis.UniversalClient, namespace string) *Redis {
	if namespace == "" {
		namespace = DefaultRedisNamespace
	}
	return &Redis{
		client:    client,
		namespace: namespace,
	}
}

func (r *Redis) key(logical string) string {
	return r.namespace + logical
}

// GetItem returns the value stored under key.
func (r *Redis) GetItem(ctx context.Context, key string) (string, bool, error) {
	value, err := r.client.Get(ctx, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get %q: %w", key, err)
	}
	return value, true, nil
}

// SetItem stores value under key with no expiry.
func (r *Redis) SetItem(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, r.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

// RemoveItem deletes key. Removing an absent key is not an error.
func (r *Redis) RemoveItem(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del %q: %w", key, err)
	}
	return nil
}

// GetAllKeys scans the namespace and returns the logical key names.
func (r *Redis) GetAllKeys(ctx context.Context) ([]string, error) {
	var (
		keys   []string
		cursor uint64
	)
	for {
		batch, next, err := r.client.Scan(ctx, cursor, r.namespace+"*", 100).Result()
		if err != nil {
			return nil, fmt.Errorf("redis scan: %w", err)
		}
		for _, full := range batch {
			keys = append(keys, strings.TrimPrefix(full, r.namespace))
		}
		cursor = next
		if cursor == 0 {
			return keys, nil
		}
	}
}

// MultiRemove deletes every key in keys in one round trip.
func (r *Redis) MultiRemove(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, key := range keys {
		full[i] = r.key(key)
	}
	if err := r.client.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
