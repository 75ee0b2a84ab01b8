// Package redis provides a Store implementation backed by a Redis
// server via go-redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/jmgilman/go/cache"
	"github.com/jmgilman/go/cache/internal/validate"
)

// Store is a Redis-backed cache.
// Values are JSON-serialized on the wire, so type fidelity follows
// JSON: numbers come back as float64, structs and maps as
// map[string]any, and slices as []any.
type Store struct {
	client redis.Cmdable
	prefix string
}

// Config holds Redis store configuration.
type Config struct {
	// Addr is the Redis server address (e.g., "localhost:6379").
	Addr string

	// Password is the optional server password.
	Password string

	// DB selects the Redis logical database.
	DB int

	// Prefix is an optional prefix for all keys (for namespacing).
	// Clear only removes keys under the prefix, so several stores can
	// share one database.
	Prefix string

	// Client is an optional pre-configured Redis client.
	// If provided, Addr/Password/DB are ignored. Accepting the
	// Cmdable interface allows cluster clients and pipelines.
	Client redis.Cmdable
}

// validate checks if the configuration is valid.
// Either Client or Addr must be provided.
func (c *Config) validate() error {
	if c.Client == nil && c.Addr == "" {
		return fmt.Errorf("addr is required when client is not provided")
	}
	return nil
}

// New creates a Redis-backed store.
func New(cfg Config) (*Store, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid redis config: %w", err)
	}
	client := cfg.Client
	if client == nil {
		client = redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
	}
	return &Store{client: client, prefix: cfg.Prefix}, nil
}

// Unwrap returns the underlying Redis client.
func (s *Store) Unwrap() redis.Cmdable {
	return s.client
}

// name maps a contract key onto the namespaced Redis key.
func (s *Store) name(key string) string {
	if s.prefix == "" {
		return key
	}
	return s.prefix + ":" + key
}

// engineTTL maps the Store TTL convention onto Redis expirations.
// Zero passes through as "no expiration"; positive TTLs below Redis's
// millisecond granularity round up so they never become zero.
func engineTTL(ttl time.Duration) time.Duration {
	if ttl > 0 && ttl < time.Millisecond {
		return time.Millisecond
	}
	return ttl
}

// encode serializes a value for storage.
func encode(value any) (string, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("encoding value: %w", err)
	}
	return string(data), nil
}

// decode deserializes a stored value.
func decode(data string) (any, error) {
	var value any
	if err := json.Unmarshal([]byte(data), &value); err != nil {
		return nil, fmt.Errorf("decoding value: %w", err)
	}
	return value, nil
}

// Get fetches the value stored under key, or def on a miss.
func (s *Store) Get(ctx context.Context, key string, def any) (any, error) {
	if err := validate.Key(key); err != nil {
		return nil, cache.NewArgumentError("get", key, err)
	}
	data, err := s.client.Get(ctx, s.name(key)).Result()
	if errors.Is(err, redis.Nil) {
		return def, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %q: %w", key, err)
	}
	return decode(data)
}

// Set stores value under key with the given TTL. Values the JSON
// encoder rejects are reported as ErrInvalidArgument.
func (s *Store) Set(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if err := validate.Key(key); err != nil {
		return false, cache.NewArgumentError("set", key, err)
	}
	if err := validate.TTL(ttl); err != nil {
		return false, cache.NewArgumentError("set", key, err)
	}
	data, err := encode(value)
	if err != nil {
		return false, cache.NewArgumentError("set", key, err)
	}
	if err := s.client.Set(ctx, s.name(key), data, engineTTL(ttl)).Err(); err != nil {
		return false, fmt.Errorf("redis set %q: %w", key, err)
	}
	return true, nil
}

// Delete removes the value stored under key. Deleting an absent key
// succeeds.
func (s *Store) Delete(ctx context.Context, key string) (bool, error) {
	if err := validate.Key(key); err != nil {
		return false, cache.NewArgumentError("delete", key, err)
	}
	if err := s.client.Del(ctx, s.name(key)).Err(); err != nil {
		return false, fmt.Errorf("redis del %q: %w", key, err)
	}
	return true, nil
}

// Clear removes every value the store can see: all keys under the
// prefix, or the whole keyspace when no prefix is configured.
func (s *Store) Clear(ctx context.Context) (bool, error) {
	pattern := "*"
	if s.prefix != "" {
		pattern = s.prefix + ":*"
	}
	iter := s.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return false, fmt.Errorf("redis clear: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return false, fmt.Errorf("redis clear: %w", err)
	}
	return true, nil
}

// GetMultiple fetches the values stored under keys in one MGET, with
// def in place of every miss.
func (s *Store) GetMultiple(ctx context.Context, keys []string, def any) (map[string]any, error) {
	if err := validate.Keys(keys); err != nil {
		return nil, cache.NewArgumentError("getmultiple", "", err)
	}
	values := make(map[string]any, len(keys))
	if len(keys) == 0 {
		return values, nil
	}
	names := make([]string, len(keys))
	for i, key := range keys {
		names[i] = s.name(key)
	}
	results, err := s.client.MGet(ctx, names...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis mget: %w", err)
	}
	for i, key := range keys {
		data, ok := results[i].(string)
		if !ok {
			values[key] = def
			continue
		}
		value, err := decode(data)
		if err != nil {
			return nil, err
		}
		values[key] = value
	}
	return values, nil
}

// SetMultiple stores every entry of values with the same TTL. Keys and
// TTL are validated up front, so a malformed entry rejects the whole
// batch before anything is stored.
func (s *Store) SetMultiple(ctx context.Context, values map[string]any, ttl time.Duration) (bool, error) {
	if err := validate.TTL(ttl); err != nil {
		return false, cache.NewArgumentError("setmultiple", "", err)
	}
	for key := range values {
		if err := validate.Key(key); err != nil {
			return false, cache.NewArgumentError("setmultiple", key, err)
		}
	}
	for key, value := range values {
		data, err := encode(value)
		if err != nil {
			return false, cache.NewArgumentError("setmultiple", key, err)
		}
		if err := s.client.Set(ctx, s.name(key), data, engineTTL(ttl)).Err(); err != nil {
			return false, fmt.Errorf("redis set %q: %w", key, err)
		}
	}
	return true, nil
}

// DeleteMultiple removes the values stored under keys in one DEL.
func (s *Store) DeleteMultiple(ctx context.Context, keys []string) (bool, error) {
	if err := validate.Keys(keys); err != nil {
		return false, cache.NewArgumentError("deletemultiple", "", err)
	}
	if len(keys) == 0 {
		return true, nil
	}
	names := make([]string, len(keys))
	for i, key := range keys {
		names[i] = s.name(key)
	}
	if err := s.client.Del(ctx, names...).Err(); err != nil {
		return false, fmt.Errorf("redis del: %w", err)
	}
	return true, nil
}

// Has reports whether key currently holds an unexpired value.
func (s *Store) Has(ctx context.Context, key string) (bool, error) {
	if err := validate.Key(key); err != nil {
		return false, cache.NewArgumentError("has", key, err)
	}
	n, err := s.client.Exists(ctx, s.name(key)).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists %q: %w", key, err)
	}
	return n > 0, nil
}

var _ cache.Store = (*Store)(nil)
