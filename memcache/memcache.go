// Package memcache provides a Store implementation backed by a
// Memcached server via gomemcache.
package memcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/bradfitz/gomemcache/memcache"

	"github.com/jmgilman/go/cache"
	"github.com/jmgilman/go/cache/internal/validate"
)

// Store is a Memcached-backed cache.
// Values are JSON-serialized on the wire, so type fidelity follows
// JSON: numbers come back as float64, structs and maps as
// map[string]any, and slices as []any. Memcached expirations have
// one-second granularity; sub-second TTLs are rounded up so they
// never collapse to "never expires".
//
// The gomemcache client has no context support, so contexts are not
// inspected; the client's own Timeout bounds each call.
type Store struct {
	client *memcache.Client
}

// Config holds Memcached store configuration.
type Config struct {
	// Addrs lists memcached server addresses (e.g., "localhost:11211").
	// Keys are sharded across servers by the client.
	Addrs []string

	// Timeout is the socket read/write timeout applied to the client.
	// Zero keeps the client default (100ms).
	Timeout time.Duration

	// Client is an optional pre-configured memcache client.
	// If provided, Addrs and Timeout are ignored.
	Client *memcache.Client
}

// validate checks if the configuration is valid.
// Either Client or at least one address must be provided.
func (c *Config) validate() error {
	if c.Client == nil && len(c.Addrs) == 0 {
		return fmt.Errorf("at least one server address is required when client is not provided")
	}
	return nil
}

// New creates a Memcached-backed store.
func New(cfg Config) (*Store, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid memcache config: %w", err)
	}
	client := cfg.Client
	if client == nil {
		client = memcache.New(cfg.Addrs...)
		if cfg.Timeout > 0 {
			client.Timeout = cfg.Timeout
		}
	}
	return &Store{client: client}, nil
}

// Unwrap returns the underlying memcache client.
func (s *Store) Unwrap() *memcache.Client {
	return s.client
}

// engineTTL converts a TTL to memcached's expiration field. Zero maps
// to zero (never expires) and positive TTLs round up to whole seconds
// so a sub-second TTL does not collapse to "never". Memcached
// interprets values over thirty days as absolute Unix timestamps, so
// longer TTLs are converted to a deadline.
func engineTTL(ttl time.Duration) int32 {
	if ttl == cache.NoExpiration {
		return 0
	}
	const maxRelative = 30 * 24 * time.Hour
	if ttl > maxRelative {
		deadline := time.Now().Add(ttl).Unix()
		if deadline > math.MaxInt32 {
			deadline = math.MaxInt32
		}
		return int32(deadline)
	}
	return int32(math.Ceil(ttl.Seconds()))
}

// translate maps client errors onto contract errors: malformed keys
// (memcached forbids whitespace and control characters and caps keys
// at 250 bytes) become ErrInvalidArgument, everything else is wrapped
// with operation context.
func translate(op, key string, err error) error {
	if errors.Is(err, memcache.ErrMalformedKey) {
		return cache.NewArgumentError(op, key, err)
	}
	return fmt.Errorf("memcache %s %q: %w", op, key, err)
}

// encode serializes a value for storage.
func encode(value any) ([]byte, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encoding value: %w", err)
	}
	return data, nil
}

// decode deserializes a stored value.
func decode(data []byte) (any, error) {
	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, fmt.Errorf("decoding value: %w", err)
	}
	return value, nil
}

// Get fetches the value stored under key, or def on a miss.
func (s *Store) Get(_ context.Context, key string, def any) (any, error) {
	if err := validate.Key(key); err != nil {
		return nil, cache.NewArgumentError("get", key, err)
	}
	item, err := s.client.Get(key)
	if errors.Is(err, memcache.ErrCacheMiss) {
		return def, nil
	}
	if err != nil {
		return nil, translate("get", key, err)
	}
	return decode(item.Value)
}

// Set stores value under key with the given TTL. Values the JSON
// encoder rejects are reported as ErrInvalidArgument.
func (s *Store) Set(_ context.Context, key string, value any, ttl time.Duration) (bool, error) {
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
	item := &memcache.Item{
		Key:        key,
		Value:      data,
		Expiration: engineTTL(ttl),
	}
	if err := s.client.Set(item); err != nil {
		return false, translate("set", key, err)
	}
	return true, nil
}

// Delete removes the value stored under key. Deleting an absent key
// succeeds.
func (s *Store) Delete(_ context.Context, key string) (bool, error) {
	if err := validate.Key(key); err != nil {
		return false, cache.NewArgumentError("delete", key, err)
	}
	err := s.client.Delete(key)
	if err != nil && !errors.Is(err, memcache.ErrCacheMiss) {
		return false, translate("delete", key, err)
	}
	return true, nil
}

// Clear removes every value from all configured servers.
func (s *Store) Clear(_ context.Context) (bool, error) {
	if err := s.client.FlushAll(); err != nil {
		return false, fmt.Errorf("memcache clear: %w", err)
	}
	return true, nil
}

// GetMultiple fetches the values stored under keys in one batched
// lookup, with def in place of every miss.
func (s *Store) GetMultiple(_ context.Context, keys []string, def any) (map[string]any, error) {
	if err := validate.Keys(keys); err != nil {
		return nil, cache.NewArgumentError("getmultiple", "", err)
	}
	values := make(map[string]any, len(keys))
	if len(keys) == 0 {
		return values, nil
	}
	items, err := s.client.GetMulti(keys)
	if err != nil {
		return nil, translate("getmultiple", "", err)
	}
	for _, key := range keys {
		item, found := items[key]
		if !found {
			values[key] = def
			continue
		}
		value, err := decode(item.Value)
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
func (s *Store) SetMultiple(_ context.Context, values map[string]any, ttl time.Duration) (bool, error) {
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
		item := &memcache.Item{
			Key:        key,
			Value:      data,
			Expiration: engineTTL(ttl),
		}
		if err := s.client.Set(item); err != nil {
			return false, translate("setmultiple", key, err)
		}
	}
	return true, nil
}

// DeleteMultiple removes the values stored under keys.
func (s *Store) DeleteMultiple(_ context.Context, keys []string) (bool, error) {
	if err := validate.Keys(keys); err != nil {
		return false, cache.NewArgumentError("deletemultiple", "", err)
	}
	for _, key := range keys {
		err := s.client.Delete(key)
		if err != nil && !errors.Is(err, memcache.ErrCacheMiss) {
			return false, translate("deletemultiple", key, err)
		}
	}
	return true, nil
}

// Has reports whether key currently holds an unexpired value.
func (s *Store) Has(_ context.Context, key string) (bool, error) {
	if err := validate.Key(key); err != nil {
		return false, cache.NewArgumentError("has", key, err)
	}
	_, err := s.client.Get(key)
	if errors.Is(err, memcache.ErrCacheMiss) {
		return false, nil
	}
	if err != nil {
		return false, translate("has", key, err)
	}
	return true, nil
}

var _ cache.Store = (*Store)(nil)
