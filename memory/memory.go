// Package memory provides an in-process Store implementation backed by
// patrickmn/go-cache.
package memory

import (
	"context"
	"time"

	"github.com/jmgilman/go/cache"
	"github.com/jmgilman/go/cache/internal/validate"
	gocache "github.com/patrickmn/go-cache"
)

// Store is an in-memory cache backed by a go-cache engine.
// Values are held as-is, so any Go value round-trips with full
// fidelity. Expired entries are evicted lazily on access and, when a
// cleanup interval is configured, periodically by the engine's
// janitor.
type Store struct {
	engine *gocache.Cache
}

// Config holds in-memory store configuration.
type Config struct {
	// CleanupInterval controls how often the engine sweeps expired
	// entries. Zero disables the background janitor; expired entries
	// are then only evicted lazily on access.
	CleanupInterval time.Duration

	// Engine is an optional pre-configured go-cache instance.
	// If provided, CleanupInterval is ignored.
	Engine *gocache.Cache
}

// New creates an in-memory store.
func New(cfg Config) *Store {
	engine := cfg.Engine
	if engine == nil {
		engine = gocache.New(gocache.NoExpiration, cfg.CleanupInterval)
	}
	return &Store{engine: engine}
}

// Unwrap returns the underlying go-cache engine.
func (s *Store) Unwrap() *gocache.Cache {
	return s.engine
}

// engineTTL maps the Store TTL convention onto go-cache's: the engine
// uses -1 where the contract uses zero for "never expires".
func engineTTL(ttl time.Duration) time.Duration {
	if ttl == cache.NoExpiration {
		return gocache.NoExpiration
	}
	return ttl
}

// Get fetches the value stored under key, or def on a miss.
func (s *Store) Get(_ context.Context, key string, def any) (any, error) {
	if err := validate.Key(key); err != nil {
		return nil, cache.NewArgumentError("get", key, err)
	}
	value, found := s.engine.Get(key)
	if !found {
		return def, nil
	}
	return value, nil
}

// Set stores value under key with the given TTL.
func (s *Store) Set(_ context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if err := validate.Key(key); err != nil {
		return false, cache.NewArgumentError("set", key, err)
	}
	if err := validate.TTL(ttl); err != nil {
		return false, cache.NewArgumentError("set", key, err)
	}
	s.engine.Set(key, value, engineTTL(ttl))
	return true, nil
}

// Delete removes the value stored under key. Deleting an absent key
// succeeds.
func (s *Store) Delete(_ context.Context, key string) (bool, error) {
	if err := validate.Key(key); err != nil {
		return false, cache.NewArgumentError("delete", key, err)
	}
	s.engine.Delete(key)
	return true, nil
}

// Clear removes every value from the cache.
func (s *Store) Clear(_ context.Context) (bool, error) {
	s.engine.Flush()
	return true, nil
}

// GetMultiple fetches the values stored under keys, with def in place
// of every miss.
func (s *Store) GetMultiple(_ context.Context, keys []string, def any) (map[string]any, error) {
	if err := validate.Keys(keys); err != nil {
		return nil, cache.NewArgumentError("getmultiple", "", err)
	}
	values := make(map[string]any, len(keys))
	for _, key := range keys {
		value, found := s.engine.Get(key)
		if !found {
			values[key] = def
			continue
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
		s.engine.Set(key, value, engineTTL(ttl))
	}
	return true, nil
}

// DeleteMultiple removes the values stored under keys.
func (s *Store) DeleteMultiple(_ context.Context, keys []string) (bool, error) {
	if err := validate.Keys(keys); err != nil {
		return false, cache.NewArgumentError("deletemultiple", "", err)
	}
	for _, key := range keys {
		s.engine.Delete(key)
	}
	return true, nil
}

// Has reports whether key currently holds an unexpired value.
func (s *Store) Has(_ context.Context, key string) (bool, error) {
	if err := validate.Key(key); err != nil {
		return false, cache.NewArgumentError("has", key, err)
	}
	_, found := s.engine.Get(key)
	return found, nil
}

var _ cache.Store = (*Store)(nil)
