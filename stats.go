package cache

import (
	"context"
	"sync"
	"time"
)

// Stats is a point-in-time snapshot of StatsStore counters.
type Stats struct {
	// Hits counts Get and GetMultiple lookups answered from cache.
	Hits int64

	// Misses counts lookups that fell back to the caller's default.
	Misses int64

	// Sets counts values stored by Set and SetMultiple.
	Sets int64

	// Deletes counts Delete, DeleteMultiple, and Clear calls.
	Deletes int64

	// Errors counts operations that returned an error.
	Errors int64
}

// HitRate returns the fraction of lookups answered from cache, in the
// range [0, 1]. It returns 0 before the first lookup.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// StatsStore wraps a Store and counts operation outcomes. It changes
// no behavior: every call is answered by the underlying store, with
// hit and miss accounting done through a private sentinel default so
// no extra round trips are added. Has and Unwrap pass through
// uncounted.
//
// The counters are safe for concurrent use; the wrapped store is as
// safe as it is on its own.
type StatsStore struct {
	store Store

	mu    sync.Mutex
	stats Stats
}

// missing is a private sentinel default used to detect misses without
// a second round trip. Stores return the default itself on a miss, so
// the pointer comparison is unambiguous.
var missing = new(struct{})

// NewStatsStore wraps store with hit, miss, and error accounting.
// It panics if store is nil.
func NewStatsStore(store Store) *StatsStore {
	if store == nil {
		panic("cache: NewStatsStore called with nil Store")
	}
	return &StatsStore{store: store}
}

// Unwrap returns the underlying Store.
func (ss *StatsStore) Unwrap() Store {
	return ss.store
}

// Stats returns a snapshot of the counters.
func (ss *StatsStore) Stats() Stats {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return ss.stats
}

func (ss *StatsStore) record(update func(*Stats)) {
	ss.mu.Lock()
	update(&ss.stats)
	ss.mu.Unlock()
}

// Get fetches the value stored under key, counting the outcome as a
// hit or a miss.
func (ss *StatsStore) Get(ctx context.Context, key string, def any) (any, error) {
	value, err := ss.store.Get(ctx, key, missing)
	if err != nil {
		ss.record(func(s *Stats) { s.Errors++ })
		return nil, err
	}
	if value == missing {
		ss.record(func(s *Stats) { s.Misses++ })
		return def, nil
	}
	ss.record(func(s *Stats) { s.Hits++ })
	return value, nil
}

// Set stores value under key, counting one set on success.
func (ss *StatsStore) Set(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	ok, err := ss.store.Set(ctx, key, value, ttl)
	if err != nil {
		ss.record(func(s *Stats) { s.Errors++ })
		return false, err
	}
	if ok {
		ss.record(func(s *Stats) { s.Sets++ })
	}
	return ok, nil
}

// Delete removes the value stored under key, counting one delete on
// success.
func (ss *StatsStore) Delete(ctx context.Context, key string) (bool, error) {
	ok, err := ss.store.Delete(ctx, key)
	if err != nil {
		ss.record(func(s *Stats) { s.Errors++ })
		return false, err
	}
	if ok {
		ss.record(func(s *Stats) { s.Deletes++ })
	}
	return ok, nil
}

// Clear removes every value from the cache, counting one delete on
// success.
func (ss *StatsStore) Clear(ctx context.Context) (bool, error) {
	ok, err := ss.store.Clear(ctx)
	if err != nil {
		ss.record(func(s *Stats) { s.Errors++ })
		return false, err
	}
	if ok {
		ss.record(func(s *Stats) { s.Deletes++ })
	}
	return ok, nil
}

// GetMultiple fetches the values stored under keys, counting each key
// as a hit or a miss.
func (ss *StatsStore) GetMultiple(ctx context.Context, keys []string, def any) (map[string]any, error) {
	values, err := ss.store.GetMultiple(ctx, keys, missing)
	if err != nil {
		ss.record(func(s *Stats) { s.Errors++ })
		return nil, err
	}
	var hits, misses int64
	for key, value := range values {
		if value == missing {
			values[key] = def
			misses++
			continue
		}
		hits++
	}
	ss.record(func(s *Stats) {
		s.Hits += hits
		s.Misses += misses
	})
	return values, nil
}

// SetMultiple stores every entry of values, counting one set per entry
// when all succeed.
func (ss *StatsStore) SetMultiple(ctx context.Context, values map[string]any, ttl time.Duration) (bool, error) {
	ok, err := ss.store.SetMultiple(ctx, values, ttl)
	if err != nil {
		ss.record(func(s *Stats) { s.Errors++ })
		return false, err
	}
	if ok {
		ss.record(func(s *Stats) { s.Sets += int64(len(values)) })
	}
	return ok, nil
}

// DeleteMultiple removes the values stored under keys, counting one
// delete per key on success.
func (ss *StatsStore) DeleteMultiple(ctx context.Context, keys []string) (bool, error) {
	ok, err := ss.store.DeleteMultiple(ctx, keys)
	if err != nil {
		ss.record(func(s *Stats) { s.Errors++ })
		return false, err
	}
	if ok {
		ss.record(func(s *Stats) { s.Deletes += int64(len(keys)) })
	}
	return ok, nil
}

// Has reports whether key currently holds an unexpired value. Lookup
// counters are not touched; only Get and GetMultiple count hits.
func (ss *StatsStore) Has(ctx context.Context, key string) (bool, error) {
	ok, err := ss.store.Has(ctx, key)
	if err != nil {
		ss.record(func(s *Stats) { s.Errors++ })
		return false, err
	}
	return ok, nil
}

var _ Store = (*StatsStore)(nil)
