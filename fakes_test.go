package cache

import (
	"context"
	"sync"
	"testing"
	"time"
)

// fixedClock pins the package clock for the duration of a test.
func fixedClock(t *testing.T, fixed time.Time) {
	t.Helper()
	restore := now
	now = func() time.Time { return fixed }
	t.Cleanup(func() { now = restore })
}

// fakeEntry is a stored value with an optional deadline.
type fakeEntry struct {
	value     any
	expiresAt time.Time
}

func (e fakeEntry) expired() bool {
	return !e.expiresAt.IsZero() && time.Now().After(e.expiresAt)
}

// fakeStore is an in-memory Store test double. Operation errors and
// per-key write failures are injectable, and every call is counted.
type fakeStore struct {
	mu      sync.Mutex
	entries map[string]fakeEntry
	failing map[string]bool
	err     error
	lastTTL time.Duration
	calls   map[string]int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		entries: make(map[string]fakeEntry),
		failing: make(map[string]bool),
		calls:   make(map[string]int),
	}
}

func (f *fakeStore) callCount(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeStore) entry(key string) (fakeEntry, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.entries[key]
	return entry, ok
}

func (f *fakeStore) Get(_ context.Context, key string, def any) (any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["get"]++
	if f.err != nil {
		return nil, f.err
	}
	entry, ok := f.entries[key]
	if !ok || entry.expired() {
		return def, nil
	}
	return entry.value, nil
}

func (f *fakeStore) Set(_ context.Context, key string, value any, ttl time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["set"]++
	if f.err != nil {
		return false, f.err
	}
	f.lastTTL = ttl
	if f.failing[key] {
		return false, nil
	}
	entry := fakeEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}
	f.entries[key] = entry
	return true, nil
}

func (f *fakeStore) Delete(_ context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["delete"]++
	if f.err != nil {
		return false, f.err
	}
	delete(f.entries, key)
	return true, nil
}

func (f *fakeStore) Clear(_ context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["clear"]++
	if f.err != nil {
		return false, f.err
	}
	f.entries = make(map[string]fakeEntry)
	return true, nil
}

func (f *fakeStore) GetMultiple(_ context.Context, keys []string, def any) (map[string]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["getmultiple"]++
	if f.err != nil {
		return nil, f.err
	}
	values := make(map[string]any, len(keys))
	for _, key := range keys {
		entry, ok := f.entries[key]
		if !ok || entry.expired() {
			values[key] = def
			continue
		}
		values[key] = entry.value
	}
	return values, nil
}

func (f *fakeStore) SetMultiple(_ context.Context, values map[string]any, ttl time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["setmultiple"]++
	if f.err != nil {
		return false, f.err
	}
	ok := true
	for key, value := range values {
		if f.failing[key] {
			ok = false
			continue
		}
		entry := fakeEntry{value: value}
		if ttl > 0 {
			entry.expiresAt = time.Now().Add(ttl)
		}
		f.entries[key] = entry
	}
	return ok, nil
}

func (f *fakeStore) DeleteMultiple(_ context.Context, keys []string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["deletemultiple"]++
	if f.err != nil {
		return false, f.err
	}
	for _, key := range keys {
		delete(f.entries, key)
	}
	return true, nil
}

func (f *fakeStore) Has(_ context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["has"]++
	if f.err != nil {
		return false, f.err
	}
	entry, ok := f.entries[key]
	return ok && !entry.expired(), nil
}

// fakePool is an in-memory Pool test double with the same injection
// knobs as fakeStore.
type fakePool struct {
	mu      sync.Mutex
	entries map[string]fakeEntry
	failing map[string]bool
	err     error
	calls   map[string]int
}

func newFakePool() *fakePool {
	return &fakePool{
		entries: make(map[string]fakeEntry),
		failing: make(map[string]bool),
		calls:   make(map[string]int),
	}
}

func (f *fakePool) callCount(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakePool) entry(key string) (fakeEntry, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.entries[key]
	return entry, ok
}

func (f *fakePool) itemFor(key string) *Item {
	entry, ok := f.entries[key]
	if !ok || entry.expired() {
		return NewItem(key)
	}
	return NewHit(key, entry.value)
}

func (f *fakePool) GetItem(_ context.Context, key string) (*Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["getitem"]++
	if f.err != nil {
		return nil, f.err
	}
	return f.itemFor(key), nil
}

func (f *fakePool) GetItems(_ context.Context, keys []string) (map[string]*Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["getitems"]++
	if f.err != nil {
		return nil, f.err
	}
	items := make(map[string]*Item, len(keys))
	for _, key := range keys {
		items[key] = f.itemFor(key)
	}
	return items, nil
}

func (f *fakePool) HasItem(_ context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["hasitem"]++
	if f.err != nil {
		return false, f.err
	}
	entry, ok := f.entries[key]
	return ok && !entry.expired(), nil
}

func (f *fakePool) Clear(_ context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["clear"]++
	if f.err != nil {
		return false, f.err
	}
	f.entries = make(map[string]fakeEntry)
	return true, nil
}

func (f *fakePool) DeleteItem(_ context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["deleteitem"]++
	if f.err != nil {
		return false, f.err
	}
	delete(f.entries, key)
	return true, nil
}

func (f *fakePool) DeleteItems(_ context.Context, keys []string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["deleteitems"]++
	if f.err != nil {
		return false, f.err
	}
	for _, key := range keys {
		delete(f.entries, key)
	}
	return true, nil
}

func (f *fakePool) Save(_ context.Context, item *Item) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["save"]++
	if f.err != nil {
		return false, f.err
	}
	if f.failing[item.Key()] {
		return false, nil
	}
	entry := fakeEntry{value: item.Value()}
	if exp, ok := item.Expiration(); ok {
		entry.expiresAt = exp
	}
	f.entries[item.Key()] = entry
	return true, nil
}

func (f *fakePool) SaveDeferred(ctx context.Context, item *Item) (bool, error) {
	return f.Save(ctx, item)
}

func (f *fakePool) Commit(_ context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["commit"]++
	if f.err != nil {
		return false, f.err
	}
	return true, nil
}

var (
	_ Store = (*fakeStore)(nil)
	_ Pool  = (*fakePool)(nil)
)
