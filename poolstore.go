package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/jmgilman/go/cache/internal/validate"
)

// PoolStore presents a Pool as a Store.
// It is a pure translation layer: every operation maps onto one or two
// pool calls and no state is kept between calls, so a PoolStore is
// exactly as safe for concurrent use as the pool it wraps.
type PoolStore struct {
	pool Pool
	log  *slog.Logger
}

// NewPoolStore wraps pool in a Store facade.
// It panics if pool is nil.
func NewPoolStore(pool Pool, opts ...Option) *PoolStore {
	if pool == nil {
		panic("cache: NewPoolStore called with nil Pool")
	}
	o := newOptions(opts)
	return &PoolStore{pool: pool, log: o.Logger}
}

// Unwrap returns the underlying Pool.
func (ps *PoolStore) Unwrap() Pool {
	return ps.pool
}

// Get fetches the value stored under key, or def on a miss.
func (ps *PoolStore) Get(ctx context.Context, key string, def any) (any, error) {
	if err := validate.Key(key); err != nil {
		return nil, NewArgumentError("get", key, err)
	}
	item, err := ps.pool.GetItem(ctx, key)
	if err != nil {
		return nil, translateErr("get", key, err)
	}
	if !item.IsHit() {
		ps.log.Debug("cache miss", "key", key)
		return def, nil
	}
	ps.log.Debug("cache hit", "key", key)
	return item.Value(), nil
}

// Set stores value under key with the given TTL.
func (ps *PoolStore) Set(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if err := validate.Key(key); err != nil {
		return false, NewArgumentError("set", key, err)
	}
	if err := validate.TTL(ttl); err != nil {
		return false, NewArgumentError("set", key, err)
	}
	item, err := ps.pool.GetItem(ctx, key)
	if err != nil {
		return false, translateErr("set", key, err)
	}
	applyTTL(item.Set(value), ttl)
	ok, err := ps.pool.Save(ctx, item)
	if err != nil {
		return false, translateErr("set", key, err)
	}
	ps.log.Debug("saved value", "key", key, "ok", ok)
	return ok, nil
}

// Delete removes the value stored under key.
func (ps *PoolStore) Delete(ctx context.Context, key string) (bool, error) {
	if err := validate.Key(key); err != nil {
		return false, NewArgumentError("delete", key, err)
	}
	ok, err := ps.pool.DeleteItem(ctx, key)
	if err != nil {
		return false, translateErr("delete", key, err)
	}
	return ok, nil
}

// Clear removes every value from the underlying pool.
func (ps *PoolStore) Clear(ctx context.Context) (bool, error) {
	ok, err := ps.pool.Clear(ctx)
	if err != nil {
		return false, translateErr("clear", "", err)
	}
	return ok, nil
}

// GetMultiple fetches the values stored under keys in one batched pool
// call. The returned map has one entry per requested key, with def in
// place of every miss.
func (ps *PoolStore) GetMultiple(ctx context.Context, keys []string, def any) (map[string]any, error) {
	if err := validate.Keys(keys); err != nil {
		return nil, NewArgumentError("getmultiple", "", err)
	}
	items, err := ps.pool.GetItems(ctx, keys)
	if err != nil {
		return nil, translateErr("getmultiple", "", err)
	}
	values := make(map[string]any, len(keys))
	for _, key := range keys {
		if item, ok := items[key]; ok && item.IsHit() {
			values[key] = item.Value()
			continue
		}
		values[key] = def
	}
	return values, nil
}

// SetMultiple stores every entry of values with the same TTL. Items
// are fetched in one batched call and saved individually; a failed
// save does not stop the remaining saves and nothing is rolled back.
// The result is true only if every save succeeded.
func (ps *PoolStore) SetMultiple(ctx context.Context, values map[string]any, ttl time.Duration) (bool, error) {
	if err := validate.TTL(ttl); err != nil {
		return false, NewArgumentError("setmultiple", "", err)
	}
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	if err := validate.Keys(keys); err != nil {
		return false, NewArgumentError("setmultiple", "", err)
	}
	items, err := ps.pool.GetItems(ctx, keys)
	if err != nil {
		return false, translateErr("setmultiple", "", err)
	}
	saved := true
	for _, key := range keys {
		item, found := items[key]
		if !found {
			item = NewItem(key)
		}
		applyTTL(item.Set(values[key]), ttl)
		ok, err := ps.pool.Save(ctx, item)
		if err != nil {
			return false, translateErr("setmultiple", key, err)
		}
		if !ok {
			ps.log.Debug("save failed", "key", key)
		}
		saved = saved && ok
	}
	return saved, nil
}

// DeleteMultiple removes the values stored under keys.
func (ps *PoolStore) DeleteMultiple(ctx context.Context, keys []string) (bool, error) {
	if err := validate.Keys(keys); err != nil {
		return false, NewArgumentError("deletemultiple", "", err)
	}
	ok, err := ps.pool.DeleteItems(ctx, keys)
	if err != nil {
		return false, translateErr("deletemultiple", "", err)
	}
	return ok, nil
}

// Has reports whether key currently holds an unexpired value.
func (ps *PoolStore) Has(ctx context.Context, key string) (bool, error) {
	if err := validate.Key(key); err != nil {
		return false, NewArgumentError("has", key, err)
	}
	ok, err := ps.pool.HasItem(ctx, key)
	if err != nil {
		return false, translateErr("has", key, err)
	}
	return ok, nil
}

// applyTTL maps the Store TTL convention onto an item: NoExpiration
// clears the expiration, positive durations expire the item relative
// to now.
func applyTTL(item *Item, ttl time.Duration) {
	if ttl == NoExpiration {
		item.ExpiresAt(time.Time{})
		return
	}
	item.ExpiresAfter(ttl)
}

var _ Store = (*PoolStore)(nil)
