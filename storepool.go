package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jmgilman/go/cache/internal/validate"
)

// errNilItem is raised when a nil item is handed to Save.
var errNilItem = errors.New("item is nil")

// StorePool presents a Store as a Pool.
// It is a pure translation layer with no deferral buffer: SaveDeferred
// persists immediately and Commit has nothing to flush. A StorePool is
// exactly as safe for concurrent use as the store it wraps.
type StorePool struct {
	store Store
	log   *slog.Logger
}

// NewStorePool wraps store in a Pool facade.
// It panics if store is nil.
func NewStorePool(store Store, opts ...Option) *StorePool {
	if store == nil {
		panic("cache: NewStorePool called with nil Store")
	}
	o := newOptions(opts)
	return &StorePool{store: store, log: o.Logger}
}

// Unwrap returns the underlying Store.
func (sp *StorePool) Unwrap() Store {
	return sp.store
}

// GetItem fetches the item for key in a single store call. The item is
// never nil when the error is nil: present keys yield hit items
// carrying the stored value (a stored nil included), absent or expired
// keys yield miss items.
func (sp *StorePool) GetItem(ctx context.Context, key string) (*Item, error) {
	if err := validate.Key(key); err != nil {
		return nil, NewArgumentError("getitem", key, err)
	}
	value, err := sp.store.Get(ctx, key, missing)
	if err != nil {
		return nil, translateErr("getitem", key, err)
	}
	if value == missing {
		sp.log.Debug("cache miss", "key", key)
		return NewItem(key), nil
	}
	sp.log.Debug("cache hit", "key", key)
	return NewHit(key, value), nil
}

// GetItems fetches the items for keys in one batched store call. The
// returned map has one item per requested key, misses included. An
// empty key list yields an empty map without consulting the store.
func (sp *StorePool) GetItems(ctx context.Context, keys []string) (map[string]*Item, error) {
	if err := validate.Keys(keys); err != nil {
		return nil, NewArgumentError("getitems", "", err)
	}
	items := make(map[string]*Item, len(keys))
	if len(keys) == 0 {
		return items, nil
	}
	values, err := sp.store.GetMultiple(ctx, keys, missing)
	if err != nil {
		return nil, translateErr("getitems", "", err)
	}
	for _, key := range keys {
		value, ok := values[key]
		if !ok || value == missing {
			items[key] = NewItem(key)
			continue
		}
		items[key] = NewHit(key, value)
	}
	return items, nil
}

// HasItem reports whether key currently holds an unexpired value.
func (sp *StorePool) HasItem(ctx context.Context, key string) (bool, error) {
	if err := validate.Key(key); err != nil {
		return false, NewArgumentError("hasitem", key, err)
	}
	ok, err := sp.store.Has(ctx, key)
	if err != nil {
		return false, translateErr("hasitem", key, err)
	}
	return ok, nil
}

// Clear removes every value from the underlying store.
func (sp *StorePool) Clear(ctx context.Context) (bool, error) {
	ok, err := sp.store.Clear(ctx)
	if err != nil {
		return false, translateErr("clear", "", err)
	}
	return ok, nil
}

// DeleteItem removes the item stored under key.
func (sp *StorePool) DeleteItem(ctx context.Context, key string) (bool, error) {
	if err := validate.Key(key); err != nil {
		return false, NewArgumentError("deleteitem", key, err)
	}
	ok, err := sp.store.Delete(ctx, key)
	if err != nil {
		return false, translateErr("deleteitem", key, err)
	}
	return ok, nil
}

// DeleteItems removes the items stored under keys in one batched store
// call.
func (sp *StorePool) DeleteItems(ctx context.Context, keys []string) (bool, error) {
	if err := validate.Keys(keys); err != nil {
		return false, NewArgumentError("deleteitems", "", err)
	}
	ok, err := sp.store.DeleteMultiple(ctx, keys)
	if err != nil {
		return false, translateErr("deleteitems", "", err)
	}
	return ok, nil
}

// Save persists the item through the underlying store. An expiration
// in the future is converted to the remaining duration; one in the
// past is persisted with the smallest positive TTL so the entry
// expires immediately instead of erroring.
func (sp *StorePool) Save(ctx context.Context, item *Item) (bool, error) {
	if item == nil {
		return false, NewArgumentError("save", "", errNilItem)
	}
	if err := validate.Key(item.Key()); err != nil {
		return false, NewArgumentError("save", item.Key(), err)
	}
	ttl := NoExpiration
	if exp, ok := item.Expiration(); ok {
		ttl = exp.Sub(now())
		if ttl <= 0 {
			ttl = time.Nanosecond
		}
	}
	ok, err := sp.store.Set(ctx, item.Key(), item.Value(), ttl)
	if err != nil {
		return false, translateErr("save", item.Key(), err)
	}
	sp.log.Debug("saved item", "key", item.Key(), "ttl", ttl, "ok", ok)
	return ok, nil
}

// SaveDeferred persists the item immediately. The Store contract has
// no buffer to defer into, so SaveDeferred and Save behave
// identically.
func (sp *StorePool) SaveDeferred(ctx context.Context, item *Item) (bool, error) {
	return sp.Save(ctx, item)
}

// Commit reports success. Deferred saves are persisted eagerly by
// SaveDeferred, so the buffer is always empty.
func (sp *StorePool) Commit(_ context.Context) (bool, error) {
	return true, nil
}

var _ Pool = (*StorePool)(nil)
