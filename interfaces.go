package cache

import (
	"context"
	"time"
)

// NoExpiration is the TTL meaning a stored value never expires.
// It is the zero value of time.Duration, so omitting an explicit TTL
// and passing NoExpiration are equivalent.
const NoExpiration time.Duration = 0

// Store is the flat key-value cache contract.
//
// All operations report through a (bool, error) pair: the bool is the
// contract's success channel and is false when the underlying cache
// could not complete the operation, while the error is non-nil for
// contract violations (matching ErrInvalidArgument) or for unrelated
// failures passed through from the underlying implementation. When the
// error is non-nil the bool is always false.
//
// Keys must be non-empty and must not contain any of the reserved
// characters {}()/\@: which implementations may use for their own
// purposes. Malformed keys are rejected with ErrInvalidArgument before
// the underlying cache is consulted.
type Store interface {
	// Get fetches the value stored under key.
	// It returns def when the key is missing or expired. A stored nil
	// value is returned as nil, which a caller cannot distinguish from
	// a miss without also checking Has.
	Get(ctx context.Context, key string, def any) (any, error)

	// Set stores value under key, replacing any existing value.
	//
	// A ttl of NoExpiration stores the value without an expiration;
	// positive TTLs expire it relative to now. Negative TTLs are
	// rejected with ErrInvalidArgument.
	Set(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)

	// Delete removes the value stored under key.
	// It returns true when the key no longer exists afterwards, so
	// deleting an absent key succeeds.
	Delete(ctx context.Context, key string) (bool, error)

	// Clear removes every value from the cache.
	Clear(ctx context.Context) (bool, error)

	// GetMultiple fetches the values stored under keys.
	// The returned map has exactly one entry per requested key, with
	// def in place of every miss. An empty key list yields an empty
	// map.
	GetMultiple(ctx context.Context, keys []string, def any) (map[string]any, error)

	// SetMultiple stores every entry of values under its key, all with
	// the same ttl. Entries are stored individually in unspecified
	// order; a failed entry does not roll back the entries already
	// stored. It returns true only if every store succeeded.
	SetMultiple(ctx context.Context, values map[string]any, ttl time.Duration) (bool, error)

	// DeleteMultiple removes the values stored under keys.
	// It returns true when none of the keys exist afterwards.
	DeleteMultiple(ctx context.Context, keys []string) (bool, error)

	// Has reports whether key currently holds an unexpired value.
	//
	// The answer is a point-in-time snapshot: another writer may change
	// the key between Has and a subsequent Get. Use Get with a default
	// for read paths that must be race-free.
	Has(ctx context.Context, key string) (bool, error)
}

// Pool is the item-oriented cache contract.
//
// Callers retrieve Item objects with GetItem, inspect IsHit to learn
// whether the key was present, mutate the item through Set and the
// expiration setters, and persist it with Save. Items are plain data
// carriers; they hold no reference to the pool that produced them.
//
// Error and key conventions are the same as for Store.
type Pool interface {
	// GetItem fetches the item for key. The returned item is never nil
	// when the error is nil: a missing or expired key yields a miss
	// item (IsHit false, nil value) ready to be populated and saved.
	GetItem(ctx context.Context, key string) (*Item, error)

	// GetItems fetches the items for keys. The returned map has
	// exactly one item per requested key, misses included. An empty
	// key list yields an empty map without consulting the cache.
	GetItems(ctx context.Context, keys []string) (map[string]*Item, error)

	// HasItem reports whether key currently holds an unexpired value.
	// The same point-in-time caveat as Store.Has applies.
	HasItem(ctx context.Context, key string) (bool, error)

	// Clear removes every item from the pool, including deferred ones.
	Clear(ctx context.Context) (bool, error)

	// DeleteItem removes the item stored under key.
	// It returns true when the key no longer exists afterwards.
	DeleteItem(ctx context.Context, key string) (bool, error)

	// DeleteItems removes the items stored under keys.
	DeleteItems(ctx context.Context, keys []string) (bool, error)

	// Save persists the item immediately. An item whose expiration has
	// already passed is persisted with the smallest positive TTL so it
	// expires right away rather than erroring. A nil item is rejected
	// with ErrInvalidArgument.
	Save(ctx context.Context, item *Item) (bool, error)

	// SaveDeferred queues the item for persistence by a later Commit.
	// Implementations without a deferral buffer persist immediately.
	SaveDeferred(ctx context.Context, item *Item) (bool, error)

	// Commit persists all deferred items. It returns true when every
	// deferred item was persisted; implementations that persist
	// eagerly always have an empty buffer and return true.
	Commit(ctx context.Context) (bool, error)
}
