// Package cache provides two cache access contracts and bidirectional
// adapters between them.
//
// The Store interface is a flat key-value contract: get and set values
// directly, with caller-supplied defaults for misses and optional bulk
// operations. The Pool interface is an item-oriented contract: retrieve
// Item objects that carry their own key, value, hit-state, and
// expiration, mutate them, and hand them back to be saved.
//
// Code written against either contract can run on top of an
// implementation of the other:
//
//   - PoolStore presents any Pool as a Store.
//   - StorePool presents any Store as a Pool.
//
// Both adapters are pure translation layers. They keep no state of
// their own, add no caching, and delegate every operation to the
// wrapped implementation; eviction, persistence, and concurrency
// behavior are whatever the underlying implementation provides.
//
// # TTL Convention
//
// Expirations are expressed as time.Duration values. NoExpiration (the
// zero value) means a stored value never expires, positive durations
// expire the value relative to the time of the write, and negative
// durations are rejected as ErrInvalidArgument.
//
// # Error Handling
//
// Contract violations (empty keys, keys containing reserved
// characters, negative TTLs, a nil item passed to Save) surface as
// *ArgumentError values matching ErrInvalidArgument:
//
//	if errors.Is(err, cache.ErrInvalidArgument) {
//	    // caller bug: fix the key or TTL
//	}
//
// Operational failures reported by the underlying implementation
// surface through each operation's bool result; unrelated errors pass
// through unchanged.
//
// # Usage Example
//
//	store, err := redis.New(redis.Config{Addr: "localhost:6379"})
//	if err != nil {
//	    return err
//	}
//
//	// Consume the Redis store through the item-oriented contract.
//	pool := cache.NewStorePool(store)
//	item, err := pool.GetItem(ctx, "greeting")
//	if err != nil {
//	    return err
//	}
//	if !item.IsHit() {
//	    item.Set("hello").ExpiresAfter(time.Minute)
//	    if _, err := pool.Save(ctx, item); err != nil {
//	        return err
//	    }
//	}
//
// # Store Implementations
//
// Concrete Store implementations are provided by subpackages, each a
// thin adapter over a third-party cache engine:
//
//   - github.com/jmgilman/go/cache/memory - patrickmn/go-cache backed, in-process
//   - github.com/jmgilman/go/cache/redis - Redis backed via go-redis
//   - github.com/jmgilman/go/cache/memcache - Memcached backed via gomemcache
//
// The cachetest subpackage provides a conformance suite for validating
// any Store or Pool implementation against the contracts.
package cache
