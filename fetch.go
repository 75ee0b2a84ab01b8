package cache

import (
	"context"
	"reflect"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jmgilman/go/cache/internal/validate"
)

// flightKey identifies one coalescing domain: a store and the type
// fetched through it.
type flightKey struct {
	store Store
	typ   reflect.Type
}

// flights maps each store and fetched type to its own singleflight
// group, so a load is joined only by fetches against the same store
// for the same type and key. Groups are retained for the life of the
// process.
var flights sync.Map

func flightsFor(store Store, typ reflect.Type) *singleflight.Group {
	key := flightKey{store: store, typ: typ}
	if group, ok := flights.Load(key); ok {
		return group.(*singleflight.Group)
	}
	group, _ := flights.LoadOrStore(key, new(singleflight.Group))
	return group.(*singleflight.Group)
}

// Fetch returns the value stored under key, loading and caching it on
// a miss. Concurrent fetches of the same type through the same store
// share a single load call per key and receive the same result;
// fetches of another type, or through another store, load
// independently.
//
// A cached value is returned only when it type-asserts to T; values of
// any other type (including nil) count as misses and are reloaded.
// Stores that serialize values lose type fidelity, so callers of such
// stores should fetch the types the store round-trips.
//
// The loaded value is cached best effort: a failed Set does not
// discard a successfully loaded value.
func Fetch[T any](ctx context.Context, store Store, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	var zero T
	if err := validate.TTL(ttl); err != nil {
		return zero, NewArgumentError("fetch", key, err)
	}
	value, err := store.Get(ctx, key, nil)
	if err != nil {
		return zero, translateErr("fetch", key, err)
	}
	if typed, ok := value.(T); ok {
		return typed, nil
	}

	group := flightsFor(store, reflect.TypeFor[T]())
	loaded, err, _ := group.Do(key, func() (any, error) {
		value, err := load(ctx)
		if err != nil {
			return nil, err
		}
		_, _ = store.Set(ctx, key, value, ttl)
		return value, nil
	})
	if err != nil {
		return zero, err
	}
	if loaded == nil {
		// Only an interface-typed T can load a nil value, and zero
		// already is that nil.
		return zero, nil
	}
	// The flight is scoped to T, so the boxed value always asserts.
	return loaded.(T), nil
}
