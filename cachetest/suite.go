// Package cachetest provides a conformance test suite for validating
// cache implementations against the Store and Pool contracts.
//
// This package contains test functions that can be imported and
// executed by store implementation packages to verify they honor the
// contracts: default handling on misses, TTL conventions, bulk
// operation shapes, and invalid argument rejection.
//
// The suite validates contract behavior, not backend specifics.
// Backends differ in value fidelity and expiration granularity, and
// the Config type adapts the tests to those documented differences.
//
// Example usage:
//
//	func TestConformance(t *testing.T) {
//	    cachetest.TestStore(t, func() cache.Store {
//	        return myprovider.New()
//	    })
//	}
package cachetest

import (
	"testing"
	"time"

	"github.com/jmgilman/go/cache"
)

// Config configures the test suite to match cache behavior
// characteristics.
type Config struct {
	// Lossy indicates values do not round-trip with full type
	// fidelity (e.g., JSON-serializing backends return numbers as
	// float64). When true, value fidelity tests are skipped and the
	// remaining tests restrict themselves to string values.
	Lossy bool

	// TTLGranularity is the smallest expiration step the backend
	// honors (one second for Memcached). Expiry tests pick TTLs and
	// waits at this granularity. Zero means sub-second TTLs are
	// honored.
	TTLGranularity time.Duration

	// SkipTests lists specific test names to skip (for edge cases).
	// Format: the subtest name (e.g., "Expiry").
	SkipTests []string
}

// MemoryConfig returns configuration for in-process stores that keep
// values with full type fidelity and honor sub-second TTLs.
func MemoryConfig() Config {
	return Config{}
}

// RemoteConfig returns configuration for stores that serialize values
// over the wire (Redis, Memcached).
func RemoteConfig() Config {
	return Config{Lossy: true}
}

// expiryTTL returns the TTL used by expiration tests.
func (c Config) expiryTTL() time.Duration {
	if c.TTLGranularity > 0 {
		return c.TTLGranularity
	}
	return 50 * time.Millisecond
}

// expiryWait returns how long expiration tests wait before asserting
// that an entry is gone.
func (c Config) expiryWait() time.Duration {
	return 2*c.expiryTTL() + 100*time.Millisecond
}

// shouldSkip reports whether a subtest is listed in SkipTests.
func (c Config) shouldSkip(name string) bool {
	for _, skip := range c.SkipTests {
		if skip == name {
			return true
		}
	}
	return false
}

// run wraps t.Run with SkipTests handling.
func run(t *testing.T, config Config, name string, test func(t *testing.T)) {
	t.Run(name, func(t *testing.T) {
		if config.shouldSkip(name) {
			t.Skip("Skipped by provider configuration")
			return
		}
		test(t)
	})
}

// TestStore runs all Store conformance tests against a fresh store.
// The newStore function should return a store backed by an empty
// cache; tests create and remove values, so each invocation should
// start clean. Uses MemoryConfig() by default.
func TestStore(t *testing.T, newStore func() cache.Store) {
	TestStoreWithConfig(t, newStore, MemoryConfig())
}

// TestStoreWithConfig runs Store conformance tests with behavior
// configuration.
func TestStoreWithConfig(t *testing.T, newStore func() cache.Store, config Config) {
	s := newStore()

	run(t, config, "GetMissing", func(t *testing.T) { testStoreGetMissing(t, s) })
	run(t, config, "SetGet", func(t *testing.T) { testStoreSetGet(t, s) })
	run(t, config, "SetOverwrite", func(t *testing.T) { testStoreSetOverwrite(t, s) })
	run(t, config, "SetNil", func(t *testing.T) { testStoreSetNil(t, s) })
	run(t, config, "ValueFidelity", func(t *testing.T) { testStoreValueFidelity(t, s, config) })
	run(t, config, "Expiry", func(t *testing.T) { testStoreExpiry(t, s, config) })
	run(t, config, "Delete", func(t *testing.T) { testStoreDelete(t, s) })
	run(t, config, "Clear", func(t *testing.T) { testStoreClear(t, newStore()) })
	run(t, config, "GetMultiple", func(t *testing.T) { testStoreGetMultiple(t, s) })
	run(t, config, "SetMultiple", func(t *testing.T) { testStoreSetMultiple(t, s) })
	run(t, config, "DeleteMultiple", func(t *testing.T) { testStoreDeleteMultiple(t, s) })
	run(t, config, "Has", func(t *testing.T) { testStoreHas(t, s) })
	run(t, config, "InvalidKeys", func(t *testing.T) { testStoreInvalidKeys(t, s) })
	run(t, config, "NegativeTTL", func(t *testing.T) { testStoreNegativeTTL(t, s) })
}

// TestPool runs all Pool conformance tests against a fresh pool.
// The newPool function should return a pool backed by an empty cache.
// Uses MemoryConfig() by default.
func TestPool(t *testing.T, newPool func() cache.Pool) {
	TestPoolWithConfig(t, newPool, MemoryConfig())
}

// TestPoolWithConfig runs Pool conformance tests with behavior
// configuration.
func TestPoolWithConfig(t *testing.T, newPool func() cache.Pool, config Config) {
	p := newPool()

	run(t, config, "GetItemMissing", func(t *testing.T) { testPoolGetItemMissing(t, p) })
	run(t, config, "SaveGetItem", func(t *testing.T) { testPoolSaveGetItem(t, p) })
	run(t, config, "SaveOverwrite", func(t *testing.T) { testPoolSaveOverwrite(t, p) })
	run(t, config, "SaveNilValue", func(t *testing.T) { testPoolSaveNilValue(t, p) })
	run(t, config, "SaveWithExpiration", func(t *testing.T) { testPoolSaveWithExpiration(t, p, config) })
	run(t, config, "SavePastExpiration", func(t *testing.T) { testPoolSavePastExpiration(t, p, config) })
	run(t, config, "SaveDeferredCommit", func(t *testing.T) { testPoolSaveDeferredCommit(t, p) })
	run(t, config, "HasItem", func(t *testing.T) { testPoolHasItem(t, p) })
	run(t, config, "DeleteItem", func(t *testing.T) { testPoolDeleteItem(t, p) })
	run(t, config, "DeleteItems", func(t *testing.T) { testPoolDeleteItems(t, p) })
	run(t, config, "GetItems", func(t *testing.T) { testPoolGetItems(t, p) })
	run(t, config, "GetItemsEmpty", func(t *testing.T) { testPoolGetItemsEmpty(t, p) })
	run(t, config, "Clear", func(t *testing.T) { testPoolClear(t, newPool()) })
	run(t, config, "InvalidArguments", func(t *testing.T) { testPoolInvalidArguments(t, p) })
}
