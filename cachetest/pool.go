package cachetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jmgilman/go/cache"
)

// getItem fetches an item and fails the test on error or a nil item.
func getItem(t *testing.T, p cache.Pool, key string) *cache.Item {
	t.Helper()

	item, err := p.GetItem(context.Background(), key)
	if err != nil {
		t.Fatalf("GetItem(%q): got error %v, want nil", key, err)
	}
	if item == nil {
		t.Fatalf("GetItem(%q): got nil item, want non-nil", key)
	}
	if item.Key() != key {
		t.Fatalf("GetItem(%q): item key %q, want %q", key, item.Key(), key)
	}
	return item
}

// save persists an item and fails the test on error or a false result.
func save(t *testing.T, p cache.Pool, item *cache.Item) {
	t.Helper()

	ok, err := p.Save(context.Background(), item)
	if err != nil {
		t.Fatalf("Save(%q): got error %v, want nil", item.Key(), err)
	}
	if !ok {
		t.Fatalf("Save(%q): got false, want true", item.Key())
	}
}

// testPoolGetItemMissing tests that an absent key yields a miss item.
func testPoolGetItemMissing(t *testing.T, p cache.Pool) {
	item := getItem(t, p, "pool.missing")

	if item.IsHit() {
		t.Error("IsHit: got true for absent key, want false")
	}
	if item.Value() != nil {
		t.Errorf("Value: got %v for absent key, want nil", item.Value())
	}
	if _, ok := item.Expiration(); ok {
		t.Error("Expiration: got set for absent key, want unset")
	}
}

// testPoolSaveGetItem tests the retrieve, populate, save, re-retrieve
// cycle.
func testPoolSaveGetItem(t *testing.T, p cache.Pool) {
	item := getItem(t, p, "pool.saveget")
	save(t, p, item.Set("stored"))

	item = getItem(t, p, "pool.saveget")
	if !item.IsHit() {
		t.Fatal("IsHit: got false after Save, want true")
	}
	if item.Value() != "stored" {
		t.Errorf("Value: got %v, want %q", item.Value(), "stored")
	}
}

// testPoolSaveOverwrite tests that saving again replaces the value.
func testPoolSaveOverwrite(t *testing.T, p cache.Pool) {
	save(t, p, getItem(t, p, "pool.overwrite").Set("first"))
	save(t, p, getItem(t, p, "pool.overwrite").Set("second"))

	item := getItem(t, p, "pool.overwrite")
	if !item.IsHit() {
		t.Fatal("IsHit: got false, want true")
	}
	if item.Value() != "second" {
		t.Errorf("Value: got %v, want %q", item.Value(), "second")
	}
}

// testPoolSaveNilValue tests that a saved nil value reads back as a
// hit.
func testPoolSaveNilValue(t *testing.T, p cache.Pool) {
	save(t, p, getItem(t, p, "pool.nil").Set(nil))

	item := getItem(t, p, "pool.nil")
	if !item.IsHit() {
		t.Error("IsHit: got false for stored nil, want true")
	}
	if item.Value() != nil {
		t.Errorf("Value: got %v, want nil", item.Value())
	}
}

// testPoolSaveWithExpiration tests that an expiring item is a hit
// before its deadline and a miss after.
func testPoolSaveWithExpiration(t *testing.T, p cache.Pool, config Config) {
	save(t, p, getItem(t, p, "pool.expiry").Set("gone-soon").ExpiresAfter(config.expiryTTL()))

	item := getItem(t, p, "pool.expiry")
	if !item.IsHit() {
		t.Fatal("IsHit: got false before expiry, want true")
	}

	time.Sleep(config.expiryWait())

	item = getItem(t, p, "pool.expiry")
	if item.IsHit() {
		t.Error("IsHit: got true after expiry, want false")
	}
	found, err := p.HasItem(context.Background(), "pool.expiry")
	if err != nil {
		t.Fatalf("HasItem: got error %v, want nil", err)
	}
	if found {
		t.Error("HasItem: got true after expiry, want false")
	}
}

// testPoolSavePastExpiration tests that saving an already expired item
// succeeds and leaves the key absent.
func testPoolSavePastExpiration(t *testing.T, p cache.Pool, config Config) {
	save(t, p, getItem(t, p, "pool.expired").Set("never-seen").ExpiresAfter(-time.Second))

	time.Sleep(config.expiryWait())

	item := getItem(t, p, "pool.expired")
	if item.IsHit() {
		t.Error("IsHit: got true for past expiration, want false")
	}
}

// testPoolSaveDeferredCommit tests that SaveDeferred persists and
// Commit reports success.
func testPoolSaveDeferredCommit(t *testing.T, p cache.Pool) {
	ctx := context.Background()

	ok, err := p.SaveDeferred(ctx, getItem(t, p, "pool.deferred").Set("queued"))
	if err != nil {
		t.Fatalf("SaveDeferred: got error %v, want nil", err)
	}
	if !ok {
		t.Fatal("SaveDeferred: got false, want true")
	}

	item := getItem(t, p, "pool.deferred")
	if !item.IsHit() {
		t.Error("IsHit: got false after SaveDeferred, want true")
	}
	if item.Value() != "queued" {
		t.Errorf("Value: got %v, want %q", item.Value(), "queued")
	}

	ok, err = p.Commit(ctx)
	if err != nil {
		t.Fatalf("Commit: got error %v, want nil", err)
	}
	if !ok {
		t.Error("Commit: got false, want true")
	}
}

// testPoolHasItem tests HasItem on present and absent keys.
func testPoolHasItem(t *testing.T, p cache.Pool) {
	ctx := context.Background()

	save(t, p, getItem(t, p, "pool.has").Set("v"))

	found, err := p.HasItem(ctx, "pool.has")
	if err != nil {
		t.Fatalf("HasItem: got error %v, want nil", err)
	}
	if !found {
		t.Error("HasItem: got false, want true")
	}

	found, err = p.HasItem(ctx, "pool.has.absent")
	if err != nil {
		t.Fatalf("HasItem(absent): got error %v, want nil", err)
	}
	if found {
		t.Error("HasItem(absent): got true, want false")
	}
}

// testPoolDeleteItem tests DeleteItem on present and absent keys.
func testPoolDeleteItem(t *testing.T, p cache.Pool) {
	ctx := context.Background()

	save(t, p, getItem(t, p, "pool.delete").Set("v"))

	ok, err := p.DeleteItem(ctx, "pool.delete")
	if err != nil {
		t.Fatalf("DeleteItem: got error %v, want nil", err)
	}
	if !ok {
		t.Error("DeleteItem: got false, want true")
	}

	item := getItem(t, p, "pool.delete")
	if item.IsHit() {
		t.Error("IsHit: got true after DeleteItem, want false")
	}

	ok, err = p.DeleteItem(ctx, "pool.delete")
	if err != nil {
		t.Fatalf("DeleteItem(absent): got error %v, want nil", err)
	}
	if !ok {
		t.Error("DeleteItem(absent): got false, want true")
	}
}

// testPoolDeleteItems tests DeleteItems across present and absent
// keys.
func testPoolDeleteItems(t *testing.T, p cache.Pool) {
	ctx := context.Background()

	save(t, p, getItem(t, p, "pool.delmulti.a").Set("va"))
	save(t, p, getItem(t, p, "pool.delmulti.b").Set("vb"))

	ok, err := p.DeleteItems(ctx, []string{"pool.delmulti.a", "pool.delmulti.b", "pool.delmulti.absent"})
	if err != nil {
		t.Fatalf("DeleteItems: got error %v, want nil", err)
	}
	if !ok {
		t.Error("DeleteItems: got false, want true")
	}

	for _, key := range []string{"pool.delmulti.a", "pool.delmulti.b"} {
		found, err := p.HasItem(ctx, key)
		if err != nil {
			t.Fatalf("HasItem(%q): got error %v, want nil", key, err)
		}
		if found {
			t.Errorf("HasItem(%q): got true after DeleteItems, want false", key)
		}
	}
}

// testPoolGetItems tests that GetItems returns one item per requested
// key, misses included.
func testPoolGetItems(t *testing.T, p cache.Pool) {
	ctx := context.Background()

	save(t, p, getItem(t, p, "pool.multi.a").Set("va"))
	save(t, p, getItem(t, p, "pool.multi.b").Set("vb"))

	items, err := p.GetItems(ctx, []string{"pool.multi.a", "pool.multi.b", "pool.multi.missing"})
	if err != nil {
		t.Fatalf("GetItems: got error %v, want nil", err)
	}
	if len(items) != 3 {
		t.Fatalf("GetItems: got %d items, want 3", len(items))
	}

	for key, want := range map[string]string{"pool.multi.a": "va", "pool.multi.b": "vb"} {
		item := items[key]
		if item == nil {
			t.Fatalf("GetItems[%q]: got nil item, want non-nil", key)
		}
		if item.Key() != key {
			t.Errorf("GetItems[%q]: item key %q, want %q", key, item.Key(), key)
		}
		if !item.IsHit() {
			t.Errorf("GetItems[%q]: IsHit false, want true", key)
		}
		if item.Value() != want {
			t.Errorf("GetItems[%q]: got %v, want %q", key, item.Value(), want)
		}
	}

	miss := items["pool.multi.missing"]
	if miss == nil {
		t.Fatal("GetItems[missing]: got nil item, want non-nil miss item")
	}
	if miss.IsHit() {
		t.Error("GetItems[missing]: IsHit true, want false")
	}
	if miss.Value() != nil {
		t.Errorf("GetItems[missing]: got %v, want nil", miss.Value())
	}
}

// testPoolGetItemsEmpty tests that an empty key list yields an empty
// map.
func testPoolGetItemsEmpty(t *testing.T, p cache.Pool) {
	items, err := p.GetItems(context.Background(), nil)
	if err != nil {
		t.Fatalf("GetItems(no keys): got error %v, want nil", err)
	}
	if len(items) != 0 {
		t.Errorf("GetItems(no keys): got %d items, want 0", len(items))
	}
}

// testPoolClear tests that Clear removes every item. Runs on its own
// pool so it cannot disturb the other subtests.
func testPoolClear(t *testing.T, p cache.Pool) {
	ctx := context.Background()

	save(t, p, getItem(t, p, "pool.clear.a").Set("va"))
	save(t, p, getItem(t, p, "pool.clear.b").Set("vb"))

	ok, err := p.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear: got error %v, want nil", err)
	}
	if !ok {
		t.Error("Clear: got false, want true")
	}

	for _, key := range []string{"pool.clear.a", "pool.clear.b"} {
		found, err := p.HasItem(ctx, key)
		if err != nil {
			t.Fatalf("HasItem(%q): got error %v, want nil", key, err)
		}
		if found {
			t.Errorf("HasItem(%q): got true after Clear, want false", key)
		}
	}
}

// testPoolInvalidArguments tests that malformed keys and nil items are
// rejected with ErrInvalidArgument.
func testPoolInvalidArguments(t *testing.T, p cache.Pool) {
	ctx := context.Background()

	for _, key := range []string{"", "bad{key", "bad:key", "bad@key", "bad/key"} {
		if _, err := p.GetItem(ctx, key); !errors.Is(err, cache.ErrInvalidArgument) {
			t.Errorf("GetItem(%q): got error %v, want ErrInvalidArgument", key, err)
		}
		if _, err := p.HasItem(ctx, key); !errors.Is(err, cache.ErrInvalidArgument) {
			t.Errorf("HasItem(%q): got error %v, want ErrInvalidArgument", key, err)
		}
		if _, err := p.DeleteItem(ctx, key); !errors.Is(err, cache.ErrInvalidArgument) {
			t.Errorf("DeleteItem(%q): got error %v, want ErrInvalidArgument", key, err)
		}
		if _, err := p.GetItems(ctx, []string{"pool.ok", key}); !errors.Is(err, cache.ErrInvalidArgument) {
			t.Errorf("GetItems(with %q): got error %v, want ErrInvalidArgument", key, err)
		}
		if _, err := p.DeleteItems(ctx, []string{"pool.ok", key}); !errors.Is(err, cache.ErrInvalidArgument) {
			t.Errorf("DeleteItems(with %q): got error %v, want ErrInvalidArgument", key, err)
		}
	}

	if _, err := p.Save(ctx, nil); !errors.Is(err, cache.ErrInvalidArgument) {
		t.Errorf("Save(nil): got error %v, want ErrInvalidArgument", err)
	}
}
