package cachetest

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/jmgilman/go/cache"
)

// testStoreGetMissing tests Get and Has on an absent key.
func testStoreGetMissing(t *testing.T, s cache.Store) {
	ctx := context.Background()

	value, err := s.Get(ctx, "store.missing", "fallback")
	if err != nil {
		t.Fatalf("Get(missing): got error %v, want nil", err)
	}
	if value != "fallback" {
		t.Errorf("Get(missing): got %v, want the default", value)
	}

	value, err = s.Get(ctx, "store.missing", nil)
	if err != nil {
		t.Fatalf("Get(missing, nil): got error %v, want nil", err)
	}
	if value != nil {
		t.Errorf("Get(missing, nil): got %v, want nil", value)
	}

	found, err := s.Has(ctx, "store.missing")
	if err != nil {
		t.Fatalf("Has(missing): got error %v, want nil", err)
	}
	if found {
		t.Error("Has(missing): got true, want false")
	}
}

// testStoreSetGet tests that a stored value is returned instead of the
// default.
func testStoreSetGet(t *testing.T, s cache.Store) {
	ctx := context.Background()

	ok, err := s.Set(ctx, "store.setget", "stored", cache.NoExpiration)
	if err != nil {
		t.Fatalf("Set: got error %v, want nil", err)
	}
	if !ok {
		t.Fatal("Set: got false, want true")
	}

	value, err := s.Get(ctx, "store.setget", "fallback")
	if err != nil {
		t.Fatalf("Get: got error %v, want nil", err)
	}
	if value != "stored" {
		t.Errorf("Get: got %v, want %q", value, "stored")
	}

	found, err := s.Has(ctx, "store.setget")
	if err != nil {
		t.Fatalf("Has: got error %v, want nil", err)
	}
	if !found {
		t.Error("Has: got false, want true")
	}
}

// testStoreSetOverwrite tests that Set replaces an existing value.
func testStoreSetOverwrite(t *testing.T, s cache.Store) {
	ctx := context.Background()

	if _, err := s.Set(ctx, "store.overwrite", "first", cache.NoExpiration); err != nil {
		t.Fatalf("Set(first): got error %v, want nil", err)
	}
	if _, err := s.Set(ctx, "store.overwrite", "second", cache.NoExpiration); err != nil {
		t.Fatalf("Set(second): got error %v, want nil", err)
	}

	value, err := s.Get(ctx, "store.overwrite", nil)
	if err != nil {
		t.Fatalf("Get: got error %v, want nil", err)
	}
	if value != "second" {
		t.Errorf("Get: got %v, want %q", value, "second")
	}
}

// testStoreSetNil tests that a stored nil is a hit, distinguishable
// from a miss only through Has.
func testStoreSetNil(t *testing.T, s cache.Store) {
	ctx := context.Background()

	if _, err := s.Set(ctx, "store.nil", nil, cache.NoExpiration); err != nil {
		t.Fatalf("Set(nil): got error %v, want nil", err)
	}

	value, err := s.Get(ctx, "store.nil", "fallback")
	if err != nil {
		t.Fatalf("Get: got error %v, want nil", err)
	}
	if value != nil {
		t.Errorf("Get: got %v, want the stored nil", value)
	}

	found, err := s.Has(ctx, "store.nil")
	if err != nil {
		t.Fatalf("Has: got error %v, want nil", err)
	}
	if !found {
		t.Error("Has: got false, want true")
	}
}

// testStoreValueFidelity tests that non-string values round-trip
// unchanged. Skipped for lossy (serializing) stores.
func testStoreValueFidelity(t *testing.T, s cache.Store, config Config) {
	if config.Lossy {
		t.Skip("Skipping value fidelity test - store serializes values")
		return
	}
	ctx := context.Background()

	values := map[string]any{
		"store.fidelity.int":    42,
		"store.fidelity.float":  3.5,
		"store.fidelity.bool":   true,
		"store.fidelity.slice":  []string{"a", "b"},
		"store.fidelity.map":    map[string]int{"n": 1},
		"store.fidelity.struct": struct{ Name string }{Name: "x"},
	}
	for key, want := range values {
		if _, err := s.Set(ctx, key, want, cache.NoExpiration); err != nil {
			t.Fatalf("Set(%q): got error %v, want nil", key, err)
		}
		got, err := s.Get(ctx, key, nil)
		if err != nil {
			t.Fatalf("Get(%q): got error %v, want nil", key, err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Get(%q): got %#v, want %#v", key, got, want)
		}
	}
}

// testStoreExpiry tests that a TTL'd value expires and that a
// NoExpiration value survives the same window.
func testStoreExpiry(t *testing.T, s cache.Store, config Config) {
	ctx := context.Background()
	ttl := config.expiryTTL()

	if _, err := s.Set(ctx, "store.expiry", "gone-soon", ttl); err != nil {
		t.Fatalf("Set(ttl): got error %v, want nil", err)
	}
	if _, err := s.Set(ctx, "store.expiry.keep", "kept", cache.NoExpiration); err != nil {
		t.Fatalf("Set(keep): got error %v, want nil", err)
	}

	value, err := s.Get(ctx, "store.expiry", nil)
	if err != nil {
		t.Fatalf("Get(before expiry): got error %v, want nil", err)
	}
	if value != "gone-soon" {
		t.Errorf("Get(before expiry): got %v, want %q", value, "gone-soon")
	}

	time.Sleep(config.expiryWait())

	value, err = s.Get(ctx, "store.expiry", "fallback")
	if err != nil {
		t.Fatalf("Get(after expiry): got error %v, want nil", err)
	}
	if value != "fallback" {
		t.Errorf("Get(after expiry): got %v, want the default", value)
	}
	found, err := s.Has(ctx, "store.expiry")
	if err != nil {
		t.Fatalf("Has(after expiry): got error %v, want nil", err)
	}
	if found {
		t.Error("Has(after expiry): got true, want false")
	}

	value, err = s.Get(ctx, "store.expiry.keep", nil)
	if err != nil {
		t.Fatalf("Get(keep): got error %v, want nil", err)
	}
	if value != "kept" {
		t.Errorf("Get(keep): got %v, want %q", value, "kept")
	}
}

// testStoreDelete tests Delete on present and absent keys.
func testStoreDelete(t *testing.T, s cache.Store) {
	ctx := context.Background()

	if _, err := s.Set(ctx, "store.delete", "v", cache.NoExpiration); err != nil {
		t.Fatalf("Set: got error %v, want nil", err)
	}

	ok, err := s.Delete(ctx, "store.delete")
	if err != nil {
		t.Fatalf("Delete: got error %v, want nil", err)
	}
	if !ok {
		t.Error("Delete: got false, want true")
	}

	found, err := s.Has(ctx, "store.delete")
	if err != nil {
		t.Fatalf("Has(after delete): got error %v, want nil", err)
	}
	if found {
		t.Error("Has(after delete): got true, want false")
	}

	// Deleting an absent key still succeeds.
	ok, err = s.Delete(ctx, "store.delete")
	if err != nil {
		t.Fatalf("Delete(absent): got error %v, want nil", err)
	}
	if !ok {
		t.Error("Delete(absent): got false, want true")
	}
}

// testStoreClear tests that Clear removes every value. Runs on its
// own store so it cannot disturb the other subtests.
func testStoreClear(t *testing.T, s cache.Store) {
	ctx := context.Background()

	for _, key := range []string{"store.clear.a", "store.clear.b"} {
		if _, err := s.Set(ctx, key, "v", cache.NoExpiration); err != nil {
			t.Fatalf("Set(%q): got error %v, want nil", key, err)
		}
	}

	ok, err := s.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear: got error %v, want nil", err)
	}
	if !ok {
		t.Error("Clear: got false, want true")
	}

	for _, key := range []string{"store.clear.a", "store.clear.b"} {
		found, err := s.Has(ctx, key)
		if err != nil {
			t.Fatalf("Has(%q): got error %v, want nil", key, err)
		}
		if found {
			t.Errorf("Has(%q): got true after Clear, want false", key)
		}
	}
}

// testStoreGetMultiple tests that GetMultiple returns one entry per
// requested key with defaults for misses.
func testStoreGetMultiple(t *testing.T, s cache.Store) {
	ctx := context.Background()

	if _, err := s.Set(ctx, "store.multi.a", "va", cache.NoExpiration); err != nil {
		t.Fatalf("Set(a): got error %v, want nil", err)
	}
	if _, err := s.Set(ctx, "store.multi.b", "vb", cache.NoExpiration); err != nil {
		t.Fatalf("Set(b): got error %v, want nil", err)
	}

	values, err := s.GetMultiple(ctx, []string{"store.multi.a", "store.multi.b", "store.multi.missing"}, "fallback")
	if err != nil {
		t.Fatalf("GetMultiple: got error %v, want nil", err)
	}
	if len(values) != 3 {
		t.Fatalf("GetMultiple: got %d entries, want 3", len(values))
	}
	if values["store.multi.a"] != "va" {
		t.Errorf("GetMultiple[a]: got %v, want %q", values["store.multi.a"], "va")
	}
	if values["store.multi.b"] != "vb" {
		t.Errorf("GetMultiple[b]: got %v, want %q", values["store.multi.b"], "vb")
	}
	if values["store.multi.missing"] != "fallback" {
		t.Errorf("GetMultiple[missing]: got %v, want the default", values["store.multi.missing"])
	}

	empty, err := s.GetMultiple(ctx, nil, "fallback")
	if err != nil {
		t.Fatalf("GetMultiple(no keys): got error %v, want nil", err)
	}
	if len(empty) != 0 {
		t.Errorf("GetMultiple(no keys): got %d entries, want 0", len(empty))
	}
}

// testStoreSetMultiple tests that SetMultiple stores every entry.
func testStoreSetMultiple(t *testing.T, s cache.Store) {
	ctx := context.Background()

	ok, err := s.SetMultiple(ctx, map[string]any{
		"store.setmulti.a": "va",
		"store.setmulti.b": "vb",
	}, cache.NoExpiration)
	if err != nil {
		t.Fatalf("SetMultiple: got error %v, want nil", err)
	}
	if !ok {
		t.Fatal("SetMultiple: got false, want true")
	}

	for key, want := range map[string]string{"store.setmulti.a": "va", "store.setmulti.b": "vb"} {
		value, err := s.Get(ctx, key, nil)
		if err != nil {
			t.Fatalf("Get(%q): got error %v, want nil", key, err)
		}
		if value != want {
			t.Errorf("Get(%q): got %v, want %q", key, value, want)
		}
	}

	// An empty input is a successful no-op.
	ok, err = s.SetMultiple(ctx, nil, cache.NoExpiration)
	if err != nil {
		t.Fatalf("SetMultiple(empty): got error %v, want nil", err)
	}
	if !ok {
		t.Error("SetMultiple(empty): got false, want true")
	}
}

// testStoreDeleteMultiple tests that DeleteMultiple removes every key.
func testStoreDeleteMultiple(t *testing.T, s cache.Store) {
	ctx := context.Background()

	for _, key := range []string{"store.delmulti.a", "store.delmulti.b"} {
		if _, err := s.Set(ctx, key, "v", cache.NoExpiration); err != nil {
			t.Fatalf("Set(%q): got error %v, want nil", key, err)
		}
	}

	ok, err := s.DeleteMultiple(ctx, []string{"store.delmulti.a", "store.delmulti.b", "store.delmulti.absent"})
	if err != nil {
		t.Fatalf("DeleteMultiple: got error %v, want nil", err)
	}
	if !ok {
		t.Error("DeleteMultiple: got false, want true")
	}

	for _, key := range []string{"store.delmulti.a", "store.delmulti.b"} {
		found, err := s.Has(ctx, key)
		if err != nil {
			t.Fatalf("Has(%q): got error %v, want nil", key, err)
		}
		if found {
			t.Errorf("Has(%q): got true after DeleteMultiple, want false", key)
		}
	}
}

// testStoreHas tests Has on present and absent keys.
func testStoreHas(t *testing.T, s cache.Store) {
	ctx := context.Background()

	if _, err := s.Set(ctx, "store.has", "v", cache.NoExpiration); err != nil {
		t.Fatalf("Set: got error %v, want nil", err)
	}

	found, err := s.Has(ctx, "store.has")
	if err != nil {
		t.Fatalf("Has: got error %v, want nil", err)
	}
	if !found {
		t.Error("Has: got false, want true")
	}

	found, err = s.Has(ctx, "store.has.absent")
	if err != nil {
		t.Fatalf("Has(absent): got error %v, want nil", err)
	}
	if found {
		t.Error("Has(absent): got true, want false")
	}
}

// testStoreInvalidKeys tests that malformed keys are rejected with
// ErrInvalidArgument on every operation that takes a key.
func testStoreInvalidKeys(t *testing.T, s cache.Store) {
	ctx := context.Background()

	for _, key := range []string{"", "bad{key", "bad}key", "bad(key", "bad)key", "bad/key", `bad\key`, "bad@key", "bad:key"} {
		if _, err := s.Get(ctx, key, nil); !errors.Is(err, cache.ErrInvalidArgument) {
			t.Errorf("Get(%q): got error %v, want ErrInvalidArgument", key, err)
		}
		if _, err := s.Set(ctx, key, "v", cache.NoExpiration); !errors.Is(err, cache.ErrInvalidArgument) {
			t.Errorf("Set(%q): got error %v, want ErrInvalidArgument", key, err)
		}
		if _, err := s.Delete(ctx, key); !errors.Is(err, cache.ErrInvalidArgument) {
			t.Errorf("Delete(%q): got error %v, want ErrInvalidArgument", key, err)
		}
		if _, err := s.Has(ctx, key); !errors.Is(err, cache.ErrInvalidArgument) {
			t.Errorf("Has(%q): got error %v, want ErrInvalidArgument", key, err)
		}
		if _, err := s.GetMultiple(ctx, []string{"store.ok", key}, nil); !errors.Is(err, cache.ErrInvalidArgument) {
			t.Errorf("GetMultiple(with %q): got error %v, want ErrInvalidArgument", key, err)
		}
		if _, err := s.SetMultiple(ctx, map[string]any{key: "v"}, cache.NoExpiration); !errors.Is(err, cache.ErrInvalidArgument) {
			t.Errorf("SetMultiple(with %q): got error %v, want ErrInvalidArgument", key, err)
		}
		if _, err := s.DeleteMultiple(ctx, []string{"store.ok", key}); !errors.Is(err, cache.ErrInvalidArgument) {
			t.Errorf("DeleteMultiple(with %q): got error %v, want ErrInvalidArgument", key, err)
		}
	}
}

// testStoreNegativeTTL tests that negative TTLs are rejected with
// ErrInvalidArgument and nothing is stored.
func testStoreNegativeTTL(t *testing.T, s cache.Store) {
	ctx := context.Background()

	if _, err := s.Set(ctx, "store.negttl", "v", -time.Second); !errors.Is(err, cache.ErrInvalidArgument) {
		t.Errorf("Set(negative ttl): got error %v, want ErrInvalidArgument", err)
	}
	found, err := s.Has(ctx, "store.negttl")
	if err != nil {
		t.Fatalf("Has: got error %v, want nil", err)
	}
	if found {
		t.Error("Has: got true after rejected Set, want false")
	}

	if _, err := s.SetMultiple(ctx, map[string]any{"store.negttl": "v"}, -time.Second); !errors.Is(err, cache.ErrInvalidArgument) {
		t.Errorf("SetMultiple(negative ttl): got error %v, want ErrInvalidArgument", err)
	}
}
