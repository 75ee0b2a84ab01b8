package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPoolStorePanicsOnNil(t *testing.T) {
	assert.Panics(t, func() { NewPoolStore(nil) })
}

func TestPoolStoreUnwrap(t *testing.T) {
	pool := newFakePool()
	store := NewPoolStore(pool)

	assert.Same(t, pool, store.Unwrap())
}

func TestPoolStoreGet(t *testing.T) {
	ctx := context.Background()
	pool := newFakePool()
	pool.entries["user.1"] = fakeEntry{value: "alice"}
	pool.entries["user.2"] = fakeEntry{value: nil}
	store := NewPoolStore(pool)

	tests := []struct {
		name string
		key  string
		def  any
		want any
	}{
		{
			name: "hit",
			key:  "user.1",
			def:  "fallback",
			want: "alice",
		},
		{
			name: "stored nil is a hit",
			key:  "user.2",
			def:  "fallback",
			want: nil,
		},
		{
			name: "miss returns default",
			key:  "user.3",
			def:  "fallback",
			want: "fallback",
		},
		{
			name: "miss with nil default",
			key:  "user.3",
			def:  nil,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.Get(ctx, tt.key, tt.def)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPoolStoreGetExpired(t *testing.T) {
	ctx := context.Background()
	pool := newFakePool()
	pool.entries["user.1"] = fakeEntry{value: "alice", expiresAt: time.Now().Add(-time.Minute)}
	store := NewPoolStore(pool)

	got, err := store.Get(ctx, "user.1", "fallback")

	require.NoError(t, err)
	assert.Equal(t, "fallback", got)
}

func TestPoolStoreGetInvalidKey(t *testing.T) {
	ctx := context.Background()
	pool := newFakePool()
	store := NewPoolStore(pool)

	tests := []struct {
		name string
		key  string
	}{
		{name: "empty", key: ""},
		{name: "brace", key: "user{1}"},
		{name: "slash", key: "user/1"},
		{name: "colon", key: "user:1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.Get(ctx, tt.key, nil)

			require.ErrorIs(t, err, ErrInvalidArgument)
			var argErr *ArgumentError
			require.ErrorAs(t, err, &argErr)
			assert.Equal(t, "get", argErr.Op)
			assert.Equal(t, 0, pool.callCount("getitem"), "invalid keys must not reach the pool")
		})
	}
}

func TestPoolStoreSet(t *testing.T) {
	ctx := context.Background()
	pool := newFakePool()
	store := NewPoolStore(pool)

	ok, err := store.Set(ctx, "user.1", "alice", time.Minute)

	require.NoError(t, err)
	assert.True(t, ok)

	entry, found := pool.entry("user.1")
	require.True(t, found)
	assert.Equal(t, "alice", entry.value)
	assert.WithinDuration(t, time.Now().Add(time.Minute), entry.expiresAt, time.Second)
}

func TestPoolStoreSetNoExpiration(t *testing.T) {
	ctx := context.Background()
	pool := newFakePool()
	store := NewPoolStore(pool)

	ok, err := store.Set(ctx, "user.1", "alice", NoExpiration)

	require.NoError(t, err)
	assert.True(t, ok)

	entry, found := pool.entry("user.1")
	require.True(t, found)
	assert.True(t, entry.expiresAt.IsZero())
}

func TestPoolStoreSetOverwritesExpiration(t *testing.T) {
	ctx := context.Background()
	pool := newFakePool()
	pool.entries["user.1"] = fakeEntry{value: "alice", expiresAt: time.Now().Add(time.Hour)}
	store := NewPoolStore(pool)

	// Storing without a TTL must clear the previous deadline, not
	// inherit it through the fetched item.
	ok, err := store.Set(ctx, "user.1", "bob", NoExpiration)

	require.NoError(t, err)
	assert.True(t, ok)

	entry, found := pool.entry("user.1")
	require.True(t, found)
	assert.Equal(t, "bob", entry.value)
	assert.True(t, entry.expiresAt.IsZero())
}

func TestPoolStoreSetNegativeTTL(t *testing.T) {
	ctx := context.Background()
	pool := newFakePool()
	store := NewPoolStore(pool)

	ok, err := store.Set(ctx, "user.1", "alice", -time.Second)

	assert.False(t, ok)
	require.ErrorIs(t, err, ErrInvalidArgument)
	assert.Equal(t, 0, pool.callCount("save"), "rejected writes must not reach the pool")
}

func TestPoolStoreSetSaveFails(t *testing.T) {
	ctx := context.Background()
	pool := newFakePool()
	pool.failing["user.1"] = true
	store := NewPoolStore(pool)

	ok, err := store.Set(ctx, "user.1", "alice", NoExpiration)

	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPoolStoreDelete(t *testing.T) {
	ctx := context.Background()
	pool := newFakePool()
	pool.entries["user.1"] = fakeEntry{value: "alice"}
	store := NewPoolStore(pool)

	ok, err := store.Delete(ctx, "user.1")

	require.NoError(t, err)
	assert.True(t, ok)
	_, found := pool.entry("user.1")
	assert.False(t, found)
}

func TestPoolStoreDeleteAbsent(t *testing.T) {
	ctx := context.Background()
	store := NewPoolStore(newFakePool())

	ok, err := store.Delete(ctx, "user.1")

	require.NoError(t, err)
	assert.True(t, ok, "deleting an absent key succeeds")
}

func TestPoolStoreClear(t *testing.T) {
	ctx := context.Background()
	pool := newFakePool()
	pool.entries["user.1"] = fakeEntry{value: "alice"}
	pool.entries["user.2"] = fakeEntry{value: "bob"}
	store := NewPoolStore(pool)

	ok, err := store.Clear(ctx)

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, pool.entries)
}

func TestPoolStoreGetMultiple(t *testing.T) {
	ctx := context.Background()
	pool := newFakePool()
	pool.entries["user.1"] = fakeEntry{value: "alice"}
	pool.entries["user.3"] = fakeEntry{value: "carol"}
	store := NewPoolStore(pool)

	values, err := store.GetMultiple(ctx, []string{"user.1", "user.2", "user.3"}, "fallback")

	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"user.1": "alice",
		"user.2": "fallback",
		"user.3": "carol",
	}, values)
	assert.Equal(t, 1, pool.callCount("getitems"), "lookups must be batched")
	assert.Equal(t, 0, pool.callCount("getitem"))
}

func TestPoolStoreGetMultipleEmpty(t *testing.T) {
	ctx := context.Background()
	store := NewPoolStore(newFakePool())

	values, err := store.GetMultiple(ctx, nil, "fallback")

	require.NoError(t, err)
	assert.Empty(t, values)
}

func TestPoolStoreGetMultipleInvalidKey(t *testing.T) {
	ctx := context.Background()
	pool := newFakePool()
	store := NewPoolStore(pool)

	_, err := store.GetMultiple(ctx, []string{"user.1", "bad{key"}, nil)

	require.ErrorIs(t, err, ErrInvalidArgument)
	var argErr *ArgumentError
	require.ErrorAs(t, err, &argErr)
	assert.Equal(t, "getmultiple", argErr.Op)
	assert.Equal(t, 0, pool.callCount("getitems"))
}

func TestPoolStoreSetMultiple(t *testing.T) {
	ctx := context.Background()
	pool := newFakePool()
	store := NewPoolStore(pool)

	ok, err := store.SetMultiple(ctx, map[string]any{
		"user.1": "alice",
		"user.2": "bob",
	}, time.Minute)

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, pool.callCount("getitems"), "items must be fetched in one batch")
	assert.Equal(t, 2, pool.callCount("save"))

	for key, want := range map[string]any{"user.1": "alice", "user.2": "bob"} {
		entry, found := pool.entry(key)
		require.True(t, found, key)
		assert.Equal(t, want, entry.value)
		assert.WithinDuration(t, time.Now().Add(time.Minute), entry.expiresAt, time.Second)
	}
}

func TestPoolStoreSetMultipleContinuesPastFailure(t *testing.T) {
	ctx := context.Background()
	pool := newFakePool()
	pool.failing["user.2"] = true
	store := NewPoolStore(pool)

	ok, err := store.SetMultiple(ctx, map[string]any{
		"user.1": "alice",
		"user.2": "bob",
		"user.3": "carol",
	}, NoExpiration)

	require.NoError(t, err)
	assert.False(t, ok, "one failed save fails the whole call")
	assert.Equal(t, 3, pool.callCount("save"), "a failed save must not stop the rest")

	_, found := pool.entry("user.2")
	assert.False(t, found)
	for _, key := range []string{"user.1", "user.3"} {
		_, found := pool.entry(key)
		assert.True(t, found, "saved entries are not rolled back")
	}
}

func TestPoolStoreSetMultipleInvalidKey(t *testing.T) {
	ctx := context.Background()
	pool := newFakePool()
	store := NewPoolStore(pool)

	ok, err := store.SetMultiple(ctx, map[string]any{
		"user.1":  "alice",
		"bad{key": "bob",
	}, NoExpiration)

	assert.False(t, ok)
	require.ErrorIs(t, err, ErrInvalidArgument)
	assert.Equal(t, 0, pool.callCount("save"), "validation happens before any write")
}

func TestPoolStoreSetMultipleNegativeTTL(t *testing.T) {
	ctx := context.Background()
	pool := newFakePool()
	store := NewPoolStore(pool)

	ok, err := store.SetMultiple(ctx, map[string]any{"user.1": "alice"}, -time.Second)

	assert.False(t, ok)
	require.ErrorIs(t, err, ErrInvalidArgument)
	assert.Equal(t, 0, pool.callCount("save"))
}

func TestPoolStoreSetMultipleEmpty(t *testing.T) {
	ctx := context.Background()
	store := NewPoolStore(newFakePool())

	ok, err := store.SetMultiple(ctx, map[string]any{}, NoExpiration)

	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPoolStoreDeleteMultiple(t *testing.T) {
	ctx := context.Background()
	pool := newFakePool()
	pool.entries["user.1"] = fakeEntry{value: "alice"}
	pool.entries["user.2"] = fakeEntry{value: "bob"}
	store := NewPoolStore(pool)

	ok, err := store.DeleteMultiple(ctx, []string{"user.1", "user.2", "user.3"})

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, pool.entries)
	assert.Equal(t, 1, pool.callCount("deleteitems"), "deletes must be batched")
}

func TestPoolStoreHas(t *testing.T) {
	ctx := context.Background()
	pool := newFakePool()
	pool.entries["user.1"] = fakeEntry{value: "alice"}
	store := NewPoolStore(pool)

	ok, err := store.Has(ctx, "user.1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Has(ctx, "user.2")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPoolStoreTranslatesPoolErrors(t *testing.T) {
	ctx := context.Background()
	pool := newFakePool()
	pool.err = NewArgumentError("getitem", "user.1", errors.New("key is empty"))
	store := NewPoolStore(pool)

	_, err := store.Get(ctx, "user.1", nil)

	require.ErrorIs(t, err, ErrInvalidArgument)
	var argErr *ArgumentError
	require.ErrorAs(t, err, &argErr)
	assert.Equal(t, "get", argErr.Op, "pool errors surface under the store operation name")
}

func TestPoolStorePassesThroughOtherErrors(t *testing.T) {
	ctx := context.Background()
	pool := newFakePool()
	pool.err = errors.New("backend down")
	store := NewPoolStore(pool)

	_, err := store.Get(ctx, "user.1", nil)

	require.Error(t, err)
	assert.Same(t, pool.err, err, "non-contract errors pass through unchanged")
}
