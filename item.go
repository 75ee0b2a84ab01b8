package cache

import "time"

// now is replaceable in tests for deterministic expirations.
var now = time.Now

// Item is a single cache slot exchanged through the Pool contract.
//
// An item carries its key (fixed at construction), its value, a hit
// flag recording whether the key was present when the item was
// produced, and an optional absolute expiration time. The hit flag is
// decided by the producing pool and cannot be changed afterwards, so a
// consumer can trust IsHit on any item an adapter hands back.
//
// The mutating methods return the item to allow chaining:
//
//	item.Set(value).ExpiresAfter(5 * time.Minute)
//
// Items are not safe for concurrent mutation.
type Item struct {
	key       string
	value     any
	hit       bool
	expiresAt time.Time // zero means no expiration
}

// NewItem returns a miss item for the given key: no value, no
// expiration, IsHit false. This is what pools hand out for keys that
// are absent or expired.
func NewItem(key string) *Item {
	return &Item{key: key}
}

// NewHit returns a hit item carrying a value read from the underlying
// cache. Only pool implementations should construct hit items; a hit
// asserts that the value was actually present at read time.
func NewHit(key string, value any) *Item {
	return &Item{key: key, value: value, hit: true}
}

// Key returns the key the item was produced for.
func (it *Item) Key() string {
	return it.key
}

// Value returns the item's current value. For a hit item this is the
// value the cache held at read time; for a miss item it is nil until
// Set is called.
func (it *Item) Value() any {
	return it.value
}

// IsHit reports whether the key was present and unexpired when the
// item was produced.
func (it *Item) IsHit() bool {
	return it.hit
}

// Expiration returns the item's absolute expiration time and whether
// one is set.
func (it *Item) Expiration() (time.Time, bool) {
	return it.expiresAt, !it.expiresAt.IsZero()
}

// IsExpired reports whether the item carries an expiration time that
// has already passed. Items without an expiration never expire.
func (it *Item) IsExpired() bool {
	return !it.expiresAt.IsZero() && now().After(it.expiresAt)
}

// Set assigns the value to be persisted by Save.
func (it *Item) Set(value any) *Item {
	it.value = value
	return it
}

// ExpiresAt sets an absolute expiration time. The zero time clears the
// expiration, leaving the item valid forever.
func (it *Item) ExpiresAt(t time.Time) *Item {
	it.expiresAt = t
	return it
}

// ExpiresAfter sets the expiration to the given duration from now.
// Non-positive durations produce an already expired item, which Save
// persists with an immediate expiry.
func (it *Item) ExpiresAfter(d time.Duration) *Item {
	it.expiresAt = now().Add(d)
	return it
}
