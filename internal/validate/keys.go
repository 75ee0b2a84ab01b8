// Package validate provides cache key and TTL validation shared by the
// adapters and the store implementations.
package validate

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ReservedKeyChars are the characters forbidden in cache keys by both
// contracts. Implementations may claim them for future extensions, so
// keys containing any of them are rejected up front.
const ReservedKeyChars = `{}()/\@:`

// Key checks a single cache key.
// A legal key is a non-empty string containing none of ReservedKeyChars.
func Key(key string) error {
	if key == "" {
		return errors.New("key is empty")
	}
	if i := strings.IndexAny(key, ReservedKeyChars); i >= 0 {
		return fmt.Errorf("key %q contains reserved character %q", key, key[i])
	}
	return nil
}

// Keys checks every key in order and returns the first violation.
func Keys(keys []string) error {
	for _, k := range keys {
		if err := Key(k); err != nil {
			return err
		}
	}
	return nil
}

// TTL checks a relative expiration duration. Zero means no expiration
// and positive durations expire relative to now; negative durations
// are malformed.
func TTL(d time.Duration) error {
	if d < 0 {
		return fmt.Errorf("negative ttl %s", d)
	}
	return nil
}
