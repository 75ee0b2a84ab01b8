package cache

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument is the single error kind raised by this package.
// It marks input that violates the cache contracts: empty keys, keys
// containing reserved characters, negative TTLs, and nil items passed
// to Save. Check for it with errors.Is:
//
//	if errors.Is(err, cache.ErrInvalidArgument) { ... }
var ErrInvalidArgument = errors.New("invalid argument")

// ArgumentError provides context about a contract violation. It
// records the operation that rejected the input and, when one applies,
// the cache key being processed.
//
// ArgumentError supports error wrapping: errors.Is always matches
// ErrInvalidArgument, and any underlying cause remains reachable
// through Unwrap.
type ArgumentError struct {
	// Op is the operation that rejected the input (e.g., "get", "save").
	Op string

	// Key is the cache key being processed, when one applies.
	Key string

	// Err is the underlying error. It always matches ErrInvalidArgument.
	Err error
}

// Error implements the error interface.
func (e *ArgumentError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %q: %s", e.Op, e.Key, e.Err)
}

// Unwrap returns the underlying error so errors.Is and errors.As see
// through the wrapper.
func (e *ArgumentError) Unwrap() error {
	return e.Err
}

// NewArgumentError wraps err in an ArgumentError for the given
// operation and key, marking it with ErrInvalidArgument if it does not
// already match.
func NewArgumentError(op, key string, err error) *ArgumentError {
	if !errors.Is(err, ErrInvalidArgument) {
		err = fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	return &ArgumentError{Op: op, Key: key, Err: err}
}

// translateErr re-wraps invalid argument errors raised by the
// underlying implementation so the caller always sees this adapter's
// operation name. Unrelated errors pass through unchanged.
func translateErr(op, key string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrInvalidArgument) {
		return &ArgumentError{Op: op, Key: key, Err: err}
	}
	return err
}
