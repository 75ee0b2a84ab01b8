package cache

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOptionsDefaults(t *testing.T) {
	o := newOptions(nil)

	require.NotNil(t, o.Logger, "the default logger must be usable, not nil")
}

func TestWithLogger(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	o := newOptions([]Option{WithLogger(logger)})

	assert.Same(t, logger, o.Logger)
}

func TestPoolStoreLogsWithConfiguredLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	pool := newFakePool()
	pool.entries["user.1"] = fakeEntry{value: "alice"}
	store := NewPoolStore(pool, WithLogger(logger))

	_, err := store.Get(context.Background(), "user.1", nil)

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "cache hit")
}
