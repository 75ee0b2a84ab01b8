package cache

import "log/slog"

// Options contains configuration options for the adapters.
type Options struct {
	// Logger receives debug records for hits, misses, and saves.
	// If nil, logging is disabled.
	Logger *slog.Logger
}

// Option is a functional option for configuring an adapter.
type Option func(*Options)

// WithLogger directs adapter debug logging to the given logger.
// Adapters log at slog.LevelDebug only.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// newOptions applies opts over the defaults.
func newOptions(opts []Option) Options {
	o := Options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	return o
}
