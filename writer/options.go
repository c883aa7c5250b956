package writer

import (
	"log/slog"

	"csvcaster/mapping"
	"csvcaster/plan"
	"csvcaster/primitive"
)

// Option configures a Writer.
type Option func(*Writer)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Writer) {
		w.logger = logger
	}
}

// WithCache shares a plan cache between writers of the same goroutine.
// The cache brings its own registry and converters.
func WithCache(cache *plan.Cache) Option {
	return func(w *Writer) {
		w.cache = cache
	}
}

// WithRegistry sets the mapping registry of the writer's own cache.
func WithRegistry(registry *mapping.Registry) Option {
	return func(w *Writer) {
		w.registry = registry
	}
}

// WithConverters sets the converters of the writer's own cache.
func WithConverters(conv *primitive.Converters) Option {
	return func(w *Writer) {
		w.converters = conv
	}
}
