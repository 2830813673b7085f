package strata

import (
	"os"

	"github.com/rs/zerolog"
)

// WorldOption augments how a World is created. Options run after the config
// is loaded, so they win over environment values.
type WorldOption func(w *World)

// WithNamespace sets the World's namespace. The default is "world". The
// namespace appears in log context and telemetry tags.
func WithNamespace(namespace string) WorldOption {
	return func(w *World) {
		w.namespace = namespace
	}
}

// WithLogger replaces the World's logger. The default logger is the global
// zerolog logger with the world's namespace and instance id attached.
func WithLogger(logger zerolog.Logger) WorldOption {
	return func(w *World) {
		w.logger = logger
	}
}

// WithPrettyLog makes the World log human readable console output instead of
// JSON. This should only be used for local development.
func WithPrettyLog() WorldOption {
	return func(w *World) {
		w.logger = w.logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

// WithEntityCapacity overrides how many entities the entity index
// preallocates storage for.
func WithEntityCapacity(capacity int) WorldOption {
	return func(w *World) {
		if capacity > 0 {
			w.entityCapacity = capacity
		}
	}
}

// WithComponentCapacity overrides how many instances each component table
// preallocates storage for.
func WithComponentCapacity(capacity int) WorldOption {
	return func(w *World) {
		if capacity > 0 {
			w.componentCapacity = capacity
		}
	}
}
