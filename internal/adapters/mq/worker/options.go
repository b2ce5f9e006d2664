// Package worker runs the background document renderers.
package worker

import (
	"github.com/okian/courtquote/pkg/logger"
)

// Option applies a configuration option to the InMemoryWorker.
type Option func(*InMemoryWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *InMemoryWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(logger logger.Logger) Option {
	return func(w *InMemoryWorker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithOnProcessed registers a callback run after every successful job.
func WithOnProcessed(fn func()) Option {
	return func(w *InMemoryWorker) {
		w.onProcessed = fn
	}
}
