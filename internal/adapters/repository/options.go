package repository

import "time"

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithMetricsUpdateInterval sets the interval for background metrics updates.
func WithMetricsUpdateInterval(interval time.Duration) Option {
	return func(s *MemoryStore) {
		if interval > 0 {
			s.metricsUpdateInterval = interval
		}
	}
}

// WithInitialSequence starts the counter at seq so the next number is seq+1.
func WithInitialSequence(seq int64) Option {
	return func(s *MemoryStore) {
		if seq > 0 {
			s.seq.Store(seq)
		}
	}
}
