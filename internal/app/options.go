package service

import (
	"time"

	"github.com/okian/courtquote/internal/adapters/repository"
	"github.com/okian/courtquote/internal/domain/catalog"
	"github.com/okian/courtquote/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the quotation store. The service closes it on Stop.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithCatalog sets the pricing catalog.
func WithCatalog(c *catalog.Catalog) Option {
	return func(s *Service) {
		if c != nil {
			s.catalog.Store(c)
		}
	}
}

// WithPrefix sets the quotation number prefix.
func WithPrefix(prefix string) Option {
	return func(s *Service) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// WithMaxRetries sets how many numbers are tried before a submission fails.
func WithMaxRetries(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxRetries = n
		}
	}
}

// WithPersistenceTimeout bounds every store call.
func WithPersistenceTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.persistenceTimeout = d
		}
	}
}

// WithRenderWorkers sets the number of background document renderers.
func WithRenderWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.renderWorkers = n
		}
	}
}

// WithRenderQueueSize sets the capacity of the render queue.
func WithRenderQueueSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.renderQueueSize = n
		}
	}
}

// WithIdempotencySize sets how many idempotency keys are remembered.
func WithIdempotencySize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.idempotencySize = n
		}
	}
}

// WithDocumentCacheSize sets how many rendered documents are kept.
func WithDocumentCacheSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.documentCacheSize = n
		}
	}
}

// WithGSTPercent sets the tax rate printed on documents.
func WithGSTPercent(p float64) Option {
	return func(s *Service) {
		if p >= 0 {
			s.gstPercent = p
		}
	}
}

// WithEquipmentRecompute prices equipment from the catalog instead of the
// client supplied totals.
func WithEquipmentRecompute(enabled bool) Option {
	return func(s *Service) {
		s.recomputeEquipment = enabled
	}
}

// WithMaxListLimit caps the page size of List.
func WithMaxListLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxListLimit = n
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the time source used for creation timestamps.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}
