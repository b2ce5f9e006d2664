// Package service wires the quotation domain to its stores, renderers and
// background workers. It implements the dependencies required by the HTTP API.
package service

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/okian/courtquote/internal/adapters/mq/queue"
	"github.com/okian/courtquote/internal/adapters/mq/worker"
	"github.com/okian/courtquote/internal/adapters/render"
	"github.com/okian/courtquote/internal/adapters/repository"
	"github.com/okian/courtquote/internal/domain/catalog"
	"github.com/okian/courtquote/internal/domain/dedupe"
	"github.com/okian/courtquote/internal/domain/estimate"
	"github.com/okian/courtquote/internal/domain/quotation"
	"github.com/okian/courtquote/pkg/logger"
	"github.com/okian/courtquote/pkg/metrics"
)

// Defaults used when no option overrides them.
const (
	DefaultMaxRetries         = 5
	DefaultPersistenceTimeout = 5 * time.Second
	DefaultRenderQueueSize    = 256
	DefaultIdempotencySize    = 10000
	DefaultDocumentCacheSize  = 128
	DefaultListLimit          = 50
	DefaultMaxListLimit       = 500

	shutdownTimeout = 10 * time.Second
)

// Service implements the API dependencies for the quotation system.
type Service struct {
	mu sync.RWMutex

	// Core components
	store       repository.Store
	catalog     *catalog.Holder
	deduper     dedupe.Deduper
	engine      *estimate.Engine
	builder     *quotation.Builder
	renderers   *render.Set
	documents   *documentCache
	renderQueue queue.Queue
	workerPool  *worker.Pool

	// Configuration
	prefix             string
	maxRetries         int
	persistenceTimeout time.Duration
	renderWorkers      int
	renderQueueSize    int
	idempotencySize    int
	documentCacheSize  int
	gstPercent         float64
	recomputeEquipment bool
	maxListLimit       int
	clock              func() time.Time

	// State
	started bool

	// Logging
	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		catalog:            catalog.NewHolder(nil),
		prefix:             quotation.DefaultPrefix,
		maxRetries:         DefaultMaxRetries,
		persistenceTimeout: DefaultPersistenceTimeout,
		renderWorkers:      runtime.NumCPU(),
		renderQueueSize:    DefaultRenderQueueSize,
		idempotencySize:    DefaultIdempotencySize,
		documentCacheSize:  DefaultDocumentCacheSize,
		gstPercent:         render.DefaultGSTPercent,
		maxListLimit:       DefaultMaxListLimit,
		clock:              time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.idempotencySize))
	s.engine = estimate.New(estimate.WithEquipmentRecompute(s.recomputeEquipment))
	s.builder = quotation.NewBuilder(quotation.WithPrefix(s.prefix), quotation.WithClock(s.clock))
	s.renderers = render.NewSet(render.WithGSTPercent(s.gstPercent))
	s.documents = newDocumentCache(s.documentCacheSize)

	return s
}

// Start initializes the store and starts the render workers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting quotation service...")

	if s.store == nil {
		s.store = repository.NewMemoryStore(ctx)
		s.logger.Info(ctx, "using in-memory store")
	}
	if c, err := s.catalog.Snapshot(); err == nil {
		s.logger.Info(ctx, "pricing catalog loaded",
			logger.String("category", c.Category()),
			logger.String("version", c.Version()),
		)
	} else {
		s.logger.Warn(ctx, "no pricing catalog, submissions will fail", logger.Error(err))
	}

	s.renderQueue = queue.NewInMemoryQueue(
		queue.WithCapacity(s.renderQueueSize),
		queue.WithBufferSize(s.renderQueueSize),
	)
	s.workerPool = worker.NewPool(s.renderWorkers, s.renderQueue, worker.ProcessorFunc(s.processRenderJob))
	s.workerPool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "quotation service started",
		logger.String("prefix", s.prefix),
		logger.Int("renderWorkers", s.renderWorkers),
		logger.Int("renderQueueSize", s.renderQueueSize),
		logger.Int("maxRetries", s.maxRetries),
		logger.Duration("persistenceTimeout", s.persistenceTimeout),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.logger.Info(ctx, "stopping quotation service...")

	if s.workerPool != nil {
		if err := s.workerPool.Shutdown(ctx); err != nil {
			s.logger.Warn(ctx, "render workers did not stop cleanly", logger.Error(err))
		}
	}

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Warn(ctx, "error closing store", logger.Error(err))
		}
		s.store = nil
	}

	s.started = false
	s.logger.Info(ctx, "quotation service stopped")
}

// SetCatalog publishes a new pricing catalog. In-flight submissions keep
// the snapshot they started with.
func (s *Service) SetCatalog(c *catalog.Catalog) {
	s.catalog.Store(c)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":            s.started,
		"prefix":             s.prefix,
		"renderWorkers":      s.renderWorkers,
		"renderQueueSize":    s.renderQueueSize,
		"idempotencyKeys":    s.deduper.Size(),
		"cachedDocuments":    s.documents.Len(),
		"recomputeEquipment": s.recomputeEquipment,
	}

	if c, err := s.catalog.Snapshot(); err == nil {
		stats["catalogVersion"] = c.Version()
	}

	if s.started {
		queueLen := s.renderQueue.Len(ctx)
		stats["renderQueueLength"] = queueLen
		metrics.UpdateQueueSize(queueLen)

		pctx, cancel := context.WithTimeout(ctx, s.persistenceTimeout)
		defer cancel()
		if n, err := s.store.CountExisting(pctx); err == nil {
			stats["totalQuotations"] = n
			metrics.UpdateStoredQuotations(int(n))
		}
	}

	return stats
}

// currentStore returns the store, or ErrNotStarted before Start.
func (s *Service) currentStore() (repository.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.store, nil
}
