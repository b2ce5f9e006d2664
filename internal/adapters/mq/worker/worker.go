// Package worker runs the background document renderers.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/courtquote/internal/adapters/mq/queue"
	"github.com/okian/courtquote/pkg/logger"
	"github.com/okian/courtquote/pkg/metrics"
)

// Default worker configuration constants.
const (
	metricsUpdateInterval = 5 * time.Second
	poolShutdownTimeout   = 30 * time.Second
)

// Job is what workers read off the queue.
type Job = queue.Job

// Processor handles a single job.
type Processor interface {
	Process(ctx context.Context, job Job) error
}

// ProcessorFunc adapts a function to Processor.
type ProcessorFunc func(ctx context.Context, job Job) error

// Process implements Processor.
func (f ProcessorFunc) Process(ctx context.Context, job Job) error { return f(ctx, job) }

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Job
}

// Worker processes jobs until stopped.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown stops the worker after the job in hand.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue       Queue
	processor   Processor
	name        string
	onProcessed func()

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(queue Queue, processor Processor, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:     queue,
		processor: processor,
		name:      "worker",
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			if err := w.processJob(ctx, job); err != nil {
				w.logger.Error(ctx, "error processing job", logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (w *InMemoryWorker) processJob(ctx context.Context, job Job) error {
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	if err := w.processor.Process(ctx, job); err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "render_error")
		metrics.RecordErrorByType("render_error", "low")
		w.logger.Error(ctx, "render job failed",
			logger.String("quotationNumber", job.QuotationNumber),
			logger.String("format", job.Format),
			logger.Error(err),
		)
		return fmt.Errorf("render %s as %s: %w", job.QuotationNumber, job.Format, err)
	}

	w.logger.Debug(ctx, "render job done",
		logger.String("quotationNumber", job.QuotationNumber),
		logger.Duration("queued", start.Sub(job.EnqueuedAt)),
	)
	if w.onProcessed != nil {
		w.onProcessed()
	}
	return nil
}

// Pool manages multiple workers.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue

	shutdown     chan struct{}
	shutdownOnce sync.Once

	processedCount    atomic.Int64
	lastProcessedTime time.Time

	logger logger.Logger
}

// NewPool creates a new worker pool. A non-positive workerCount uses one
// worker per CPU.
func NewPool(workerCount int, q Queue, processor Processor) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}

	pool := &Pool{
		workers:           make([]*InMemoryWorker, workerCount),
		queue:             q,
		shutdown:          make(chan struct{}),
		lastProcessedTime: time.Now(),
		logger:            logger.Get().Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewInMemoryWorker(
			q,
			processor,
			WithName("worker-"+strconv.Itoa(i)),
			WithOnProcessed(pool.RecordProcessedMessage),
		)
	}

	metrics.UpdateWorkerActiveCount(workerCount)
	metrics.UpdateWorkerMessagesPerSecond(0.0)

	return pool
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	go p.startMetricsUpdater(ctx)
}

func (p *Pool) startMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(metricsUpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.shutdown:
			return
		case <-ticker.C:
			p.updateMetrics()
		}
	}
}

func (p *Pool) updateMetrics() {
	now := time.Now()
	if elapsed := now.Sub(p.lastProcessedTime).Seconds(); elapsed > 0 {
		metrics.UpdateWorkerMessagesPerSecond(float64(p.processedCount.Swap(0)) / elapsed)
	}
	p.lastProcessedTime = now
}

// RecordProcessedMessage increments the processed job count.
func (p *Pool) RecordProcessedMessage() {
	p.processedCount.Add(1)
}

// Shutdown closes the queue and waits for every worker to return.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}
	p.shutdownOnce.Do(func() { close(p.shutdown) })

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var timedOut bool
	for i, w := range p.workers {
		if err := w.Shutdown(shutdownCtx); err != nil {
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			timedOut = true
		}
	}
	metrics.UpdateWorkerActiveCount(0)
	if timedOut {
		return fmt.Errorf("worker pool shutdown: %w", shutdownCtx.Err())
	}
	return nil
}
