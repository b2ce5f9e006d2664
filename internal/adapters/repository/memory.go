package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/courtquote/internal/domain/model"
	"github.com/okian/courtquote/pkg/metrics"
)

// MemoryStore keeps quotations in process memory. It is the default
// backend and the one used by tests.
type MemoryStore struct {
	mu       sync.RWMutex
	byNumber map[string]model.Quotation
	order    []string // insertion order, oldest first
	seq      atomic.Int64

	metricsUpdateInterval time.Duration
	wg                    sync.WaitGroup
	stopChan              chan struct{}
	closeOnce             sync.Once
}

// NewMemoryStore constructs an in-memory store with configuration options.
func NewMemoryStore(ctx context.Context, opts ...Option) *MemoryStore {
	s := &MemoryStore{
		byNumber:              make(map[string]model.Quotation),
		metricsUpdateInterval: 5 * time.Second,
		stopChan:              make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.startMetricsUpdater(ctx)
	return s
}

// NextSequence implements Sequencer.
func (s *MemoryStore) NextSequence(_ context.Context) (int64, error) {
	return s.seq.Add(1), nil
}

// CountExisting implements Store.
func (s *MemoryStore) CountExisting(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.order)), nil
}

// Insert implements Store.
func (s *MemoryStore) Insert(_ context.Context, q model.Quotation) (err error) {
	defer observe("insert", time.Now(), &err)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byNumber[q.QuotationNumber]; ok {
		return ErrDuplicateKey
	}
	s.byNumber[q.QuotationNumber] = q
	s.order = append(s.order, q.QuotationNumber)
	return nil
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, number string) (q model.Quotation, err error) {
	defer observe("get", time.Now(), &err)

	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.byNumber[number]
	if !ok {
		return model.Quotation{}, ErrNotFound
	}
	return q, nil
}

// List implements Store.
func (s *MemoryStore) List(_ context.Context, limit int) (out []model.Quotation, err error) {
	defer observe("list", time.Now(), &err)

	if limit < 1 {
		return nil, ErrInvalidLimit
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := min(limit, len(s.order))
	out = make([]model.Quotation, 0, n)
	for i := len(s.order) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, s.byNumber[s.order[i]])
	}
	return out, nil
}

// Close stops the background metrics updater.
func (s *MemoryStore) Close() error {
	s.closeOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
	return nil
}

func (s *MemoryStore) startMetricsUpdater(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.metricsUpdateInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.mu.RLock()
				n := len(s.order)
				s.mu.RUnlock()
				metrics.UpdateStoredQuotations(n)
			}
		}
	}()
}
