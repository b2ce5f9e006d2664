package service

import (
	"context"
	"sync"

	"github.com/okian/courtquote/internal/adapters/mq/queue"
	"github.com/okian/courtquote/internal/adapters/render"
	"github.com/okian/courtquote/pkg/logger"
	"github.com/okian/courtquote/pkg/metrics"
)

// Document returns the rendered document for a stored quotation. Documents
// are immutable once rendered, so they are served from cache when present.
func (s *Service) Document(ctx context.Context, number string, format render.Format) ([]byte, error) {
	key := documentKey{number: number, format: format}
	if doc, ok := s.documents.Get(key); ok {
		return doc, nil
	}

	q, err := s.Get(ctx, number)
	if err != nil {
		return nil, err
	}

	doc, err := s.renderers.Render(format, q)
	if err != nil {
		return nil, err
	}
	s.documents.Put(key, doc)
	return doc, nil
}

// processRenderJob warms the document cache for a freshly stored quotation.
func (s *Service) processRenderJob(ctx context.Context, job queue.Job) error {
	format, err := render.ParseFormat(job.Format)
	if err != nil {
		return err
	}
	if _, err := s.Document(ctx, job.QuotationNumber, format); err != nil {
		return err
	}
	s.logger.Debug(ctx, "document pre-rendered",
		logger.String("quotationNumber", job.QuotationNumber),
		logger.String("format", string(format)),
	)
	return nil
}

type documentKey struct {
	number string
	format render.Format
}

// documentCache is a bounded map that evicts the oldest entry first.
type documentCache struct {
	mu      sync.Mutex
	maxSize int
	entries map[documentKey][]byte
	order   []documentKey
}

func newDocumentCache(maxSize int) *documentCache {
	if maxSize < 1 {
		maxSize = 1
	}
	return &documentCache{
		maxSize: maxSize,
		entries: make(map[documentKey][]byte, maxSize),
	}
}

func (c *documentCache) Get(k documentKey) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	doc, ok := c.entries[k]
	return doc, ok
}

func (c *documentCache) Put(k documentKey, doc []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[k]; ok {
		return
	}
	for len(c.order) >= c.maxSize {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
	c.entries[k] = doc
	c.order = append(c.order, k)
	metrics.UpdateDocumentCacheSize(len(c.entries))
}

func (c *documentCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
