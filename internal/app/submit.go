package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/courtquote/internal/adapters/render"
	"github.com/okian/courtquote/internal/adapters/repository"
	"github.com/okian/courtquote/internal/domain/catalog"
	"github.com/okian/courtquote/internal/domain/model"
	"github.com/okian/courtquote/internal/domain/normalize"
	"github.com/okian/courtquote/internal/domain/quotation"
	"github.com/okian/courtquote/pkg/logger"
	"github.com/okian/courtquote/pkg/metrics"
)

// Submit validates, prices and stores a raw submission. When idempotencyKey
// is set, a retried submission returns the first quotation and replayed is
// true.
func (s *Service) Submit(ctx context.Context, body []byte, idempotencyKey string) (q model.Quotation, replayed bool, err error) {
	store, err := s.currentStore()
	if err != nil {
		return model.Quotation{}, false, err
	}

	if idempotencyKey != "" {
		entry, seen := s.deduper.SeenAndRecord(ctx, idempotencyKey)
		if seen {
			if !entry.Done {
				return model.Quotation{}, false, ErrSubmissionInProgress
			}
			metrics.RecordIdempotentReplay()
			s.logger.Debug(ctx, "idempotent replay",
				logger.String("idempotencyKey", idempotencyKey),
				logger.String("quotationNumber", entry.Number),
			)
			q, err := s.Get(ctx, entry.Number)
			return q, true, err
		}
		defer func() {
			if err != nil {
				s.deduper.Unrecord(ctx, idempotencyKey)
				return
			}
			s.deduper.Complete(ctx, idempotencyKey, q.QuotationNumber)
		}()
	}

	q, err = s.create(ctx, store, body)
	return q, false, err
}

func (s *Service) create(ctx context.Context, store repository.Store, body []byte) (model.Quotation, error) {
	req, err := s.normalize(ctx, body)
	if err != nil {
		return model.Quotation{}, err
	}

	cat, err := s.catalog.Snapshot()
	if err != nil {
		metrics.RecordErrorByComponent("catalog", "unavailable")
		return model.Quotation{}, err
	}

	start := time.Now()
	req.Requirements.Equipment = s.engine.PriceEquipment(req.Requirements.Equipment, cat)
	breakdown := s.engine.Estimate(req, cat)
	metrics.RecordEstimateLatency(float64(time.Since(start).Microseconds()) / 1000)

	q, err := s.persist(ctx, store, req, breakdown, cat)
	if err != nil {
		return model.Quotation{}, err
	}

	metrics.RecordQuotationCreated(q.Pricing.TotalCost)
	s.logger.Info(ctx, "quotation created",
		logger.String("quotationNumber", q.QuotationNumber),
		logger.String("sport", q.ProjectInfo.Sport),
		logger.String("featureShape", string(q.Requirements.FeatureShape)),
		logger.Float64("totalCost", q.Pricing.TotalCost),
	)

	s.enqueueRender(ctx, q.QuotationNumber)
	return q, nil
}

func (s *Service) normalize(ctx context.Context, body []byte) (model.Request, error) {
	raw, err := normalize.Decode(body)
	if err == nil {
		var req model.Request
		if req, err = normalize.Normalize(raw); err == nil {
			return req, nil
		}
	}
	kind := normalize.Kind(err)
	metrics.RecordValidationFailure(kind)
	s.logger.Debug(ctx, "submission rejected", logger.String("kind", kind), logger.Error(err))
	return model.Request{}, err
}

// persist numbers and inserts the record, retrying with a fresh number
// when another writer took the one we picked.
func (s *Service) persist(ctx context.Context, store repository.Store, req model.Request, bd model.Breakdown, cat *catalog.Catalog) (model.Quotation, error) {
	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		prior, err := s.priorCount(ctx, store)
		if err != nil {
			return model.Quotation{}, s.persistenceError(ctx, "sequence", err)
		}

		q := s.builder.Build(req, bd, prior, quotation.WithCatalogVersion(cat.Version()))

		err = s.withTimeout(ctx, func(ctx context.Context) error { return store.Insert(ctx, q) })
		if err == nil {
			return q, nil
		}
		if !errors.Is(err, repository.ErrDuplicateKey) {
			return model.Quotation{}, s.persistenceError(ctx, "insert", err)
		}

		metrics.RecordNumberingRetry()
		s.logger.Warn(ctx, "quotation number taken, retrying",
			logger.String("quotationNumber", q.QuotationNumber),
			logger.Int("attempt", attempt),
		)
	}

	metrics.RecordPersistenceFailure("numbering")
	return model.Quotation{}, fmt.Errorf("%w: %w after %d attempts", ErrPersistenceUnavailable, quotation.ErrDuplicateNumber, s.maxRetries)
}

// priorCount returns the number of records that precede the next one.
// Stores with an atomic counter hand out a fresh value per call.
func (s *Service) priorCount(ctx context.Context, store repository.Store) (int64, error) {
	var n int64
	err := s.withTimeout(ctx, func(ctx context.Context) error {
		var err error
		if seq, ok := store.(repository.Sequencer); ok {
			n, err = seq.NextSequence(ctx)
			n--
			return err
		}
		n, err = store.CountExisting(ctx)
		return err
	})
	return n, err
}

func (s *Service) withTimeout(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.persistenceTimeout)
	defer cancel()
	return fn(ctx)
}

func (s *Service) persistenceError(ctx context.Context, op string, err error) error {
	metrics.RecordErrorByComponent("service", op)
	s.logger.Error(ctx, "persistence failed", logger.String("op", op), logger.Error(err))
	return fmt.Errorf("%w: %s: %w", ErrPersistenceUnavailable, op, err)
}

func (s *Service) enqueueRender(ctx context.Context, number string) {
	job := model.RenderJob{QuotationNumber: number, Format: string(render.FormatPDF)}
	if !s.renderQueue.Enqueue(ctx, job) {
		s.logger.Debug(ctx, "render queue full, document will render on demand",
			logger.String("quotationNumber", number),
		)
	}
}

// Get returns a stored quotation.
func (s *Service) Get(ctx context.Context, number string) (model.Quotation, error) {
	store, err := s.currentStore()
	if err != nil {
		return model.Quotation{}, err
	}

	var q model.Quotation
	err = s.withTimeout(ctx, func(ctx context.Context) error {
		var err error
		q, err = store.Get(ctx, number)
		return err
	})
	switch {
	case err == nil:
		return q, nil
	case errors.Is(err, repository.ErrNotFound):
		return model.Quotation{}, err
	default:
		return model.Quotation{}, s.persistenceError(ctx, "get", err)
	}
}

// List returns up to limit quotations, newest first. A non-positive limit
// uses the default page size; larger values are capped.
func (s *Service) List(ctx context.Context, limit int) ([]model.Quotation, error) {
	store, err := s.currentStore()
	if err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > s.maxListLimit {
		limit = s.maxListLimit
	}

	var out []model.Quotation
	err = s.withTimeout(ctx, func(ctx context.Context) error {
		var err error
		out, err = store.List(ctx, limit)
		return err
	})
	if err != nil {
		return nil, s.persistenceError(ctx, "list", err)
	}
	return out, nil
}
