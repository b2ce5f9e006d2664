// Package repository persists quotations and hands out quotation sequence numbers.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/okian/courtquote/internal/domain/model"
	"github.com/okian/courtquote/pkg/metrics"
)

// Store persists quotation records. Records are append-only.
type Store interface {
	// CountExisting returns the number of stored quotations.
	CountExisting(ctx context.Context) (int64, error)

	// Insert stores q. It returns ErrDuplicateKey when the quotation
	// number is already taken and never overwrites.
	Insert(ctx context.Context, q model.Quotation) error

	// Get returns the quotation with the given number or ErrNotFound.
	Get(ctx context.Context, number string) (model.Quotation, error)

	// List returns up to limit quotations, newest first.
	List(ctx context.Context, limit int) ([]model.Quotation, error)

	Close() error
}

// Sequencer is implemented by stores that keep an atomic creation counter.
type Sequencer interface {
	// NextSequence increments the counter and returns the new value.
	NextSequence(ctx context.Context) (int64, error)
}

// Backend names accepted by configuration.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendDynamoDB = "dynamodb"
)

// SequenceName keys the quotation counter in stores that persist it.
const SequenceName = "quotation"

func observe(op string, start time.Time, err *error) {
	metrics.RecordPersistenceLatency(op, float64(time.Since(start).Milliseconds()))
	if *err != nil && !errors.Is(*err, ErrNotFound) && !errors.Is(*err, ErrDuplicateKey) {
		metrics.RecordPersistenceFailure(op)
		metrics.RecordErrorByComponent("repository", op)
	}
}
