// Package quotation turns a priced request into a numbered record.
package quotation

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okian/courtquote/internal/domain/model"
)

// Numbering defaults.
const (
	DefaultPrefix = "NXR"
	NumberDigits  = 6
)

// FormatNumber returns prefix followed by seq zero padded to six digits.
func FormatNumber(prefix string, seq int64) string {
	return fmt.Sprintf("%s%0*d", prefix, NumberDigits, seq)
}

// ParseNumber returns the sequence encoded in number.
func ParseNumber(prefix, number string) (int64, error) {
	digits, ok := strings.CutPrefix(number, prefix)
	if !ok || len(digits) < NumberDigits {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNumber, number)
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("%w: %q", ErrInvalidNumber, number)
		}
	}
	seq, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || seq <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNumber, number)
	}
	return seq, nil
}

// Builder assembles quotation records.
type Builder struct {
	prefix         string
	clock          func() time.Time
	newID          func() string
	catalogVersion string
}

// Option configures a Builder or a single Build call.
type Option func(*Builder)

// WithPrefix sets the quotation number prefix.
func WithPrefix(prefix string) Option {
	return func(b *Builder) {
		if prefix != "" {
			b.prefix = prefix
		}
	}
}

// WithClock sets the time source used for createdAt.
func WithClock(clock func() time.Time) Option {
	return func(b *Builder) {
		if clock != nil {
			b.clock = clock
		}
	}
}

// WithIDGenerator sets the record id generator.
func WithIDGenerator(newID func() string) Option {
	return func(b *Builder) {
		if newID != nil {
			b.newID = newID
		}
	}
}

// WithCatalogVersion records the catalog version used for pricing.
func WithCatalogVersion(version string) Option {
	return func(b *Builder) {
		b.catalogVersion = version
	}
}

// NewBuilder returns a Builder using the default prefix, wall clock and uuid ids.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		prefix: DefaultPrefix,
		clock:  time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Prefix returns the configured number prefix.
func (b *Builder) Prefix() string { return b.prefix }

// Build numbers the record priorCount+1. Options apply to this call only.
func (b *Builder) Build(req model.Request, breakdown model.Breakdown, priorCount int64, opts ...Option) model.Quotation {
	cfg := *b
	for _, opt := range opts {
		opt(&cfg)
	}

	r := req.Requirements
	r.Base.Area = breakdown.Area
	r.Flooring.Area = breakdown.Area
	if r.Equipment == nil {
		r.Equipment = []model.EquipmentItem{}
	}
	if r.LegacyFeatures == nil {
		r.LegacyFeatures = []model.LegacyFeature{}
	}
	if r.FeatureShape == "" {
		r.FeatureShape = model.ShapeNone
	}

	p := req.ProjectInfo
	p.GameType = p.Sport

	return model.Quotation{
		ID:              cfg.newID(),
		QuotationNumber: FormatNumber(cfg.prefix, priorCount+1),
		CreatedAt:       cfg.clock().UTC(),
		Status:          model.StatusPending,
		CatalogVersion:  cfg.catalogVersion,
		ClientInfo:      req.ClientInfo,
		ProjectInfo:     p,
		Requirements:    r,
		Pricing:         breakdown,
	}
}

var defaultBuilder = NewBuilder()

// Build assembles a record with the default builder.
func Build(req model.Request, breakdown model.Breakdown, priorCount int64, opts ...Option) model.Quotation {
	return defaultBuilder.Build(req, breakdown, priorCount, opts...)
}
