package loadtest

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"github.com/okian/courtquote/pkg/logger"
)

var numberPattern = regexp.MustCompile(`^[A-Za-z]+\d{6,}$`)

// Verification failures.
var (
	ErrDuplicateNumber  = errors.New("quotation number issued twice")
	ErrMalformedNumber  = errors.New("malformed quotation number")
	ErrTotalMismatch    = errors.New("total does not match line sum")
	ErrReplayMismatch   = errors.New("replay returned a different quotation")
	ErrMissingQuotation = errors.New("created quotation missing from list")
)

// verifyResults checks numbering, totals and replay consistency of the
// submitted requests against each other and against the stored list.
func verifyResults(ctx context.Context, results []Result, listed []Quotation) error {
	logger.Get().Info(ctx, "verifying results", logger.Int("results", len(results)))

	var errs []error
	byKey := make(map[string]string)
	owners := make(map[string]string)

	for _, r := range results {
		if outcome(r) != outcomeCreated {
			continue
		}
		q := r.Quotation
		if !numberPattern.MatchString(q.QuotationNumber) {
			errs = append(errs, fmt.Errorf("%w: %q", ErrMalformedNumber, q.QuotationNumber))
		}
		if prev, ok := owners[q.QuotationNumber]; ok {
			errs = append(errs, fmt.Errorf("%w: %s for keys %s and %s", ErrDuplicateNumber, q.QuotationNumber, prev, r.IdempotencyKey))
		}
		owners[q.QuotationNumber] = r.IdempotencyKey
		byKey[r.IdempotencyKey] = q.QuotationNumber

		if q.Pricing.LineSum() != q.Pricing.TotalCost {
			errs = append(errs, fmt.Errorf("%w: %s total %s lines %s", ErrTotalMismatch, q.QuotationNumber,
				strconv.FormatFloat(q.Pricing.TotalCost, 'f', -1, 64),
				strconv.FormatFloat(q.Pricing.LineSum(), 'f', -1, 64)))
		}
	}

	for _, r := range results {
		if outcome(r) != outcomeReplayed {
			continue
		}
		if want, ok := byKey[r.IdempotencyKey]; ok && want != r.Quotation.QuotationNumber {
			errs = append(errs, fmt.Errorf("%w: key %s got %s want %s", ErrReplayMismatch, r.IdempotencyKey, r.Quotation.QuotationNumber, want))
		}
	}

	if listed != nil && len(owners) <= MaxListLimit {
		stored := make(map[string]bool, len(listed))
		for _, q := range listed {
			stored[q.QuotationNumber] = true
		}
		for number := range owners {
			if !stored[number] {
				errs = append(errs, fmt.Errorf("%w: %s", ErrMissingQuotation, number))
			}
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	logger.Get().Info(ctx, "all checks passed", logger.Int("uniqueNumbers", len(owners)))
	return nil
}
