package api

import (
	"errors"
	"net/http"

	service "github.com/okian/courtquote/internal/app"
	"github.com/okian/courtquote/internal/adapters/render"
	"github.com/okian/courtquote/internal/adapters/repository"
	"github.com/okian/courtquote/internal/domain/catalog"
	"github.com/okian/courtquote/internal/domain/normalize"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest    = errors.New("bad request")
	ErrBodyTooLarge  = errors.New("request body too large")
	ErrInternal      = errors.New("internal error")
	ErrQuotationPath = errors.New("invalid quotation number")
)

// Error records the handler operation that failed, the kind it maps to and
// the underlying cause.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Err == nil:
		return e.Op + ": " + e.Kind.Error()
	case e.Kind == nil || errors.Is(e.Err, e.Kind):
		return e.Op + ": " + e.Err.Error()
	default:
		return e.Op + ": " + e.Kind.Error() + ": " + e.Err.Error()
	}
}

// Unwrap exposes both the kind and the cause to errors.Is.
func (e *Error) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// Wrap annotates err with op.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}

// WrapKind annotates err with op and classifies it as kind.
func WrapKind(op string, kind, err error) error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// NewKind reports kind at op with no further cause.
func NewKind(op string, kind error) error {
	return &Error{Op: op, Kind: kind}
}

// classify maps an error to its HTTP status and response code.
func classify(err error) (int, string) {
	if kind := normalize.Kind(err); kind != "" {
		return http.StatusBadRequest, kind
	}
	switch {
	case errors.Is(err, ErrBodyTooLarge):
		return http.StatusRequestEntityTooLarge, "body_too_large"
	case errors.Is(err, ErrBadRequest), errors.Is(err, ErrQuotationPath):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, render.ErrUnsupportedFormat):
		return http.StatusBadRequest, "unsupported_format"
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrSubmissionInProgress):
		return http.StatusConflict, "submission_in_progress"
	case errors.Is(err, catalog.ErrCatalogUnavailable):
		return http.StatusInternalServerError, "catalog_unavailable"
	case errors.Is(err, service.ErrPersistenceUnavailable):
		return http.StatusInternalServerError, "persistence_unavailable"
	case errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
