// Package render turns stored quotations into client documents.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/okian/courtquote/internal/domain/model"
	"github.com/okian/courtquote/pkg/metrics"
)

// Format names a document type.
type Format string

// Supported formats.
const (
	FormatPDF  Format = "pdf"
	FormatXLSX Format = "xlsx"
)

// ParseFormat maps a query value to a Format; empty means PDF.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatPDF:
		return FormatPDF, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// ContentType is the MIME type served for f.
func (f Format) ContentType() string {
	switch f {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/pdf"
	}
}

// Renderer produces a document for a quotation.
type Renderer interface {
	Render(q model.Quotation) ([]byte, error)
}

// Letterhead is the company block printed on every document.
type Letterhead struct {
	Company string
	Tagline string
	Address string
	Phone   string
	Email   string
	Website string
}

// DefaultLetterhead is used when no letterhead is configured.
var DefaultLetterhead = Letterhead{
	Company: "NEXORA GROUP",
	Tagline: "Sports Infrastructure Solutions",
	Address: "Jalahalli West, Bangalore-560015",
	Phone:   "+91 8431322728",
	Email:   "info.nexoragroup@gmail.com",
	Website: "www.nexoragroup.com",
}

// DefaultTerms are printed under the totals.
var DefaultTerms = []string{
	"Payment: 50% Advance, 30% after frame, 20% on completion",
	"Validity: 10 days from date of issue",
	"Completion: 35 days (excluding weather delays)",
	"Transportation charges included",
	"Materials: Manufacturer warranty",
	"Workmanship: 1 year guarantee",
}

// Set dispatches to the renderer registered for each format.
type Set struct {
	renderers map[Format]Renderer
}

// NewSet builds the PDF and XLSX renderers with shared options.
func NewSet(opts ...Option) *Set {
	return &Set{renderers: map[Format]Renderer{
		FormatPDF:  NewPDFRenderer(opts...),
		FormatXLSX: NewXLSXRenderer(opts...),
	}}
}

// Render produces the document for q in format f.
func (s *Set) Render(f Format, q model.Quotation) ([]byte, error) {
	r, ok := s.renderers[f]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
	}
	start := time.Now()
	doc, err := r.Render(q)
	if err != nil {
		metrics.RecordRenderError(string(f))
		return nil, err
	}
	metrics.RecordRenderLatency(string(f), float64(time.Since(start).Milliseconds()))
	return doc, nil
}
