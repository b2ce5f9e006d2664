package api

// Default request limits.
const (
	DefaultMaxBodyBytes = 1 << 20
	DefaultListLimit    = 50
)

// Option configures the quotation handler.
type Option func(*QuotationHandler)

// WithMaxBodyBytes caps the size of a submission body.
func WithMaxBodyBytes(n int64) Option {
	return func(h *QuotationHandler) {
		if n > 0 {
			h.maxBodyBytes = n
		}
	}
}

// WithDefaultListLimit sets the page size used when no limit is given.
func WithDefaultListLimit(n int) Option {
	return func(h *QuotationHandler) {
		if n > 0 {
			h.defaultLimit = n
		}
	}
}
