package render

// Option configures a renderer.
type Option func(*settings)

type settings struct {
	gstPercent float64
	letterhead Letterhead
	terms      []string
}

func newSettings(opts []Option) settings {
	s := settings{
		gstPercent: DefaultGSTPercent,
		letterhead: DefaultLetterhead,
		terms:      DefaultTerms,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// WithGSTPercent sets the tax rate added below the total.
func WithGSTPercent(p float64) Option {
	return func(s *settings) {
		if p >= 0 {
			s.gstPercent = p
		}
	}
}

// WithLetterhead replaces the company block.
func WithLetterhead(l Letterhead) Option {
	return func(s *settings) {
		if l.Company != "" {
			s.letterhead = l
		}
	}
}

// WithTerms replaces the terms and conditions.
func WithTerms(terms []string) Option {
	return func(s *settings) {
		if terms != nil {
			s.terms = terms
		}
	}
}
