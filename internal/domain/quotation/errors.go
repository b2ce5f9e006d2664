package quotation

import "errors"

var (
	// ErrDuplicateNumber is returned when a quotation number is already taken.
	ErrDuplicateNumber = errors.New("duplicate quotation number")
	// ErrInvalidNumber is returned when a string is not a well-formed quotation number.
	ErrInvalidNumber = errors.New("invalid quotation number")
)
