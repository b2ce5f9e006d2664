package repository

import "errors"

// Sentinel kinds for quotation store errors.
var (
	ErrNotFound       = errors.New("quotation not found")
	ErrDuplicateKey   = errors.New("quotation number already exists")
	ErrInvalidLimit   = errors.New("invalid list limit")
	ErrUnknownBackend = errors.New("unknown store backend")
)
