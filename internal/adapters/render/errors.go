package render

import "errors"

var (
	// ErrUnsupportedFormat is returned for document formats with no renderer.
	ErrUnsupportedFormat = errors.New("unsupported document format")
	// ErrRenderFailed wraps failures inside a document backend.
	ErrRenderFailed = errors.New("document rendering failed")
)
