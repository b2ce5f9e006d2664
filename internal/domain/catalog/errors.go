package catalog

import "errors"

var (
	// ErrCatalogUnavailable is returned when no pricing catalog has been loaded.
	ErrCatalogUnavailable = errors.New("pricing catalog unavailable")
	// ErrCategoryNotFound is returned when the catalog document has no entry for the requested category.
	ErrCategoryNotFound = errors.New("catalog category not found")
	// ErrInvalidCatalog is returned when a catalog document fails validation.
	ErrInvalidCatalog = errors.New("invalid catalog")
)
