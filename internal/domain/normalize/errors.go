package normalize

import (
	"errors"
	"fmt"
)

// ErrValidation is the parent of every rejection produced by this package.
var ErrValidation = errors.New("validation failed")

var (
	// ErrMalformedRequest is returned when the body is not a JSON object of the expected shape.
	ErrMalformedRequest = fmt.Errorf("%w: malformed request body", ErrValidation)
	// ErrMissingClientInfo is returned when a client contact field is absent or blank.
	ErrMissingClientInfo = fmt.Errorf("%w: please complete all client information fields", ErrValidation)
	// ErrMissingSport is returned when neither sport nor gameType is provided.
	ErrMissingSport = fmt.Errorf("%w: please select a sport", ErrValidation)
	// ErrMissingRequirements is returned when the base or flooring type is absent.
	ErrMissingRequirements = fmt.Errorf("%w: please select base and flooring types", ErrValidation)
)

// Kind returns a stable identifier for a validation error, or "" when err
// is not one.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrMissingClientInfo):
		return "missing_client_info"
	case errors.Is(err, ErrMissingSport):
		return "missing_sport"
	case errors.Is(err, ErrMissingRequirements):
		return "missing_requirements"
	case errors.Is(err, ErrMalformedRequest):
		return "bad_request"
	case errors.Is(err, ErrValidation):
		return "validation_failed"
	default:
		return ""
	}
}
