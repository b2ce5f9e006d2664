package service

import "errors"

var (
	// ErrPersistenceUnavailable means the store could not accept or return a
	// record in time. Clients may retry.
	ErrPersistenceUnavailable = errors.New("persistence unavailable")
	// ErrSubmissionInProgress is returned when an idempotency key is still
	// held by an unfinished submission.
	ErrSubmissionInProgress = errors.New("submission in progress")
	// ErrNotStarted is returned by operations that need a running service.
	ErrNotStarted = errors.New("service not started")
)
