package runner

import "errors"

// Sentinel errors for the runner package.
var (
	// ErrMaxFailures is returned when the max failure limit is reached.
	ErrMaxFailures = errors.New("runner: max failures reached")

	// ErrNoDatabase is returned when plans are executed without a database.
	ErrNoDatabase = errors.New("runner: no database configured")

	// ErrInvalidFilter is returned for a filter that is not a valid regexp.
	ErrInvalidFilter = errors.New("runner: invalid filter")

	// ErrExpectation is returned when an expectation does not evaluate to a
	// boolean.
	ErrExpectation = errors.New("runner: invalid expectation")

	// Test errors for use in unit tests.
	errTestStop = errors.New("test: stop")
)
