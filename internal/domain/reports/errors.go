package reports

import "errors"

var (
	// ErrInvalidInput is returned for requests that can never succeed as sent
	// (empty analysis text, unknown template, malformed filename or color).
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound indicates the requested report does not exist.
	ErrNotFound = errors.New("report not found")

	// ErrStorage wraps failures of the report output directory.
	ErrStorage = errors.New("report storage failure")
)
