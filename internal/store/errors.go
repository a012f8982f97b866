package store

import "errors"

var (
	// ErrNotConfigured indicates required store configuration is absent
	ErrNotConfigured = errors.New("record store not configured")

	// ErrMissingKey indicates a record without test_run_id was written
	ErrMissingKey = errors.New("record has no test_run_id")
)
