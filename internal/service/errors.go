package service

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidBody indicates the request body is not a JSON object
	ErrInvalidBody = errors.New("invalid JSON body")
	// ErrMissingRequired indicates suite_name or status is absent
	ErrMissingRequired = errors.New("suite_name and status are required")
)

// ValidationError reports malformed or incomplete client input
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %v", e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ConfigurationError reports missing deployment configuration
type ConfigurationError struct {
	Err error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("service misconfigured: %v", e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// StoreError reports a failed call to the record store
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s failed: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
