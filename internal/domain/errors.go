package domain

import (
	"errors"
	"fmt"
)

// Error types for classifying pipeline errors. Each stage converts failures
// into one of these kinds so the orchestrator and the API layer can decide
// how to record or surface them without string matching.

// ValidationError represents missing or malformed caller input.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

// NewValidationError creates a ValidationError with a formatted message.
func NewValidationError(format string, args ...interface{}) error {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

// NotFoundError represents a referenced entity that does not exist.
type NotFoundError struct {
	msg string
}

func (e *NotFoundError) Error() string {
	return e.msg
}

// NewNotFoundError creates a NotFoundError with a formatted message.
func NewNotFoundError(format string, args ...interface{}) error {
	return &NotFoundError{msg: fmt.Sprintf(format, args...)}
}

// UpstreamFetchError represents a remote page that was unreachable or
// answered with a non-2xx status.
type UpstreamFetchError struct {
	URL        string
	StatusCode int
	err        error
}

func (e *UpstreamFetchError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("fetch %s: %v", e.URL, e.err)
	}
	return fmt.Sprintf("fetch %s: upstream returned status %d", e.URL, e.StatusCode)
}

func (e *UpstreamFetchError) Unwrap() error {
	return e.err
}

// NewUpstreamFetchError creates an UpstreamFetchError for a non-2xx response.
func NewUpstreamFetchError(url string, statusCode int) error {
	return &UpstreamFetchError{URL: url, StatusCode: statusCode}
}

// WrapUpstreamFetchError wraps a transport-level error (DNS, timeout, reset).
func WrapUpstreamFetchError(url string, err error) error {
	return &UpstreamFetchError{URL: url, err: err}
}

// GenerationError represents a failed schema generation step.
type GenerationError struct {
	err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("schema generation: %v", e.err)
}

func (e *GenerationError) Unwrap() error {
	return e.err
}

// NewGenerationError wraps an error from the generation step.
func NewGenerationError(err error) error {
	return &GenerationError{err: err}
}

// PersistenceError represents a datastore read or write failure.
type PersistenceError struct {
	err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence: %v", e.err)
}

func (e *PersistenceError) Unwrap() error {
	return e.err
}

// WrapPersistenceError wraps a datastore error. Returns nil for nil input.
func WrapPersistenceError(err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceError{err: err}
}

// ConfigurationError represents required settings being absent. Fatal to the
// call that needed them, but still caught at the per-item boundary.
type ConfigurationError struct {
	msg string
}

func (e *ConfigurationError) Error() string {
	return e.msg
}

// NewConfigurationError creates a ConfigurationError with a formatted message.
func NewConfigurationError(format string, args ...interface{}) error {
	return &ConfigurationError{msg: fmt.Sprintf(format, args...)}
}

// IsValidation returns true if the error is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound returns true if the error is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsUpstreamFetch returns true if the error is an UpstreamFetchError.
func IsUpstreamFetch(err error) bool {
	var uf *UpstreamFetchError
	return errors.As(err, &uf)
}

// IsConfiguration returns true if the error is a ConfigurationError.
func IsConfiguration(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}
