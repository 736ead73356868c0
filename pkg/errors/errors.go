// Package errors provides the typed errors used across kgsync.
//
// Every error a pipeline can return falls into one of a few kinds, and
// callers branch on the kind instead of on concrete types:
//
//   - KindAccumulate: unresolvable references. Collected across the whole
//     input and reported once (UnresolvedError).
//   - KindFatal: remote fetch failures. The run stops immediately with the
//     triggering identifier (FetchError, APIError).
//   - KindInvalid: malformed input found before any remote call
//     (ValidationError, ValidationErrors, ParseError, ConfigError).
package errors

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Re-exported helpers so callers only need one errors import.
var (
	Is     = errors.Is
	As     = errors.As
	Join   = errors.Join
	Unwrap = errors.Unwrap
)

// Common sentinel errors for kgsync
var (
	// ErrNotFound indicates that a requested entity does not exist in the remote store
	ErrNotFound = errors.New("not found")

	// ErrUnresolved indicates that one or more references could not be resolved by name
	ErrUnresolved = errors.New("unresolved reference")

	// ErrFetchFailed indicates that a remote read failed (distinct from not found)
	ErrFetchFailed = errors.New("remote fetch failed")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrAPIKeyInvalid indicates that the indexer rejected the credentials
	ErrAPIKeyInvalid = errors.New("API key invalid")

	// ErrUnavailable indicates that the indexer is temporarily unavailable
	ErrUnavailable = errors.New("indexer unavailable")

	// ErrRateLimited indicates that the API rate limit has been exceeded
	ErrRateLimited = errors.New("rate limited")

	// ErrCanceled indicates that an operation was canceled
	ErrCanceled = errors.New("operation canceled")
)

// Kind classifies an error by how a caller must react to it.
type Kind int

const (
	// KindUnknown is any error kgsync did not produce itself.
	KindUnknown Kind = iota
	// KindAccumulate errors are collected across the full input and reported together.
	KindAccumulate
	// KindFatal errors stop the run immediately.
	KindFatal
	// KindInvalid errors describe bad input detected before remote work.
	KindInvalid
)

// String returns the string representation of a kind
func (k Kind) String() string {
	switch k {
	case KindAccumulate:
		return "accumulate"
	case KindFatal:
		return "fatal"
	case KindInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// KindOf reports the kind of err. Fatal wins when a joined error carries
// several kinds, since any fatal condition must stop the run.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrFetchFailed), errors.Is(err, ErrUnavailable),
		errors.Is(err, ErrRateLimited), errors.Is(err, ErrAPIKeyInvalid), IsCanceled(err):
		return KindFatal
	case errors.Is(err, ErrUnresolved):
		return KindAccumulate
	case errors.Is(err, ErrInvalidInput):
		return KindInvalid
	default:
		return KindUnknown
	}
}

// UnresolvedRef names one reference the remote store did not recognize.
type UnresolvedRef struct {
	Name    string // Display name as written by the curator (or the ID)
	Context string // Where it was referenced, e.g. `entity "Acme" / property "Founders"`
}

// UnresolvedError aggregates every unresolved reference found in one stage.
type UnresolvedError struct {
	Stage string
	Refs  []UnresolvedRef
}

// Error implements the error interface
func (e *UnresolvedError) Error() string {
	names := e.Names()
	return fmt.Sprintf("%s: %d unresolved reference(s): %s", e.Stage, len(names), strings.Join(names, ", "))
}

// Is implements errors.Is support
func (e *UnresolvedError) Is(target error) bool {
	return target == ErrUnresolved
}

// Names returns the distinct unresolved names in sorted order.
func (e *UnresolvedError) Names() []string {
	seen := make(map[string]bool, len(e.Refs))
	names := make([]string, 0, len(e.Refs))
	for _, ref := range e.Refs {
		if seen[ref.Name] {
			continue
		}
		seen[ref.Name] = true
		names = append(names, ref.Name)
	}
	sort.Strings(names)
	return names
}

// Add records an unresolved reference.
func (e *UnresolvedError) Add(name, context string) {
	e.Refs = append(e.Refs, UnresolvedRef{Name: name, Context: context})
}

// Err returns e when it holds at least one reference and nil otherwise.
func (e *UnresolvedError) Err() error {
	if e == nil || len(e.Refs) == 0 {
		return nil
	}
	return e
}

// NewUnresolvedError creates a new, empty UnresolvedError for a stage
func NewUnresolvedError(stage string) *UnresolvedError {
	return &UnresolvedError{Stage: stage}
}

// FetchError represents a failed read from the remote store.
type FetchError struct {
	Operation string // "search", "entity"
	ID        string // Entity ID or searched name
	Namespace string
	Err       error
}

// Error implements the error interface
func (e *FetchError) Error() string {
	if e.Namespace != "" {
		return fmt.Sprintf("fetch %s %s in namespace %s: %v", e.Operation, e.ID, e.Namespace, e.Err)
	}
	return fmt.Sprintf("fetch %s %s: %v", e.Operation, e.ID, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *FetchError) Is(target error) bool {
	return target == ErrFetchFailed
}

// NewFetchError creates a new FetchError
func NewFetchError(operation, id, namespace string, err error) *FetchError {
	return &FetchError{Operation: operation, ID: id, Namespace: namespace, Err: err}
}

// NotFoundError represents an error when a resource is not found
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Resource, e.ID)
}

// Is implements errors.Is support
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// ValidationErrors aggregates every validation failure in an input.
type ValidationErrors []*ValidationError

// Error implements the error interface
func (e ValidationErrors) Error() string {
	if len(e) == 1 {
		return e[0].Error()
	}
	lines := make([]string, 0, len(e)+1)
	lines = append(lines, fmt.Sprintf("%d validation errors:", len(e)))
	for _, v := range e {
		lines = append(lines, "  - "+v.Error())
	}
	return strings.Join(lines, "\n")
}

// Is implements errors.Is support
func (e ValidationErrors) Is(target error) bool {
	return target == ErrInvalidInput
}

// Err returns e when it is non-empty and nil otherwise.
func (e ValidationErrors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// APIError represents an error response from the indexer API
type APIError struct {
	Endpoint   string
	StatusCode int
	Message    string
	Err        error
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("API error from %s (status %d): %s", e.Endpoint, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API error from %s: %s", e.Endpoint, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *APIError) Is(target error) bool {
	switch {
	case e.StatusCode == 429:
		return target == ErrRateLimited
	case e.StatusCode == 401 || e.StatusCode == 403:
		return target == ErrAPIKeyInvalid
	case e.StatusCode >= 500:
		return target == ErrUnavailable
	}
	return false
}

// Retryable reports whether the request that produced e may be retried.
func (e *APIError) Retryable() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}

// NewAPIError creates a new APIError
func NewAPIError(endpoint string, statusCode int, message string) *APIError {
	return &APIError{
		Endpoint:   endpoint,
		StatusCode: statusCode,
		Message:    message,
	}
}

// ConfigError represents a configuration error
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewConfigError creates a new ConfigError
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{
		Component: component,
		Message:   message,
		Err:       err,
	}
}

// ParseError represents an error when parsing data formats
type ParseError struct {
	Format  string // "yaml", "json"
	File    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("parse error in %s file %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *ParseError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewParseError creates a new ParseError
func NewParseError(format, file string, message string, err error) *ParseError {
	return &ParseError{
		Format:  format,
		File:    file,
		Message: message,
		Err:     err,
	}
}

// IOError represents an error during I/O operations
type IOError struct {
	Operation string // "read", "write", "create", "open"
	Path      string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %s", e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("IO error during %s: %s", e.Operation, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// NewIOError creates a new IOError
func NewIOError(operation, path string, err error) *IOError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &IOError{
		Operation: operation,
		Path:      path,
		Message:   message,
		Err:       err,
	}
}

// ResourceError represents an error during resource operations
type ResourceError struct {
	Operation string // "build", "publish", "load"
	Resource  string // "batch", "workbook", "config"
	ID        string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ResourceError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("failed to %s %s %s: %s", e.Operation, e.Resource, e.ID, e.Message)
	}
	return fmt.Sprintf("failed to %s %s: %s", e.Operation, e.Resource, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ResourceError) Unwrap() error {
	return e.Err
}

// NewResourceError creates a new ResourceError
func NewResourceError(operation, resource, id string, err error) *ResourceError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &ResourceError{
		Operation: operation,
		Resource:  resource,
		ID:        id,
		Message:   message,
		Err:       err,
	}
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsUnresolved checks if an error carries unresolved references
func IsUnresolved(err error) bool {
	return errors.Is(err, ErrUnresolved)
}

// IsFatal checks if an error must stop the run immediately
func IsFatal(err error) bool {
	return KindOf(err) == KindFatal
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsRateLimited checks if an error is a rate limit error
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// IsCanceled checks if an error is a cancellation error, including an
// interrupted or timed-out context
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled) || errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// Helper wrapping functions for common patterns

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewIOError(operation, path, err)
}

// WrapResource wraps an error as a ResourceError
func WrapResource(operation, resource, id string, err error) error {
	if err == nil {
		return nil
	}
	return NewResourceError(operation, resource, id, err)
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, file, err.Error(), err)
}

// WrapFetch wraps an error as a FetchError
func WrapFetch(operation, id, namespace string, err error) error {
	if err == nil {
		return nil
	}
	return NewFetchError(operation, id, namespace, err)
}
