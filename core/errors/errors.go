// Package errors provides the error taxonomy shared by the archive packages.
//
// Data problems (missing, malformed, inconsistent, corrupted, tool failures)
// are values that get accumulated in a Collector and reported together.
// Programming errors (unregistered codec kinds) panic instead.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common cases
var (
	// ErrNotFound indicates an artifact or sub-store was not found
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput indicates an artifact could not be parsed
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnsupported indicates an unsupported operation, such as writing a read-only kind
	ErrUnsupported = errors.New("unsupported")
	// ErrInconsistent indicates a cross-artifact referential or structural violation
	ErrInconsistent = errors.New("inconsistent")
	// ErrDigestMismatch indicates an artifact no longer matches its recorded digest
	ErrDigestMismatch = errors.New("digest mismatch")
	// ErrToolFailure indicates an external tool exited abnormally or timed out
	ErrToolFailure = errors.New("tool failure")
)

// NotFoundError represents a missing artifact or store
type NotFoundError struct {
	Resource string // Type of resource (e.g., "artifact", "book", "collection")
	ID       string // Identifier of the resource
	Err      error  // Underlying error, if any
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e *NotFoundError) Unwrap() error {
	if e.Err != nil {
		return errors.Join(ErrNotFound, e.Err)
	}
	return ErrNotFound
}

// ParseError represents an artifact that is present but malformed.
// Message is kept verbatim so codec diagnostics reach users unchanged.
type ParseError struct {
	Format  string // Artifact kind being parsed (e.g., "narrative sections")
	Path    string // Artifact name, if known
	Line    int    // 1-based line or row number, 0 when not applicable
	Message string // Error details
	Err     error  // Underlying error, if any
}

func (e *ParseError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = fmt.Sprintf("failed to parse %s", e.Format)
		if e.Line > 0 {
			msg = fmt.Sprintf("%s at line %d", msg, e.Line)
		}
		if e.Err != nil {
			msg = fmt.Sprintf("%s: %v", msg, e.Err)
		}
	}
	if e.Path != "" {
		return e.Path + ": " + msg
	}
	return msg
}

func (e *ParseError) Unwrap() error {
	if e.Err != nil {
		return errors.Join(ErrInvalidInput, e.Err)
	}
	return ErrInvalidInput
}

// InconsistencyError represents a violation found by cross-validating artifacts.
type InconsistencyError struct {
	Subject string // Book, collection or artifact the problem belongs to
	Message string
}

func (e *InconsistencyError) Error() string {
	if e.Subject != "" {
		return fmt.Sprintf("%s: %s", e.Subject, e.Message)
	}
	return e.Message
}

func (e *InconsistencyError) Unwrap() error {
	return ErrInconsistent
}

// DigestMismatchError represents a failed bit-level verification.
type DigestMismatchError struct {
	Artifact string
	Expected string
	Actual   string // empty when the artifact could not be read
}

func (e *DigestMismatchError) Error() string {
	if e.Actual == "" {
		return fmt.Sprintf("checksum mismatch for %s: artifact unreadable", e.Artifact)
	}
	return fmt.Sprintf("checksum mismatch for %s: recorded %s, computed %s", e.Artifact, e.Expected, e.Actual)
}

func (e *DigestMismatchError) Unwrap() error {
	return ErrDigestMismatch
}

// ToolError represents an external tool invocation that failed.
type ToolError struct {
	Tool   string // Tool name (e.g., "identify", "convert")
	Target string // File the tool was run against
	Err    error  // Underlying error, if any
}

func (e *ToolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s failed on %s: %v", e.Tool, e.Target, e.Err)
	}
	return fmt.Sprintf("%s failed on %s", e.Tool, e.Target)
}

func (e *ToolError) Unwrap() error {
	if e.Err != nil {
		return errors.Join(ErrToolFailure, e.Err)
	}
	return ErrToolFailure
}

// IOError represents an I/O operation error with context
type IOError struct {
	Operation string // Operation being performed (e.g., "read", "write", "open")
	Path      string // File/resource path involved
	Err       error  // Underlying error
}

func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("failed to %s %s: %v", e.Operation, e.Path, e.Err)
	}
	return fmt.Sprintf("failed to %s: %v", e.Operation, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// UnsupportedError represents an unsupported feature or operation
type UnsupportedError struct {
	Feature string // Feature or operation that is unsupported
	Reason  string // Why it's not supported
}

func (e *UnsupportedError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("unsupported %s: %s", e.Feature, e.Reason)
	}
	return fmt.Sprintf("unsupported %s", e.Feature)
}

func (e *UnsupportedError) Unwrap() error {
	return ErrUnsupported
}

// Helper functions for creating common errors

// NewNotFound creates a NotFoundError
func NewNotFound(resource, id string) *NotFoundError {
	return &NotFoundError{
		Resource: resource,
		ID:       id,
	}
}

// NewParse creates a ParseError
func NewParse(format, path, message string) *ParseError {
	return &ParseError{
		Format:  format,
		Path:    path,
		Message: message,
	}
}

// NewMalformedRow creates the diagnostic for a table row with the wrong shape.
// The rendering matches what archive maintainers grep for in check logs.
func NewMalformedRow(table string, row int, cells []string) *ParseError {
	return &ParseError{
		Format:  table,
		Line:    row,
		Message: fmt.Sprintf("Malformed row in %s [%d]: [%s]", table, row, strings.Join(cells, ", ")),
	}
}

// NewInconsistency creates an InconsistencyError
func NewInconsistency(subject, format string, args ...any) *InconsistencyError {
	return &InconsistencyError{
		Subject: subject,
		Message: fmt.Sprintf(format, args...),
	}
}

// NewIO creates an IOError
func NewIO(operation, path string, err error) *IOError {
	return &IOError{
		Operation: operation,
		Path:      path,
		Err:       err,
	}
}

// NewUnsupported creates an UnsupportedError
func NewUnsupported(feature, reason string) *UnsupportedError {
	return &UnsupportedError{
		Feature: feature,
		Reason:  reason,
	}
}

// Wrap adds context to an error. If err is nil, returns nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf adds formatted context to an error. If err is nil, returns nil.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// Is wraps errors.Is for convenience
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience
func As(err error, target any) bool {
	return errors.As(err, target)
}

// New wraps errors.New for convenience
func New(text string) error {
	return errors.New(text)
}
