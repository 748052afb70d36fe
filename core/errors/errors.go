// Package errors provides standardized error types and helpers for the TMX parser.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput indicates malformed input that could not be tokenized
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnsupported indicates an unsupported operation or encoding
	ErrUnsupported = errors.New("unsupported")

	// ErrStructure is the parent of every listener-level structural error
	ErrStructure = errors.New("structural error")
	// ErrMissingContext indicates an action arrived without the element it belongs to
	ErrMissingContext = fmt.Errorf("%w: missing context", ErrStructure)
	// ErrUnitAlreadyOpen indicates a unit started while another unit was still open
	ErrUnitAlreadyOpen = fmt.Errorf("%w: unit already open", ErrStructure)
	// ErrStrayClose indicates a closing tag that does not match the open element (strict mode)
	ErrStrayClose = fmt.Errorf("%w: stray closing tag", ErrStructure)
	// ErrStrayText indicates character data with nowhere to go (strict mode)
	ErrStrayText = fmt.Errorf("%w: stray text", ErrStructure)

	// ErrNotRestartable indicates a document whose source cannot be read twice
	ErrNotRestartable = errors.New("source is not restartable")
)

// NotFoundError represents a resource not found error with context
type NotFoundError struct {
	Resource string // Type of resource (e.g., "unit", "import")
	ID       string // Identifier of the resource
	Err      error  // Underlying error, if any
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e *NotFoundError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrNotFound, e.Err}
	}
	return []error{ErrNotFound}
}

// IOError represents an I/O operation error with context
type IOError struct {
	Operation string // Operation being performed (e.g., "read", "open")
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

// ParseError represents a tokenizer-level failure: the input is not well-formed XML.
type ParseError struct {
	Format  string // Format being parsed (e.g., "TMX", "filter")
	Path    string // File path, if applicable
	Line    int    // 1-based line of the failure, 0 if unknown
	Column  int    // 1-based column of the failure, 0 if unknown
	Message string // Error details
	Err     error  // Underlying error, if any
}

func (e *ParseError) Error() string {
	where := ""
	switch {
	case e.Path != "" && e.Line > 0:
		where = fmt.Sprintf(" at %s:%d:%d", e.Path, e.Line, e.Column)
	case e.Path != "":
		where = " at " + e.Path
	case e.Line > 0:
		where = fmt.Sprintf(" at %d:%d", e.Line, e.Column)
	}
	return fmt.Sprintf("failed to parse %s%s: %s", e.Format, where, e.Message)
}

func (e *ParseError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrInvalidInput, e.Err}
	}
	return []error{ErrInvalidInput}
}

// StructureError reports a document whose element nesting does not match the
// shape the listener expects, e.g. a <ph> outside of any <tuv>.
type StructureError struct {
	Action string // Listener action that failed (e.g., "variant", "done")
	Tag    string // Element name involved, if any
	Err    error  // One of the ErrStructure sentinels
}

func (e *StructureError) Error() string {
	if e.Tag != "" {
		return fmt.Sprintf("%s <%s>: %v", e.Action, e.Tag, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Action, e.Err)
}

func (e *StructureError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrStructure
}

// UnsupportedError represents an unsupported feature or encoding
type UnsupportedError struct {
	Feature string // Feature or format that is unsupported
	Reason  string // Why it's not supported
	Err     error  // Underlying error, if any
}

func (e *UnsupportedError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("unsupported %s: %s", e.Feature, e.Reason)
	}
	return fmt.Sprintf("unsupported %s", e.Feature)
}

func (e *UnsupportedError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrUnsupported, e.Err}
	}
	return []error{ErrUnsupported}
}

// Helper functions for creating common errors

// NewNotFound creates a NotFoundError
func NewNotFound(resource, id string) *NotFoundError {
	return &NotFoundError{
		Resource: resource,
		ID:       id,
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

// NewParse creates a ParseError
func NewParse(format, path, message string) *ParseError {
	return &ParseError{
		Format:  format,
		Path:    path,
		Message: message,
	}
}

// NewStructure creates a StructureError
func NewStructure(action, tag string, err error) *StructureError {
	return &StructureError{
		Action: action,
		Tag:    tag,
		Err:    err,
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
func Wrapf(err error, format string, args ...interface{}) error {
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
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
