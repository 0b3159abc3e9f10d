package core

import (
	"errors"
	"fmt"
)

// ErrForbidden is returned when the caller lacks the privilege flag.
// Authorization is checked before any filesystem mutation.
var ErrForbidden = errors.New("caller is not privileged")

// ValidationError reports a malformed or disallowed input field.
type ValidationError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// NotFoundError reports a referenced extension or file that does not exist.
type NotFoundError struct {
	Resource string `json:"resource"`
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource string) *NotFoundError {
	return &NotFoundError{Resource: resource}
}

// ConflictError reports a name collision with an existing extension directory.
type ConflictError struct {
	Name string `json:"name"`
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("extension %q already exists", e.Name)
}

// NewConflictError creates a new ConflictError
func NewConflictError(name string) *ConflictError {
	return &ConflictError{Name: name}
}

// ProcessError reports a failed external program invocation. Details carries
// the program's captured diagnostic output verbatim so the operator can debug
// the failure from the HTTP response.
type ProcessError struct {
	Program string
	Details string
	Err     error
}

func (e *ProcessError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s failed: %v: %s", e.Program, e.Err, e.Details)
	}
	return fmt.Sprintf("%s failed: %v", e.Program, e.Err)
}

func (e *ProcessError) Unwrap() error {
	return e.Err
}

// Interface guards
var (
	_ error = &ValidationError{}
	_ error = &NotFoundError{}
	_ error = &ConflictError{}
	_ error = &ProcessError{}
)
