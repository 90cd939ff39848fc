package domain

import "fmt"

// NotFoundError indicates that a referenced entity does not exist.
// It is also used deliberately where revealing existence would leak
// information the caller is not entitled to.
type NotFoundError struct {
	Resource string
	ID       string
}

// NewNotFoundError creates a NotFoundError for the given resource and identifier.
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ValidationError indicates that a supplied value violates a business rule.
type ValidationError struct {
	Message string
}

// NewValidationError creates a ValidationError with the given message.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ForbiddenError indicates the caller is not allowed to perform the operation.
type ForbiddenError struct {
	Message string
}

// NewForbiddenError creates a ForbiddenError with the given message.
func NewForbiddenError(message string) *ForbiddenError {
	return &ForbiddenError{Message: message}
}

func (e *ForbiddenError) Error() string {
	return e.Message
}

// ConflictError indicates a concurrent modification or uniqueness conflict.
type ConflictError struct {
	Message string
}

// NewConflictError creates a ConflictError with the given message.
func NewConflictError(message string) *ConflictError {
	return &ConflictError{Message: message}
}

func (e *ConflictError) Error() string {
	return e.Message
}

// InvalidStateError indicates an attempted transition that the entity's
// current state does not allow.
type InvalidStateError struct {
	Current string
	Target  string
}

// NewInvalidStateError creates an InvalidStateError for the given transition.
func NewInvalidStateError(current, target string) *InvalidStateError {
	return &InvalidStateError{Current: current, Target: target}
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("invalid state transition from %s to %s", e.Current, e.Target)
}
