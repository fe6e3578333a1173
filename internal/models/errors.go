package models

import (
	"errors"
	"fmt"
)

// Sentinel errors matched with errors.Is by callers.
var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")
)

// FieldError describes a validation failure on a single field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists the fields that blocked an operation.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation: %s: %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	return fmt.Sprintf("validation: %d errors", len(e.Errors))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Errors: []FieldError{{Field: field, Message: message}}}
}

// NotFoundError reports an id that is not present in the collection.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// PedalboardNotFound is shorthand for a missing pedalboard.
func PedalboardNotFound(id string) *NotFoundError {
	return &NotFoundError{Entity: "pedalboard", ID: id}
}

// PedalNotFound is shorthand for a missing pedal.
func PedalNotFound(id string) *NotFoundError {
	return &NotFoundError{Entity: "pedal", ID: id}
}
