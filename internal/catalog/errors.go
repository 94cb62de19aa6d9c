package catalog

import (
	"errors"
	"fmt"
	"strings"

	"moneybox/internal/store"
)

var (
	// ErrNotFound is wrapped by every "missing entity" error.
	ErrNotFound = errors.New("not found")

	ErrCategoryNotFound       = fmt.Errorf("category %w", ErrNotFound)
	ErrProductNotFound        = fmt.Errorf("product %w", ErrNotFound)
	ErrTargetCategoryNotFound = fmt.Errorf("target category %w", ErrNotFound)

	// ErrConflict is returned when the store kept reporting a newer revision
	// after every retry.
	ErrConflict = store.ErrConflict
)

// FieldError describes one invalid request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every field problem found in a request.
type ValidationError struct {
	Details []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Details))
	for i, d := range e.Details {
		parts[i] = d.Field + ": " + d.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, message string) {
	e.Details = append(e.Details, FieldError{Field: field, Message: message})
}

// err returns nil when no problems were recorded.
func (e *ValidationError) err() error {
	if len(e.Details) == 0 {
		return nil
	}
	return e
}

// invalid is a shortcut for a single-field validation error.
func invalid(field, message string) error {
	return &ValidationError{Details: []FieldError{{Field: field, Message: message}}}
}
