package services

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors translated to HTTP statuses at the route boundary.
var (
	ErrNotFound          = errors.New("resource not found")
	ErrForbidden         = errors.New("action not permitted")
	ErrNotPending        = errors.New("report is not pending")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// ValidationError carries field-level detail for 400 responses.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

func (e *ValidationError) Add(field, msg string) {
	e.Fields[field] = msg
}

func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
