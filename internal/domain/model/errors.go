package model

import (
	"errors"
	"fmt"
)

// Sentinel error kinds for player operations. Callers match with errors.Is.
var (
	ErrValidation = errors.New("validation failed")
	ErrInvalidID  = errors.New("invalid player id")
	ErrNotFound   = errors.New("player not found")
)

// FieldError reports a single rejected payload field.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Unwrap lets errors.Is(err, ErrValidation) match every FieldError.
func (e *FieldError) Unwrap() error { return ErrValidation }
