package intelligence

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is returned for text that cannot be processed at all
var ErrInvalidInput = errors.New("invalid input")

// ValidationError describes why input was rejected
type ValidationError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrInvalidInput, e.Field, e.Reason)
}

// Unwrap lets errors.Is match ErrInvalidInput
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}
