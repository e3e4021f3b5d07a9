package prefs

import (
	"errors"
	"fmt"
)

var (
	// ErrPersistenceUnavailable wraps storage read/write failures. It is logged
	// and counted, never returned from a setter.
	ErrPersistenceUnavailable = errors.New("preference storage unavailable")
	ErrUnknownPreference      = errors.New("unknown preference")
)

// ValidationError is returned when a setter receives a value outside its domain.
// The previous value is retained.
type ValidationError struct {
	Field string
	Value string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid value %q for preference %s", e.Value, e.Field)
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
