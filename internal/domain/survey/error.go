package survey

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("survey not found")
	ErrInvalidInput       = errors.New("invalid survey")
	ErrInvalidCoordinates = fmt.Errorf("%w: coordinates out of range", ErrInvalidInput)
)

// ValidationError ошибка валидации конкретного поля
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidInput
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

func invalidCoordinate(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason, Err: ErrInvalidCoordinates}
}
