package service

import (
	"errors"
	"fmt"

	"inventario/internal/validator"
)

// ErrNotFound is returned when the referenced product does not exist.
var ErrNotFound = errors.New("product not found")

// ValidationError reports malformed or missing input. Nothing was written.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// StorageError wraps a record or attachment store failure. Op names the step that failed.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *StorageError) Unwrap() error { return e.Err }

// validate runs struct tags and reports the first failure.
func validate(in any) error {
	errs := validator.ValidateStruct(in)
	if len(errs) == 0 {
		return nil
	}
	return &ValidationError{Field: errs[0].Field, Message: errs[0].Message()}
}
