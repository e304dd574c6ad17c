package storage

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrInvalidData = errors.New("invalid data")
)

// ConflictError carries the name of the violated unique constraint so callers
// can tell which field clashed.
type ConflictError struct {
	Constraint string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict on %s", e.Constraint)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}
