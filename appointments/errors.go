package appointments

import (
	"errors"
	"fmt"

	"garage/models"
)

var (
	// ErrNotFound means the record id is not in the mirror.
	ErrNotFound = errors.New("appointment not found")
	// ErrInvalidTransition means the requested status change is not in the
	// transition table. The administrative edit path is exempt.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrMissingField means a required field was empty before any store call.
	ErrMissingField = errors.New("missing required field")
)

// TransitionError carries the offending states so callers can report them.
type TransitionError struct {
	From models.Status
	To   models.Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid status transition %s -> %s", e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// MissingFieldError names the empty required field.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return "missing required field: " + e.Field
}

func (e *MissingFieldError) Unwrap() error { return ErrMissingField }
