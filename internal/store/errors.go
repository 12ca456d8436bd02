package store

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a subject already has a running timer,
	// or when a unique value is taken.
	ErrConflict = errors.New("conflict")

	// ErrForbidden is returned when a subject acts on another subject's entry.
	ErrForbidden = errors.New("forbidden")

	// ErrEntryClosed is returned when stopping a timer that already stopped.
	// It matches ErrNotFound under errors.Is: a closed entry is not an open one.
	ErrEntryClosed = fmt.Errorf("%w: time entry already stopped", ErrNotFound)
)

// ValidationError reports a caller-supplied field that failed a rule.
type ValidationError struct {
	Field   string
	Rule    string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("invalid %s: failed %q", e.Field, e.Rule)
}

// IsValidation reports whether err carries a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func invalid(field, rule, msg string) error {
	return &ValidationError{Field: field, Rule: rule, Message: msg}
}

// isUniqueViolation detects SQLite UNIQUE constraint failures by message;
// the driver does not export a typed constraint error.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
