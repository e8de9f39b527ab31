package optlock

import (
	"errors"
	"fmt"
)

// Sentinels so callers can branch with errors.Is without caring about
// the concrete error type.
var (
	ErrMissingVersion = errors.New("missing_row_version")
	ErrInvalidVersion = errors.New("invalid_row_version")
	ErrStaleRecord    = errors.New("stale_record")
)

// MissingVersionError is returned when the change set does not carry
// the lock field, or carries a blank value for it.
type MissingVersionError struct {
	Field string
}

func (e *MissingVersionError) Error() string {
	return fmt.Sprintf("Attribute '%s' is required.", e.Field)
}

func (e *MissingVersionError) Is(target error) bool { return target == ErrMissingVersion }

// InvalidVersionError is returned when the lock field is present but
// cannot be read as a whole number.
type InvalidVersionError struct {
	Field string
	Value any
	Err   error
}

func (e *InvalidVersionError) Error() string {
	return fmt.Sprintf("Attribute '%s' must be an integer, got %v", e.Field, e.Value)
}

func (e *InvalidVersionError) Is(target error) bool { return target == ErrInvalidVersion }

func (e *InvalidVersionError) Unwrap() error { return e.Err }

/*
StaleRecordError is returned when the caller's version does not match
the version the record currently holds. Expected is what the caller
sent, Actual is what the record carries.
*/
type StaleRecordError struct {
	RecordID  string
	Operation string
	Expected  int64
	Actual    int64
}

func (e *StaleRecordError) Error() string {
	return fmt.Sprintf(
		"attempted to %s a stale record %s (row version %d, current %d)",
		e.Operation, e.RecordID, e.Expected, e.Actual,
	)
}

func (e *StaleRecordError) Is(target error) bool { return target == ErrStaleRecord }
