package model

import (
	"errors"
	"fmt"
)

// Validation sentinels.  Callers test for these with errors.Is; the
// concrete value returned by constructors is a *ValidationError that
// carries the offending field and value.
var (
	ErrInvalidClassID     = errors.New("invalid class id")
	ErrInvalidCourseID    = errors.New("invalid course id")
	ErrInvalidYearQuarter = errors.New("invalid year quarter")
	ErrInvalidFacetValue  = errors.New("invalid facet value")
	ErrTooManyPrefixes    = errors.New("too many course prefixes")
	ErrNoPrefixes         = errors.New("no course prefixes")
)

// ValidationError describes input that was rejected at the boundary.
type ValidationError struct {
	Err    error
	Field  string
	Value  string
	Reason string
}

// NewValidationError builds a ValidationError wrapping one of the sentinels above.
func NewValidationError(err error, field, value, reason string) *ValidationError {
	return &ValidationError{Err: err, Field: field, Value: value, Reason: reason}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%v: %s", e.Err, e.Reason)
	}
	return fmt.Sprintf("%v: %s %q: %s", e.Err, e.Field, e.Value, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// IsValidation reports whether err is (or wraps) a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Code returns a short machine readable code for the wrapped sentinel.
func (e *ValidationError) Code() string {
	switch {
	case errors.Is(e.Err, ErrInvalidClassID):
		return "invalid_class_id"
	case errors.Is(e.Err, ErrInvalidCourseID):
		return "invalid_course_id"
	case errors.Is(e.Err, ErrInvalidYearQuarter):
		return "invalid_year_quarter"
	case errors.Is(e.Err, ErrInvalidFacetValue):
		return "invalid_facet_value"
	case errors.Is(e.Err, ErrTooManyPrefixes):
		return "too_many_prefixes"
	case errors.Is(e.Err, ErrNoPrefixes):
		return "no_prefixes"
	}
	return "validation_failed"
}
