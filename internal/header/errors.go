package header

import (
	"errors"
	"fmt"
)

// ParseErrorCode categorizes codec failures.
type ParseErrorCode string

const (
	// ErrCodeHeaderNotFound indicates no line in the text fits the header layout.
	ErrCodeHeaderNotFound ParseErrorCode = "HEADER_NOT_FOUND"

	// ErrCodeMalformedTimestamp indicates a digit group that is not a valid
	// YYMMDDHHMM instant.
	ErrCodeMalformedTimestamp ParseErrorCode = "MALFORMED_TIMESTAMP"
)

// ParseError is returned by Parse and Rewrite.
type ParseError struct {
	Code ParseErrorCode

	// Field names the offending timestamp ("created", "effective", "expires").
	// Empty for ErrCodeHeaderNotFound.
	Field string

	// Value is the raw digit group for ErrCodeMalformedTimestamp.
	Value string

	Err error
}

func (e *ParseError) Error() string {
	switch {
	case e.Field != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s %q: %v", e.Code, e.Field, e.Value, e.Err)
	case e.Field != "":
		return fmt.Sprintf("%s: %s %q", e.Code, e.Field, e.Value)
	default:
		return fmt.Sprintf("%s: no header line found", e.Code)
	}
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsHeaderNotFound reports whether err is (or wraps) a missing-header error.
func IsHeaderNotFound(err error) bool {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.Code == ErrCodeHeaderNotFound
	}
	return false
}

// IsMalformedTimestamp reports whether err is (or wraps) a bad timestamp error.
func IsMalformedTimestamp(err error) bool {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.Code == ErrCodeMalformedTimestamp
	}
	return false
}

func errNotFound() *ParseError {
	return &ParseError{Code: ErrCodeHeaderNotFound}
}

func errMalformed(field, value string, err error) *ParseError {
	return &ParseError{
		Code:  ErrCodeMalformedTimestamp,
		Field: field,
		Value: value,
		Err:   err,
	}
}
