package deliver

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes delivery failures.
type ErrorCode string

const (
	// ErrCodeSourceUnreadable indicates the source message could not be read.
	ErrCodeSourceUnreadable ErrorCode = "SOURCE_UNREADABLE"

	// ErrCodeDestinationUnwritable indicates the ingest directory is missing
	// or the delivered file could not be written.
	ErrCodeDestinationUnwritable ErrorCode = "DESTINATION_UNWRITABLE"

	// ErrCodeHeaderRewriteFailed wraps a header codec error.
	ErrCodeHeaderRewriteFailed ErrorCode = "HEADER_REWRITE_FAILED"
)

// Error is returned by Simulator.Deliver.
type Error struct {
	Code ErrorCode
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Path)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// CodeOf returns the delivery error code carried by err, or "" if err is
// not a delivery error.
func CodeOf(err error) ErrorCode {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}
