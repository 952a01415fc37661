package errors

import (
	"errors"
	"fmt"
)

// Re-exported standard helpers so callers need a single errors import.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
)

// ErrorCode identifies a class of failure. Domain packages declare
// their own codes next to the code that raises them.
type ErrorCode string

// Error is a coded error carrying optional context data, typically the
// offending path or value.
type Error interface {
	error
	Code() ErrorCode
	Data() any
	Unwrap() error
}

type codedError struct {
	code ErrorCode
	msg  string
	err  error
	data any
}

func (e *codedError) Error() string {
	msg := e.msg
	if msg == "" {
		msg = messageFor(e.code)
	}

	switch {
	case e.data != nil:
		return fmt.Sprintf("%s: %v", msg, e.data)
	case e.err != nil:
		return fmt.Sprintf("%s: %v", msg, e.err)
	}

	return msg
}

func (e *codedError) Code() ErrorCode { return e.code }

func (e *codedError) Data() any { return e.data }

func (e *codedError) Unwrap() error { return e.err }

// New returns an error for the given code with its registered message.
func New(code ErrorCode) Error {
	return &codedError{code: code}
}

// Wrap attaches a code to an underlying error.
func Wrap(code ErrorCode, err error) Error {
	return &codedError{code: code, err: err}
}

// WithMessage returns a coded error with an explicit message.
func WithMessage(code ErrorCode, msg string) Error {
	return &codedError{code: code, msg: msg}
}

// WithData returns a coded error carrying context data.
func WithData(code ErrorCode, data any) Error {
	return &codedError{code: code, data: data}
}

// CodeOf extracts the ErrorCode from err, unwrapping as needed.
// Returns the empty code when err carries none.
func CodeOf(err error) ErrorCode {
	var coded Error
	if As(err, &coded) {
		return coded.Code()
	}

	return ""
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}
