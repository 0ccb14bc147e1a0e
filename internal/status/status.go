// Package status defines the error taxonomy shared across the SQL pipeline.
package status

import (
	"errors"
	"fmt"
)

// Kind classifies an Error so callers can branch on failure category
// without parsing messages.
type Kind int

const (
	// OK is never attached to an Error; it exists so Kind's zero value is
	// distinguishable from a real failure.
	OK Kind = iota
	InvalidArgument
	NotFound
	AlreadyExists
	IOError
	ParseError
	ExecutionError
	NetworkError
	MemoryError
	InternalError
)

func (k Kind) String() string {
	switch k {
	case OK:
		return "OK"
	case InvalidArgument:
		return "InvalidArgument"
	case NotFound:
		return "NotFound"
	case AlreadyExists:
		return "AlreadyExists"
	case IOError:
		return "IOError"
	case ParseError:
		return "ParseError"
	case ExecutionError:
		return "ExecutionError"
	case NetworkError:
		return "NetworkError"
	case MemoryError:
		return "MemoryError"
	case InternalError:
		return "InternalError"
	default:
		return "Unknown"
	}
}

// Error is a classified, wrappable error.
type Error struct {
	Kind    Kind
	Message string
	Wrapped error
}

func (e *Error) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Wrapped }

func newf(k Kind, format string, args ...any) *Error {
	return &Error{Kind: k, Message: fmt.Sprintf(format, args...)}
}

// Wrapf classifies an existing error under kind k, preserving it for errors.Is/As.
func Wrapf(k Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: k, Message: fmt.Sprintf(format, args...), Wrapped: err}
}

func InvalidArgumentf(format string, args ...any) *Error { return newf(InvalidArgument, format, args...) }
func NotFoundf(format string, args ...any) *Error        { return newf(NotFound, format, args...) }
func AlreadyExistsf(format string, args ...any) *Error   { return newf(AlreadyExists, format, args...) }
func IOErrorf(format string, args ...any) *Error         { return newf(IOError, format, args...) }
func ParseErrorf(format string, args ...any) *Error      { return newf(ParseError, format, args...) }
func ExecutionErrorf(format string, args ...any) *Error  { return newf(ExecutionError, format, args...) }
func NetworkErrorf(format string, args ...any) *Error    { return newf(NetworkError, format, args...) }
func InternalErrorf(format string, args ...any) *Error   { return newf(InternalError, format, args...) }

// KindOf returns the Kind carried by err if it (or something it wraps) is a
// *Error, else InternalError — an unclassified error reaching the wire is
// itself an invariant violation worth flagging as internal.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return InternalError
}
