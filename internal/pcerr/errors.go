// Package pcerr defines the error kinds used across the pkg-config core.
package pcerr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so the CLI driver can pick an exit path
// without inspecting error strings.
type Kind int

const (
	// ParseError means a .pc file did not match the metadata grammar.
	ParseError Kind = iota
	// NotFound means a package name did not resolve on the search path.
	NotFound
	// Invalid means a file parsed but is missing a required property.
	Invalid
	// VersionMismatch means a version constraint was not satisfied.
	VersionMismatch
	// IO means a file could not be opened or read.
	IO
	// ArgumentError means the command line itself was malformed.
	ArgumentError
)

func (k Kind) String() string {
	switch k {
	case ParseError:
		return "parse error"
	case NotFound:
		return "not found"
	case Invalid:
		return "invalid"
	case VersionMismatch:
		return "version mismatch"
	case IO:
		return "I/O error"
	case ArgumentError:
		return "argument error"
	default:
		return "error"
	}
}

// Error is a Kind-tagged error that wraps an optional cause.
type Error struct {
	Kind    Kind
	Package string // package name involved, if any
	Message string
	Cause   error
}

func (e *Error) Error() string {
	prefix := e.Kind.String()
	if e.Package != "" {
		prefix = fmt.Sprintf("%s: %s", prefix, e.Package)
	}
	if e.Message == "" {
		return prefix
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates an *Error with no wrapped cause.
func New(kind Kind, pkg, message string) *Error {
	return &Error{Kind: kind, Package: pkg, Message: message}
}

// Wrap creates an *Error that wraps cause, formatting message like fmt.Sprintf.
func Wrap(kind Kind, pkg string, cause error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Package: pkg, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Is reports whether err is (or wraps) an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
