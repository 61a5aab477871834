// Package errors defines the error taxonomy surfaced by ignitekv: the five
// kinds an engine implementation can return (KeyNotFound, IoError,
// CodecError, UnexpectedCommand, EngineMismatch), wrapped with enough
// context — the key or path involved — to diagnose a failure without
// parsing the message string.
package errors

import (
	"errors"
	"fmt"
)

// Kind categorizes an Error so callers can branch on it with errors.Is
// instead of string matching.
type Kind string

const (
	KindKeyNotFound       Kind = "KEY_NOT_FOUND"
	KindIoError           Kind = "IO_ERROR"
	KindCodecError        Kind = "CODEC_ERROR"
	KindUnexpectedCommand Kind = "UNEXPECTED_COMMAND"
	KindEngineMismatch    Kind = "ENGINE_MISMATCH"
)

// Error is the concrete error type returned by every package in this
// module. It embeds an optional cause and carries the kind plus whatever
// key/path/detail context was available at the point of failure.
type Error struct {
	kind    Kind
	cause   error
	message string
	key     string
	path    string
}

func newError(kind Kind, cause error, msg string) *Error {
	return &Error{kind: kind, cause: cause, message: msg}
}

// WithKey records the key involved in the failing operation.
func (e *Error) WithKey(key string) *Error {
	e.key = key
	return e
}

// WithPath records the file path involved in the failing operation.
func (e *Error) WithPath(path string) *Error {
	e.path = path
	return e
}

func (e *Error) Error() string {
	msg := e.message
	if e.key != "" {
		msg = fmt.Sprintf("%s (key=%q)", msg, e.key)
	}
	if e.path != "" {
		msg = fmt.Sprintf("%s (path=%q)", msg, e.path)
	}
	if e.cause != nil {
		msg = fmt.Sprintf("%s: %s", msg, e.cause)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.cause }

// Kind returns the error category.
func (e *Error) Kind() Kind { return e.kind }

// Key returns the key associated with the error, if any.
func (e *Error) Key() string { return e.key }

// Path returns the file path associated with the error, if any.
func (e *Error) Path() string { return e.path }

// Sentinel values for the common errors.Is checks. Each compares equal
// (by Kind) to any *Error of the matching kind via the Is method below,
// so callers can do `errors.Is(err, errors.ErrKeyNotFound)` regardless of
// what context the concrete error carries.
var (
	ErrKeyNotFound       = newError(KindKeyNotFound, nil, "key not found")
	ErrEngineMismatch    = newError(KindEngineMismatch, nil, "engine mismatch")
	ErrUnexpectedCommand = newError(KindUnexpectedCommand, nil, "unexpected command")
)

// Is implements errors.Is support keyed on Kind rather than identity, so
// a *Error built with WithKey/WithPath still matches its bare sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.kind == t.kind
}

// NewKeyNotFound builds a KeyNotFound error for the given key.
func NewKeyNotFound(key string) *Error {
	return newError(KindKeyNotFound, nil, "key not found").WithKey(key)
}

// NewIoError wraps an underlying I/O failure.
func NewIoError(cause error, path string) *Error {
	return newError(KindIoError, cause, "i/o failure").WithPath(path)
}

// NewCodecError wraps a malformed or undecodable on-disk record.
func NewCodecError(cause error, path string) *Error {
	return newError(KindCodecError, cause, "malformed record").WithPath(path)
}

// NewUnexpectedCommand reports that an indexed position decoded to a
// record other than Set for the given key — an invariant breach.
func NewUnexpectedCommand(key string) *Error {
	return newError(KindUnexpectedCommand, nil, "indexed position is not a Set record").WithKey(key)
}

// NewEngineMismatch reports that a data directory was previously written
// by a different engine than the one attempting to open it now.
func NewEngineMismatch(want, got, path string) *Error {
	return newError(
		KindEngineMismatch, nil,
		fmt.Sprintf("data directory was created by engine %q, refusing to open as %q", got, want),
	).WithPath(path)
}

// Is reports whether err is (or wraps) an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.kind == kind
}
