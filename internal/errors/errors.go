// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package errors

import (
	"fmt"
	"io"
	"strings"
)

type xerror string

func (e xerror) Error() string {
	return string(e)
}

const (
	// A value read from the stream did not match the value the format
	// requires (Bind), or matched neither sentinel (Boolean)
	ErrCheckFailed = xerror("bincodec: Check failed")

	// A fallible conversion between the wire type and the logical type failed
	ErrCastFailed = xerror("bincodec: Cast failed")

	// Text read from the stream is not valid in its encoding
	ErrInvalidText = xerror("bincodec: Invalid text encoding")

	// Text read from the stream was required to be ASCII but was not
	ErrNotASCII = xerror("bincodec: Text is not ASCII")

	// A raw value has no meaning in the logical type
	ErrInvalidValue = xerror("bincodec: Invalid value for type")

	// Bytes remained in the buffer after a complete value was decoded
	ErrTrailingData = xerror("bincodec: Trailing data after value")

	// The caller passed a value inconsistent with the format it is encoding
	// into. Only ever carried by a panic, never returned.
	ErrPrecondition = xerror("bincodec: Precondition violated")
)

// CheckError is returned when a value read from the stream is not one the
// format permits.
type CheckError struct {
	Expected string
	Actual   string

	// Sentinel is true when the check was a Boolean sentinel lookup
	Sentinel bool
}

func (e *CheckError) Is(target error) bool {
	switch target {
	case ErrCheckFailed:
		return true
	case ErrInvalidValue:
		return e.Sentinel
	default:
		return false
	}
}

func (e *CheckError) Error() string {
	return fmt.Sprintf("%s (expected %s, read %s)", ErrCheckFailed, e.Expected, e.Actual)
}

// NewCheckError builds a CheckError, formatting both values with %#v
func NewCheckError(expected, actual interface{}) *CheckError {
	return &CheckError{
		Expected: fmt.Sprintf("%#v", expected),
		Actual:   fmt.Sprintf("%#v", actual),
	}
}

// CastError wraps the reason a fallible conversion failed
type CastError struct {
	From, To   string
	Underlying error
}

func (e *CastError) Is(target error) bool {
	return target == ErrCastFailed
}

func (e *CastError) Unwrap() error {
	return e.Underlying
}

func (e *CastError) Error() string {
	if e.Underlying == nil {
		return fmt.Sprintf("%s (%s -> %s)", ErrCastFailed, e.From, e.To)
	}
	return fmt.Sprintf("%s (%s -> %s): %v", ErrCastFailed, e.From, e.To, e.Underlying)
}

// ConversionError reports code units which do not form valid text
type ConversionError struct {
	Encoding string
	// Offset of the first invalid code unit, in code units
	Offset int
}

func (e *ConversionError) Is(target error) bool {
	return target == ErrInvalidText
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("%s (%s, at unit %d)", ErrInvalidText, e.Encoding, e.Offset)
}

// PreconditionError is the panic value used when an encoder is handed a
// value whose shape contradicts the format (wrong fixed length, wrong element
// count, presence flag disagreeing with the value), or when a codec is
// constructed or composed incorrectly.
type PreconditionError struct {
	Op     string
	Reason string
}

func (e *PreconditionError) Is(target error) bool {
	return target == ErrPrecondition
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrPrecondition, e.Op, e.Reason)
}

// Precondition panics with a PreconditionError
func Precondition(op string, format string, args ...interface{}) {
	panic(&PreconditionError{Op: op, Reason: fmt.Sprintf(format, args...)})
}

type FieldError struct {
	Underlying error
	Path       string
}

func (err FieldError) Unwrap() error {
	return err.Underlying
}

func (err FieldError) Error() string {
	uerr := strings.TrimPrefix(err.Underlying.Error(), "bincodec: ")
	return fmt.Sprintf("bincodec: %s (at %s)", uerr, err.Path)
}

func WithFieldError(err error, parts ...string) error {
	if err == nil {
		return nil
	}

	var combined string
	if parts[0] == "" {
		parts[0] = "<anonymous>"
	}

	switch len(parts) {
	case 1:
		combined = parts[0]
	default:
		combined = strings.Join(parts, ".")
	}

	switch err := err.(type) {
	case FieldError:
		err.Path = fmt.Sprintf("%s %s", combined, err.Path)
		return err
	default:
		return FieldError{err, combined}
	}
}

// NoEOF converts io.EOF, bare or as the cause of a FieldError, into
// io.ErrUnexpectedEOF. It is applied once part of a value has been read, so
// that io.EOF only ever means the stream ended cleanly before a value.
func NoEOF(err error) error {
	switch e := err.(type) {
	case FieldError:
		e.Underlying = NoEOF(e.Underlying)
		return e
	default:
		if err == io.EOF {
			return io.ErrUnexpectedEOF
		}
		return err
	}
}
