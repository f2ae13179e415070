// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package bincodec

import (
	"fmt"
	"io"

	"go.e43.eu/bincodec/internal/coder"
	"go.e43.eu/bincodec/internal/errors"
	"golang.org/x/exp/constraints"
)

// countPrealloc caps how many elements Count allocates before any have been
// read; counts usually come off the wire.
const countPrealloc = 1024

// New makes a codec out of a decode function and an encode function. The
// caller is responsible for the two agreeing on the layout.
func New[T any](decode func(r io.Reader) (T, error), encode func(w io.Writer, v T) error) Codec[T] {
	return coder.Func[T]{Dec: decode, Enc: encode}
}

// Bind matches a constant, such as a magic number or version byte.
//
// Decoding reads a value with c and fails with a *CheckError (matching
// ErrCheckFailed) if it is not equal to expected. Encoding always writes
// expected.
func Bind[T comparable](c Codec[T], expected T) Codec[Unit] {
	return coder.Func[Unit]{
		Dec: func(r io.Reader) (Unit, error) {
			v, err := c.Decode(r)
			if err != nil {
				return Unit{}, err
			}
			if v != expected {
				return Unit{}, errors.NewCheckError(expected, v)
			}
			return Unit{}, nil
		},
		Enc: func(w io.Writer, _ Unit) error {
			return c.Encode(w, expected)
		},
	}
}

// Skip ignores a field, such as padding or a reserved word.
//
// Decoding reads a value with c and throws it away, whatever it is. Encoding
// always writes fill. Skip is therefore not symmetric: whatever was read is
// lost.
func Skip[T any](c Codec[T], fill T) Codec[Unit] {
	return coder.Func[Unit]{
		Dec: func(r io.Reader) (Unit, error) {
			_, err := c.Decode(r)
			return Unit{}, err
		},
		Enc: func(w io.Writer, _ Unit) error {
			return c.Encode(w, fill)
		},
	}
}

// countCodec handles sequences of a length fixed by the format
type countCodec[T any] struct {
	elem Codec[T]
	n    int
}

// Count reads and writes exactly n elements with c.
//
// Encoding a slice whose length is not n is a precondition violation: the
// count is normally bound earlier in a record, and a mismatch means the
// record was assembled inconsistently.
func Count[T any](c Codec[T], n int) Codec[[]T] {
	if n < 0 {
		errors.Precondition("Count", "negative count %d", n)
	}
	return &countCodec[T]{c, n}
}

func (c *countCodec[T]) Decode(r io.Reader) ([]T, error) {
	s := make([]T, 0, min(c.n, countPrealloc))
	for i := 0; i < c.n; i++ {
		v, err := c.elem.Decode(r)
		if err != nil {
			if i > 0 {
				err = errors.NoEOF(err)
			}
			return nil, err
		}
		s = append(s, v)
	}
	return s, nil
}

func (c *countCodec[T]) Encode(w io.Writer, s []T) error {
	if len(s) != c.n {
		errors.Precondition("Count", "have %d elements, format requires %d", len(s), c.n)
	}

	for _, v := range s {
		if err := c.elem.Encode(w, v); err != nil {
			return err
		}
	}
	return nil
}

// optCodec handles values whose presence is decided by the format (usually
// by a flag bound earlier in a record)
type optCodec[T any] struct {
	elem    Codec[T]
	present bool
}

// Optional reads and writes a value with c only if present is true.
//
// When present is false, decoding consumes nothing and yields nil. Encoding a
// nil value when present is true (or a non-nil one when it is false) is a
// precondition violation.
func Optional[T any](c Codec[T], present bool) Codec[*T] {
	return &optCodec[T]{c, present}
}

func (c *optCodec[T]) Decode(r io.Reader) (*T, error) {
	if !c.present {
		return nil, nil
	}

	v, err := c.elem.Decode(r)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (c *optCodec[T]) Encode(w io.Writer, v *T) error {
	switch {
	case c.present && v != nil:
		return c.elem.Encode(w, *v)
	case !c.present && v == nil:
		return nil
	case c.present:
		errors.Precondition("Optional", "value absent but format requires it")
	default:
		errors.Precondition("Optional", "value present but format excludes it")
	}
	return nil
}

// Boolean represents a bool on the wire as one of two sentinel values.
//
// Decoding any other raw value fails with a *CheckError (matching both
// ErrCheckFailed and ErrInvalidValue).
func Boolean[T comparable](c Codec[T], trueVal, falseVal T) Codec[bool] {
	if trueVal == falseVal {
		errors.Precondition("Boolean", "true and false sentinels are both %#v", trueVal)
	}

	return coder.Func[bool]{
		Dec: func(r io.Reader) (bool, error) {
			v, err := c.Decode(r)
			switch {
			case err != nil:
				return false, err
			case v == trueVal:
				return true, nil
			case v == falseVal:
				return false, nil
			default:
				return false, &errors.CheckError{
					Expected: fmt.Sprintf("%#v or %#v", trueVal, falseVal),
					Actual:   fmt.Sprintf("%#v", v),
					Sentinel: true,
				}
			}
		},
		Enc: func(w io.Writer, b bool) error {
			if b {
				return c.Encode(w, trueVal)
			}
			return c.Encode(w, falseVal)
		},
	}
}

// Cast presents a codec for U as a codec for T, given conversions in both
// directions which cannot fail.
func Cast[T, U any](c Codec[U], to func(U) T, from func(T) U) Codec[T] {
	return coder.Func[T]{
		Dec: func(r io.Reader) (T, error) {
			u, err := c.Decode(r)
			if err != nil {
				var zero T
				return zero, err
			}
			return to(u), nil
		},
		Enc: func(w io.Writer, v T) error {
			return c.Encode(w, from(v))
		},
	}
}

// TryCast presents a codec for U as a codec for T, given conversions in both
// directions which may fail. A failed conversion either way is reported as a
// *CastError (matching ErrCastFailed) wrapping the conversion's error.
//
// On encode, nothing is written if the conversion fails.
func TryCast[T, U any](c Codec[U], to func(U) (T, error), from func(T) (U, error)) Codec[T] {
	return coder.Func[T]{
		Dec: func(r io.Reader) (T, error) {
			var zero T
			u, err := c.Decode(r)
			if err != nil {
				return zero, err
			}

			v, err := to(u)
			if err != nil {
				return zero, &errors.CastError{
					From:       coder.TypeName[U](),
					To:         coder.TypeName[T](),
					Underlying: err,
				}
			}
			return v, nil
		},
		Enc: func(w io.Writer, v T) error {
			u, err := from(v)
			if err != nil {
				return &errors.CastError{
					From:       coder.TypeName[T](),
					To:         coder.TypeName[U](),
					Underlying: err,
				}
			}
			return c.Encode(w, u)
		},
	}
}

// Integer presents a codec for one integer type as a codec for another,
// failing with ErrCastFailed when a value does not fit in the destination.
// The common case is reading a u8 or u16 length into an int.
func Integer[T, U constraints.Integer](c Codec[U]) Codec[T] {
	return TryCast(c, convertInteger[U, T], convertInteger[T, U])
}

func convertInteger[From, To constraints.Integer](v From) (To, error) {
	t := To(v)
	if From(t) != v || (t < 0) != (v < 0) {
		return 0, fmt.Errorf("%d out of range", v)
	}
	return t, nil
}
