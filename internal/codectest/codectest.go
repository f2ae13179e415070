// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

// Package codectest runs table driven tests of codecs in both directions.
package codectest

import (
	"bytes"
	"crypto/rand"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	bincodecinterfaces "go.e43.eu/bincodec/interfaces"
)

type Direction int

const (
	Both Direction = iota
	EncodeOnly
	DecodeOnly
)

// Codec is a type-erased codec, so that one table can test codecs for many
// types
type Codec interface {
	decode(r io.Reader) (interface{}, error)
	encode(w io.Writer, v interface{}) error
}

type wrapped[T any] struct {
	c bincodecinterfaces.Codec[T]
}

func (w wrapped[T]) decode(r io.Reader) (interface{}, error) {
	return w.c.Decode(r)
}

func (w wrapped[T]) encode(wr io.Writer, v interface{}) error {
	return w.c.Encode(wr, v.(T))
}

// Wrap erases the type of c
func Wrap[T any](c bincodecinterfaces.Codec[T]) Codec {
	return wrapped[T]{c}
}

// comparingWriter is an io.Writer which immediately compares every byte
// written to it against the values read from the passed reader. This
// enables capturing the call stack at the time any discrepancy in the
// written data occurs
//
// It captures the written data so that a final comparison (which may somtimes
// be more informative) can also be made
type comparingWriter struct {
	T *testing.T

	// The reader
	R io.Reader

	// Error returned by reader
	Rerr error

	// Bytes written
	B []byte

	// Bytes expected
	X []byte
}

func newComparingWriter(t *testing.T, r io.Reader) *comparingWriter {
	return &comparingWriter{
		T: t,
		R: r,
	}
}

func (w *comparingWriter) Write(buf []byte) (int, error) {
	w.T.Helper()

	w.B = append(w.B, buf...)

	var expected []byte
	if w.Rerr == nil {
		expected = make([]byte, len(buf))
		nr, err := io.ReadFull(w.R, expected)
		expected = expected[0:nr]
		w.X = append(w.X, expected...)
		if err == io.ErrUnexpectedEOF {
			err = io.EOF
		}

		if err != nil {
			require.Equal(w.T, io.EOF, err, "comparingWriter: Comparison reader returned non-EOF error")
			assert.Failf(w.T, "Attempt to write after end", "Attempt to write %d bytes after end of expected data", len(buf)-nr)
			w.Rerr = err
		}
	}

	if len(expected) != 0 {
		assert.Equalf(w.T, expected, buf[0:len(expected)], "Expected equal value during %d byte write", len(buf))
	}

	return len(buf), nil
}

func (w *comparingWriter) Assert() {
	buf := make([]byte, 1024)
	err := w.Rerr

	var n int
	for err == nil {
		n, err = w.R.Read(buf)
		w.X = append(w.X, buf[0:n]...)
		if err != nil {
			require.Equal(w.T, io.EOF, err, "comparingWriter: Comparison reader must only return io.EOF error")
		}
	}

	assert.Equalf(w.T, w.X, w.B, "Expected written data to match expected")
}

// SingleByteReader is a really annoying io.Reader which returns a single byte
// at a time
type SingleByteReader struct {
	R io.Reader
}

func (r *SingleByteReader) Read(buf []byte) (int, error) {
	switch {
	case len(buf) == 0:
		return 0, nil
	default:
		return r.R.Read(buf[0:1])
	}
}

// InfinitelyPadded returns a reader factory with a prefix given by buf which
// never stops after that. Decoders must not read past their own bytes, so
// DecodeOnly cases using it should still succeed.
func InfinitelyPadded(buf []byte) func(*testing.T, Direction) io.Reader {
	return func(*testing.T, Direction) io.Reader {
		return io.MultiReader(bytes.NewReader(buf), rand.Reader)
	}
}

type Case struct {
	// Name of this test case
	Name string

	// Which directions to run this test in (defaults to both)
	Direction Direction

	// The codec under test
	Codec Codec

	// The object to encode, or to use for comparison on decoding
	Object interface{}

	// The encoded representation of the object
	Bytes []byte

	// Returns a reader which returns a representation of the object. If
	// specified, will be used instead of Bytes. Readers which do not end
	// (see InfinitelyPadded) disable the trailing bytes check.
	ReaderFactory func(*testing.T, Direction) io.Reader

	// Error expected on en/decode
	EncErrorIs error
	DecErrorIs error

	// Comparator to use (instead of default) after successful decoding
	// The NaN tests use this because NaN != NaN, so normal comparisons won't work
	DecodeComparator func(t *testing.T, expt, actual interface{})
}

func Run(t *testing.T, tcs []Case) {
	unbounded := make(map[int]bool)
	for i := range tcs {
		tc := &tcs[i]

		if tc.ReaderFactory == nil {
			b := tc.Bytes
			tc.ReaderFactory = func(*testing.T, Direction) io.Reader {
				return bytes.NewReader(b)
			}
		} else {
			unbounded[i] = true
		}

		if tc.DecodeComparator == nil {
			tc.DecodeComparator = func(t *testing.T, l, r interface{}) {
				t.Helper()
				assert.Equal(t, l, r, "decode output should match")
			}
		}
	}

	type generated struct {
		Case
		checkTrailing bool
	}

	var all []generated
	for i, tc := range tcs {
		all = append(all, generated{tc, !unbounded[i]})
	}
	t.Parallel()

	// For every case where the decoder is tested, build a variant with
	// the single byte reader
	for i, tc := range tcs {
		if tc.Direction == EncodeOnly {
			continue
		}
		tc.Name += "+singleByteReader"
		tc.Direction = DecodeOnly
		innerFactory := tc.ReaderFactory
		tc.ReaderFactory = func(t *testing.T, d Direction) io.Reader {
			return &SingleByteReader{innerFactory(t, d)}
		}

		all = append(all, generated{tc, !unbounded[i]})
	}

	for _, tc := range all {
		t.Run(tc.Name, func(t *testing.T) {
			t.Parallel()

			if tc.Direction != DecodeOnly {
				t.Run("Encode", func(t *testing.T) {
					t.Parallel()

					if tc.EncErrorIs != nil {
						err := tc.Codec.encode(io.Discard, tc.Object)
						require.Error(t, err, "Encoding should have returned an error")
						require.Truef(t, errors.Is(err, tc.EncErrorIs), "Error expected to be %s, but was %s", tc.EncErrorIs, err)
						return
					}

					w := newComparingWriter(t, tc.ReaderFactory(t, EncodeOnly))
					require.NoError(t, tc.Codec.encode(w, tc.Object), "Encode should succeed")
					w.Assert()
				})
			}

			if tc.Direction != EncodeOnly {
				t.Run("Decode", func(t *testing.T) {
					t.Parallel()

					r := tc.ReaderFactory(t, DecodeOnly)
					v, err := tc.Codec.decode(r)
					if tc.DecErrorIs != nil {
						if assert.Error(t, err, "Decoding should have returned an error") {
							assert.Truef(t, errors.Is(err, tc.DecErrorIs), "Error expected to be %s, but was %s", tc.DecErrorIs, err)
						} else {
							t.Logf("Returned %+v", v)
						}
						return
					}

					require.NoError(t, err, "Decode should succeed")
					if tc.checkTrailing {
						var trail bytes.Buffer
						nb, err := io.Copy(&trail, r)
						assert.NoError(t, err, "Should have no error draining tail")
						assert.Equalf(t, int64(0), nb, "Decoder left trailing bytes after end: %x", trail.Bytes())
					}
					tc.DecodeComparator(t, tc.Object, v)
				})
			}
		})
	}
}

// PanicsWithPrecondition asserts that f panics with an error matching
// target, which should be the package's ErrPrecondition.
func PanicsWithPrecondition(t *testing.T, target error, f func(), msgAndArgs ...interface{}) {
	t.Helper()

	defer func() {
		t.Helper()
		r := recover()
		if !assert.NotNil(t, r, msgAndArgs...) {
			return
		}
		err, ok := r.(error)
		if assert.Truef(t, ok, "panic value %#v is not an error", r) {
			assert.Truef(t, errors.Is(err, target), "panic %s is not %s", err, target)
		}
	}()
	f()
}
