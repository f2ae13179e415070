// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package bincodec

import (
	"bytes"
	"io"

	"go.e43.eu/bincodec/internal/errors"
)

// DecodeWith reads a T out of r using only the decode half of d.
//
// The functions in this file accept a bare Decoder or Encoder, so Go cannot
// infer T from a Codec argument; callers name it, as in
// Unmarshal[uint16](buf, U16BE()).
func DecodeWith[T any](r io.Reader, d Decoder[T]) (T, error) {
	return d.Decode(r)
}

// EncodeWith writes v into w using only the encode half of e
func EncodeWith[T any](w io.Writer, v T, e Encoder[T]) error {
	return e.Encode(w, v)
}

// Marshals v into the returned buffer
func Marshal[T any](v T, e Encoder[T]) ([]byte, error) {
	var b bytes.Buffer
	if err := e.Encode(&b, v); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// Unmarshals buf, which must hold exactly one T and nothing after it
func Unmarshal[T any](buf []byte, d Decoder[T]) (T, error) {
	r := bytes.NewReader(buf)
	v, err := d.Decode(r)
	if err == nil && r.Len() != 0 {
		err = errors.ErrTrailingData
	}
	return v, err
}
