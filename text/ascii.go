// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package text

import (
	"io"

	"go.e43.eu/bincodec"
	"go.e43.eu/bincodec/internal/errors"
)

// asciiCodec restricts a UTF-8 codec to ASCII
type asciiCodec struct {
	name  string
	inner bincodec.Codec[string]
}

var _ bincodec.Codec[string] = &asciiCodec{}

// NullASCII is NullUTF8 restricted to ASCII.
func NullASCII() bincodec.Codec[string] {
	return &asciiCodec{"NullASCII", NullUTF8()}
}

// FixedASCII is FixedUTF8 restricted to ASCII.
func FixedASCII(n int) bincodec.Codec[string] {
	return &asciiCodec{"FixedASCII", FixedUTF8(n)}
}

func (c *asciiCodec) Decode(r io.Reader) (string, error) {
	s, err := c.inner.Decode(r)
	if err != nil {
		return "", err
	}

	if i := firstNonASCII(s); i >= 0 {
		return "", errors.ErrNotASCII
	}
	return s, nil
}

// Encode checks the whole string before anything is written.
func (c *asciiCodec) Encode(w io.Writer, s string) error {
	if i := firstNonASCII(s); i >= 0 {
		errors.Precondition(c.name, "byte %d (0x%02x) is not ASCII", i, s[i])
	}
	return c.inner.Encode(w, s)
}

func firstNonASCII(s string) int {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return i
		}
	}
	return -1
}
