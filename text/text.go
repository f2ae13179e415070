// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

// Package text provides codecs for strings.
//
// Strings are framed either by a terminating zero code unit (the Null*
// codecs) or by a length the format fixes, possibly from an earlier field of
// a record (the Fixed* codecs, whose length is always in bytes). They are
// stored as UTF-8, as UTF-16 with big endian code units, or as UTF-8
// restricted to ASCII:
//
//                   | zero terminated | fixed length
//     --------------+-----------------+---------------
//     UTF-8         | NullUTF8()      | FixedUTF8(n)
//     ASCII         | NullASCII()     | FixedASCII(n)
//     UTF-16 (BE)   | NullUTF16()     | FixedUTF16(n)
//
// Decoding text which is not valid in its encoding fails with a
// *bincodec.ConversionError. Encoding a string whose encoded length is not
// that of a fixed length field, or a non-ASCII string into an ASCII field,
// panics with a *bincodec.PreconditionError.
package text

import (
	"io"
	"unicode/utf16"
	"unicode/utf8"

	"go.e43.eu/bincodec"
	"go.e43.eu/bincodec/internal/errors"
)

// nullUTF8Codec handles zero terminated UTF-8
type nullUTF8Codec struct{}

var _ bincodec.Codec[string] = nullUTF8Codec{}

// NullUTF8 reads UTF-8 up to a zero byte, and writes a string followed by a
// zero byte. Encoding does not check for zero bytes within the string.
func NullUTF8() bincodec.Codec[string] { return nullUTF8Codec{} }

func (nullUTF8Codec) Decode(r io.Reader) (string, error) {
	var (
		b  []byte
		u8 = bincodec.U8()
	)

	for {
		c, err := u8.Decode(r)
		switch {
		case err == io.EOF && len(b) > 0:
			return "", io.ErrUnexpectedEOF
		case err != nil:
			return "", err
		case c == 0:
			return decodeUTF8(b)
		}
		b = append(b, c)
	}
}

func (nullUTF8Codec) Encode(w io.Writer, s string) error {
	if _, err := io.WriteString(w, s); err != nil {
		return err
	}
	return bincodec.U8().Encode(w, 0)
}

// fixedUTF8Codec handles UTF-8 of a fixed byte length
type fixedUTF8Codec struct {
	len   int
	bytes bincodec.Codec[[]byte]
}

// FixedUTF8 reads and writes exactly n bytes of UTF-8.
func FixedUTF8(n int) bincodec.Codec[string] {
	return &fixedUTF8Codec{n, bincodec.Bytes(n)}
}

func (c *fixedUTF8Codec) Decode(r io.Reader) (string, error) {
	b, err := c.bytes.Decode(r)
	if err != nil {
		return "", err
	}
	return decodeUTF8(b)
}

func (c *fixedUTF8Codec) Encode(w io.Writer, s string) error {
	if len(s) != c.len {
		errors.Precondition("FixedUTF8", "string is %d bytes, format requires %d", len(s), c.len)
	}
	return c.bytes.Encode(w, []byte(s))
}

func decodeUTF8(b []byte) (string, error) {
	if utf8.Valid(b) {
		return string(b), nil
	}

	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size <= 1 {
			return "", &errors.ConversionError{Encoding: "UTF-8", Offset: i}
		}
		i += size
	}
	panic("unreachable")
}

// nullUTF16Codec handles zero terminated UTF-16
type nullUTF16Codec struct{}

var _ bincodec.Codec[string] = nullUTF16Codec{}

// NullUTF16 reads big endian UTF-16 code units up to a zero unit, and writes
// a string followed by a zero unit.
func NullUTF16() bincodec.Codec[string] { return nullUTF16Codec{} }

func (nullUTF16Codec) Decode(r io.Reader) (string, error) {
	var (
		units []uint16
		u16   = bincodec.U16BE()
	)

	for {
		u, err := u16.Decode(r)
		switch {
		case err == io.EOF && len(units) > 0:
			return "", io.ErrUnexpectedEOF
		case err != nil:
			return "", err
		case u == 0:
			return decodeUTF16(units)
		}
		units = append(units, u)
	}
}

func (nullUTF16Codec) Encode(w io.Writer, s string) error {
	units := utf16.Encode([]rune(s))
	if err := bincodec.Count(bincodec.U16BE(), len(units)).Encode(w, units); err != nil {
		return err
	}
	return bincodec.U16BE().Encode(w, 0)
}

// fixedUTF16Codec handles UTF-16 of a fixed byte length
type fixedUTF16Codec struct {
	len   int
	units bincodec.Codec[[]uint16]
}

// FixedUTF16 reads and writes exactly n bytes (n/2 big endian code units) of
// UTF-16. n must be even.
func FixedUTF16(n int) bincodec.Codec[string] {
	if n%2 != 0 {
		errors.Precondition("FixedUTF16", "odd byte length %d", n)
	}
	return &fixedUTF16Codec{n, bincodec.Count(bincodec.U16BE(), n/2)}
}

func (c *fixedUTF16Codec) Decode(r io.Reader) (string, error) {
	units, err := c.units.Decode(r)
	if err != nil {
		return "", err
	}
	return decodeUTF16(units)
}

func (c *fixedUTF16Codec) Encode(w io.Writer, s string) error {
	units := utf16.Encode([]rune(s))
	if 2*len(units) != c.len {
		errors.Precondition("FixedUTF16", "string is %d bytes as UTF-16, format requires %d", 2*len(units), c.len)
	}
	return c.units.Encode(w, units)
}

// decodeUTF16 rejects unpaired surrogates, which utf16.Decode would
// otherwise silently replace
func decodeUTF16(units []uint16) (string, error) {
	for i := 0; i < len(units); i++ {
		switch u := units[i]; {
		case u >= 0xD800 && u < 0xDC00:
			if i+1 == len(units) || units[i+1] < 0xDC00 || units[i+1] >= 0xE000 {
				return "", &errors.ConversionError{Encoding: "UTF-16", Offset: i}
			}
			i++
		case u >= 0xDC00 && u < 0xE000:
			return "", &errors.ConversionError{Encoding: "UTF-16", Offset: i}
		}
	}
	return string(utf16.Decode(units)), nil
}
