// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package text

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.e43.eu/bincodec"
	"go.e43.eu/bincodec/internal/codectest"
)

func TestText(t *testing.T) {
	testcases := []codectest.Case{
		{
			Name:   "null utf8 Foo",
			Codec:  codectest.Wrap(NullUTF8()),
			Object: "Foo",
			Bytes:  []byte{0x46, 0x6f, 0x6f, 0x00},
		}, {
			Name:   "null utf8 empty",
			Codec:  codectest.Wrap(NullUTF8()),
			Object: "",
			Bytes:  []byte{0x00},
		}, {
			Name:   "null utf8 multibyte",
			Codec:  codectest.Wrap(NullUTF8()),
			Object: "hé",
			Bytes:  []byte{'h', 0xc3, 0xa9, 0},
		}, {
			Name:          "null utf8 stops at terminator",
			Direction:     codectest.DecodeOnly,
			Codec:         codectest.Wrap(NullUTF8()),
			Object:        "ab",
			ReaderFactory: codectest.InfinitelyPadded([]byte{'a', 'b', 0}),
		}, {
			Name:       "null utf8 unterminated",
			Direction:  codectest.DecodeOnly,
			Codec:      codectest.Wrap(NullUTF8()),
			Object:     "",
			Bytes:      []byte{'a', 'b'},
			DecErrorIs: io.ErrUnexpectedEOF,
		}, {
			Name:       "null utf8 nothing",
			Direction:  codectest.DecodeOnly,
			Codec:      codectest.Wrap(NullUTF8()),
			Object:     "",
			Bytes:      []byte{},
			DecErrorIs: io.EOF,
		}, {
			Name:       "null utf8 invalid",
			Direction:  codectest.DecodeOnly,
			Codec:      codectest.Wrap(NullUTF8()),
			Object:     "",
			Bytes:      []byte{'a', 0xff, 0},
			DecErrorIs: bincodec.ErrInvalidText,
		}, {
			Name:   "fixed utf8 4 byte sequence",
			Codec:  codectest.Wrap(FixedUTF8(4)),
			Object: "\U0001F980",
			Bytes:  []byte{0xf0, 0x9f, 0xa6, 0x80},
		}, {
			Name:   "fixed utf8 embedded nul",
			Codec:  codectest.Wrap(FixedUTF8(3)),
			Object: "a\x00b",
			Bytes:  []byte{'a', 0, 'b'},
		}, {
			Name:   "fixed utf8 0",
			Codec:  codectest.Wrap(FixedUTF8(0)),
			Object: "",
			Bytes:  []byte{},
		}, {
			Name:       "fixed utf8 truncated sequence",
			Direction:  codectest.DecodeOnly,
			Codec:      codectest.Wrap(FixedUTF8(3)),
			Object:     "",
			Bytes:      []byte{0xf0, 0x9f, 0xa6},
			DecErrorIs: bincodec.ErrInvalidText,
		}, {
			Name:       "fixed utf8 short",
			Direction:  codectest.DecodeOnly,
			Codec:      codectest.Wrap(FixedUTF8(4)),
			Object:     "",
			Bytes:      []byte{'a'},
			DecErrorIs: io.ErrUnexpectedEOF,
		}, {
			Name:   "null utf16",
			Codec:  codectest.Wrap(NullUTF16()),
			Object: "Hi",
			Bytes:  []byte{0, 'H', 0, 'i', 0, 0},
		}, {
			Name:   "null utf16 surrogate pair",
			Codec:  codectest.Wrap(NullUTF16()),
			Object: "\U0001F980",
			Bytes:  []byte{0xd8, 0x3e, 0xdd, 0x80, 0, 0},
		}, {
			Name:       "null utf16 lone high surrogate",
			Direction:  codectest.DecodeOnly,
			Codec:      codectest.Wrap(NullUTF16()),
			Object:     "",
			Bytes:      []byte{0xd8, 0x3e, 0, 'a', 0, 0},
			DecErrorIs: bincodec.ErrInvalidText,
		}, {
			Name:       "null utf16 odd trailing byte",
			Direction:  codectest.DecodeOnly,
			Codec:      codectest.Wrap(NullUTF16()),
			Object:     "",
			Bytes:      []byte{0, 'a', 0},
			DecErrorIs: io.ErrUnexpectedEOF,
		}, {
			Name:   "fixed utf16",
			Codec:  codectest.Wrap(FixedUTF16(4)),
			Object: "ok",
			Bytes:  []byte{0, 'o', 0, 'k'},
		}, {
			Name:       "fixed utf16 lone low surrogate",
			Direction:  codectest.DecodeOnly,
			Codec:      codectest.Wrap(FixedUTF16(2)),
			Object:     "",
			Bytes:      []byte{0xdc, 0x00},
			DecErrorIs: bincodec.ErrInvalidText,
		}, {
			Name:   "null ascii",
			Codec:  codectest.Wrap(NullASCII()),
			Object: "abc",
			Bytes:  []byte{'a', 'b', 'c', 0},
		}, {
			Name:       "null ascii rejects high bytes",
			Direction:  codectest.DecodeOnly,
			Codec:      codectest.Wrap(NullASCII()),
			Object:     "",
			Bytes:      []byte{'h', 0xc3, 0xa9, 0},
			DecErrorIs: bincodec.ErrNotASCII,
		}, {
			Name:   "fixed ascii",
			Codec:  codectest.Wrap(FixedASCII(4)),
			Object: "CASC",
			Bytes:  []byte("CASC"),
		}, {
			Name:       "fixed ascii invalid utf8",
			Direction:  codectest.DecodeOnly,
			Codec:      codectest.Wrap(FixedASCII(1)),
			Object:     "",
			Bytes:      []byte{0xff},
			DecErrorIs: bincodec.ErrInvalidText,
		},
	}

	codectest.Run(t, testcases)
}

func TestConversionErrorOffset(t *testing.T) {
	t.Parallel()

	_, err := bincodec.Unmarshal[string]([]byte{'a', 'b', 0xc3, 0}, NullUTF8())
	var cerr *bincodec.ConversionError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, "UTF-8", cerr.Encoding)
	assert.Equal(t, 2, cerr.Offset)

	_, err = bincodec.Unmarshal[string]([]byte{0, 'a', 0xdc, 0, 0, 0}, NullUTF16())
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, "UTF-16", cerr.Encoding)
	assert.Equal(t, 1, cerr.Offset)
}

func TestTextPreconditions(t *testing.T) {
	t.Parallel()

	codectest.PanicsWithPrecondition(t, bincodec.ErrPrecondition, func() {
		_ = FixedUTF8(4).Encode(io.Discard, "abc")
	}, "fixed utf8 too short")

	codectest.PanicsWithPrecondition(t, bincodec.ErrPrecondition, func() {
		_ = FixedUTF16(4).Encode(io.Discard, "\U0001F980!")
	}, "fixed utf16 too long")

	codectest.PanicsWithPrecondition(t, bincodec.ErrPrecondition, func() {
		FixedUTF16(3)
	}, "odd utf16 length")

	var buf bytes.Buffer
	codectest.PanicsWithPrecondition(t, bincodec.ErrPrecondition, func() {
		_ = NullASCII().Encode(&buf, "café")
	}, "non-ascii")
	assert.Zero(t, buf.Len(), "nothing written before the check")
}
