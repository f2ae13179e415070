// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package payload

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.e43.eu/bincodec"
	"go.e43.eu/bincodec/internal/codectest"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func prefixed() bincodec.Codec[[]byte] {
	return bincodec.Prefixed(bincodec.Integer[int](bincodec.U32BE()))
}

type user struct {
	Name string `cbor:"name" msgpack:"name"`
	Age  int    `cbor:"age" msgpack:"age"`
}

func TestCBOR(t *testing.T) {
	testcases := []codectest.Case{
		{
			Name:   "map sorted",
			Codec:  codectest.Wrap(CBOR[map[string]int](bincodec.Bytes(7))),
			Object: map[string]int{"b": 1, "a": 2},
			Bytes:  []byte{0xa2, 0x61, 0x61, 0x02, 0x61, 0x62, 0x01},
		}, {
			Name:   "struct",
			Codec:  codectest.Wrap(CBOR[user](bincodec.Bytes(15))),
			Object: user{Name: "ann", Age: 7},
			Bytes: []byte{
				0xa2,
				0x63, 'a', 'g', 'e', 0x07,
				0x64, 'n', 'a', 'm', 'e', 0x63, 'a', 'n', 'n',
			},
		}, {
			Name:       "truncated",
			Direction:  codectest.DecodeOnly,
			Codec:      codectest.Wrap(CBOR[user](bincodec.Bytes(2))),
			Object:     user{},
			Bytes:      []byte{0xa2, 0x63},
			DecErrorIs: bincodec.ErrCastFailed,
		},
	}

	codectest.Run(t, testcases)
}

func TestMsgpack(t *testing.T) {
	t.Parallel()

	c := Msgpack[user](bincodec.Bytes(0))
	_, err := bincodec.Unmarshal[user](nil, c)
	assert.True(t, errors.Is(err, bincodec.ErrCastFailed), "empty input is not a message")

	in := user{Name: "bob", Age: 42}
	c = Msgpack[user](prefixed())
	b, err := bincodec.Marshal[user](in, c)
	require.NoError(t, err)

	out, err := bincodec.Unmarshal[user](b, c)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestProto(t *testing.T) {
	t.Parallel()

	c := Proto(prefixed(), func() *wrapperspb.StringValue { return &wrapperspb.StringValue{} })

	in := wrapperspb.String("hello")
	b, err := bincodec.Marshal[*wrapperspb.StringValue](in, c)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0, 7, 0x0a, 0x05, 'h', 'e', 'l', 'l', 'o'}, b)

	out, err := bincodec.Unmarshal[*wrapperspb.StringValue](b, c)
	require.NoError(t, err)
	assert.True(t, proto.Equal(in, out))

	_, err = bincodec.Unmarshal[*wrapperspb.StringValue]([]byte{0, 0, 0, 1, 0xff}, c)
	assert.True(t, errors.Is(err, bincodec.ErrCastFailed))
}

func TestCompression(t *testing.T) {
	t.Parallel()

	data := bytes.Repeat([]byte("bincodec "), 512)

	for name, wrap := range map[string]func(bincodec.Codec[[]byte]) bincodec.Codec[[]byte]{
		"zstd": Zstd,
		"lz4":  LZ4,
	} {
		t.Run(name, func(t *testing.T) {
			c := wrap(prefixed())

			b, err := bincodec.Marshal[[]byte](data, c)
			require.NoError(t, err)
			assert.Less(t, len(b), len(data), "repetitive data should shrink")

			out, err := bincodec.Unmarshal[[]byte](b, c)
			require.NoError(t, err)
			assert.Equal(t, data, out)

			_, err = bincodec.Unmarshal[[]byte]([]byte{0, 0, 0, 4, 1, 2, 3, 4}, c)
			assert.True(t, errors.Is(err, bincodec.ErrCastFailed), "garbage should not decompress")
		})
	}
}
