// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package bincodec

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"io"
	"testing"

	"github.com/fxamacker/cbor/v2"
)

func EncodeBenchmarkCommon[T any](b *testing.B, ob T, c Codec[T]) {
	b.Run("Marshal", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, err := Marshal[T](ob, c)
			if err != nil {
				b.Fatalf("Marshal: %s", err)
			}
		}
	})

	b.Run("EncodeDiscard", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			err := c.Encode(io.Discard, ob)
			if err != nil {
				b.Fatalf("Encode: %s", err)
			}
		}
	})

	b.Run("JSONMarshal", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, err := json.Marshal(ob)
			if err != nil {
				b.Fatalf("json.Marshal: %s", err)
			}
		}
	})

	b.Run("CBORMarshal", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, err := cbor.Marshal(ob)
			if err != nil {
				b.Fatalf("cbor.Marshal: %s", err)
			}
		}
	})

	b.Run("GobEncoderDiscard", func(b *testing.B) {
		w := gob.NewEncoder(io.Discard)
		for i := 0; i < b.N; i++ {
			err := w.Encode(ob)
			if err != nil {
				b.Fatalf("Encode: %s", err)
			}
		}
	})
}

func DecodeBenchmarkCommon[T any](b *testing.B, ob T, c Codec[T]) {
	buf, err := Marshal[T](ob, c)
	if err != nil {
		b.Fatalf("Marshal: %s", err)
	}

	b.Run("Unmarshal", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, err := Unmarshal[T](buf, c)
			if err != nil {
				b.Fatalf("Unmarshal: %s", err)
			}
		}
	})

	b.Run("DecodeSingleByteReads", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, err := c.Decode(&oneByteReader{bytes.NewReader(buf)})
			if err != nil {
				b.Fatalf("Decode: %s", err)
			}
		}
	})

	cb, err := cbor.Marshal(ob)
	if err != nil {
		b.Fatalf("cbor.Marshal: %s", err)
	}
	b.Run("CBORUnmarshal", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			var v T
			if err := cbor.Unmarshal(cb, &v); err != nil {
				b.Fatalf("cbor.Unmarshal: %s", err)
			}
		}
	})
}

type oneByteReader struct {
	r io.Reader
}

func (r *oneByteReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	return r.r.Read(p[:1])
}

func BenchmarkInt32Encode(b *testing.B) {
	EncodeBenchmarkCommon(b, int32(123), I32BE())
}

func BenchmarkInt64Encode(b *testing.B) {
	EncodeBenchmarkCommon(b, int64(768), I64LE())
}

type benchStruct struct {
	X int32
	Y int64
	O []byte
}

var benchStructCodec = Record(
	Field("x", func(s *benchStruct) *int32 { return &s.X }, I32BE()),
	Field("y", func(s *benchStruct) *int64 { return &s.Y }, I64BE()),
	Field("o", func(s *benchStruct) *[]byte { return &s.O }, Prefixed(Integer[int](U16BE()))),
)

func BenchmarkSimpleStructEncode(b *testing.B) {
	EncodeBenchmarkCommon(b, benchStruct{
		X: 123456,
		Y: 12345678,
		O: []byte("Byte Slice"),
	}, benchStructCodec)
}

func BenchmarkSimpleStructDecode(b *testing.B) {
	DecodeBenchmarkCommon(b, benchStruct{
		X: 123456,
		Y: 12345678,
		O: []byte("Byte Slice"),
	}, benchStructCodec)
}

func BenchmarkCountDecode(b *testing.B) {
	vals := make([]uint32, 256)
	for i := range vals {
		vals[i] = uint32(i * i)
	}
	DecodeBenchmarkCommon(b, vals, Count(U32LE(), len(vals)))
}
