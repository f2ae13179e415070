// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

// Package payload adapts byte string codecs to carry structured or
// compressed payloads.
//
// Every adapter takes the codec for the raw bytes (normally a Bytes sized by
// an earlier length field of a record) and returns a codec for the payload's
// value. Payloads which the underlying library cannot decode or encode fail
// with a *bincodec.CastError, matching bincodec.ErrCastFailed.
package payload

import (
	"bytes"
	"fmt"
	"io"
	"reflect"

	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/vmihailenco/msgpack/v5"
	"go.e43.eu/bincodec"
	"google.golang.org/protobuf/proto"
)

// MaxDecompressed bounds the output of Zstd and LZ4 decoding
const MaxDecompressed = 64 << 20

var (
	// cborEnc uses Core Deterministic Encoding (RFC 8949 §4.2), so the same
	// value always encodes to the same bytes
	cborEnc cbor.EncMode
	cborDec cbor.DecMode

	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error

	cborEnc, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("payload: CBOR encoder initialization failed: " + err.Error())
	}

	cborDec, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("payload: CBOR decoder initialization failed: " + err.Error())
	}

	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("payload: zstd encoder initialization failed: " + err.Error())
	}

	zstdDecoder, err = zstd.NewReader(nil, zstd.WithDecoderMaxMemory(MaxDecompressed))
	if err != nil {
		panic("payload: zstd decoder initialization failed: " + err.Error())
	}
}

// CBOR carries a T as CBOR.
func CBOR[T any](inner bincodec.Codec[[]byte]) bincodec.Codec[T] {
	return bincodec.TryCast(inner,
		func(b []byte) (T, error) {
			var v T
			err := cborDec.Unmarshal(b, &v)
			return v, err
		},
		func(v T) ([]byte, error) {
			return cborEnc.Marshal(v)
		})
}

// Msgpack carries a T as MessagePack.
func Msgpack[T any](inner bincodec.Codec[[]byte]) bincodec.Codec[T] {
	return bincodec.TryCast(inner,
		func(b []byte) (T, error) {
			var v T
			err := msgpack.Unmarshal(b, &v)
			return v, err
		},
		func(v T) ([]byte, error) {
			return msgpack.Marshal(v)
		})
}

// Proto carries a protocol buffer message. ctor returns a new, empty message
// to decode into (e.g. func() *mypb.User { return &mypb.User{} }).
func Proto[T proto.Message](inner bincodec.Codec[[]byte], ctor func() T) bincodec.Codec[T] {
	return bincodec.TryCast(inner,
		func(b []byte) (T, error) {
			m := ctor()
			err := proto.Unmarshal(b, m)
			return m, err
		},
		func(m T) ([]byte, error) {
			return proto.Marshal(m)
		})
}

// Zstd carries bytes compressed as a single zstd frame.
func Zstd(inner bincodec.Codec[[]byte]) bincodec.Codec[[]byte] {
	return bincodec.TryCast(inner,
		func(b []byte) ([]byte, error) {
			return zstdDecoder.DecodeAll(b, nil)
		},
		func(b []byte) ([]byte, error) {
			return zstdEncoder.EncodeAll(b, nil), nil
		})
}

// LZ4 carries bytes compressed in the LZ4 frame format.
func LZ4(inner bincodec.Codec[[]byte]) bincodec.Codec[[]byte] {
	return bincodec.TryCast(inner, decompressLZ4, compressLZ4)
}

func compressLZ4(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := lz4.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	return buf.Bytes(), nil
}

func decompressLZ4(compressed []byte) ([]byte, error) {
	zr := lz4.NewReader(bytes.NewReader(compressed))
	out, err := io.ReadAll(io.LimitReader(zr, MaxDecompressed+1))
	switch {
	case err != nil:
		return nil, fmt.Errorf("lz4 decompress: %w", err)
	case len(out) > MaxDecompressed:
		return nil, fmt.Errorf("lz4 decompress: more than %d bytes", MaxDecompressed)
	}
	return out, nil
}
