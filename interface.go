// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

// Package bincodec builds binary wire format codecs out of small
// bidirectional pieces.
//
// A Codec[T] is a pair of operations: Decode reads a T from an io.Reader and
// Encode writes a T to an io.Writer. Both halves are derived from one
// description, so the order in which fields are read always matches the order
// in which they are written.
//
// The pieces are:
//
//     Primitive  U8, I8, U16BE, U16LE, ... F64LE, Bytes(n)
//     Text       see package go.e43.eu/bincodec/text
//     Generic    Bind, Skip, Count, Optional, Boolean, Cast, TryCast, Integer
//     Records    Record, Field, FieldFunc, FieldDefault, Let, LetFunc, Anon,
//                AnonFunc, Prefixed
//
// Records are assembled from an ordered list of steps. A named step binds its
// value into an environment (Env) which later steps may consult to build their
// codec, which is how length-prefixed data is expressed:
//
//     type Frame struct {
//         Kind    uint8
//         Payload []byte
//     }
//
//     var frameCodec = bincodec.Record(
//         bincodec.Anon[Frame](bincodec.Bind(bincodec.U8(), 0x50)),
//         bincodec.Field("kind", func(f *Frame) *uint8 { return &f.Kind }, bincodec.U8()),
//         bincodec.Let[Frame]("length", bincodec.U16BE(), func(env *bincodec.Env) uint16 {
//             return uint16(len(bincodec.Get[[]byte](env, "payload")))
//         }),
//         bincodec.FieldFunc("payload", func(f *Frame) *[]byte { return &f.Payload },
//             func(env *bincodec.Env) bincodec.Codec[[]byte] {
//                 return bincodec.Bytes(int(bincodec.Get[uint16](env, "length")))
//             }),
//     )
//
// On decode, "length" is read and bound before the payload codec is built. On
// encode, the record is first taken apart into its named fields, then "length"
// is recomputed from the payload instead of being trusted.
//
// Errors come in two kinds. Malformed input (a magic number which does not
// match, text which is not valid UTF-8, a truncated stream) is returned as an
// error from Decode, in the same way as any I/O error from the underlying
// stream. A value handed to Encode which contradicts the format itself (a
// slice of the wrong length for Count, a string of the wrong length for a
// fixed width text field) is a bug in the caller, and Encode panics with a
// *PreconditionError instead.
package bincodec

import bincodecinterfaces "go.e43.eu/bincodec/interfaces"

// Unit is the value of zero-information fields
type Unit = bincodecinterfaces.Unit

// interface Decoder is the read half of a codec
type Decoder[T any] = bincodecinterfaces.Decoder[T]

// interface Encoder is the write half of a codec
type Encoder[T any] = bincodecinterfaces.Encoder[T]

// interface Codec is a Decoder and an Encoder which traverse the same layout
type Codec[T any] = bincodecinterfaces.Codec[T]
