// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

// Package bincodecinterfaces defines the primary interfaces of bincodec
//
// (This package is primarily separated out in order to permit the implementation to
// be broken down into multiple packages)
package bincodecinterfaces

import "io"

// Unit is the value of a field which carries no information, such as a magic
// number or a padding byte. Codecs for such fields read and write something,
// but decode to and encode from Unit.
type Unit = struct{}

// interface Decoder is the read half of a codec.
//
// Decode must consume exactly the bytes of one value from r and no more; the
// remainder of the stream belongs to whatever is decoded next.
type Decoder[T any] interface {
	Decode(r io.Reader) (T, error)
}

// interface Encoder is the write half of a codec.
type Encoder[T any] interface {
	Encode(w io.Writer, v T) error
}

// interface Codec pairs a Decoder and an Encoder for the same type, which
// must traverse the wire representation identically.
//
// A Codec holds no stream state and may be used from multiple goroutines
// at once, provided each call is given its own stream.
type Codec[T any] interface {
	Decoder[T]
	Encoder[T]
}
