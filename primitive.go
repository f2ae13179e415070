// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package bincodec

import (
	"encoding/binary"
	"io"
	"math"

	"go.e43.eu/bincodec/internal/coder"
	"go.e43.eu/bincodec/internal/errors"
)

// uint8Codec handles single bytes. Byte order does not apply.
type uint8Codec struct{}

var _ Codec[uint8] = uint8Codec{}

func (uint8Codec) Decode(r io.Reader) (uint8, error) {
	var b [1]byte
	_, err := io.ReadFull(r, b[:])
	return b[0], err
}

func (uint8Codec) Encode(w io.Writer, v uint8) error {
	b := [1]byte{v}
	_, err := w.Write(b[:])
	return err
}

// uint{16,32,64}Codec handle wider unsigned integers in a given byte order
type uint16Codec struct{ order binary.ByteOrder }
type uint32Codec struct{ order binary.ByteOrder }
type uint64Codec struct{ order binary.ByteOrder }

var (
	_ Codec[uint16] = uint16Codec{}
	_ Codec[uint32] = uint32Codec{}
	_ Codec[uint64] = uint64Codec{}
)

func (c uint16Codec) Decode(r io.Reader) (uint16, error) {
	var b [2]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return c.order.Uint16(b[:]), nil
}

func (c uint16Codec) Encode(w io.Writer, v uint16) error {
	var b [2]byte
	c.order.PutUint16(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func (c uint32Codec) Decode(r io.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return c.order.Uint32(b[:]), nil
}

func (c uint32Codec) Encode(w io.Writer, v uint32) error {
	var b [4]byte
	c.order.PutUint32(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func (c uint64Codec) Decode(r io.Reader) (uint64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return c.order.Uint64(b[:]), nil
}

func (c uint64Codec) Encode(w io.Writer, v uint64) error {
	var b [8]byte
	c.order.PutUint64(b[:], v)
	_, err := w.Write(b[:])
	return err
}

// int{8,16,32,64}Codec reinterpret the unsigned codec of the same width as
// two's complement
type int8Codec struct{ u uint8Codec }
type int16Codec struct{ u uint16Codec }
type int32Codec struct{ u uint32Codec }
type int64Codec struct{ u uint64Codec }

func (c int8Codec) Decode(r io.Reader) (int8, error) {
	u, err := c.u.Decode(r)
	return int8(u), err
}

func (c int8Codec) Encode(w io.Writer, v int8) error {
	return c.u.Encode(w, uint8(v))
}

func (c int16Codec) Decode(r io.Reader) (int16, error) {
	u, err := c.u.Decode(r)
	return int16(u), err
}

func (c int16Codec) Encode(w io.Writer, v int16) error {
	return c.u.Encode(w, uint16(v))
}

func (c int32Codec) Decode(r io.Reader) (int32, error) {
	u, err := c.u.Decode(r)
	return int32(u), err
}

func (c int32Codec) Encode(w io.Writer, v int32) error {
	return c.u.Encode(w, uint32(v))
}

func (c int64Codec) Decode(r io.Reader) (int64, error) {
	u, err := c.u.Decode(r)
	return int64(u), err
}

func (c int64Codec) Encode(w io.Writer, v int64) error {
	return c.u.Encode(w, uint64(v))
}

// float{32,64}Codec handle IEEE 754 values. Every bit pattern (including
// every NaN) passes through unchanged.
type float32Codec struct{ u uint32Codec }
type float64Codec struct{ u uint64Codec }

func (c float32Codec) Decode(r io.Reader) (float32, error) {
	u, err := c.u.Decode(r)
	return math.Float32frombits(u), err
}

func (c float32Codec) Encode(w io.Writer, v float32) error {
	return c.u.Encode(w, math.Float32bits(v))
}

func (c float64Codec) Decode(r io.Reader) (float64, error) {
	u, err := c.u.Decode(r)
	return math.Float64frombits(u), err
}

func (c float64Codec) Encode(w io.Writer, v float64) error {
	return c.u.Encode(w, math.Float64bits(v))
}

// U8 reads and writes a single unsigned byte
func U8() Codec[uint8] { return uint8Codec{} }

// I8 reads and writes a single signed byte
func I8() Codec[int8] { return int8Codec{} }

// Uint16, Uint32 and Uint64 read and write unsigned integers in the given
// byte order
func Uint16(order binary.ByteOrder) Codec[uint16] { return uint16Codec{order} }
func Uint32(order binary.ByteOrder) Codec[uint32] { return uint32Codec{order} }
func Uint64(order binary.ByteOrder) Codec[uint64] { return uint64Codec{order} }

// Int16, Int32 and Int64 read and write two's complement integers in the given
// byte order
func Int16(order binary.ByteOrder) Codec[int16] { return int16Codec{uint16Codec{order}} }
func Int32(order binary.ByteOrder) Codec[int32] { return int32Codec{uint32Codec{order}} }
func Int64(order binary.ByteOrder) Codec[int64] { return int64Codec{uint64Codec{order}} }

// Float32 and Float64 read and write IEEE 754 values in the given byte order
func Float32(order binary.ByteOrder) Codec[float32] { return float32Codec{uint32Codec{order}} }
func Float64(order binary.ByteOrder) Codec[float64] { return float64Codec{uint64Codec{order}} }

// U16BE and friends are Uint16 etc. with the byte order fixed: BE for big
// endian, LE for little endian
func U16BE() Codec[uint16] { return Uint16(binary.BigEndian) }
func U16LE() Codec[uint16] { return Uint16(binary.LittleEndian) }
func U32BE() Codec[uint32] { return Uint32(binary.BigEndian) }
func U32LE() Codec[uint32] { return Uint32(binary.LittleEndian) }
func U64BE() Codec[uint64] { return Uint64(binary.BigEndian) }
func U64LE() Codec[uint64] { return Uint64(binary.LittleEndian) }

// I16BE and friends are the fixed order forms of Int16 etc.
func I16BE() Codec[int16] { return Int16(binary.BigEndian) }
func I16LE() Codec[int16] { return Int16(binary.LittleEndian) }
func I32BE() Codec[int32] { return Int32(binary.BigEndian) }
func I32LE() Codec[int32] { return Int32(binary.LittleEndian) }
func I64BE() Codec[int64] { return Int64(binary.BigEndian) }
func I64LE() Codec[int64] { return Int64(binary.LittleEndian) }

// F32BE and friends are the fixed order forms of Float32 and Float64
func F32BE() Codec[float32] { return Float32(binary.BigEndian) }
func F32LE() Codec[float32] { return Float32(binary.LittleEndian) }
func F64BE() Codec[float64] { return Float64(binary.BigEndian) }
func F64LE() Codec[float64] { return Float64(binary.LittleEndian) }

// fixedOpaqueCodec handles byte strings of a length fixed by the format
// (though possibly only known at decode time, from an earlier length field)
type fixedOpaqueCodec struct {
	len int
}

var _ Codec[[]byte] = &fixedOpaqueCodec{}

// Bytes reads and writes exactly n raw bytes.
//
// Encoding a slice whose length is not n is a precondition violation.
func Bytes(n int) Codec[[]byte] {
	if n < 0 {
		errors.Precondition("Bytes", "negative length %d", n)
	}
	return &fixedOpaqueCodec{n}
}

func (c *fixedOpaqueCodec) Decode(r io.Reader) ([]byte, error) {
	return coder.ReadOpaque(r, c.len)
}

func (c *fixedOpaqueCodec) Encode(w io.Writer, v []byte) error {
	if len(v) != c.len {
		errors.Precondition("Bytes", "have %d bytes, format requires %d", len(v), c.len)
	}
	_, err := w.Write(v)
	return err
}
