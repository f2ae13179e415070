// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package formats

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"math"
	"time"

	"go.e43.eu/bincodec"
)

// LogRecord is a key/value pair in an append-only log, all little endian:
//
//	crc32(u32) | keySize(u32) | valueSize(u32) | timestamp(u64) | key | value
//
// The CRC is CRC-32 (IEEE) over every field after it. Encoding ignores the
// CRC32, KeySize and ValueSize fields and writes values computed from the
// rest of the record.
type LogRecord struct {
	CRC32     uint32 `json:"crc32" yaml:"crc32" cbor:"crc32"`
	KeySize   uint32 `json:"keySize" yaml:"keySize" cbor:"keySize"`
	ValueSize uint32 `json:"valueSize" yaml:"valueSize" cbor:"valueSize"`

	// Unix time in nanoseconds
	Timestamp uint64 `json:"timestamp" yaml:"timestamp" cbor:"timestamp"`
	Key       []byte `json:"key" yaml:"key" cbor:"key"`
	Value     []byte `json:"value" yaml:"value" cbor:"value"`
}

// NewLogRecord builds a record stamped with ts, with its sizes and CRC
// filled in
func NewLogRecord(key, value []byte, ts time.Time) LogRecord {
	r := LogRecord{
		KeySize:   uint32(len(key)),
		ValueSize: uint32(len(value)),
		Timestamp: uint64(ts.UnixNano()),
		Key:       key,
		Value:     value,
	}
	r.CRC32 = r.checksum()
	return r
}

// Time returns the record's timestamp
func (r *LogRecord) Time() time.Time {
	return time.Unix(0, int64(r.Timestamp))
}

// Verify checks the stored CRC against the record's contents
func (r *LogRecord) Verify() error {
	if sum := r.checksum(); sum != r.CRC32 {
		return fmt.Errorf("%w: stored %08x, computed %08x", ErrChecksum, r.CRC32, sum)
	}
	return nil
}

func (r *LogRecord) checksum() uint32 {
	return logChecksum(r.KeySize, r.ValueSize, r.Timestamp, r.Key, r.Value)
}

func logChecksum(keySize, valueSize uint32, ts uint64, key, value []byte) uint32 {
	var hdr [16]byte
	binary.LittleEndian.PutUint32(hdr[0:], keySize)
	binary.LittleEndian.PutUint32(hdr[4:], valueSize)
	binary.LittleEndian.PutUint64(hdr[8:], ts)

	crc := crc32.NewIEEE()
	crc.Write(hdr[:])
	crc.Write(key)
	crc.Write(value)
	return crc.Sum32()
}

func sizeOf(name string) func(env *bincodec.Env) uint32 {
	return func(env *bincodec.Env) uint32 {
		return uint32(len(bincodec.Get[[]byte](env, name)))
	}
}

// sizedBy reads as many bytes as the size bound as name. A size which does
// not fit in an int fails the read with ErrTooLong.
func sizedBy(name string) func(env *bincodec.Env) bincodec.Codec[[]byte] {
	return func(env *bincodec.Env) bincodec.Codec[[]byte] {
		n, err := checkedLength(bincodec.Get[uint32](env, name), math.MaxInt)
		if err != nil {
			return bincodec.New(
				func(io.Reader) ([]byte, error) { return nil, err },
				func(io.Writer, []byte) error { return err })
		}
		return bincodec.Bytes(n)
	}
}

func checkedLength(n uint32, limit uint64) (int, error) {
	if uint64(n) > limit {
		return 0, fmt.Errorf("%w: %d > %d", ErrTooLong, n, limit)
	}
	return int(n), nil
}

var LogRecordCodec = bincodec.Record(
	bincodec.FieldDefault("crc32", func(r *LogRecord) *uint32 { return &r.CRC32 }, bincodec.U32LE(), func(env *bincodec.Env) uint32 {
		key := bincodec.Get[[]byte](env, "key")
		value := bincodec.Get[[]byte](env, "value")
		return logChecksum(uint32(len(key)), uint32(len(value)), bincodec.Get[uint64](env, "timestamp"), key, value)
	}),
	bincodec.FieldDefault("keySize", func(r *LogRecord) *uint32 { return &r.KeySize }, bincodec.U32LE(), sizeOf("key")),
	bincodec.FieldDefault("valueSize", func(r *LogRecord) *uint32 { return &r.ValueSize }, bincodec.U32LE(), sizeOf("value")),
	bincodec.Field("timestamp", func(r *LogRecord) *uint64 { return &r.Timestamp }, bincodec.U64LE()),
	bincodec.FieldFunc("key", func(r *LogRecord) *[]byte { return &r.Key }, sizedBy("keySize")),
	bincodec.FieldFunc("value", func(r *LogRecord) *[]byte { return &r.Value }, sizedBy("valueSize")),
)

func init() {
	register("logrecord", "append-only log key/value record", LogRecordCodec)
}
