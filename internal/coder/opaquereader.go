// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package coder

import (
	"io"
)

// opaqueChunk bounds how much is allocated ahead of the data actually
// arriving. Lengths usually come off the wire, and a corrupt 4 GiB length
// should fail on the short read rather than on the allocation.
const opaqueChunk = 64 * 1024

type opaqueReader struct {
	lr io.LimitedReader
}

func newOpaqueReader(r io.Reader, len int64) *opaqueReader {
	return &opaqueReader{
		lr: io.LimitedReader{
			R: r,
			N: len,
		},
	}
}

func (o *opaqueReader) Read(p []byte) (int, error) {
	return o.lr.Read(p)
}

// readAll reads exactly the remaining length, with the same error contract as
// io.ReadFull: io.EOF if nothing could be read, io.ErrUnexpectedEOF if the
// stream ended part way through.
func (o *opaqueReader) readAll() ([]byte, error) {
	want := int(o.lr.N)
	buf := make([]byte, 0, min(want, opaqueChunk))
	for len(buf) < want {
		if len(buf) == cap(buf) {
			buf = append(buf, make([]byte, min(want-len(buf), cap(buf)))...)[:len(buf)]
		}

		n, err := io.ReadFull(o, buf[len(buf):min(cap(buf), want)])
		buf = buf[:len(buf)+n]
		switch {
		case err == io.EOF && len(buf) > 0:
			return buf, io.ErrUnexpectedEOF
		case err != nil:
			return buf, err
		}
	}
	return buf, nil
}

var _ io.Reader = &opaqueReader{}

// ReadOpaque reads exactly n bytes from r into a newly allocated slice.
func ReadOpaque(r io.Reader, n int) ([]byte, error) {
	if n == 0 {
		return []byte{}, nil
	}
	return newOpaqueReader(r, int64(n)).readAll()
}
