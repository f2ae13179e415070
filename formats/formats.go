// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

// Package formats holds wire formats described with bincodec, and a registry
// of them by name.
package formats

import (
	"fmt"
	"io"
	"maps"
	"slices"

	"go.e43.eu/bincodec"
)

type formatError string

func (e formatError) Error() string {
	return string(e)
}

const (
	// A length field exceeds what the format permits
	ErrTooLong = formatError("formats: length exceeds format maximum")

	// A stored checksum does not match the record
	ErrChecksum = formatError("formats: checksum mismatch")
)

// Format is a registered wire format with its value type erased.
type Format struct {
	Name        string
	Description string

	// Decode reads one message. io.EOF means the stream ended cleanly
	// between messages.
	Decode func(r io.Reader) (interface{}, error)

	// Encode fills a new message using unmarshal (e.g. a yaml.Decoder's
	// Decode), then writes it
	Encode func(w io.Writer, unmarshal func(v interface{}) error) error
}

var registry = map[string]Format{}

func register[T any](name, description string, c bincodec.Codec[T]) {
	if _, dup := registry[name]; dup {
		panic("formats: duplicate format " + name)
	}

	registry[name] = Format{
		Name:        name,
		Description: description,
		Decode: func(r io.Reader) (interface{}, error) {
			return c.Decode(r)
		},
		Encode: func(w io.Writer, unmarshal func(v interface{}) error) error {
			var v T
			if err := unmarshal(&v); err != nil {
				return err
			}
			return c.Encode(w, v)
		},
	}
}

// Lookup returns the format registered as name
func Lookup(name string) (Format, error) {
	f, ok := registry[name]
	if !ok {
		return Format{}, fmt.Errorf("formats: unknown format %q (have %v)", name, Names())
	}
	return f, nil
}

// Names lists every registered format, sorted
func Names() []string {
	return slices.Sorted(maps.Keys(registry))
}

// boundedLength reads a length, failing with ErrTooLong (as the cause of a
// bincodec.CastError) if it exceeds limit
func boundedLength(c bincodec.Codec[uint32], limit int) bincodec.Codec[int] {
	check := func(n int) (int, error) {
		if n < 0 || n > limit {
			return 0, fmt.Errorf("%w: %d > %d", ErrTooLong, n, limit)
		}
		return n, nil
	}

	return bincodec.TryCast(bincodec.Integer[int](c), check, check)
}
