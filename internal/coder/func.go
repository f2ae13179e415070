// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

// Package coder holds the plumbing shared by the public codec packages.
package coder

import (
	"io"
	"reflect"

	bincodecinterfaces "go.e43.eu/bincodec/interfaces"
)

// Func is a codec made of a decode closure and an encode closure. Most
// combinators are expressed as a Func capturing their inner codecs.
type Func[T any] struct {
	Dec func(r io.Reader) (T, error)
	Enc func(w io.Writer, v T) error
}

var _ bincodecinterfaces.Codec[int] = Func[int]{}

func (c Func[T]) Decode(r io.Reader) (T, error) {
	return c.Dec(r)
}

func (c Func[T]) Encode(w io.Writer, v T) error {
	return c.Enc(w, v)
}

// IsInterface reports whether T is an interface type
func IsInterface[T any]() bool {
	return reflect.TypeOf((*T)(nil)).Elem().Kind() == reflect.Interface
}

// TypeName returns a printable name for T, for use in error messages
func TypeName[T any]() string {
	t := reflect.TypeOf((*T)(nil)).Elem()
	if t.Name() != "" {
		return t.Name()
	}
	return t.String()
}
