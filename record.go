// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package bincodec

import (
	"fmt"
	"io"
	"reflect"

	"go.e43.eu/bincodec/internal/coder"
	"go.e43.eu/bincodec/internal/errors"
)

// Env holds the values bound by the named steps of a record, in the order they
// were bound. Bindings are never removed or overwritten; a later binding of a
// name shadows an earlier one.
//
// While decoding, Env contains the values decoded so far. While encoding, it
// contains every field of the value being encoded (bound up front), followed
// by whatever default steps have recomputed so far.
type Env struct {
	names  []string
	values []interface{}
}

func newEnv(size int) *Env {
	return &Env{
		names:  make([]string, 0, size),
		values: make([]interface{}, 0, size),
	}
}

func (e *Env) bind(name string, v interface{}) {
	e.names = append(e.names, name)
	e.values = append(e.values, v)
}

func (e *Env) lookup(name string) (interface{}, bool) {
	for i := len(e.names) - 1; i >= 0; i-- {
		if e.names[i] == name {
			return e.values[i], true
		}
	}
	return nil, false
}

// Get returns the value most recently bound to name. It panics if the name is
// unbound or holds something other than a V, as either means the record was
// described incorrectly.
func Get[V any](env *Env, name string) V {
	raw, ok := env.lookup(name)
	if !ok {
		errors.Precondition("Get", "%q is not bound", name)
	}

	v, ok := assertBinding[V](raw)
	if !ok {
		errors.Precondition("Get", "%q is a %T, not a %s", name, raw, coder.TypeName[V]())
	}
	return v
}

// Lookup is like Get, but reports a missing or mistyped binding rather than
// panicking.
func Lookup[V any](env *Env, name string) (V, bool) {
	raw, ok := env.lookup(name)
	if !ok {
		var zero V
		return zero, false
	}
	return assertBinding[V](raw)
}

// assertBinding converts a bound value back to V. Only a field of interface
// type binds a nil, which a type assertion would reject.
func assertBinding[V any](raw interface{}) (V, bool) {
	if raw == nil {
		var zero V
		return zero, coder.IsInterface[V]()
	}

	v, ok := raw.(V)
	return v, ok
}

// interface Step is one entry in the ordered list a Record is built from.
// Steps are created by Field, FieldFunc, FieldDefault, Let, LetFunc, Anon and
// AnonFunc.
type Step[T any] interface {
	// stepName is empty for anonymous steps
	stepName() string

	// destructure binds the step's field of v (if it has one) ahead of encoding
	destructure(env *Env, v *T)

	decode(r io.Reader, env *Env) error
	encode(w io.Writer, env *Env) error

	// construct stores the step's decoded value into its field of v
	construct(env *Env, v *T)
}

type fieldStep[T, V any] struct {
	name  string
	slot  func(*T) *V
	build func(*Env) Codec[V]
	write func(*Env) V
}

var _ Step[struct{}] = &fieldStep[struct{}, int]{}

// Field is a step which reads and writes the field of T returned by slot,
// binding it as name.
func Field[T, V any](name string, slot func(*T) *V, c Codec[V]) Step[T] {
	return FieldFunc(name, slot, constant(c))
}

// FieldFunc is like Field, but the codec is built from the bindings made so
// far, e.g. a Count whose length was read by an earlier step.
func FieldFunc[T, V any](name string, slot func(*T) *V, build func(*Env) Codec[V]) Step[T] {
	if slot == nil {
		errors.Precondition("FieldFunc", "field %q has no slot", name)
	}
	return &fieldStep[T, V]{name: name, slot: slot, build: build}
}

// FieldDefault is a step for a field of T which is redundant with other
// state, such as a stored length. Decoding stores the value read into the
// field as Field would. Encoding ignores the field and instead writes (and
// binds as name) the value computed by write.
func FieldDefault[T, V any](name string, slot func(*T) *V, c Codec[V], write func(*Env) V) Step[T] {
	if slot == nil || write == nil {
		errors.Precondition("FieldDefault", "field %q needs both a slot and a write expression", name)
	}
	return &fieldStep[T, V]{name: name, slot: slot, build: constant(c), write: write}
}

// Let is a step for a value which is on the wire but not in T, such as a
// length prefix. Decoding binds the value read as name. Encoding writes (and
// binds as name) the value computed by write.
func Let[T, V any](name string, c Codec[V], write func(*Env) V) Step[T] {
	return LetFunc[T](name, constant(c), write)
}

// LetFunc is like Let, but the codec is built from the bindings made so far.
func LetFunc[T, V any](name string, build func(*Env) Codec[V], write func(*Env) V) Step[T] {
	if write == nil {
		errors.Precondition("LetFunc", "%q has no write expression", name)
	}
	return &fieldStep[T, V]{name: name, build: build, write: write}
}

func (s *fieldStep[T, V]) stepName() string {
	return s.name
}

func (s *fieldStep[T, V]) destructure(env *Env, v *T) {
	if s.slot != nil {
		env.bind(s.name, *s.slot(v))
	}
}

func (s *fieldStep[T, V]) decode(r io.Reader, env *Env) error {
	v, err := s.build(env).Decode(r)
	if err != nil {
		return err
	}
	env.bind(s.name, v)
	return nil
}

func (s *fieldStep[T, V]) encode(w io.Writer, env *Env) error {
	var v V
	if s.write != nil {
		v = s.write(env)
		env.bind(s.name, v)
	} else {
		v = Get[V](env, s.name)
	}
	return s.build(env).Encode(w, v)
}

func (s *fieldStep[T, V]) construct(env *Env, v *T) {
	if s.slot != nil {
		*s.slot(v) = Get[V](env, s.name)
	}
}

type anonStep[T any] struct {
	build func(*Env) Codec[Unit]
}

// Anon is a step for a zero-information field, typically a Bind or a Skip.
func Anon[T any](c Codec[Unit]) Step[T] {
	return AnonFunc[T](constant(c))
}

// AnonFunc is like Anon, but the codec is built from the bindings made so far.
func AnonFunc[T any](build func(*Env) Codec[Unit]) Step[T] {
	return &anonStep[T]{build}
}

func (s *anonStep[T]) stepName() string {
	return ""
}

func (s *anonStep[T]) destructure(*Env, *T) {}

func (s *anonStep[T]) decode(r io.Reader, env *Env) error {
	_, err := s.build(env).Decode(r)
	return err
}

func (s *anonStep[T]) encode(w io.Writer, env *Env) error {
	return s.build(env).Encode(w, Unit{})
}

func (s *anonStep[T]) construct(*Env, *T) {}

func constant[V any](c Codec[V]) func(*Env) Codec[V] {
	if c == nil {
		errors.Precondition("Record", "nil codec for step")
	}
	return func(*Env) Codec[V] { return c }
}

type recordCodec[T any] struct {
	name  string
	steps []Step[T]
}

var _ Codec[struct{}] = &recordCodec[struct{}]{}

// Record builds a codec for T which decodes and encodes steps in the order
// given.
//
// Decoding runs every step in turn, then assembles a T from the bindings of
// the steps which have a field. Encoding binds every field of the value up
// front, then runs every step in the same order. The first error stops either
// direction and is returned wrapped in a FieldError naming the step. A
// decode error wraps io.EOF only if the stream ended before the first step;
// running out later is io.ErrUnexpectedEOF.
//
// Record panics if two steps share a name or a named step has an empty name.
func Record[T any](steps ...Step[T]) Codec[T] {
	c := &recordCodec[T]{
		name:  reflect.TypeOf((*T)(nil)).Elem().Name(),
		steps: append([]Step[T](nil), steps...),
	}

	seen := make(map[string]struct{}, len(steps))
	for _, s := range c.steps {
		name := s.stepName()
		if _, anon := s.(*anonStep[T]); anon {
			continue
		}

		if name == "" {
			errors.Precondition("Record", "named step of %s has an empty name", c.name)
		}
		if _, dup := seen[name]; dup {
			errors.Precondition("Record", "step %q of %s is duplicated", name, c.name)
		}
		seen[name] = struct{}{}
	}

	return c
}

func (c *recordCodec[T]) stepPath(i int) string {
	if name := c.steps[i].stepName(); name != "" {
		return name
	}
	return fmt.Sprintf("#%d", i)
}

func (c *recordCodec[T]) Decode(r io.Reader) (T, error) {
	var v T
	env := newEnv(len(c.steps))
	for i, s := range c.steps {
		if err := s.decode(r, env); err != nil {
			if i > 0 {
				err = errors.NoEOF(err)
			}
			return v, errors.WithFieldError(err, c.name, c.stepPath(i))
		}
	}

	for _, s := range c.steps {
		s.construct(env, &v)
	}
	return v, nil
}

func (c *recordCodec[T]) Encode(w io.Writer, v T) error {
	env := newEnv(2 * len(c.steps))
	for _, s := range c.steps {
		s.destructure(env, &v)
	}

	for i, s := range c.steps {
		if err := s.encode(w, env); err != nil {
			return errors.WithFieldError(err, c.name, c.stepPath(i))
		}
	}
	return nil
}

// Prefixed is a byte string preceded by its length, read and written with
// length.
func Prefixed(length Codec[int]) Codec[[]byte] {
	self := func(b *[]byte) *[]byte { return b }
	return Record(
		Let[[]byte]("len", length, func(env *Env) int {
			return len(Get[[]byte](env, "data"))
		}),
		FieldFunc("data", self, func(env *Env) Codec[[]byte] {
			return Bytes(Get[int](env, "len"))
		}),
	)
}
