package codec

import (
	"reflect"

	"github.com/arloliu/graft/buffers"
	"github.com/arloliu/graft/session"
)

// valueOf returns v as an addressable reflect.Value of static type T, keeping
// interface-typed values as interfaces.
func valueOf[T any](v T) reflect.Value {
	return reflect.ValueOf(&v).Elem()
}

// fromValue converts rv back to T. An invalid or nil-interface rv yields the zero T.
func fromValue[T any](rv reflect.Value) T {
	if !rv.IsValid() {
		var zero T
		return zero
	}
	out, _ := rv.Interface().(T)

	return out
}

// codecFunc erases a typed Codec.
type codecFunc[T any] struct {
	c   Codec[T]
	typ reflect.Type
}

func (a codecFunc[T]) WriteField(w *buffers.Writer, delta uint32, expected reflect.Type, v reflect.Value) error {
	if isNil(v) {
		w.WriteNullReference(delta)
		return nil
	}

	return a.c.WriteField(w, delta, expected, fromValue[T](v))
}

func (a codecFunc[T]) ReadValue(r *buffers.Reader, h buffers.FieldHeader) (reflect.Value, error) {
	if h.IsReference() && nullable(a.typ) {
		return readReference(r, a.typ)
	}
	v, err := a.c.ReadValue(r, h)
	if err != nil {
		return reflect.Value{}, err
	}

	return valueOf(v), nil
}

// typedCodec exposes an erased FieldCodec as Codec[T].
type typedCodec[T any] struct {
	c FieldCodec
}

func (t typedCodec[T]) WriteField(w *buffers.Writer, delta uint32, expected reflect.Type, v T) error {
	return t.c.WriteField(w, delta, expected, valueOf(v))
}

func (t typedCodec[T]) ReadValue(r *buffers.Reader, h buffers.FieldHeader) (T, error) {
	rv, err := t.c.ReadValue(r, h)
	if err != nil {
		var zero T
		return zero, err
	}

	return fromValue[T](rv), nil
}

// copierFunc erases a typed Copier.
type copierFunc[T any] struct {
	c Copier[T]
}

func (a copierFunc[T]) DeepCopy(v reflect.Value, s *session.Session) (reflect.Value, error) {
	out, err := a.c.DeepCopy(fromValue[T](v), s)
	if err != nil {
		return reflect.Value{}, err
	}

	return valueOf(out), nil
}

func (a copierFunc[T]) IsImmutable() bool {
	return a.c.IsImmutable()
}

// typedCopier exposes an erased ValueCopier as Copier[T].
type typedCopier[T any] struct {
	c ValueCopier
}

func (t typedCopier[T]) DeepCopy(v T, s *session.Session) (T, error) {
	rv, err := t.c.DeepCopy(valueOf(v), s)
	if err != nil {
		var zero T
		return zero, err
	}

	return fromValue[T](rv), nil
}

func (t typedCopier[T]) IsImmutable() bool {
	return t.c.IsImmutable()
}
