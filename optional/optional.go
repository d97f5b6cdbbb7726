// Package optional provides a value type that may or may not hold a value.
//
// Optional is the value-type counterpart of a nil pointer: a *T expresses absence
// with null and is identity tracked, an Optional[T] is copied by value.
package optional

import "reflect"

// Option is implemented by every Optional instantiation.
type Option interface {
	// OptionElem returns the type of the wrapped value.
	OptionElem() reflect.Type
}

// Optional holds a value of type T when Valid is true.
type Optional[T any] struct {
	Value T
	Valid bool
}

// Some returns an Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Valid: true}
}

// None returns an empty Optional.
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// FromPointer returns an Optional holding *p, or None when p is nil.
func FromPointer[T any](p *T) Optional[T] {
	if p == nil {
		return None[T]()
	}

	return Some(*p)
}

// Get returns the value and whether it is present.
func (o Optional[T]) Get() (T, bool) {
	return o.Value, o.Valid
}

// OrElse returns the value, or def when absent.
func (o Optional[T]) OrElse(def T) T {
	if !o.Valid {
		return def
	}

	return o.Value
}

// Pointer returns a pointer to a copy of the value, or nil when absent.
func (o Optional[T]) Pointer() *T {
	if !o.Valid {
		return nil
	}
	v := o.Value

	return &v
}

// OptionElem returns the reflect.Type of T.
func (Optional[T]) OptionElem() reflect.Type {
	return reflect.TypeFor[T]()
}
