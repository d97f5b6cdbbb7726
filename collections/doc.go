// Package collections provides the container types with built-in graft codecs.
//
// Containers are used through pointers, and the pointer is the unit of identity:
// two fields holding the same *Queue share one instance after a round trip. The zero
// value of every container is empty and ready to use.
//
// Codecs reach containers through the Sequence and Mapping interfaces rather than
// through their concrete types, so a user container that implements one of them is
// encoded the same way.
package collections

import "reflect"

// Sequence is a container of values of a single type.
type Sequence interface {
	// ElemType returns the element type.
	ElemType() reflect.Type
	// Len returns the number of elements.
	Len() int
	// RangeAny calls fn for each element in container order until fn returns false.
	RangeAny(fn func(v any) bool)
	// AppendAny adds an element. It panics if v does not hold ElemType.
	AppendAny(v any)
}

// Mapping is a container of key/value pairs.
type Mapping interface {
	// KeyType returns the key type.
	KeyType() reflect.Type
	// ValueType returns the value type.
	ValueType() reflect.Type
	// Len returns the number of entries.
	Len() int
	// RangeAny calls fn for each entry until fn returns false.
	RangeAny(fn func(k, v any) bool)
	// SetAny stores an entry. It panics if k or v do not hold the key and value types.
	SetAny(k, v any)
}

// Immutable marks containers whose contents cannot change after construction.
type Immutable interface {
	ImmutableContents()
}

// convert returns v as a T. A nil v becomes the zero T, which covers nil interface
// elements that lost their static type on the way through any.
func convert[T any](v any) T {
	if v == nil {
		var zero T
		return zero
	}

	return v.(T)
}
