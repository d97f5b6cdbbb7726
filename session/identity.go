package session

import (
	"reflect"
	"unsafe"
)

// Identity is the comparable identity of a reference value.
// The pointer keeps the referenced object alive for as long as the session holds the key.
type Identity struct {
	typ reflect.Type
	ptr unsafe.Pointer
	n   int
}

// IdentityOf returns the identity of a pointer, map or non-empty slice.
// It reports false for nil values, empty slices and kinds without identity.
//
// A slice is identified by its first element and its length. Two slices over one
// backing array with different starts or lengths, such as s and s[:2], are distinct
// values: they are encoded and copied separately and come back with separate arrays.
func IdentityOf(v reflect.Value) (Identity, bool) {
	switch v.Kind() {
	case reflect.Pointer, reflect.Map:
		if v.IsNil() {
			return Identity{}, false
		}

		return Identity{typ: v.Type(), ptr: v.UnsafePointer()}, true
	case reflect.Slice:
		if v.Len() == 0 {
			return Identity{}, false
		}

		return Identity{typ: v.Type(), ptr: v.UnsafePointer(), n: v.Len()}, true
	default:
		return Identity{}, false
	}
}

// Type returns the static type the identity was taken from.
func (id Identity) Type() reflect.Type {
	return id.typ
}
