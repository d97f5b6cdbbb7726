// Package typedesc models type identities as structural descriptors.
//
// A Descriptor names a base shape plus the descriptors of its type arguments, so
// it can describe named types, composite shapes (pointer, slice, array, map),
// constructed and open generic types, by-reference and multi-dimensional array
// shapes. Descriptors are plain data: building, encoding and decoding one never
// requires the described type to exist in the running program.
//
// The binary form is what the wire format writes for Encoded schema types; the
// text form is what diagnostics print and what Parse accepts:
//
//	int32
//	*github.com/acme/orders.Order
//	[]string
//	[4]uint8
//	map[string][]int64
//	github.com/acme/pair.Pair[string,int32]
//	github.com/acme/pair.Pair[,]      open generic, arity 2
//	&int32                            by-reference
//	[,]string                         rank-2 array
//	[*]string                         rank-1 array that is not a slice
package typedesc

import (
	"strconv"
	"strings"
)

// Shape is the base shape of a descriptor.
type Shape uint8

const (
	ShapeNamed       Shape = 0x1 // ShapeNamed is a type identified by name alone.
	ShapePointer     Shape = 0x2 // ShapePointer is a pointer to Elem.
	ShapeSlice       Shape = 0x3 // ShapeSlice is a variable-length sequence of Elem.
	ShapeArray       Shape = 0x4 // ShapeArray is a fixed-length array of Len Elem values.
	ShapeMap         Shape = 0x5 // ShapeMap maps Key to Elem.
	ShapeGeneric     Shape = 0x6 // ShapeGeneric is Name instantiated with Args.
	ShapeOpenGeneric Shape = 0x7 // ShapeOpenGeneric is Name with Len unbound type parameters.
	ShapeByRef       Shape = 0x8 // ShapeByRef is a by-reference slot holding Elem.
	ShapeMultiArray  Shape = 0x9 // ShapeMultiArray is an array of Elem with rank Len.
)

func (s Shape) String() string {
	switch s {
	case ShapeNamed:
		return "Named"
	case ShapePointer:
		return "Pointer"
	case ShapeSlice:
		return "Slice"
	case ShapeArray:
		return "Array"
	case ShapeMap:
		return "Map"
	case ShapeGeneric:
		return "Generic"
	case ShapeOpenGeneric:
		return "OpenGeneric"
	case ShapeByRef:
		return "ByRef"
	case ShapeMultiArray:
		return "MultiArray"
	default:
		return "Unknown"
	}
}

// Descriptor is a structural type identity.
type Descriptor struct {
	Shape Shape
	// Name is set for ShapeNamed, ShapeGeneric and ShapeOpenGeneric.
	Name string
	// Elem is the element, pointee or value descriptor of composite shapes.
	Elem *Descriptor
	// Key is the key descriptor of ShapeMap.
	Key *Descriptor
	// Len is the array length, the multi-array rank or the open generic arity.
	Len int
	// Args are the type arguments of ShapeGeneric, in declaration order.
	Args []*Descriptor
}

// Named returns a descriptor for a type identified by name.
func Named(name string) *Descriptor {
	return &Descriptor{Shape: ShapeNamed, Name: name}
}

// PointerTo returns a descriptor for a pointer to elem.
func PointerTo(elem *Descriptor) *Descriptor {
	return &Descriptor{Shape: ShapePointer, Elem: elem}
}

// SliceOf returns a descriptor for a slice of elem.
func SliceOf(elem *Descriptor) *Descriptor {
	return &Descriptor{Shape: ShapeSlice, Elem: elem}
}

// ArrayOf returns a descriptor for a fixed-length array.
func ArrayOf(n int, elem *Descriptor) *Descriptor {
	return &Descriptor{Shape: ShapeArray, Len: n, Elem: elem}
}

// MapOf returns a descriptor for a map.
func MapOf(key, elem *Descriptor) *Descriptor {
	return &Descriptor{Shape: ShapeMap, Key: key, Elem: elem}
}

// Generic returns a descriptor for a generic type instantiated with args.
func Generic(name string, args ...*Descriptor) *Descriptor {
	return &Descriptor{Shape: ShapeGeneric, Name: name, Args: args}
}

// OpenGeneric returns a descriptor for a generic type whose arity parameters are unbound.
func OpenGeneric(name string, arity int) *Descriptor {
	return &Descriptor{Shape: ShapeOpenGeneric, Name: name, Len: arity}
}

// ByRef returns a descriptor for a by-reference slot holding elem.
func ByRef(elem *Descriptor) *Descriptor {
	return &Descriptor{Shape: ShapeByRef, Elem: elem}
}

// MultiArrayOf returns a descriptor for an array of the given rank.
func MultiArrayOf(rank int, elem *Descriptor) *Descriptor {
	return &Descriptor{Shape: ShapeMultiArray, Len: rank, Elem: elem}
}

// Equal reports whether d and other describe the same type.
func (d *Descriptor) Equal(other *Descriptor) bool {
	if d == nil || other == nil {
		return d == other
	}
	if d.Shape != other.Shape || d.Name != other.Name || d.Len != other.Len || len(d.Args) != len(other.Args) {
		return false
	}
	if !d.Elem.Equal(other.Elem) || !d.Key.Equal(other.Key) {
		return false
	}
	for i := range d.Args {
		if !d.Args[i].Equal(other.Args[i]) {
			return false
		}
	}

	return true
}

// String returns the canonical text form accepted by Parse.
func (d *Descriptor) String() string {
	var sb strings.Builder
	d.writeText(&sb)

	return sb.String()
}

func (d *Descriptor) writeText(sb *strings.Builder) {
	if d == nil {
		sb.WriteString("<nil>")
		return
	}

	switch d.Shape {
	case ShapeNamed:
		sb.WriteString(d.Name)
	case ShapePointer:
		sb.WriteByte('*')
		d.Elem.writeText(sb)
	case ShapeByRef:
		sb.WriteByte('&')
		d.Elem.writeText(sb)
	case ShapeSlice:
		sb.WriteString("[]")
		d.Elem.writeText(sb)
	case ShapeArray:
		sb.WriteByte('[')
		sb.WriteString(strconv.Itoa(d.Len))
		sb.WriteByte(']')
		d.Elem.writeText(sb)
	case ShapeMultiArray:
		if d.Len <= 1 {
			sb.WriteString("[*]")
		} else {
			sb.WriteByte('[')
			sb.WriteString(strings.Repeat(",", d.Len-1))
			sb.WriteByte(']')
		}
		d.Elem.writeText(sb)
	case ShapeMap:
		sb.WriteString("map[")
		d.Key.writeText(sb)
		sb.WriteByte(']')
		d.Elem.writeText(sb)
	case ShapeGeneric:
		sb.WriteString(d.Name)
		sb.WriteByte('[')
		for i, arg := range d.Args {
			if i > 0 {
				sb.WriteByte(',')
			}
			arg.writeText(sb)
		}
		sb.WriteByte(']')
	case ShapeOpenGeneric:
		sb.WriteString(d.Name)
		sb.WriteByte('[')
		sb.WriteString(strings.Repeat(",", max(d.Len-1, 0)))
		sb.WriteByte(']')
	default:
		sb.WriteString("<unknown>")
	}
}
