package buffers

import (
	"reflect"

	"github.com/arloliu/graft/typedesc"
)

// TypeResolver translates between runtime types and their wire identities.
// The codec registry implements it.
type TypeResolver interface {
	// WellKnownID returns the built-in ID of t.
	WellKnownID(t reflect.Type) (uint32, bool)
	// WellKnownType returns the type with built-in ID id.
	WellKnownType(id uint32) (reflect.Type, bool)
	// DescribeType returns the wire descriptor of t.
	DescribeType(t reflect.Type) (*typedesc.Descriptor, error)
	// ResolveType returns the local type a descriptor names.
	ResolveType(d *typedesc.Descriptor) (reflect.Type, bool)
}
