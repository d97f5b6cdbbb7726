package codec

import (
	"reflect"

	"github.com/arloliu/graft/collections"
	"github.com/arloliu/graft/typedesc"
)

// predeclared maps the names of types without a package path to their types.
var predeclared = func() map[string]reflect.Type {
	m := make(map[string]reflect.Type)
	for _, t := range []reflect.Type{
		reflect.TypeFor[bool](),
		reflect.TypeFor[int](), reflect.TypeFor[int8](), reflect.TypeFor[int16](),
		reflect.TypeFor[int32](), reflect.TypeFor[int64](),
		reflect.TypeFor[uint](), reflect.TypeFor[uint8](), reflect.TypeFor[uint16](),
		reflect.TypeFor[uint32](), reflect.TypeFor[uint64](), reflect.TypeFor[uintptr](),
		reflect.TypeFor[float32](), reflect.TypeFor[float64](),
		reflect.TypeFor[complex64](), reflect.TypeFor[complex128](),
		reflect.TypeFor[string](), reflect.TypeFor[error](),
	} {
		m[t.Name()] = t
	}
	m["any"] = reflect.TypeFor[any]()
	m["struct{}"] = reflect.TypeFor[struct{}]()

	return m
}()

// builtinNames returns the types a fresh registry can resolve by name before
// it has seen them.
func builtinNames() map[reflect.Type]string {
	m := make(map[reflect.Type]string)
	for _, t := range []reflect.Type{
		reflect.TypeFor[collections.Ordinal](),
		reflect.TypeFor[collections.OrdinalIgnoreCase](),
	} {
		m[t] = typedesc.DefaultName(t)
	}

	return m
}

func (reg *Registry) customName(t reflect.Type) (string, bool) {
	reg.namesMu.RLock()
	defer reg.namesMu.RUnlock()
	name, ok := reg.customNames[t]

	return name, ok
}

// trackType adds t and the named types it is built from to the name table.
func (reg *Registry) trackType(t reflect.Type) error {
	if t.Name() == "" {
		switch t.Kind() {
		case reflect.Pointer, reflect.Slice, reflect.Array:
			return reg.trackType(t.Elem())
		case reflect.Map:
			if err := reg.trackType(t.Key()); err != nil {
				return err
			}

			return reg.trackType(t.Elem())
		default:
			return nil
		}
	}
	if t.PkgPath() == "" {
		return nil
	}

	name, ok := reg.customName(t)
	if !ok {
		name = typedesc.DefaultName(t)
	}

	reg.namesMu.Lock()
	defer reg.namesMu.Unlock()

	return reg.names.Track(name, t)
}

// WellKnownID returns the built-in ID of t.
func (reg *Registry) WellKnownID(t reflect.Type) (uint32, bool) {
	id, ok := wellKnownIDs[t]
	return id, ok
}

// WellKnownType returns the type with built-in ID id.
func (reg *Registry) WellKnownType(id uint32) (reflect.Type, bool) {
	t, ok := wellKnownTypes[id]
	return t, ok
}

// DescribeType returns the wire descriptor of t and makes t resolvable by name.
func (reg *Registry) DescribeType(t reflect.Type) (*typedesc.Descriptor, error) {
	if err := reg.trackType(t); err != nil {
		return nil, err
	}

	return typedesc.FromType(t, reg.customName)
}

// ResolveType returns the local type a descriptor names.
func (reg *Registry) ResolveType(d *typedesc.Descriptor) (reflect.Type, bool) {
	if d == nil {
		return nil, false
	}

	switch d.Shape {
	case typedesc.ShapeNamed:
		if t, ok := predeclared[d.Name]; ok {
			return t, true
		}
		reg.namesMu.RLock()
		defer reg.namesMu.RUnlock()

		return reg.names.Lookup(d.Name)
	case typedesc.ShapePointer, typedesc.ShapeByRef:
		elem, ok := reg.ResolveType(d.Elem)
		if !ok {
			return nil, false
		}

		return reflect.PointerTo(elem), true
	case typedesc.ShapeSlice:
		elem, ok := reg.ResolveType(d.Elem)
		if !ok {
			return nil, false
		}

		return reflect.SliceOf(elem), true
	case typedesc.ShapeArray:
		elem, ok := reg.ResolveType(d.Elem)
		if !ok || d.Len < 0 {
			return nil, false
		}

		return reflect.ArrayOf(d.Len, elem), true
	case typedesc.ShapeMap:
		key, ok := reg.ResolveType(d.Key)
		if !ok || !key.Comparable() {
			return nil, false
		}
		elem, ok := reg.ResolveType(d.Elem)
		if !ok {
			return nil, false
		}

		return reflect.MapOf(key, elem), true
	default:
		return nil, false
	}
}
