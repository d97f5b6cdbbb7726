package typedesc

import (
	"fmt"
	"reflect"

	"github.com/arloliu/graft/errs"
)

// Namer returns the wire name of a named type. It reports false to fall back to DefaultName.
type Namer func(t reflect.Type) (string, bool)

// DefaultName returns the import-path qualified name of a named type, or the bare name
// of a predeclared type.
func DefaultName(t reflect.Type) string {
	if t.PkgPath() == "" {
		return t.Name()
	}

	return t.PkgPath() + "." + t.Name()
}

// FromType describes t. Named types become ShapeNamed leaves through namer; unnamed
// pointers, slices, arrays and maps are described structurally. The empty interface
// and the empty struct have fixed names. Other unnamed types cannot be described and
// fail with errs.ErrUnsupportedType.
func FromType(t reflect.Type, namer Namer) (*Descriptor, error) {
	if t.Name() != "" {
		if namer != nil {
			if name, ok := namer(t); ok {
				return Named(name), nil
			}
		}

		return Named(DefaultName(t)), nil
	}

	switch t.Kind() {
	case reflect.Pointer:
		return describeElem(t, namer, PointerTo)
	case reflect.Slice:
		return describeElem(t, namer, SliceOf)
	case reflect.Array:
		return describeElem(t, namer, func(elem *Descriptor) *Descriptor { return ArrayOf(t.Len(), elem) })
	case reflect.Map:
		key, err := FromType(t.Key(), namer)
		if err != nil {
			return nil, err
		}

		return describeElem(t, namer, func(elem *Descriptor) *Descriptor { return MapOf(key, elem) })
	case reflect.Interface:
		if t.NumMethod() == 0 {
			return Named("any"), nil
		}
	case reflect.Struct:
		if t.NumField() == 0 {
			return Named("struct{}"), nil
		}
	default:
	}

	return nil, fmt.Errorf("cannot describe unnamed type %s: %w", t, errs.ErrUnsupportedType)
}

func describeElem(t reflect.Type, namer Namer, wrap func(*Descriptor) *Descriptor) (*Descriptor, error) {
	elem, err := FromType(t.Elem(), namer)
	if err != nil {
		return nil, err
	}

	return wrap(elem), nil
}
