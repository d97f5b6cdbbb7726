package codec

import (
	"encoding"
	"fmt"
	"reflect"

	"github.com/arloliu/graft/choice"
	"github.com/arloliu/graft/collections"
	"github.com/arloliu/graft/errs"
	"github.com/arloliu/graft/optional"
	"github.com/arloliu/graft/tuple"
)

var (
	sequenceType    = reflect.TypeFor[collections.Sequence]()
	mappingType     = reflect.TypeFor[collections.Mapping]()
	immutableType   = reflect.TypeFor[collections.Immutable]()
	comparerType    = reflect.TypeFor[collections.Comparer]()
	tupleType       = reflect.TypeFor[tuple.Tuple]()
	optionType      = reflect.TypeFor[optional.Option]()
	choiceType      = reflect.TypeFor[choice.Choice]()
	marshalerType   = reflect.TypeFor[encoding.BinaryMarshaler]()
	unmarshalerType = reflect.TypeFor[encoding.BinaryUnmarshaler]()
)

// comparerHolder is implemented by mappings whose key equality is configurable.
type comparerHolder interface {
	Comparer() collections.Comparer
	SetComparer(c collections.Comparer)
}

var comparerHolderType = reflect.TypeFor[comparerHolder]()

func unsupported(t reflect.Type) error {
	return fmt.Errorf("no codec for %v: %w", t, errs.ErrUnsupportedType)
}

// isBinaryMarshaler reports whether values of t round trip through
// MarshalBinary and UnmarshalBinary on a *t or, for pointer types, on t.
func isBinaryMarshaler(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		return t.Implements(marshalerType) && t.Implements(unmarshalerType)
	}

	return t.Implements(marshalerType) && reflect.PointerTo(t).Implements(unmarshalerType)
}

// isSetShape reports whether a map type only carries its keys.
func isSetShape(t reflect.Type) bool {
	e := t.Elem()
	return e.Kind() == reflect.Struct && e.NumField() == 0
}

// specializeCodec builds a codec from the shape of t. Child codecs are resolved
// when values are written or read, so recursive types need no special handling.
func (reg *Registry) specializeCodec(t reflect.Type) (FieldCodec, error) {
	switch {
	case t.Kind() == reflect.Pointer && t.Implements(sequenceType):
		return newField(t, sequenceBody{reg: reg, typ: t}), nil
	case t.Kind() == reflect.Pointer && t.Implements(mappingType):
		return newField(t, mappingBody{reg: reg, typ: t, comparer: t.Implements(comparerHolderType)}), nil
	case isBinaryMarshaler(t):
		return newField(t, marshalerBody{typ: t}), nil
	}

	switch t.Kind() {
	case reflect.Bool:
		return newField(t, boolBody{}), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return newField(t, intBody{}), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return newField(t, uintBody{}), nil
	case reflect.Float32:
		return newField(t, float32Body{}), nil
	case reflect.Float64:
		return newField(t, float64Body{}), nil
	case reflect.Complex64:
		return newField(t, complexBody{partSize: 4}), nil
	case reflect.Complex128:
		return newField(t, complexBody{partSize: 8}), nil
	case reflect.String:
		return newField(t, stringBody{}), nil
	case reflect.Pointer:
		return pointerCodec{reg: reg, typ: t}, nil
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return newField(t, bytesBody{}), nil
		}

		return newField(t, listBody{reg: reg, typ: t}), nil
	case reflect.Array:
		return newField(t, listBody{reg: reg, typ: t}), nil
	case reflect.Map:
		if isSetShape(t) {
			return newField(t, setBody{reg: reg, typ: t}), nil
		}

		return newField(t, mapBody{reg: reg, typ: t}), nil
	case reflect.Struct:
		b, err := newStructBody(reg, t)
		if err != nil {
			return nil, err
		}

		return newField(t, b), nil
	case reflect.Interface:
		return interfaceCodec{reg: reg, typ: t}, nil
	default:
		return nil, unsupported(t)
	}
}

// specializeCopier builds a copier from the shape of t.
func (reg *Registry) specializeCopier(t reflect.Type) (ValueCopier, error) {
	switch {
	case t.Kind() == reflect.Pointer && t.Implements(sequenceType):
		return newSequenceCopier(reg, t)
	case t.Kind() == reflect.Pointer && t.Implements(mappingType):
		return mappingCopier{reg: reg, typ: t}, nil
	case isBinaryMarshaler(t):
		return marshalerCopier{typ: t}, nil
	}

	switch t.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return immutableCopier{}, nil
	case reflect.Pointer:
		return pointerCopier{reg: reg, typ: t}, nil
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return bytesCopier{}, nil
		}

		return sliceCopier{reg: reg, typ: t}, nil
	case reflect.Array:
		return newArrayCopier(reg, t)
	case reflect.Map:
		return mapCopier{reg: reg, typ: t}, nil
	case reflect.Struct:
		return newStructCopier(reg, t)
	case reflect.Interface:
		return interfaceCopier{reg: reg, typ: t}, nil
	default:
		return nil, fmt.Errorf("no copier for %v: %w", t, errs.ErrUnsupportedType)
	}
}

// fieldIDs turns absolute field IDs into the deltas written in headers.
type fieldIDs struct {
	last uint32
}

func (f *fieldIDs) delta(id uint32) uint32 {
	d := id - f.last
	f.last = id

	return d
}
