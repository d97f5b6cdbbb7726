package buffers

import (
	"fmt"
	"reflect"

	"github.com/arloliu/graft/format"
	"github.com/arloliu/graft/typedesc"
)

// FieldHeader is a decoded field header.
type FieldHeader struct {
	WireType     format.WireType
	SchemaType   format.SchemaType
	FieldIDDelta uint32
	// Extended is the control marker of a format.WireExtended header.
	Extended format.ExtendedWireType
	// WellKnownID is set for format.SchemaWellKnown headers.
	WellKnownID uint32
	// TypeID is the session type ID of Encoded and Referenced headers.
	TypeID uint32
	// Type is the runtime type named by the schema payload.
	// It is nil for Expected headers and for types this program cannot resolve.
	Type reflect.Type
	// Descriptor is the wire descriptor of Encoded and Referenced headers.
	Descriptor *typedesc.Descriptor
}

// IsEndObject reports whether h closes a tag-delimited object.
func (h FieldHeader) IsEndObject() bool {
	return h.WireType == format.WireExtended && h.Extended == format.ExtendedEndTagDelimited
}

// IsEndBaseFields reports whether h is the base-fields separator.
func (h FieldHeader) IsEndBaseFields() bool {
	return h.WireType == format.WireExtended && h.Extended == format.ExtendedEndBaseFields
}

// IsReference reports whether h carries a reference ID instead of a value.
func (h FieldHeader) IsReference() bool {
	return h.WireType == format.WireReference
}

// HasRuntimeType reports whether the schema payload carried a type.
func (h FieldHeader) HasRuntimeType() bool {
	return h.SchemaType != format.SchemaExpected
}

// Unresolved reports whether the header named a type this program does not know.
func (h FieldHeader) Unresolved() bool {
	return h.HasRuntimeType() && h.Type == nil
}

func (h FieldHeader) String() string {
	if h.WireType == format.WireExtended {
		return fmt.Sprintf("[%s]", h.Extended)
	}

	s := fmt.Sprintf("[%s delta=%d", h.WireType, h.FieldIDDelta)
	switch h.SchemaType {
	case format.SchemaWellKnown:
		s += fmt.Sprintf(" wellknown=%d", h.WellKnownID)
	case format.SchemaEncoded, format.SchemaReferenced:
		s += fmt.Sprintf(" %s type#%d", h.SchemaType, h.TypeID)
		if h.Descriptor != nil {
			s += " " + h.Descriptor.String()
		}
	default:
	}

	return s + "]"
}
