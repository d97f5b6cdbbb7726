package encoding

import (
	"fmt"
	"io"

	"github.com/arloliu/graft/errs"
	"github.com/arloliu/graft/format"
)

const (
	wireShift   = 5
	schemaShift = 3
	schemaMask  = 0x18
	deltaMask   = 0x07

	// MaxInlineDelta is the largest field ID delta stored inside the tag byte.
	MaxInlineDelta = 6
	// deltaFollows marks a delta that is written as a varint after the tag.
	deltaFollows = 7

	// EndObjectTag is the tag byte that closes a tag-delimited object.
	EndObjectTag byte = byte(format.WireExtended)<<wireShift | byte(format.ExtendedEndTagDelimited)<<schemaShift
	// EndBaseFieldsTag separates embedded base fields from the outer object's fields.
	EndBaseFieldsTag byte = byte(format.WireExtended)<<wireShift | byte(format.ExtendedEndBaseFields)<<schemaShift
)

// Tag is a decoded field tag byte.
type Tag byte

// WireType returns bits 7-5 of the tag.
func (t Tag) WireType() format.WireType {
	return format.WireType(t >> wireShift)
}

// SchemaType returns bits 4-3 of the tag. It is meaningless for extended tags.
func (t Tag) SchemaType() format.SchemaType {
	return format.SchemaType((t & schemaMask) >> schemaShift)
}

// Extended returns bits 4-3 of an extended tag.
func (t Tag) Extended() format.ExtendedWireType {
	return format.ExtendedWireType((t & schemaMask) >> schemaShift)
}

// InlineDelta returns the field ID delta stored in the tag and whether it is complete.
// When ok is false the delta follows the tag as a varint.
func (t Tag) InlineDelta() (delta uint32, ok bool) {
	d := uint32(t & deltaMask)
	if d == deltaFollows {
		return 0, false
	}

	return d, true
}

// ParseTag validates a raw tag byte.
// It fails with errs.ErrMalformedInput for the reserved wire type.
func ParseTag(b byte) (Tag, error) {
	t := Tag(b)
	if !t.WireType().Valid() {
		return 0, fmt.Errorf("tag 0x%02x has reserved wire type %d: %w", b, b>>wireShift, errs.ErrMalformedInput)
	}

	return t, nil
}

// AppendFieldTag appends a field tag and, for deltas above MaxInlineDelta, the delta varint.
//
// Parameters:
//   - dst: Destination slice
//   - wire: Wire type of the field; must not be format.WireExtended
//   - schema: Schema type of the field
//   - delta: Field ID delta from the previous field of the same object
//
// Returns:
//   - []byte: dst extended by the tag and optional delta
func AppendFieldTag(dst []byte, wire format.WireType, schema format.SchemaType, delta uint32) []byte {
	tag := byte(wire)<<wireShift | byte(schema)<<schemaShift
	if delta <= MaxInlineDelta {
		return append(dst, tag|byte(delta))
	}
	dst = append(dst, tag|deltaFollows)

	return AppendUvarint(dst, uint64(delta))
}

// AppendExtendedTag appends a control marker.
func AppendExtendedTag(dst []byte, ext format.ExtendedWireType) []byte {
	return append(dst, byte(format.WireExtended)<<wireShift|byte(ext)<<schemaShift)
}

// ReadFieldTag reads a tag and its delta from r.
//
// Returns:
//   - Tag: The validated tag
//   - uint32: The field ID delta (0 for extended tags)
//   - error: errs.ErrMalformedInput or errs.ErrUnexpectedEndOfData
func ReadFieldTag(r io.ByteReader) (Tag, uint32, error) {
	b, err := r.ReadByte()
	if err != nil {
		return 0, 0, eofToUnexpected(err)
	}
	tag, err := ParseTag(b)
	if err != nil {
		return 0, 0, err
	}
	if tag.WireType() == format.WireExtended {
		return tag, 0, nil
	}
	if delta, ok := tag.InlineDelta(); ok {
		return tag, delta, nil
	}
	delta, err := ReadUvarint32(r)
	if err != nil {
		return 0, 0, err
	}

	return tag, delta, nil
}
