// Package format defines the closed enumerations that make up the graft wire format.
package format

type (
	// WireType describes how the raw bytes of a field are shaped. It occupies bits 7-5 of a tag byte.
	WireType uint8
	// SchemaType describes how the runtime type of a field is communicated. It occupies bits 4-3 of a tag byte.
	SchemaType uint8
	// ExtendedWireType selects a control marker when the wire type is WireExtended.
	ExtendedWireType uint8
	// CompressionType selects the payload compression of a frame.
	CompressionType uint8
)

const (
	WireVarInt         WireType = 0 // WireVarInt is a LEB128 varint payload.
	WireTagDelimited   WireType = 1 // WireTagDelimited is a nested field stream closed by an end marker.
	WireLengthPrefixed WireType = 2 // WireLengthPrefixed is a varint length followed by raw bytes.
	WireFixed32        WireType = 3 // WireFixed32 is four little-endian bytes.
	WireFixed64        WireType = 4 // WireFixed64 is eight little-endian bytes.
	WireReference      WireType = 6 // WireReference is a varint reference ID, 0 meaning null.
	WireExtended       WireType = 7 // WireExtended is a payload-free control marker.

	SchemaExpected   SchemaType = 0 // SchemaExpected means the field has its statically expected type.
	SchemaWellKnown  SchemaType = 1 // SchemaWellKnown is followed by the varint ID of a built-in type.
	SchemaEncoded    SchemaType = 2 // SchemaEncoded is followed by an inline type descriptor.
	SchemaReferenced SchemaType = 3 // SchemaReferenced is followed by a session type ID.

	ExtendedEndTagDelimited ExtendedWireType = 0 // ExtendedEndTagDelimited closes a tag-delimited object.
	ExtendedEndBaseFields   ExtendedWireType = 1 // ExtendedEndBaseFields separates embedded fields from outer ones.

	CompressionNone CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 compression.
)

// Valid reports whether w belongs to the closed wire type set.
func (w WireType) Valid() bool {
	return w <= WireFixed64 || w == WireReference || w == WireExtended
}

func (w WireType) String() string {
	switch w {
	case WireVarInt:
		return "VarInt"
	case WireTagDelimited:
		return "TagDelimited"
	case WireLengthPrefixed:
		return "LengthPrefixed"
	case WireFixed32:
		return "Fixed32"
	case WireFixed64:
		return "Fixed64"
	case WireReference:
		return "Reference"
	case WireExtended:
		return "Extended"
	default:
		return "Unknown"
	}
}

func (s SchemaType) String() string {
	switch s {
	case SchemaExpected:
		return "Expected"
	case SchemaWellKnown:
		return "WellKnown"
	case SchemaEncoded:
		return "Encoded"
	case SchemaReferenced:
		return "Referenced"
	default:
		return "Unknown"
	}
}

func (e ExtendedWireType) String() string {
	switch e {
	case ExtendedEndTagDelimited:
		return "EndTagDelimited"
	case ExtendedEndBaseFields:
		return "EndBaseFields"
	default:
		return "Unknown"
	}
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

// ParseCompressionType maps a compression name, as printed by String or in lower case, back to its value.
func ParseCompressionType(name string) (CompressionType, bool) {
	switch name {
	case "None", "none", "":
		return CompressionNone, true
	case "Zstd", "zstd":
		return CompressionZstd, true
	case "S2", "s2":
		return CompressionS2, true
	case "LZ4", "lz4":
		return CompressionLZ4, true
	default:
		return 0, false
	}
}
