// Package endian provides the byte order used for fixed-width values in the graft wire format.
//
// Fixed32 and Fixed64 fields are always little endian regardless of the host, so
// both writers and readers go through Wire():
//
//	engine := endian.Wire()
//	buf = engine.AppendUint64(buf, math.Float64bits(v))
//	bits := engine.Uint64(buf[off:])
//
// The returned engines are stateless and safe for concurrent use.
package endian

import "encoding/binary"

// EndianEngine combines ByteOrder and AppendByteOrder from encoding/binary so a single
// value can both decode in place and append encoded values.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// Wire returns the engine for fixed-width wire payloads.
func Wire() EndianEngine {
	return binary.LittleEndian
}

// Frame returns the engine for the fixed-width fields of a frame header.
// Frames share the wire byte order so that a frame can be inspected with the same tooling.
func Frame() EndianEngine {
	return binary.LittleEndian
}
