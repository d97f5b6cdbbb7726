// Package encoding provides the byte-level primitives of the graft wire format.
//
// Two building blocks live here:
//
//   - Varints: unsigned integers are written in base-128 groups, least-significant
//     group first, with the high bit of each byte marking a continuation. Signed
//     integers are zig-zag mapped first so small negative numbers stay short.
//     128-bit values use the same scheme and take at most 19 bytes.
//   - Field tags: every field starts with one tag byte that packs the wire type
//     (bits 7-5), the schema type (bits 4-3) and the field ID delta (bits 2-0).
//     Deltas 0 to 6 are stored inline; a stored 7 means the full delta follows
//     as a varint.
//
// The functions in this package operate on byte slices or io.ByteReader, so they
// can be shared by the segmented buffers package and by self-contained formats
// such as type descriptors and frames.
//
// # Tag Layout
//
//	bit:   7 6 5 | 4 3    | 2 1 0
//	       wire  | schema | delta
//
// For the Extended wire type, bits 4-3 hold the ExtendedWireType and bits 2-0 are zero.
// The end-of-object marker is therefore the single byte 0xE0.
package encoding
