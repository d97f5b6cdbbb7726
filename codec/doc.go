// Package codec resolves, caches and runs the codecs and copiers of graft.
//
// A Registry maps each runtime type to a FieldCodec, which writes and reads one
// field of that type, and to a ValueCopier, which produces an independent clone.
// Resolution tries, in order:
//
//   - codecs and copiers registered with RegisterCodec and RegisterCopier
//   - the built-in codecs for scalar and well-known types
//   - shape specializations: pointers, slices, arrays, maps, sets, containers
//     from package collections, tuples, optionals, choices, named scalar kinds,
//     and encoding.BinaryMarshaler types
//   - the structural fallback for structs, which encodes exported fields
//
// Resolved codecs are cached per registry. Registering or removing an override
// starts a fresh cache, so later lookups observe it.
//
// Serializer and DeepCopier are the entry points for whole values:
//
//	reg, err := codec.NewRegistry()
//	ser, err := codec.NewSerializer[*Order](reg)
//	data, err := ser.SerializeToBytes(order)
//	back, err := ser.DeserializeBytes(data)
//
// Every field header other than a Reference consumes one reference ID on both
// sides, and pointers, maps and non-empty slices are bound to the ID of the header
// that introduced them. Later occurrences of the same identity are written as
// Reference fields, so shared and cyclic object graphs survive a round trip.
package codec
