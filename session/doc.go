// Package session holds the per-operation state of a serialize, deserialize or copy call.
//
// A Session tracks:
//
//   - References: object identity to reference ID while writing, reference ID to
//     decoded value while reading. IDs start at 1; 0 is null.
//   - Types: runtime type to type ID for Encoded/Referenced schema types.
//   - Copies: source identity to clone during a deep copy.
//   - Depth: nesting of composite values, bounded by MaxDepth.
//
// Every field header that is neither a Reference nor an Extended marker consumes one
// reference ID on both the writing and the reading side, whether or not the value is
// identity tracked. Identity-tracked values are bound to the ID of the header that
// introduced them, so a reader that skips an unknown field stays in step with the writer.
//
// Sessions are not safe for concurrent use. Obtain one from a Pool and return it when the
// operation ends:
//
//	s := pool.Get()
//	defer pool.Put(s)
package session
