// Package buffers implements the byte-level surface of the graft wire format.
//
// A Writer appends bytes into a chain of segments no larger than its maximum
// segment size. Nothing is visible to consumers until Commit is called:
// Sequence and Bytes only return committed data, and committed bytes are
// never rewritten.
//
// A Reader consumes a Sequence, which is an ordered list of read-only byte
// segments. The reader's segmentation is independent from the writer's, so a
// payload written in 8-byte segments can be read one byte per segment.
//
// Field headers are written and read here because header bookkeeping touches
// the session: every header that is neither a Reference nor an Extended marker
// consumes one reference ID, and schema payloads go through the session type
// table. Codecs never mark reference IDs themselves.
package buffers
