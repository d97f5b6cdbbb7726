package buffers

import (
	"fmt"
	"reflect"

	"github.com/arloliu/graft/encoding"
	"github.com/arloliu/graft/endian"
	"github.com/arloliu/graft/errs"
	"github.com/arloliu/graft/format"
	"github.com/arloliu/graft/internal/options"
	"github.com/arloliu/graft/internal/pool"
	"github.com/arloliu/graft/session"
)

// DefaultMaxSegmentSize is the segment size of a Writer created without WithMaxSegmentSize.
const DefaultMaxSegmentSize = pool.SegmentDefaultSize

type writerConfig struct {
	maxSegmentSize int
	resolver       TypeResolver
}

// WriterOption configures a Writer.
type WriterOption = options.Option[*writerConfig]

// WithMaxSegmentSize bounds the size of each segment. n must be at least 1.
func WithMaxSegmentSize(n int) WriterOption {
	return options.New(func(c *writerConfig) error {
		if n < 1 {
			return fmt.Errorf("%w: %d", errs.ErrInvalidSegmentSize, n)
		}
		c.maxSegmentSize = n

		return nil
	})
}

// WithTypeResolver sets the resolver used to encode runtime types in field headers.
func WithTypeResolver(r TypeResolver) WriterOption {
	return options.NoError(func(c *writerConfig) {
		c.resolver = r
	})
}

// Writer appends encoded data to a chain of pooled segments.
type Writer struct {
	sess     *session.Session
	resolver TypeResolver
	engine   endian.EndianEngine
	segPool  *pool.ByteBufferPool

	segments  []*pool.ByteBuffer
	written   int
	committed int
	scratch   [encoding.MaxVarintLen128]byte
}

// NewWriter creates a Writer bound to sess.
func NewWriter(sess *session.Session, opts ...WriterOption) (*Writer, error) {
	cfg := writerConfig{maxSegmentSize: DefaultMaxSegmentSize}
	if err := options.Apply(&cfg, opts...); err != nil {
		return nil, err
	}

	return &Writer{
		sess:     sess,
		resolver: cfg.resolver,
		engine:   endian.Wire(),
		segPool:  pool.SegmentPool(cfg.maxSegmentSize),
	}, nil
}

// Session returns the session the writer records references and types in.
func (w *Writer) Session() *session.Session {
	return w.sess
}

// Resolver returns the type resolver, which may be nil.
func (w *Writer) Resolver() TypeResolver {
	return w.resolver
}

// MaxSegmentSize returns the upper bound of each segment.
func (w *Writer) MaxSegmentSize() int {
	return w.segPool.Size()
}

// Position returns the number of bytes written, committed or not.
func (w *Writer) Position() int {
	return w.written
}

// Committed returns the number of committed bytes.
func (w *Writer) Committed() int {
	return w.committed
}

// Commit makes everything written so far visible through Sequence and Bytes.
func (w *Writer) Commit() {
	w.committed = w.written
}

// Sequence returns the committed bytes as read-only segment views.
// The views stay valid until Release or Reset.
func (w *Writer) Sequence() Sequence {
	segs := make([][]byte, 0, len(w.segments))
	remaining := w.committed
	for _, seg := range w.segments {
		if remaining == 0 {
			break
		}
		n := min(seg.Len(), remaining)
		segs = append(segs, seg.B[:n:n])
		remaining -= n
	}

	return NewSequence(segs...)
}

// Bytes returns a contiguous copy of the committed bytes.
func (w *Writer) Bytes() []byte {
	return w.AppendTo(make([]byte, 0, w.committed))
}

// AppendTo appends the committed bytes to dst.
func (w *Writer) AppendTo(dst []byte) []byte {
	remaining := w.committed
	for _, seg := range w.segments {
		if remaining == 0 {
			break
		}
		n := min(seg.Len(), remaining)
		dst = append(dst, seg.B[:n]...)
		remaining -= n
	}

	return dst
}

// Release returns all segments to the pool and empties the writer.
func (w *Writer) Release() {
	for i, seg := range w.segments {
		w.segPool.Put(seg)
		w.segments[i] = nil
	}
	w.segments = w.segments[:0]
	w.written = 0
	w.committed = 0
}

// Reset releases the segments and binds the writer to sess.
func (w *Writer) Reset(sess *session.Session) {
	w.Release()
	w.sess = sess
}

func (w *Writer) tail() *pool.ByteBuffer {
	if n := len(w.segments); n > 0 {
		if seg := w.segments[n-1]; seg.Available() > 0 {
			return seg
		}
	}

	seg := w.segPool.Get()
	w.segments = append(w.segments, seg)

	return seg
}

func (w *Writer) write(p []byte) {
	for len(p) > 0 {
		seg := w.tail()
		n := min(seg.Available(), len(p))
		seg.B = append(seg.B, p[:n]...)
		p = p[n:]
		w.written += n
	}
}

// WriteByte appends one byte. It never fails.
func (w *Writer) WriteByte(b byte) error {
	seg := w.tail()
	seg.B = append(seg.B, b)
	w.written++

	return nil
}

// Write appends p. It never fails.
func (w *Writer) Write(p []byte) (int, error) {
	w.write(p)
	return len(p), nil
}

// WriteBytes appends p.
func (w *Writer) WriteBytes(p []byte) {
	w.write(p)
}

// WriteString appends the bytes of s.
func (w *Writer) WriteString(s string) {
	for len(s) > 0 {
		seg := w.tail()
		n := min(seg.Available(), len(s))
		seg.B = append(seg.B, s[:n]...)
		s = s[n:]
		w.written += n
	}
}

// WriteVarUint32 appends v as a varint.
func (w *Writer) WriteVarUint32(v uint32) {
	w.write(encoding.AppendUvarint(w.scratch[:0], uint64(v)))
}

// WriteVarUint64 appends v as a varint.
func (w *Writer) WriteVarUint64(v uint64) {
	w.write(encoding.AppendUvarint(w.scratch[:0], v))
}

// WriteVarInt32 appends v as a zig-zag varint.
func (w *Writer) WriteVarInt32(v int32) {
	w.WriteVarUint32(encoding.ZigZag32(v))
}

// WriteVarInt64 appends v as a zig-zag varint.
func (w *Writer) WriteVarInt64(v int64) {
	w.WriteVarUint64(encoding.ZigZag64(v))
}

// WriteVarUint128 appends the 128-bit value hi:lo as a varint.
func (w *Writer) WriteVarUint128(hi, lo uint64) {
	w.write(encoding.AppendUvarint128(w.scratch[:0], hi, lo))
}

// WriteUint32 appends v as four little-endian bytes.
func (w *Writer) WriteUint32(v uint32) {
	w.write(w.engine.AppendUint32(w.scratch[:0], v))
}

// WriteUint64 appends v as eight little-endian bytes.
func (w *Writer) WriteUint64(v uint64) {
	w.write(w.engine.AppendUint64(w.scratch[:0], v))
}

// WriteLengthPrefixed appends a varint length followed by p.
func (w *Writer) WriteLengthPrefixed(p []byte) {
	w.WriteVarUint64(uint64(len(p)))
	w.write(p)
}

// WriteFieldHeaderExpected writes a header whose value has the statically expected type.
func (w *Writer) WriteFieldHeaderExpected(delta uint32, wire format.WireType) {
	w.write(encoding.AppendFieldTag(w.scratch[:0], wire, format.SchemaExpected, delta))
	w.markValueField(wire)
}

// WriteFieldHeader writes a header for a value of runtime type actual in a slot of type expected.
//
// When actual is nil or equal to expected the schema type is Expected. Otherwise the
// runtime type is sent as a well-known ID, a session type ID already assigned, or an
// inline descriptor that assigns the next session type ID.
//
// Parameters:
//   - delta: Field ID delta from the previous field of the same object
//   - expected: Static type of the slot, nil when unknown
//   - actual: Runtime type of the value
//   - wire: Wire type of the payload that follows
//
// Returns:
//   - error: errs.ErrUnsupportedType when the runtime type cannot be described
func (w *Writer) WriteFieldHeader(delta uint32, expected, actual reflect.Type, wire format.WireType) error {
	if actual == nil || actual == expected {
		w.WriteFieldHeaderExpected(delta, wire)
		return nil
	}
	if w.resolver == nil {
		return fmt.Errorf("cannot encode runtime type %v without a type resolver: %w", actual, errs.ErrUnsupportedType)
	}

	if id, ok := w.resolver.WellKnownID(actual); ok {
		w.write(encoding.AppendFieldTag(w.scratch[:0], wire, format.SchemaWellKnown, delta))
		w.WriteVarUint32(id)
		w.markValueField(wire)

		return nil
	}

	if id, ok := w.sess.Types.Lookup(actual); ok {
		w.write(encoding.AppendFieldTag(w.scratch[:0], wire, format.SchemaReferenced, delta))
		w.WriteVarUint32(id)
		w.markValueField(wire)

		return nil
	}

	desc, err := w.resolver.DescribeType(actual)
	if err != nil {
		return err
	}
	w.sess.Types.GetOrCreateTypeID(actual)
	w.write(encoding.AppendFieldTag(w.scratch[:0], wire, format.SchemaEncoded, delta))
	w.write(desc.AppendBinary(w.scratch[:0]))
	w.markValueField(wire)

	return nil
}

// WriteNullReference writes a null value.
func (w *Writer) WriteNullReference(delta uint32) {
	w.WriteReference(delta, 0)
}

// WriteReference writes a back-reference to a value introduced earlier in the operation.
func (w *Writer) WriteReference(delta uint32, refID uint32) {
	w.write(encoding.AppendFieldTag(w.scratch[:0], format.WireReference, format.SchemaExpected, delta))
	w.WriteVarUint32(refID)
}

// WriteEndObject closes a tag-delimited object.
func (w *Writer) WriteEndObject() {
	_ = w.WriteByte(encoding.EndObjectTag)
}

// WriteEndBaseFields separates embedded base fields from the outer object's fields.
func (w *Writer) WriteEndBaseFields() {
	_ = w.WriteByte(encoding.EndBaseFieldsTag)
}

func (w *Writer) markValueField(wire format.WireType) {
	if wire != format.WireReference && wire != format.WireExtended {
		w.sess.References.MarkValueField()
	}
}
