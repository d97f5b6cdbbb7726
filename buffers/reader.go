package buffers

import (
	"fmt"
	"reflect"

	"github.com/arloliu/graft/encoding"
	"github.com/arloliu/graft/endian"
	"github.com/arloliu/graft/errs"
	"github.com/arloliu/graft/format"
	"github.com/arloliu/graft/internal/options"
	"github.com/arloliu/graft/session"
	"github.com/arloliu/graft/typedesc"
)

type readerConfig struct {
	segmentSize int
	resolver    TypeResolver
}

// ReaderOption configures a Reader.
type ReaderOption = options.Option[*readerConfig]

// WithReaderSegmentSize makes the reader consume its input in segments of at most n bytes,
// independent of how the input was produced. n must be at least 1.
func WithReaderSegmentSize(n int) ReaderOption {
	return options.New(func(c *readerConfig) error {
		if n < 1 {
			return fmt.Errorf("%w: %d", errs.ErrInvalidSegmentSize, n)
		}
		c.segmentSize = n

		return nil
	})
}

// WithReaderTypeResolver sets the resolver used to decode runtime types in field headers.
func WithReaderTypeResolver(r TypeResolver) ReaderOption {
	return options.NoError(func(c *readerConfig) {
		c.resolver = r
	})
}

// Reader consumes a Sequence with a monotonic cursor.
type Reader struct {
	sess     *session.Session
	resolver TypeResolver
	engine   endian.EndianEngine

	segments [][]byte
	seg      int
	off      int
	pos      int
	length   int
	scratch  [8]byte

	// replay is set on readers that decode a skipped field again. Their Encoded
	// headers were already registered in the type table by the skip.
	replay bool
}

// NewReader creates a Reader over seq bound to sess.
func NewReader(seq Sequence, sess *session.Session, opts ...ReaderOption) (*Reader, error) {
	var cfg readerConfig
	if err := options.Apply(&cfg, opts...); err != nil {
		return nil, err
	}
	if cfg.segmentSize > 0 {
		seq = seq.Resegment(cfg.segmentSize)
	}

	return &Reader{
		sess:     sess,
		resolver: cfg.resolver,
		engine:   endian.Wire(),
		segments: seq.Segments(),
		length:   seq.Len(),
	}, nil
}

// NewBytesReader creates a Reader over a single contiguous buffer.
func NewBytesReader(data []byte, sess *session.Session, opts ...ReaderOption) (*Reader, error) {
	return NewReader(NewSequence(data), sess, opts...)
}

// Session returns the session the reader registers references and types in.
func (r *Reader) Session() *session.Session {
	return r.sess
}

// Resolver returns the type resolver, which may be nil.
func (r *Reader) Resolver() TypeResolver {
	return r.resolver
}

// Position returns the number of bytes consumed.
func (r *Reader) Position() int {
	return r.pos
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return r.length - r.pos
}

func (r *Reader) endOfData(want int) error {
	return fmt.Errorf("need %d bytes at offset %d, %d left: %w", want, r.pos, r.Remaining(), errs.ErrUnexpectedEndOfData)
}

// ReadByte consumes one byte.
func (r *Reader) ReadByte() (byte, error) {
	for r.seg < len(r.segments) {
		cur := r.segments[r.seg]
		if r.off < len(cur) {
			b := cur[r.off]
			r.off++
			r.pos++

			return b, nil
		}
		r.seg++
		r.off = 0
	}

	return 0, r.endOfData(1)
}

// PeekByte returns the next byte without consuming it.
func (r *Reader) PeekByte() (byte, error) {
	seg, off := r.seg, r.off
	for seg < len(r.segments) {
		if off < len(r.segments[seg]) {
			return r.segments[seg][off], nil
		}
		seg++
		off = 0
	}

	return 0, r.endOfData(1)
}

func (r *Reader) readInto(dst []byte) error {
	if len(dst) > r.Remaining() {
		return r.endOfData(len(dst))
	}
	for len(dst) > 0 {
		cur := r.segments[r.seg][r.off:]
		if len(cur) == 0 {
			r.seg++
			r.off = 0

			continue
		}
		n := copy(dst, cur)
		dst = dst[n:]
		r.off += n
		r.pos += n
	}

	return nil
}

// ReadBytes consumes n bytes and returns an owned copy.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("negative length %d: %w", n, errs.ErrMalformedInput)
	}
	out := make([]byte, n)
	if err := r.readInto(out); err != nil {
		return nil, err
	}

	return out, nil
}

// Skip consumes n bytes.
func (r *Reader) Skip(n int) error {
	if n < 0 {
		return fmt.Errorf("negative length %d: %w", n, errs.ErrMalformedInput)
	}
	if n > r.Remaining() {
		return r.endOfData(n)
	}
	for n > 0 {
		cur := len(r.segments[r.seg]) - r.off
		if cur == 0 {
			r.seg++
			r.off = 0

			continue
		}
		step := min(cur, n)
		r.off += step
		r.pos += step
		n -= step
	}

	return nil
}

// ReadVarUint32 reads a varint that fits in 32 bits.
func (r *Reader) ReadVarUint32() (uint32, error) {
	return encoding.ReadUvarint32(r)
}

// ReadVarUint64 reads a varint.
func (r *Reader) ReadVarUint64() (uint64, error) {
	return encoding.ReadUvarint(r)
}

// ReadVarInt32 reads a zig-zag varint that fits in 32 bits.
func (r *Reader) ReadVarInt32() (int32, error) {
	u, err := r.ReadVarUint32()
	if err != nil {
		return 0, err
	}

	return encoding.UnZigZag32(u), nil
}

// ReadVarInt64 reads a zig-zag varint.
func (r *Reader) ReadVarInt64() (int64, error) {
	u, err := r.ReadVarUint64()
	if err != nil {
		return 0, err
	}

	return encoding.UnZigZag64(u), nil
}

// ReadVarUint128 reads a 128-bit varint and returns its high and low words.
func (r *Reader) ReadVarUint128() (uint64, uint64, error) {
	return encoding.ReadUvarint128(r)
}

// ReadUint32 reads four little-endian bytes.
func (r *Reader) ReadUint32() (uint32, error) {
	if err := r.readInto(r.scratch[:4]); err != nil {
		return 0, err
	}

	return r.engine.Uint32(r.scratch[:4]), nil
}

// ReadUint64 reads eight little-endian bytes.
func (r *Reader) ReadUint64() (uint64, error) {
	if err := r.readInto(r.scratch[:8]); err != nil {
		return 0, err
	}

	return r.engine.Uint64(r.scratch[:8]), nil
}

// ReadLength reads a varint length and checks it against the remaining input.
func (r *Reader) ReadLength() (int, error) {
	n, err := r.ReadVarUint64()
	if err != nil {
		return 0, err
	}
	if n > uint64(r.Remaining()) {
		return 0, r.endOfData(int(min(n, uint64(r.length)+1))) //nolint:gosec
	}

	return int(n), nil //nolint:gosec
}

// ReadLengthPrefixed reads a varint length and that many bytes.
func (r *Reader) ReadLengthPrefixed() ([]byte, error) {
	n, err := r.ReadLength()
	if err != nil {
		return nil, err
	}

	return r.ReadBytes(n)
}

// ReadFieldHeader reads the next field header.
//
// Schema payloads are resolved through the session type table and the type resolver.
// A descriptor that does not resolve to a local type is kept with a nil Type so the
// field can still be skipped. Every header other than Reference and Extended consumes
// one reference ID.
func (r *Reader) ReadFieldHeader() (FieldHeader, error) {
	tag, delta, err := encoding.ReadFieldTag(r)
	if err != nil {
		return FieldHeader{}, err
	}

	h := FieldHeader{WireType: tag.WireType(), FieldIDDelta: delta}
	if h.WireType == format.WireExtended {
		h.Extended = tag.Extended()
		if h.Extended > format.ExtendedEndBaseFields {
			return FieldHeader{}, fmt.Errorf("extended marker %d at offset %d: %w", h.Extended, r.pos-1, errs.ErrMalformedInput)
		}

		return h, nil
	}

	h.SchemaType = tag.SchemaType()
	switch h.SchemaType {
	case format.SchemaWellKnown:
		if h.WellKnownID, err = r.ReadVarUint32(); err != nil {
			return FieldHeader{}, err
		}
		if r.resolver != nil {
			h.Type, _ = r.resolver.WellKnownType(h.WellKnownID)
		}
	case format.SchemaEncoded:
		desc, err := typedesc.ReadBinary(r)
		if err != nil {
			return FieldHeader{}, err
		}
		h.Descriptor = desc
		if r.resolver != nil {
			h.Type, _ = r.resolver.ResolveType(desc)
		}
		if !r.replay {
			h.TypeID = r.sess.Types.RegisterType(session.TypeEntry{Type: h.Type, Descriptor: desc})
		}
	case format.SchemaReferenced:
		if h.TypeID, err = r.ReadVarUint32(); err != nil {
			return FieldHeader{}, err
		}
		entry, ok := r.sess.Types.TryGetType(h.TypeID)
		if !ok {
			return FieldHeader{}, fmt.Errorf("unknown type id %d at offset %d: %w", h.TypeID, r.pos, errs.ErrMalformedInput)
		}
		h.Type, h.Descriptor = entry.Type, entry.Descriptor
	default:
	}

	if h.WireType != format.WireReference {
		r.sess.References.MarkValueField()
	}

	return h, nil
}

// ReadReferenceID reads the payload of a Reference header.
func (r *Reader) ReadReferenceID() (uint32, error) {
	return r.ReadVarUint32()
}

// SkipField consumes the payload of h, recursing into tag-delimited objects.
//
// It must be called right after h was read. The reference ID h consumed is bound to a
// SkippedField, so a later Reference to the skipped value can still be decoded.
func (r *Reader) SkipField(h FieldHeader) error {
	if h.WireType != format.WireReference && h.WireType != format.WireExtended {
		r.recordSkipped(h)
	}

	switch h.WireType {
	case format.WireVarInt:
		return r.skipVarint()
	case format.WireLengthPrefixed:
		n, err := r.ReadLength()
		if err != nil {
			return err
		}

		return r.Skip(n)
	case format.WireFixed32:
		return r.Skip(4)
	case format.WireFixed64:
		return r.Skip(8)
	case format.WireReference:
		_, err := r.ReadVarUint32()
		return err
	case format.WireTagDelimited:
		return r.skipObject()
	case format.WireExtended:
		return nil
	default:
		return fmt.Errorf("cannot skip wire type %d: %w", h.WireType, errs.ErrMalformedInput)
	}
}

// SkipToEndObject consumes fields up to and including the end marker of the current object.
func (r *Reader) SkipToEndObject() error {
	for {
		h, err := r.ReadFieldHeader()
		if err != nil {
			return err
		}
		if h.IsEndObject() {
			return nil
		}
		if err := r.SkipField(h); err != nil {
			return err
		}
	}
}

func (r *Reader) recordSkipped(h FieldHeader) {
	refs := r.sess.References
	id := refs.CurrentReferenceID()
	if id == 0 {
		return
	}
	if _, ok := refs.TryGetReference(id); ok {
		return
	}
	refs.RegisterReference(id, reflect.ValueOf(&SkippedField{Header: h, RefID: id, src: r, pos: r.pos}))
}

func (r *Reader) skipObject() error {
	if err := r.sess.Enter(); err != nil {
		return err
	}
	defer r.sess.Leave()

	return r.SkipToEndObject()
}

func (r *Reader) skipVarint() error {
	for range encoding.MaxVarintLen128 {
		b, err := r.ReadByte()
		if err != nil {
			return err
		}
		if b < 0x80 {
			return nil
		}
	}

	return fmt.Errorf("varint longer than %d bytes at offset %d: %w", encoding.MaxVarintLen128, r.pos, errs.ErrMalformedInput)
}
