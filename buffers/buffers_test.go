package buffers

import (
	"math"
	"reflect"
	"testing"

	"github.com/arloliu/graft/errs"
	"github.com/arloliu/graft/format"
	"github.com/arloliu/graft/session"
	"github.com/arloliu/graft/typedesc"
	"github.com/stretchr/testify/require"
)

type widget struct{}

type testResolver struct{}

func (testResolver) WellKnownID(t reflect.Type) (uint32, bool) {
	if t == reflect.TypeFor[int32]() {
		return 4, true
	}

	return 0, false
}

func (testResolver) WellKnownType(id uint32) (reflect.Type, bool) {
	if id == 4 {
		return reflect.TypeFor[int32](), true
	}

	return nil, false
}

func (testResolver) DescribeType(t reflect.Type) (*typedesc.Descriptor, error) {
	return typedesc.FromType(t, nil)
}

func (testResolver) ResolveType(d *typedesc.Descriptor) (reflect.Type, bool) {
	if d.Equal(typedesc.Named(typedesc.DefaultName(reflect.TypeFor[widget]()))) {
		return reflect.TypeFor[widget](), true
	}

	return nil, false
}

func newSession(t *testing.T) *session.Session {
	t.Helper()
	s, err := session.New()
	require.NoError(t, err)

	return s
}

func newWriter(t *testing.T, opts ...WriterOption) *Writer {
	t.Helper()
	w, err := NewWriter(newSession(t), opts...)
	require.NoError(t, err)
	t.Cleanup(w.Release)

	return w
}

func newReader(t *testing.T, w *Writer, opts ...ReaderOption) *Reader {
	t.Helper()
	r, err := NewReader(w.Sequence(), newSession(t), opts...)
	require.NoError(t, err)

	return r
}

func TestWriter_InvalidSegmentSize(t *testing.T) {
	_, err := NewWriter(newSession(t), WithMaxSegmentSize(0))
	require.ErrorIs(t, err, errs.ErrInvalidSegmentSize)

	_, err = NewReader(NewSequence(), newSession(t), WithReaderSegmentSize(-1))
	require.ErrorIs(t, err, errs.ErrInvalidSegmentSize)
}

func TestWriter_Commit(t *testing.T) {
	w := newWriter(t, WithMaxSegmentSize(4))

	w.WriteBytes([]byte{1, 2, 3})
	require.Equal(t, 3, w.Position())
	require.Equal(t, 0, w.Committed())
	require.Equal(t, 0, w.Sequence().Len())
	require.Empty(t, w.Bytes())

	w.Commit()
	w.WriteBytes([]byte{4, 5, 6, 7, 8})
	require.Equal(t, []byte{1, 2, 3}, w.Bytes())

	w.Commit()
	w.Commit()
	require.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8}, w.Bytes())

	for _, seg := range w.Sequence().Segments() {
		require.LessOrEqual(t, len(seg), 4)
	}
	require.Len(t, w.Sequence().Segments(), 2)

	w.Release()
	require.Equal(t, 0, w.Position())
	require.Empty(t, w.Bytes())
}

func TestWriter_SegmentsNeverExceedMax(t *testing.T) {
	w := newWriter(t, WithMaxSegmentSize(1))
	w.WriteString("segments")
	w.WriteVarUint64(math.MaxUint64)
	w.WriteUint64(0x0102030405060708)
	w.Commit()

	seq := w.Sequence()
	require.Equal(t, 8+10+8, seq.Len())
	for _, seg := range seq.Segments() {
		require.Len(t, seg, 1)
	}
}

func TestSequence_Resegment(t *testing.T) {
	seq := NewSequence([]byte{1, 2, 3, 4, 5}, nil, []byte{6, 7})
	require.Equal(t, 7, seq.Len())
	require.Len(t, seq.Segments(), 2)

	re := seq.Resegment(2)
	require.Equal(t, 7, re.Len())
	require.Equal(t, [][]byte{{1, 2}, {3, 4}, {5}, {6, 7}}, re.Segments())
	require.Equal(t, seq.Bytes(), re.Bytes())

	require.Equal(t, seq, seq.Resegment(0))
}

func TestReader_Primitives(t *testing.T) {
	w := newWriter(t, WithMaxSegmentSize(3))
	require.NoError(t, w.WriteByte(0xAB))
	w.WriteVarUint32(300)
	w.WriteVarInt32(-5)
	w.WriteVarInt64(math.MinInt64)
	w.WriteVarUint128(1, 2)
	w.WriteUint32(0xDEADBEEF)
	w.WriteUint64(math.MaxUint64 - 1)
	w.WriteLengthPrefixed([]byte("hello"))
	w.Commit()

	r := newReader(t, w, WithReaderSegmentSize(1))

	b, err := r.PeekByte()
	require.NoError(t, err)
	require.Equal(t, byte(0xAB), b)
	b, err = r.ReadByte()
	require.NoError(t, err)
	require.Equal(t, byte(0xAB), b)

	u32, err := r.ReadVarUint32()
	require.NoError(t, err)
	require.Equal(t, uint32(300), u32)

	i32, err := r.ReadVarInt32()
	require.NoError(t, err)
	require.Equal(t, int32(-5), i32)

	i64, err := r.ReadVarInt64()
	require.NoError(t, err)
	require.Equal(t, int64(math.MinInt64), i64)

	hi, lo, err := r.ReadVarUint128()
	require.NoError(t, err)
	require.Equal(t, uint64(1), hi)
	require.Equal(t, uint64(2), lo)

	f32, err := r.ReadUint32()
	require.NoError(t, err)
	require.Equal(t, uint32(0xDEADBEEF), f32)

	f64, err := r.ReadUint64()
	require.NoError(t, err)
	require.Equal(t, uint64(math.MaxUint64-1), f64)

	p, err := r.ReadLengthPrefixed()
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), p)

	require.Equal(t, 0, r.Remaining())
	require.Equal(t, w.Committed(), r.Position())

	_, err = r.ReadByte()
	require.ErrorIs(t, err, errs.ErrUnexpectedEndOfData)
	_, err = r.PeekByte()
	require.ErrorIs(t, err, errs.ErrUnexpectedEndOfData)
}

func TestReader_ReadBytesIsOwned(t *testing.T) {
	data := []byte{1, 2, 3, 4}
	r, err := NewBytesReader(data, newSession(t))
	require.NoError(t, err)

	got, err := r.ReadBytes(4)
	require.NoError(t, err)
	got[0] = 9
	require.Equal(t, byte(1), data[0])

	_, err = r.ReadBytes(1)
	require.ErrorIs(t, err, errs.ErrUnexpectedEndOfData)
}

func TestReader_Truncated(t *testing.T) {
	r, err := NewBytesReader([]byte{0x80, 0x80}, newSession(t))
	require.NoError(t, err)
	_, err = r.ReadVarUint64()
	require.ErrorIs(t, err, errs.ErrUnexpectedEndOfData)

	r, err = NewBytesReader([]byte{0x05, 'a'}, newSession(t))
	require.NoError(t, err)
	_, err = r.ReadLengthPrefixed()
	require.ErrorIs(t, err, errs.ErrUnexpectedEndOfData)

	r, err = NewBytesReader([]byte{1, 2, 3}, newSession(t))
	require.NoError(t, err)
	_, err = r.ReadUint32()
	require.ErrorIs(t, err, errs.ErrUnexpectedEndOfData)
	require.ErrorIs(t, r.Skip(4), errs.ErrUnexpectedEndOfData)
	require.NoError(t, r.Skip(3))
}

func TestReader_Int32BoundariesAcrossSegments(t *testing.T) {
	values := []int32{0, 1, -1, math.MaxInt32, math.MinInt32, math.MaxInt32 - 1, math.MinInt32 + 1, 127, -128, 16384}

	w := newWriter(t, WithMaxSegmentSize(8))
	for range 5 {
		for i, v := range values {
			w.WriteFieldHeaderExpected(uint32(min(i, 1)), format.WireVarInt)
			w.WriteVarInt32(v)
		}
		w.Commit()
	}

	r := newReader(t, w, WithReaderSegmentSize(1))
	for pass := range 5 {
		for i, want := range values {
			h, err := r.ReadFieldHeader()
			require.NoError(t, err)
			require.Equal(t, format.WireVarInt, h.WireType)
			require.Equal(t, uint32(min(i, 1)), h.FieldIDDelta)

			got, err := r.ReadVarInt32()
			require.NoError(t, err, "pass %d value %d", pass, i)
			require.Equal(t, want, got)
		}
	}
	require.Equal(t, 0, r.Remaining())
	require.Equal(t, uint32(5*len(values)), r.Session().References.CurrentReferenceID())
	require.Equal(t, w.Session().References.CurrentReferenceID(), r.Session().References.CurrentReferenceID())
}

func TestFieldHeader_SchemaTypes(t *testing.T) {
	w := newWriter(t, WithTypeResolver(testResolver{}))
	anyType := reflect.TypeFor[any]()

	require.NoError(t, w.WriteFieldHeader(0, anyType, reflect.TypeFor[int32](), format.WireVarInt))
	w.WriteVarInt32(7)
	require.NoError(t, w.WriteFieldHeader(1, anyType, reflect.TypeFor[widget](), format.WireLengthPrefixed))
	w.WriteVarUint32(0)
	require.NoError(t, w.WriteFieldHeader(1, anyType, reflect.TypeFor[widget](), format.WireLengthPrefixed))
	w.WriteVarUint32(0)
	require.NoError(t, w.WriteFieldHeader(9, reflect.TypeFor[int](), reflect.TypeFor[int](), format.WireVarInt))
	w.WriteVarInt64(1)
	w.WriteReference(0, 2)
	w.WriteNullReference(0)
	w.WriteEndObject()
	w.Commit()

	r := newReader(t, w, WithReaderTypeResolver(testResolver{}))

	h, err := r.ReadFieldHeader()
	require.NoError(t, err)
	require.Equal(t, format.SchemaWellKnown, h.SchemaType)
	require.Equal(t, uint32(4), h.WellKnownID)
	require.Equal(t, reflect.TypeFor[int32](), h.Type)
	require.NoError(t, r.SkipField(h))

	h, err = r.ReadFieldHeader()
	require.NoError(t, err)
	require.Equal(t, format.SchemaEncoded, h.SchemaType)
	require.Equal(t, uint32(1), h.TypeID)
	require.Equal(t, reflect.TypeFor[widget](), h.Type)
	require.NoError(t, r.SkipField(h))

	h, err = r.ReadFieldHeader()
	require.NoError(t, err)
	require.Equal(t, format.SchemaReferenced, h.SchemaType)
	require.Equal(t, uint32(1), h.TypeID)
	require.Equal(t, reflect.TypeFor[widget](), h.Type)
	require.NotNil(t, h.Descriptor)
	require.NoError(t, r.SkipField(h))

	h, err = r.ReadFieldHeader()
	require.NoError(t, err)
	require.Equal(t, format.SchemaExpected, h.SchemaType)
	require.Equal(t, uint32(9), h.FieldIDDelta)
	require.Nil(t, h.Type)
	require.NoError(t, r.SkipField(h))
	require.Equal(t, uint32(4), r.Session().References.CurrentReferenceID())

	h, err = r.ReadFieldHeader()
	require.NoError(t, err)
	require.True(t, h.IsReference())
	id, err := r.ReadReferenceID()
	require.NoError(t, err)
	require.Equal(t, uint32(2), id)

	h, err = r.ReadFieldHeader()
	require.NoError(t, err)
	require.True(t, h.IsReference())
	id, err = r.ReadReferenceID()
	require.NoError(t, err)
	require.Equal(t, uint32(0), id)

	h, err = r.ReadFieldHeader()
	require.NoError(t, err)
	require.True(t, h.IsEndObject())
	require.Equal(t, "[EndTagDelimited]", h.String())

	require.Equal(t, uint32(4), r.Session().References.CurrentReferenceID())
}

func TestFieldHeader_UnresolvedTypeIsSkippable(t *testing.T) {
	w := newWriter(t, WithTypeResolver(testResolver{}))
	require.NoError(t, w.WriteFieldHeader(0, reflect.TypeFor[any](), reflect.TypeFor[widget](), format.WireFixed32))
	w.WriteUint32(1)
	w.WriteFieldHeaderExpected(1, format.WireVarInt)
	w.WriteVarUint32(42)
	w.Commit()

	r := newReader(t, w)
	h, err := r.ReadFieldHeader()
	require.NoError(t, err)
	require.True(t, h.Unresolved())
	require.NotNil(t, h.Descriptor)
	require.NoError(t, r.SkipField(h))

	h, err = r.ReadFieldHeader()
	require.NoError(t, err)
	require.Equal(t, uint32(1), h.FieldIDDelta)
	v, err := r.ReadVarUint32()
	require.NoError(t, err)
	require.Equal(t, uint32(42), v)
}

func TestWriter_RuntimeTypeWithoutResolver(t *testing.T) {
	w := newWriter(t)
	err := w.WriteFieldHeader(0, reflect.TypeFor[any](), reflect.TypeFor[int](), format.WireVarInt)
	require.ErrorIs(t, err, errs.ErrUnsupportedType)
}

func TestReader_UnknownReferencedType(t *testing.T) {
	r, err := NewBytesReader([]byte{byte(format.SchemaReferenced) << 3, 0x05}, newSession(t))
	require.NoError(t, err)
	_, err = r.ReadFieldHeader()
	require.ErrorIs(t, err, errs.ErrMalformedInput)
}

func TestReader_ReservedWireType(t *testing.T) {
	r, err := NewBytesReader([]byte{5 << 5}, newSession(t))
	require.NoError(t, err)
	_, err = r.ReadFieldHeader()
	require.ErrorIs(t, err, errs.ErrMalformedInput)
}

func TestReader_SkipField(t *testing.T) {
	w := newWriter(t, WithMaxSegmentSize(5))

	w.WriteFieldHeaderExpected(0, format.WireTagDelimited)
	{
		w.WriteFieldHeaderExpected(0, format.WireVarInt)
		w.WriteVarUint128(math.MaxUint64, math.MaxUint64)
		w.WriteFieldHeaderExpected(1, format.WireFixed64)
		w.WriteUint64(1)
		w.WriteFieldHeaderExpected(1, format.WireTagDelimited)
		{
			w.WriteFieldHeaderExpected(3, format.WireLengthPrefixed)
			w.WriteLengthPrefixed([]byte("nested"))
			w.WriteEndBaseFields()
			w.WriteReference(1, 1)
			w.WriteEndObject()
		}
		w.WriteFieldHeaderExpected(40, format.WireFixed32)
		w.WriteUint32(1)
		w.WriteEndObject()
	}
	w.WriteFieldHeaderExpected(1, format.WireVarInt)
	w.WriteVarUint32(99)
	w.Commit()

	r := newReader(t, w, WithReaderSegmentSize(2))
	h, err := r.ReadFieldHeader()
	require.NoError(t, err)
	require.NoError(t, r.SkipField(h))

	h, err = r.ReadFieldHeader()
	require.NoError(t, err)
	require.Equal(t, uint32(1), h.FieldIDDelta)
	v, err := r.ReadVarUint32()
	require.NoError(t, err)
	require.Equal(t, uint32(99), v)

	require.Equal(t, w.Session().References.CurrentReferenceID(), r.Session().References.CurrentReferenceID())
}

func TestReader_SkipDepthGuard(t *testing.T) {
	s, err := session.New(session.WithMaxDepth(3))
	require.NoError(t, err)

	w := newWriter(t)
	for range 5 {
		w.WriteFieldHeaderExpected(0, format.WireTagDelimited)
	}
	for range 5 {
		w.WriteEndObject()
	}
	w.Commit()

	r, err := NewReader(w.Sequence(), s)
	require.NoError(t, err)
	h, err := r.ReadFieldHeader()
	require.NoError(t, err)
	require.ErrorIs(t, r.SkipField(h), errs.ErrMaxDepthExceeded)
}
