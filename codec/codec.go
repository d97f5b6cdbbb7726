package codec

import (
	"fmt"
	"reflect"

	"github.com/arloliu/graft/buffers"
	"github.com/arloliu/graft/errs"
	"github.com/arloliu/graft/format"
	"github.com/arloliu/graft/session"
)

// FieldCodec writes and reads fields of one runtime type.
//
// WriteField writes a complete field, header included, for v in a slot whose static
// type is expected. ReadValue reads the payload that follows header h.
// Implementations must be stateless and safe for concurrent use.
type FieldCodec interface {
	WriteField(w *buffers.Writer, delta uint32, expected reflect.Type, v reflect.Value) error
	ReadValue(r *buffers.Reader, h buffers.FieldHeader) (reflect.Value, error)
}

// ValueCopier produces deep copies of values of one runtime type.
// IsImmutable reports whether DeepCopy may return its input unchanged.
type ValueCopier interface {
	DeepCopy(v reflect.Value, s *session.Session) (reflect.Value, error)
	IsImmutable() bool
}

// Codec is the typed form of FieldCodec.
type Codec[T any] interface {
	WriteField(w *buffers.Writer, delta uint32, expected reflect.Type, v T) error
	ReadValue(r *buffers.Reader, h buffers.FieldHeader) (T, error)
}

// Copier is the typed form of ValueCopier.
type Copier[T any] interface {
	DeepCopy(v T, s *session.Session) (T, error)
	IsImmutable() bool
}

// body writes and reads the payload of a field without its header.
type body interface {
	wireType() format.WireType
	writeBody(w *buffers.Writer, v reflect.Value) error
	// readBody decodes into the settable dst. created, when not nil, must be called
	// with the new value as soon as it exists so cyclic references can resolve to it.
	readBody(r *buffers.Reader, h buffers.FieldHeader, dst reflect.Value, created func(reflect.Value)) error
}

// bodyCodec is a codec whose header and payload can be written separately.
// Pointer codecs write their own header and delegate the payload to the pointee's body.
type bodyCodec interface {
	FieldCodec
	body
}

// parent is implemented by codecs and copiers whose correctness depends on other types.
type parent interface {
	childTypes() []reflect.Type
}

// field adapts a body to FieldCodec, adding null handling and identity tracking
// for reference kinds.
type field struct {
	typ     reflect.Type
	body    body
	tracked bool
}

func newField(typ reflect.Type, b body) field {
	return field{typ: typ, body: b, tracked: nullable(typ)}
}

func (f field) wireType() format.WireType {
	return f.body.wireType()
}

func (f field) writeBody(w *buffers.Writer, v reflect.Value) error {
	return f.body.writeBody(w, v)
}

func (f field) readBody(r *buffers.Reader, h buffers.FieldHeader, dst reflect.Value, created func(reflect.Value)) error {
	return f.body.readBody(r, h, dst, created)
}

func (f field) childTypes() []reflect.Type {
	if p, ok := f.body.(parent); ok {
		return p.childTypes()
	}

	return nil
}

func isNil(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return v.IsNil()
	default:
		return false
	}
}

func writeTracked(w *buffers.Writer, delta uint32, v reflect.Value) (done bool) {
	if isNil(v) {
		w.WriteNullReference(delta)
		return true
	}
	id, ok := session.IdentityOf(v)
	if !ok {
		return false
	}
	refID, isNew := w.Session().References.GetOrCreateReferenceID(id)
	if !isNew {
		w.WriteReference(delta, refID)
		return true
	}

	return false
}

func (f field) WriteField(w *buffers.Writer, delta uint32, expected reflect.Type, v reflect.Value) error {
	if f.tracked && writeTracked(w, delta, v) {
		return nil
	}
	if err := w.WriteFieldHeader(delta, expected, v.Type(), f.body.wireType()); err != nil {
		return err
	}

	return writeBodyGuarded(w, f.body, v)
}

func writeBodyGuarded(w *buffers.Writer, b body, v reflect.Value) error {
	if b.wireType() != format.WireTagDelimited {
		return b.writeBody(w, v)
	}
	sess := w.Session()
	if err := sess.Enter(); err != nil {
		return err
	}
	defer sess.Leave()

	return b.writeBody(w, v)
}

func (f field) ReadValue(r *buffers.Reader, h buffers.FieldHeader) (reflect.Value, error) {
	if h.IsReference() {
		return readReference(r, f.typ)
	}
	if err := checkHeaderType(h, f.typ); err != nil {
		return reflect.Value{}, err
	}

	var created func(reflect.Value)
	if f.tracked {
		refID := r.Session().References.CurrentReferenceID()
		created = func(v reflect.Value) {
			r.Session().References.RegisterReference(refID, v)
		}
	}

	dst := reflect.New(f.typ).Elem()
	if err := readBodyGuarded(r, f.body, h, dst, created); err != nil {
		return reflect.Value{}, err
	}

	return dst, nil
}

func readBodyGuarded(r *buffers.Reader, b body, h buffers.FieldHeader, dst reflect.Value, created func(reflect.Value)) error {
	if h.WireType != format.WireTagDelimited {
		return b.readBody(r, h, dst, created)
	}
	sess := r.Session()
	if err := sess.Enter(); err != nil {
		return err
	}
	defer sess.Leave()

	return b.readBody(r, h, dst, created)
}

// readReference resolves the payload of a Reference header to a value assignable to typ.
// Reference ID 0 is null and yields the zero value of typ.
func readReference(r *buffers.Reader, typ reflect.Type) (reflect.Value, error) {
	refID, err := r.ReadReferenceID()
	if err != nil {
		return reflect.Value{}, err
	}
	out := reflect.New(typ).Elem()
	if refID == 0 {
		if !nullable(typ) {
			return reflect.Value{}, fmt.Errorf("null for non-nullable %v: %w", typ, errs.ErrMalformedInput)
		}

		return out, nil
	}

	v, ok := r.Session().References.TryGetReference(refID)
	if !ok {
		return reflect.Value{}, fmt.Errorf("unknown reference id %d at offset %d: %w", refID, r.Position(), errs.ErrMalformedInput)
	}
	if v.Type() == buffers.SkippedFieldType {
		sf, _ := v.Interface().(*buffers.SkippedField)
		if v, err = readSkipped(r, sf, typ); err != nil {
			return reflect.Value{}, fmt.Errorf("reference %d to a skipped field: %w", refID, err)
		}
	}
	if !v.Type().AssignableTo(typ) {
		return reflect.Value{}, fmt.Errorf("reference %d holds %v, cannot assign to %v: %w", refID, v.Type(), typ, errs.ErrMalformedInput)
	}
	out.Set(v)

	return out, nil
}

// readSkipped decodes a field that was skipped unread, now that a reference to it
// tells its type. A runtime type in the skipped header takes precedence over typ.
func readSkipped(r *buffers.Reader, sf *buffers.SkippedField, typ reflect.Type) (reflect.Value, error) {
	reg, ok := r.Resolver().(*Registry)
	if !ok {
		return reflect.Value{}, fmt.Errorf("reader has no registry to decode %v: %w", typ, errs.ErrUnsupportedType)
	}

	h := sf.Header
	switch {
	case h.HasRuntimeType():
		if h.Type == nil {
			return reflect.Value{}, unresolvedType(h)
		}
		typ = h.Type
	case typ.Kind() == reflect.Interface:
		return reflect.Value{}, fmt.Errorf("skipped field carries no runtime type for %v: %w", typ, errs.ErrMalformedInput)
	default:
	}

	c, err := reg.codecFor(typ)
	if err != nil {
		return reflect.Value{}, err
	}
	fr, restore := sf.Replay()
	defer restore()

	v, err := c.ReadValue(fr, h)
	if err != nil {
		return reflect.Value{}, err
	}
	r.Session().References.RegisterReference(sf.RefID, v)

	return v, nil
}

func nullable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return true
	default:
		return false
	}
}

// checkHeaderType rejects headers whose runtime type is not the codec's type.
func checkHeaderType(h buffers.FieldHeader, typ reflect.Type) error {
	if !h.HasRuntimeType() {
		return nil
	}
	if h.Type == nil {
		return unresolvedType(h)
	}
	if h.Type != typ {
		return fmt.Errorf("field holds %v, codec reads %v: %w", h.Type, typ, errs.ErrMalformedInput)
	}

	return nil
}

func unresolvedType(h buffers.FieldHeader) error {
	if h.Descriptor != nil {
		return fmt.Errorf("unknown type %s: %w", h.Descriptor, errs.ErrUnsupportedType)
	}

	return fmt.Errorf("unknown well-known type id %d: %w", h.WellKnownID, errs.ErrUnsupportedType)
}

func wireMismatch(h buffers.FieldHeader, typ reflect.Type) error {
	return fmt.Errorf("wire type %s cannot hold %v: %w", h.WireType, typ, errs.ErrMalformedInput)
}

func expectWire(h buffers.FieldHeader, wire format.WireType, typ reflect.Type) error {
	if h.WireType != wire {
		return wireMismatch(h, typ)
	}

	return nil
}

// forEachField reads the fields of a tag-delimited object up to its end marker,
// passing each field's absolute ID to fn.
func forEachField(r *buffers.Reader, fn func(id uint32, h buffers.FieldHeader) error) error {
	var id uint32
	for {
		h, err := r.ReadFieldHeader()
		if err != nil {
			return err
		}
		if h.IsEndObject() {
			return nil
		}
		if h.IsEndBaseFields() {
			id = 0
			continue
		}
		id += h.FieldIDDelta
		if err := fn(id, h); err != nil {
			return err
		}
	}
}
