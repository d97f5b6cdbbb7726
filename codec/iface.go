package codec

import (
	"encoding"
	"fmt"
	"reflect"

	"github.com/arloliu/graft/buffers"
	"github.com/arloliu/graft/errs"
	"github.com/arloliu/graft/format"
	"github.com/arloliu/graft/session"
)

// interfaceCodec dispatches on the dynamic type of an interface value. The header
// always carries the runtime type since an interface cannot be instantiated.
type interfaceCodec struct {
	reg *Registry
	typ reflect.Type
}

func (c interfaceCodec) WriteField(w *buffers.Writer, delta uint32, expected reflect.Type, v reflect.Value) error {
	if v.Kind() == reflect.Interface {
		if v.IsNil() {
			w.WriteNullReference(delta)
			return nil
		}
		v = v.Elem()
	}
	ec, err := c.reg.codecFor(v.Type())
	if err != nil {
		return err
	}

	return ec.WriteField(w, delta, expected, v)
}

func (c interfaceCodec) ReadValue(r *buffers.Reader, h buffers.FieldHeader) (reflect.Value, error) {
	if h.IsReference() {
		return readReference(r, c.typ)
	}
	if !h.HasRuntimeType() {
		return reflect.Value{}, fmt.Errorf("%v field without a runtime type: %w", c.typ, errs.ErrMalformedInput)
	}
	if h.Type == nil {
		return reflect.Value{}, unresolvedType(h)
	}
	if !h.Type.AssignableTo(c.typ) {
		return reflect.Value{}, fmt.Errorf("%v does not implement %v: %w", h.Type, c.typ, errs.ErrMalformedInput)
	}

	v, err := c.reg.readChild(r, h, h.Type)
	if err != nil {
		return reflect.Value{}, err
	}
	out := reflect.New(c.typ).Elem()
	out.Set(v)

	return out, nil
}

type interfaceCopier struct {
	reg *Registry
	typ reflect.Type
}

func (c interfaceCopier) IsImmutable() bool { return false }

func (c interfaceCopier) DeepCopy(v reflect.Value, s *session.Session) (reflect.Value, error) {
	if v.Kind() != reflect.Interface {
		v = valueAs(v, c.typ)
	}
	if v.IsNil() {
		return v, nil
	}
	ec, err := c.reg.copierFor(v.Elem().Type())
	if err != nil {
		return reflect.Value{}, err
	}
	cv, err := ec.DeepCopy(v.Elem(), s)
	if err != nil {
		return reflect.Value{}, err
	}

	return valueAs(cv, c.typ), nil
}

// valueAs returns v stored in a new variable of type typ.
func valueAs(v reflect.Value, typ reflect.Type) reflect.Value {
	out := reflect.New(typ).Elem()
	out.Set(v)

	return out
}

// marshalerBody encodes types implementing encoding.BinaryMarshaler and
// encoding.BinaryUnmarshaler as a length-prefixed payload.
type marshalerBody struct {
	typ reflect.Type
}

func (marshalerBody) wireType() format.WireType { return format.WireLengthPrefixed }

func (b marshalerBody) writeBody(w *buffers.Writer, v reflect.Value) error {
	m, _ := v.Interface().(encoding.BinaryMarshaler)
	p, err := m.MarshalBinary()
	if err != nil {
		return fmt.Errorf("marshal %v: %w", b.typ, err)
	}
	w.WriteLengthPrefixed(p)

	return nil
}

func (b marshalerBody) readBody(r *buffers.Reader, h buffers.FieldHeader, dst reflect.Value, created func(reflect.Value)) error {
	if err := expectWire(h, format.WireLengthPrefixed, b.typ); err != nil {
		return err
	}
	p, err := r.ReadLengthPrefixed()
	if err != nil {
		return err
	}
	v, err := unmarshalBinary(b.typ, p)
	if err != nil {
		return fmt.Errorf("unmarshal %v: %w: %w", b.typ, errs.ErrMalformedInput, err)
	}
	dst.Set(v)
	if created != nil {
		created(dst)
	}

	return nil
}

// unmarshalBinary decodes p into a new value of typ.
func unmarshalBinary(typ reflect.Type, p []byte) (reflect.Value, error) {
	if typ.Kind() == reflect.Pointer {
		ptr := reflect.New(typ.Elem())
		u, _ := ptr.Interface().(encoding.BinaryUnmarshaler)

		return ptr, u.UnmarshalBinary(p)
	}
	ptr := reflect.New(typ)
	u, _ := ptr.Interface().(encoding.BinaryUnmarshaler)

	return ptr.Elem(), u.UnmarshalBinary(p)
}

// marshalerCopier copies through a marshal and unmarshal round trip.
type marshalerCopier struct {
	typ reflect.Type
}

func (marshalerCopier) IsImmutable() bool { return false }

func (c marshalerCopier) DeepCopy(v reflect.Value, s *session.Session) (reflect.Value, error) {
	if isNil(v) {
		return v, nil
	}
	id, tracked := session.IdentityOf(v)
	if tracked {
		if cv, ok := s.Copies.TryGetCopy(id); ok {
			return cv, nil
		}
	}

	m, _ := v.Interface().(encoding.BinaryMarshaler)
	p, err := m.MarshalBinary()
	if err != nil {
		return reflect.Value{}, fmt.Errorf("copy %v: %w", c.typ, err)
	}
	out, err := unmarshalBinary(c.typ, p)
	if err != nil {
		return reflect.Value{}, fmt.Errorf("copy %v: %w", c.typ, err)
	}
	if tracked {
		s.Copies.RecordCopy(id, out)
	}

	return out, nil
}
