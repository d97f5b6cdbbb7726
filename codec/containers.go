package codec

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/arloliu/graft/buffers"
	"github.com/arloliu/graft/collections"
	"github.com/arloliu/graft/errs"
	"github.com/arloliu/graft/format"
	"github.com/arloliu/graft/session"
)

// anyValue returns x as a value of static type typ. A nil x yields the zero value.
func anyValue(x any, typ reflect.Type) reflect.Value {
	out := reflect.New(typ).Elem()
	if x != nil {
		out.Set(reflect.ValueOf(x))
	}

	return out
}

// sample returns a fresh, empty instance of the container pointer type typ.
func sample[I any](typ reflect.Type) I {
	c, _ := reflect.New(typ.Elem()).Interface().(I)
	return c
}

// sequenceBody encodes collections.Sequence containers as a count at field 1
// followed by the elements at field 2.
type sequenceBody struct {
	reg *Registry
	typ reflect.Type
}

func (b sequenceBody) wireType() format.WireType { return format.WireTagDelimited }

func (b sequenceBody) childTypes() []reflect.Type {
	return []reflect.Type{sample[collections.Sequence](b.typ).ElemType()}
}

func (b sequenceBody) writeBody(w *buffers.Writer, v reflect.Value) error {
	seq, _ := v.Interface().(collections.Sequence)
	elem := seq.ElemType()
	c, err := b.reg.codecFor(elem)
	if err != nil {
		return err
	}

	writeCount(w, 1, seq.Len())
	delta := uint32(1)
	seq.RangeAny(func(x any) bool {
		err = c.WriteField(w, delta, elem, anyValue(x, elem))
		delta = 0

		return err == nil
	})
	if err != nil {
		return err
	}
	w.WriteEndObject()

	return nil
}

func (b sequenceBody) readBody(r *buffers.Reader, h buffers.FieldHeader, dst reflect.Value, created func(reflect.Value)) error {
	if err := expectWire(h, format.WireTagDelimited, b.typ); err != nil {
		return err
	}
	ptr := reflect.New(b.typ.Elem())
	dst.Set(ptr)
	if created != nil {
		created(dst)
	}
	seq, _ := ptr.Interface().(collections.Sequence)
	elem := seq.ElemType()

	return forEachField(r, func(id uint32, h buffers.FieldHeader) error {
		switch id {
		case 1:
			_, err := readCount(r, h)
			return err
		case 2:
			ev, err := b.reg.readChild(r, h, elem)
			if err != nil {
				return err
			}
			seq.AppendAny(ev.Interface())

			return nil
		default:
			return r.SkipField(h)
		}
	})
}

// mappingBody encodes collections.Mapping containers. Mappings with a configurable
// comparer write a non-default comparer at field 0; the count is field 1 and the
// entries are field 2.
type mappingBody struct {
	reg      *Registry
	typ      reflect.Type
	comparer bool
}

func (b mappingBody) wireType() format.WireType { return format.WireTagDelimited }

func (b mappingBody) childTypes() []reflect.Type {
	m := sample[collections.Mapping](b.typ)
	return []reflect.Type{m.KeyType(), m.ValueType()}
}

func (b mappingBody) writeBody(w *buffers.Writer, v reflect.Value) error {
	m, _ := v.Interface().(collections.Mapping)
	kt, vt := m.KeyType(), m.ValueType()

	var ids fieldIDs
	if b.comparer {
		holder, _ := v.Interface().(comparerHolder)
		c := holder.Comparer()
		if _, isDefault := c.(collections.Ordinal); c != nil && !isDefault {
			if err := b.reg.writeChild(w, ids.delta(0), comparerType, anyValue(c, comparerType)); err != nil {
				return fmt.Errorf("comparer of %v: %w", b.typ, err)
			}
		}
	}

	writeCount(w, ids.delta(1), m.Len())
	delta := ids.delta(2)
	var err error
	m.RangeAny(func(k, x any) bool {
		err = b.reg.writeEntry(w, delta, kt, vt, anyValue(k, kt), anyValue(x, vt))
		delta = 0

		return err == nil
	})
	if err != nil {
		return err
	}
	w.WriteEndObject()

	return nil
}

func (b mappingBody) readBody(r *buffers.Reader, h buffers.FieldHeader, dst reflect.Value, created func(reflect.Value)) error {
	if err := expectWire(h, format.WireTagDelimited, b.typ); err != nil {
		return err
	}
	ptr := reflect.New(b.typ.Elem())
	dst.Set(ptr)
	if created != nil {
		created(dst)
	}
	m, _ := ptr.Interface().(collections.Mapping)
	kt, vt := m.KeyType(), m.ValueType()

	return forEachField(r, func(id uint32, h buffers.FieldHeader) error {
		switch {
		case id == 0 && b.comparer:
			cv, err := b.reg.readChild(r, h, comparerType)
			if err != nil {
				if errors.Is(err, errs.ErrUnsupportedType) {
					return fmt.Errorf("%w: %w", errs.ErrUnknownComparer, err)
				}

				return err
			}
			holder, _ := ptr.Interface().(comparerHolder)
			c, _ := cv.Interface().(collections.Comparer)
			holder.SetComparer(c)

			return nil
		case id == 1:
			_, err := readCount(r, h)
			return err
		case id == 2:
			k, v, err := b.reg.readEntry(r, h, kt, vt)
			if err != nil {
				return err
			}
			m.SetAny(k.Interface(), v.Interface())

			return nil
		default:
			return r.SkipField(h)
		}
	})
}

// sequenceCopier copies Sequence containers element by element. Containers marked
// collections.Immutable are shared when their elements are immutable too.
type sequenceCopier struct {
	reg       *Registry
	typ       reflect.Type
	immutable bool
}

func newSequenceCopier(reg *Registry, t reflect.Type) (ValueCopier, error) {
	c := sequenceCopier{reg: reg, typ: t}
	if t.Implements(immutableType) {
		ec, err := reg.copierFor(sample[collections.Sequence](t).ElemType())
		if err != nil {
			return nil, err
		}
		c.immutable = ec.IsImmutable()
	}

	return c, nil
}

func (c sequenceCopier) IsImmutable() bool { return c.immutable }

func (c sequenceCopier) childTypes() []reflect.Type {
	return []reflect.Type{sample[collections.Sequence](c.typ).ElemType()}
}

func (c sequenceCopier) DeepCopy(v reflect.Value, s *session.Session) (reflect.Value, error) {
	if v.IsNil() || c.immutable {
		return v, nil
	}
	id, _ := session.IdentityOf(v)
	if cv, ok := s.Copies.TryGetCopy(id); ok {
		return cv, nil
	}
	if err := s.Enter(); err != nil {
		return reflect.Value{}, err
	}
	defer s.Leave()

	src, _ := v.Interface().(collections.Sequence)
	elem := src.ElemType()
	ec, err := c.reg.copierFor(elem)
	if err != nil {
		return reflect.Value{}, err
	}

	ptr := reflect.New(c.typ.Elem())
	s.Copies.RecordCopy(id, ptr)
	dst, _ := ptr.Interface().(collections.Sequence)
	src.RangeAny(func(x any) bool {
		var cv reflect.Value
		cv, err = ec.DeepCopy(anyValue(x, elem), s)
		if err != nil {
			return false
		}
		dst.AppendAny(cv.Interface())

		return true
	})
	if err != nil {
		return reflect.Value{}, err
	}

	return ptr, nil
}

// mappingCopier copies Mapping containers entry by entry, keeping the comparer.
type mappingCopier struct {
	reg *Registry
	typ reflect.Type
}

func (c mappingCopier) IsImmutable() bool { return false }

func (c mappingCopier) childTypes() []reflect.Type {
	m := sample[collections.Mapping](c.typ)
	return []reflect.Type{m.KeyType(), m.ValueType()}
}

func (c mappingCopier) DeepCopy(v reflect.Value, s *session.Session) (reflect.Value, error) {
	if v.IsNil() {
		return v, nil
	}
	id, _ := session.IdentityOf(v)
	if cv, ok := s.Copies.TryGetCopy(id); ok {
		return cv, nil
	}
	if err := s.Enter(); err != nil {
		return reflect.Value{}, err
	}
	defer s.Leave()

	src, _ := v.Interface().(collections.Mapping)
	kt, vt := src.KeyType(), src.ValueType()
	kc, err := c.reg.copierFor(kt)
	if err != nil {
		return reflect.Value{}, err
	}
	vc, err := c.reg.copierFor(vt)
	if err != nil {
		return reflect.Value{}, err
	}

	ptr := reflect.New(c.typ.Elem())
	s.Copies.RecordCopy(id, ptr)
	if holder, ok := v.Interface().(comparerHolder); ok {
		dstHolder, _ := ptr.Interface().(comparerHolder)
		dstHolder.SetComparer(holder.Comparer())
	}
	dst, _ := ptr.Interface().(collections.Mapping)
	src.RangeAny(func(k, x any) bool {
		var ck, cx reflect.Value
		if ck, err = kc.DeepCopy(anyValue(k, kt), s); err != nil {
			return false
		}
		if cx, err = vc.DeepCopy(anyValue(x, vt), s); err != nil {
			return false
		}
		dst.SetAny(ck.Interface(), cx.Interface())

		return true
	})
	if err != nil {
		return reflect.Value{}, err
	}

	return ptr, nil
}
