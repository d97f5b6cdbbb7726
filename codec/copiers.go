package codec

import (
	"reflect"

	"github.com/arloliu/graft/session"
)

// lookupCopy returns the copy already made of v in this operation.
func lookupCopy(v reflect.Value, s *session.Session) (session.Identity, reflect.Value, bool) {
	id, ok := session.IdentityOf(v)
	if !ok {
		return id, reflect.Value{}, false
	}
	cv, found := s.Copies.TryGetCopy(id)

	return id, cv, found
}

type pointerCopier struct {
	reg *Registry
	typ reflect.Type
}

func (c pointerCopier) IsImmutable() bool { return false }

func (c pointerCopier) childTypes() []reflect.Type {
	return []reflect.Type{c.typ.Elem()}
}

func (c pointerCopier) DeepCopy(v reflect.Value, s *session.Session) (reflect.Value, error) {
	if v.IsNil() {
		return v, nil
	}
	id, cv, found := lookupCopy(v, s)
	if found {
		return cv, nil
	}
	ec, err := c.reg.copierFor(c.typ.Elem())
	if err != nil {
		return reflect.Value{}, err
	}
	if err := s.Enter(); err != nil {
		return reflect.Value{}, err
	}
	defer s.Leave()

	ptr := reflect.New(c.typ.Elem())
	s.Copies.RecordCopy(id, ptr)
	ev, err := ec.DeepCopy(v.Elem(), s)
	if err != nil {
		return reflect.Value{}, err
	}
	ptr.Elem().Set(ev)

	return ptr, nil
}

type sliceCopier struct {
	reg *Registry
	typ reflect.Type
}

func (c sliceCopier) IsImmutable() bool { return false }

func (c sliceCopier) childTypes() []reflect.Type {
	return []reflect.Type{c.typ.Elem()}
}

func (c sliceCopier) DeepCopy(v reflect.Value, s *session.Session) (reflect.Value, error) {
	if v.IsNil() {
		return v, nil
	}
	id, cv, found := lookupCopy(v, s)
	if found {
		return cv, nil
	}
	ec, err := c.reg.copierFor(c.typ.Elem())
	if err != nil {
		return reflect.Value{}, err
	}

	n := v.Len()
	out := reflect.MakeSlice(c.typ, n, n)
	if n > 0 {
		s.Copies.RecordCopy(id, out)
	}
	if ec.IsImmutable() {
		reflect.Copy(out, v)
		return out, nil
	}
	if err := copyElems(out, v, ec, s); err != nil {
		return reflect.Value{}, err
	}

	return out, nil
}

func copyElems(dst, src reflect.Value, ec ValueCopier, s *session.Session) error {
	if err := s.Enter(); err != nil {
		return err
	}
	defer s.Leave()

	for i := range src.Len() {
		ev, err := ec.DeepCopy(src.Index(i), s)
		if err != nil {
			return err
		}
		dst.Index(i).Set(ev)
	}

	return nil
}

// arrayCopier copies arrays, sharing them when the element type is immutable.
type arrayCopier struct {
	typ       reflect.Type
	elem      ValueCopier
	immutable bool
}

func newArrayCopier(reg *Registry, t reflect.Type) (ValueCopier, error) {
	ec, err := reg.copierFor(t.Elem())
	if err != nil {
		return nil, err
	}

	return arrayCopier{typ: t, elem: ec, immutable: ec.IsImmutable()}, nil
}

func (c arrayCopier) IsImmutable() bool { return c.immutable }

func (c arrayCopier) childTypes() []reflect.Type {
	return []reflect.Type{c.typ.Elem()}
}

func (c arrayCopier) DeepCopy(v reflect.Value, s *session.Session) (reflect.Value, error) {
	if c.immutable {
		return v, nil
	}
	out := reflect.New(c.typ).Elem()
	if err := copyElems(out, v, c.elem, s); err != nil {
		return reflect.Value{}, err
	}

	return out, nil
}

type mapCopier struct {
	reg *Registry
	typ reflect.Type
}

func (c mapCopier) IsImmutable() bool { return false }

func (c mapCopier) childTypes() []reflect.Type {
	return []reflect.Type{c.typ.Key(), c.typ.Elem()}
}

func (c mapCopier) DeepCopy(v reflect.Value, s *session.Session) (reflect.Value, error) {
	if v.IsNil() {
		return v, nil
	}
	id, cv, found := lookupCopy(v, s)
	if found {
		return cv, nil
	}
	kc, err := c.reg.copierFor(c.typ.Key())
	if err != nil {
		return reflect.Value{}, err
	}
	vc, err := c.reg.copierFor(c.typ.Elem())
	if err != nil {
		return reflect.Value{}, err
	}
	if err := s.Enter(); err != nil {
		return reflect.Value{}, err
	}
	defer s.Leave()

	out := reflect.MakeMapWithSize(c.typ, v.Len())
	s.Copies.RecordCopy(id, out)
	iter := v.MapRange()
	for iter.Next() {
		k, err := kc.DeepCopy(iter.Key(), s)
		if err != nil {
			return reflect.Value{}, err
		}
		x, err := vc.DeepCopy(iter.Value(), s)
		if err != nil {
			return reflect.Value{}, err
		}
		out.SetMapIndex(k, x)
	}

	return out, nil
}
